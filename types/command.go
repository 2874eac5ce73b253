package types

import (
	"errors"
	"strings"
	"unicode/utf16"
)

// Command parsing errors. Both are reported by ParseCommand when a message
// does carry a bot_command entity but the command text cannot be decoded.
var (
	// ErrInvalidUTF16 is returned when an entity boundary splits a
	// surrogate pair, leaving the argument text undecodable.
	ErrInvalidUTF16 = errors.New("types: invalid UTF-16 sequence in command text")

	// ErrMismatchedQuotes is returned when the argument text contains an
	// unterminated quoted word.
	ErrMismatchedQuotes = errors.New("types: mismatched quotes in command arguments")
)

// Command is a bot command extracted from a message.
type Command struct {
	// Name is the command name with the leading slash.
	// A trailing @botname mention is stripped.
	Name string

	// Args holds the shell-word-split text following the command.
	Args []string

	// Message is the message the command was found in.
	Message *Message
}

// ParseCommand extracts a bot command from a message.
//
// A nil Command with a nil error means the message does not carry a command.
// Entity offsets are interpreted as UTF-16 code units per the Bot API, so the
// message text is re-encoded before slicing. Arguments are split on
// whitespace with single and double quotes grouping words.
func ParseCommand(msg *Message) (*Command, error) {
	if msg == nil || msg.Text == "" {
		return nil, nil
	}
	entity, ok := msg.CommandEntity()
	if !ok {
		return nil, nil
	}

	units := utf16.Encode([]rune(msg.Text))
	start, end := entity.Offset, entity.Offset+entity.Length
	if start < 0 || end > len(units) || start > end {
		return nil, nil
	}

	name, err := decodeUTF16(units[start:end])
	if err != nil {
		return nil, err
	}
	if at := strings.Index(name, "@"); at > 0 {
		name = name[:at]
	}

	rest, err := decodeUTF16(units[end:])
	if err != nil {
		return nil, err
	}
	args, err := splitWords(rest)
	if err != nil {
		return nil, err
	}

	return &Command{Name: name, Args: args, Message: msg}, nil
}

// decodeUTF16 converts code units to a string, rejecting unpaired surrogates.
// utf16.Decode silently replaces them with U+FFFD, which would hide the fact
// that an entity boundary cut a character in half.
func decodeUTF16(units []uint16) (string, error) {
	for i := 0; i < len(units); i++ {
		u := units[i]
		switch {
		case u >= 0xD800 && u < 0xDC00:
			// High surrogate must be followed by a low one.
			if i+1 >= len(units) || units[i+1] < 0xDC00 || units[i+1] >= 0xE000 {
				return "", ErrInvalidUTF16
			}
			i++
		case u >= 0xDC00 && u < 0xE000:
			return "", ErrInvalidUTF16
		}
	}
	return string(utf16.Decode(units)), nil
}

// splitWords splits text into words the way a shell would: whitespace
// separates words, single or double quotes group them, and a backslash
// escapes the next character outside single quotes.
func splitWords(text string) ([]string, error) {
	var (
		words   []string
		word    strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)
	for _, r := range text {
		switch {
		case escaped:
			word.WriteRune(r)
			escaped = false
		case quote == '\'' && r != '\'':
			word.WriteRune(r)
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0 && r == quote:
			quote = 0
		case quote == 0 && (r == '\'' || r == '"'):
			quote = r
			inWord = true
		case quote == 0 && (r == ' ' || r == '\t' || r == '\n' || r == '\r'):
			if inWord {
				words = append(words, word.String())
				word.Reset()
				inWord = false
			}
		default:
			word.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 || escaped {
		return nil, ErrMismatchedQuotes
	}
	if inWord {
		words = append(words, word.String())
	}
	return words, nil
}
