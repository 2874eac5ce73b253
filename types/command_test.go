package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commandMessage(text string, offset, length int) *Message {
	return &Message{
		ID:   1,
		Chat: Chat{ID: 10, Type: ChatTypePrivate},
		Text: text,
		Entities: []Entity{
			{Type: EntityBotCommand, Offset: offset, Length: length},
		},
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name     string
		msg      *Message
		wantName string
		wantArgs []string
	}{
		{
			name:     "quoted argument",
			msg:      commandMessage(`/cmd 'a b' c`, 0, 4),
			wantName: "/cmd",
			wantArgs: []string{"a b", "c"},
		},
		{
			name:     "double quoted argument",
			msg:      commandMessage(`/cmd "a b" c`, 0, 4),
			wantName: "/cmd",
			wantArgs: []string{"a b", "c"},
		},
		{
			name:     "no arguments",
			msg:      commandMessage("/start", 0, 6),
			wantName: "/start",
			wantArgs: nil,
		},
		{
			name:     "bot mention stripped",
			msg:      commandMessage("/start@examplebot now", 0, 17),
			wantName: "/start",
			wantArgs: []string{"now"},
		},
		{
			name:     "escaped space",
			msg:      commandMessage(`/cmd a\ b`, 0, 4),
			wantName: "/cmd",
			wantArgs: []string{"a b"},
		},
		{
			// Entity offsets count UTF-16 code units: the emoji below
			// occupies two units, so the command starts at offset 3.
			name:     "utf16 offset before command",
			msg:      commandMessage("\U0001F600 /hi there", 3, 3),
			wantName: "/hi",
			wantArgs: []string{"there"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := ParseCommand(tt.msg)
			require.NoError(t, err)
			require.NotNil(t, cmd)
			assert.Equal(t, tt.wantName, cmd.Name)
			assert.Equal(t, tt.wantArgs, cmd.Args)
			assert.Same(t, tt.msg, cmd.Message)
		})
	}
}

func TestParseCommandNoCommand(t *testing.T) {
	tests := []struct {
		name string
		msg  *Message
	}{
		{name: "nil message", msg: nil},
		{name: "empty text", msg: &Message{}},
		{name: "plain text", msg: &Message{Text: "hello"}},
		{
			name: "non-command entity",
			msg: &Message{
				Text:     "#tag",
				Entities: []Entity{{Type: EntityHashtag, Offset: 0, Length: 4}},
			},
		},
		{
			name: "entity out of bounds",
			msg:  commandMessage("/hi", 0, 50),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := ParseCommand(tt.msg)
			require.NoError(t, err)
			assert.Nil(t, cmd)
		})
	}
}

func TestParseCommandMismatchedQuotes(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "unterminated single quote", text: `/cmd 'a`},
		{name: "unterminated double quote", text: `/cmd "a b`},
		{name: "trailing escape", text: `/cmd a\`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := ParseCommand(commandMessage(tt.text, 0, 4))
			require.ErrorIs(t, err, ErrMismatchedQuotes)
			assert.Nil(t, cmd)
		})
	}
}

func TestParseCommandInvalidUTF16(t *testing.T) {
	// Length 4 ends between the surrogate halves of the emoji.
	msg := commandMessage("/cm\U0001F600 x", 0, 4)
	cmd, err := ParseCommand(msg)
	require.ErrorIs(t, err, ErrInvalidUTF16)
	assert.Nil(t, cmd)
}

func TestSplitWords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "empty", text: "", want: nil},
		{name: "whitespace only", text: "  \t ", want: nil},
		{name: "simple", text: "a b c", want: []string{"a", "b", "c"}},
		{name: "empty quoted word", text: `a '' b`, want: []string{"a", "", "b"}},
		{name: "adjacent quotes", text: `a'b c'd`, want: []string{"ab cd"}},
		{name: "escaped quote", text: `\'a`, want: []string{"'a"}},
		{name: "backslash literal in single quotes", text: `'a\b'`, want: []string{`a\b`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := splitWords(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
