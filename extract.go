package updraft

import (
	"context"

	"github.com/quorik/updraft/types"
)

// Extractor converts the update envelope into the specific typed value a
// handler wants.
//
// ok == false with a nil error means the update does not carry a value of
// type T; that is not a failure, the handler is simply skipped. A non-nil
// error means the update did match but could not be decoded (for example a
// command with mismatched quotes) or a required service is missing.
type Extractor[T any] func(ctx context.Context, in Input) (value T, ok bool, err error)

// ExtractUpdate yields the raw update. It always matches.
func ExtractUpdate(_ context.Context, in Input) (*types.Update, bool, error) {
	return in.Update, true, nil
}

// ExtractMessage yields the message carried by the update, including edited
// messages and channel posts.
func ExtractMessage(_ context.Context, in Input) (*types.Message, bool, error) {
	msg := in.Update.GetMessage()
	return msg, msg != nil, nil
}

// ExtractText yields the text of the update's message.
func ExtractText(_ context.Context, in Input) (string, bool, error) {
	text, ok := in.Update.GetText()
	return text, ok, nil
}

// ExtractChatID yields the originating chat ID.
func ExtractChatID(_ context.Context, in Input) (int64, bool, error) {
	id, ok := in.Update.GetChatID()
	return id, ok, nil
}

// ExtractUserID yields the originating user ID.
func ExtractUserID(_ context.Context, in Input) (int64, bool, error) {
	id, ok := in.Update.GetUserID()
	return id, ok, nil
}

// ExtractUsername yields the originating user's username.
func ExtractUsername(_ context.Context, in Input) (string, bool, error) {
	name, ok := in.Update.GetUserUsername()
	return name, ok, nil
}

// ExtractUser yields the originating user.
func ExtractUser(_ context.Context, in Input) (*types.User, bool, error) {
	user := in.Update.GetUser()
	return user, user != nil, nil
}

// ExtractCallbackQuery yields the update's callback query.
func ExtractCallbackQuery(_ context.Context, in Input) (*types.CallbackQuery, bool, error) {
	q := in.Update.CallbackQuery
	return q, q != nil, nil
}

// ExtractInlineQuery yields the update's inline query.
func ExtractInlineQuery(_ context.Context, in Input) (*types.InlineQuery, bool, error) {
	q := in.Update.InlineQuery
	return q, q != nil, nil
}

// ExtractCommand yields a parsed bot command.
//
// A message without a bot_command entity does not match. A message whose
// command text cannot be decoded (types.ErrInvalidUTF16,
// types.ErrMismatchedQuotes) fails extraction.
func ExtractCommand(_ context.Context, in Input) (*types.Command, bool, error) {
	cmd, err := types.ParseCommand(in.Update.GetMessage())
	if err != nil {
		return nil, false, err
	}
	return cmd, cmd != nil, nil
}

// Service returns an extractor yielding the service of type T registered in
// the context. Unlike envelope extractors, a missing service is an error
// rather than a skip: the pipeline was assembled wrong.
func Service[T any]() Extractor[T] {
	return func(_ context.Context, in Input) (T, bool, error) {
		value, ok := Lookup[T](in.Context)
		if !ok {
			return value, false, ErrServiceNotFound
		}
		return value, true, nil
	}
}

// Both combines two extractors; it matches only when both match,
// short-circuiting on the first miss or error.
func Both[A, B any](a Extractor[A], b Extractor[B]) Extractor[Pair[A, B]] {
	return func(ctx context.Context, in Input) (Pair[A, B], bool, error) {
		var pair Pair[A, B]
		first, ok, err := a(ctx, in)
		if !ok || err != nil {
			return pair, false, err
		}
		second, ok, err := b(ctx, in)
		if !ok || err != nil {
			return pair, false, err
		}
		pair.First, pair.Second = first, second
		return pair, true, nil
	}
}

// Pair holds the values of two combined extractors.
type Pair[A, B any] struct {
	First  A
	Second B
}
