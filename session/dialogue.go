package session

import (
	"context"

	"github.com/quorik/updraft"
)

// dialogueKeyPrefix namespaces dialogue state inside a session, keeping it
// apart from values the application stores directly.
const dialogueKeyPrefix = "__dialogue:"

// DialogueResult tells a dialogue handler's wrapper what to do with the
// conversation state after the step ran: advance to the next state or end
// the dialogue and forget its state.
type DialogueResult[S any] struct {
	exit bool
	next S
}

// Next advances the dialogue to state; it is stored before the next update
// arrives.
func Next[S any](state S) DialogueResult[S] {
	return DialogueResult[S]{next: state}
}

// Exit ends the dialogue and removes its stored state.
func Exit[S any]() DialogueResult[S] {
	return DialogueResult[S]{exit: true}
}

// Dialogue builds a handler carrying a named finite-state conversation.
//
// Before each step the state is loaded from the update's session (the zero
// value of S starts a fresh dialogue); fn decides the reply and returns
// Next with the state to persist, or Exit to end the conversation. Updates
// without a session key do not match, so a dialogue composes with chains
// and predicates like any other gated handler. State values cross the
// session codec, so S must marshal to JSON.
func Dialogue[S any](name string, fn func(ctx context.Context, in updraft.Input, state S) (DialogueResult[S], error)) updraft.Handler {
	return dialogueHandler[S]{name: name, fn: fn}
}

type dialogueHandler[S any] struct {
	name string
	fn   func(ctx context.Context, in updraft.Input, state S) (DialogueResult[S], error)
}

func (d dialogueHandler[S]) Handle(ctx context.Context, in updraft.Input) updraft.Result {
	return d.HandleGated(ctx, in).Into()
}

func (d dialogueHandler[S]) HandleGated(ctx context.Context, in updraft.Input) updraft.ChainResult {
	sess, ok, err := Extract(ctx, in)
	if err != nil {
		return updraft.PreError(err)
	}
	if !ok {
		return updraft.Skipped()
	}

	key := dialogueKeyPrefix + d.name
	var state S
	if _, err := sess.Get(ctx, key, &state); err != nil {
		return updraft.PreError(err)
	}

	result, err := d.fn(ctx, in, state)
	if err != nil {
		return updraft.Done(updraft.Error(err))
	}
	if result.exit {
		if err := sess.Remove(ctx, key); err != nil {
			return updraft.Done(updraft.Error(err))
		}
		return updraft.Done(updraft.Continue)
	}
	if err := sess.Set(ctx, key, result.next); err != nil {
		return updraft.Done(updraft.Error(err))
	}
	return updraft.Done(updraft.Continue)
}
