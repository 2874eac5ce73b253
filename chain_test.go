package updraft

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorik/updraft/types"
)

// gatedRecorder is a handler whose gate either matches or reports Skipped.
func gatedRecorder(trace *[]string, label string, match bool, result Result) Handler {
	return NewPredicate(
		GuardFunc(func(context.Context, Input) PredicateResult {
			if match {
				return True()
			}
			return False(Continue)
		}),
		recordingHandler(trace, label, result),
	)
}

func TestChainFirstFound(t *testing.T) {
	var trace []string
	chain := ChainOnce().
		With(gatedRecorder(&trace, "miss", false, Continue)).
		With(gatedRecorder(&trace, "hit", true, Continue)).
		With(gatedRecorder(&trace, "after", true, Continue))

	in := Input{Update: messageUpdate(1, "hi"), Context: NewContext()}
	result := chain.HandleGated(context.Background(), in)

	require.True(t, result.IsDone())
	assert.Equal(t, []string{"hit"}, trace)
}

func TestChainAllRunsEveryMatch(t *testing.T) {
	var trace []string
	chain := ChainAll().
		With(gatedRecorder(&trace, "first", true, Continue)).
		With(gatedRecorder(&trace, "miss", false, Continue)).
		With(gatedRecorder(&trace, "second", true, Stop)).
		With(gatedRecorder(&trace, "third", true, Continue))

	in := Input{Update: messageUpdate(1, "hi"), Context: NewContext()}
	result := chain.HandleGated(context.Background(), in)

	require.True(t, result.IsDone())
	// A member's Stop does not cut the chain short but is reflected in
	// the folded result.
	assert.Equal(t, []string{"first", "second", "third"}, trace)
	assert.True(t, result.Into().Stops())
}

func TestChainAllStopsOnFirstError(t *testing.T) {
	boom := errors.New("boom")
	var trace []string
	chain := ChainAll().
		With(gatedRecorder(&trace, "first", true, Continue)).
		With(gatedRecorder(&trace, "bad", true, Error(boom))).
		With(gatedRecorder(&trace, "never", true, Continue))

	in := Input{Update: messageUpdate(1, "hi"), Context: NewContext()}
	result := chain.HandleGated(context.Background(), in)

	require.True(t, result.IsDone())
	assert.ErrorIs(t, result.Into().Err(), boom)
	assert.Equal(t, []string{"first", "bad"}, trace)
}

func TestChainNoMatchIsSkipped(t *testing.T) {
	var trace []string
	chain := ChainOnce().
		With(gatedRecorder(&trace, "a", false, Continue)).
		With(gatedRecorder(&trace, "b", false, Continue))

	in := Input{Update: messageUpdate(1, "hi"), Context: NewContext()}
	result := chain.HandleGated(context.Background(), in)

	assert.True(t, result.IsSkipped())
	assert.Empty(t, trace)
	// As a plain handler the empty match folds to Continue.
	assert.Equal(t, Continue, chain.Handle(context.Background(), in))
}

func TestChainPreErrorPropagates(t *testing.T) {
	var trace []string
	chain := ChainOnce().
		With(Typed(ExtractCommand, func(context.Context, Input, *types.Command) Result {
			trace = append(trace, "command")
			return Stop
		})).
		With(gatedRecorder(&trace, "after", true, Continue))

	// Mismatched quotes fail extraction before any handler body runs.
	in := Input{Update: commandUpdate(1, `/cmd 'a`, 4), Context: NewContext()}
	result := chain.HandleGated(context.Background(), in)

	assert.False(t, result.IsDone())
	assert.False(t, result.IsSkipped())
	assert.ErrorIs(t, result.Into().Err(), types.ErrMismatchedQuotes)
	assert.Empty(t, trace)
}

func TestChainsNest(t *testing.T) {
	var trace []string
	inner := ChainOnce().
		With(gatedRecorder(&trace, "inner-miss", false, Continue))
	outer := ChainOnce().
		With(inner).
		With(gatedRecorder(&trace, "outer", true, Stop))

	in := Input{Update: messageUpdate(1, "hi"), Context: NewContext()}
	result := outer.HandleGated(context.Background(), in)

	require.True(t, result.IsDone())
	assert.True(t, result.Into().Stops())
	assert.Equal(t, []string{"outer"}, trace)
}
