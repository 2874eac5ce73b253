package updraft

import "fmt"

// Result tells the dispatcher what to do after a handler ran.
//
// The zero value is Continue. Stop halts propagation for the current update.
// A result produced by Error additionally carries the handler error, which
// the dispatcher routes to its ErrorHandler.
type Result struct {
	stop bool
	err  error
}

var (
	// Continue lets the next handler run.
	Continue = Result{}

	// Stop prevents any later handler from running for this update.
	Stop = Result{stop: true}
)

// Error returns a result carrying a handler error.
// Propagation stops and the dispatcher's ErrorHandler is invoked.
// A nil err is equivalent to Continue.
func Error(err error) Result {
	if err == nil {
		return Continue
	}
	return Result{stop: true, err: err}
}

// FromError maps a handler error to a result: nil becomes Continue,
// anything else becomes Error(err).
func FromError(err error) Result {
	return Error(err)
}

// FromBool maps a flag to a result: true becomes Continue, false Stop.
func FromBool(ok bool) Result {
	if ok {
		return Continue
	}
	return Stop
}

// Err returns the handler error carried by the result, if any.
func (r Result) Err() error { return r.err }

// Stops reports whether the result halts propagation,
// either via Stop or via a carried error.
func (r Result) Stops() bool { return r.stop || r.err != nil }

func (r Result) String() string {
	switch {
	case r.err != nil:
		return fmt.Sprintf("Error(%v)", r.err)
	case r.stop:
		return "Stop"
	default:
		return "Continue"
	}
}

// PredicateResult is the verdict of a guard.
//
// True lets the guarded handler run. False suppresses it and supplies the
// result the pipeline sees instead, so a guard decides whether a non-match
// looks like Continue, Stop, or a surfaced error.
type PredicateResult struct {
	allowed bool
	result  Result
}

// True allows the guarded handler to run.
func True() PredicateResult {
	return PredicateResult{allowed: true}
}

// False suppresses the guarded handler; result is returned in its place.
func False(result Result) PredicateResult {
	return PredicateResult{result: result}
}

// Allowed reports whether the guarded handler may run.
func (p PredicateResult) Allowed() bool { return p.allowed }

// Result returns the replacement result of a False verdict.
func (p PredicateResult) Result() Result { return p.result }

// ChainResult distinguishes how a gate-aware handler dealt with an update:
// it ran to completion, its extractor produced nothing, or extraction itself
// failed before the handler body could run.
type ChainResult struct {
	kind chainKind
	done Result
	err  error
}

type chainKind int

const (
	chainSkipped chainKind = iota
	chainDone
	chainErr
)

// Done reports that the handler ran and yielded result.
func Done(result Result) ChainResult {
	return ChainResult{kind: chainDone, done: result}
}

// Skipped reports that the handler's extractor found no input.
func Skipped() ChainResult {
	return ChainResult{kind: chainSkipped}
}

// PreError reports a failure before the handler body ran,
// such as a malformed command or a missing service.
func PreError(err error) ChainResult {
	return ChainResult{kind: chainErr, err: err}
}

// IsSkipped reports whether the handler did not match the update.
func (c ChainResult) IsSkipped() bool { return c.kind == chainSkipped }

// IsDone reports whether the handler ran.
func (c ChainResult) IsDone() bool { return c.kind == chainDone }

// Into folds the chain result back into a plain handler result:
// Skipped becomes Continue and a pre-handler failure becomes Error.
func (c ChainResult) Into() Result {
	switch c.kind {
	case chainDone:
		return c.done
	case chainErr:
		return Error(c.err)
	default:
		return Continue
	}
}
