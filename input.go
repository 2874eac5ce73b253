package updraft

import "github.com/quorik/updraft/types"

// Input pairs an update with the shared service context.
// It is threaded through every pipeline stage and is cheap to copy:
// both fields are shared references.
type Input struct {
	Update  *types.Update
	Context *Context
}
