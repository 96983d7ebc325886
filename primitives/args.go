package primitives

import (
	"fmt"

	"github.com/gomlx/interop/memory"
)

// ArgRole identifies the role of an execution argument of a primitive.
type ArgRole int

const (
	ArgUndefined  ArgRole = 0
	ArgSrc        ArgRole = 1
	ArgSrc1       ArgRole = 2
	ArgSrc2       ArgRole = 3
	ArgDst        ArgRole = 17
	ArgWeights    ArgRole = 33
	ArgBias       ArgRole = 41
	ArgWorkspace  ArgRole = 64
	ArgScratchpad ArgRole = 80

	// ArgMultipleSrc is the first of the roles used by primitives taking a variable number of
	// sources: ArgMultipleSrc+i is the i-th source. See MultipleSrc.
	ArgMultipleSrc    ArgRole = 1024
	argMultipleSrcEnd ArgRole = 2048
)

// MultipleSrc returns the role of the i-th source of a primitive with a variable number of sources.
func MultipleSrc(i int) ArgRole {
	return ArgMultipleSrc + ArgRole(i)
}

var argRoleNames = map[ArgRole]string{
	ArgUndefined:  "undefined",
	ArgSrc:        "src",
	ArgSrc1:       "src_1",
	ArgSrc2:       "src_2",
	ArgDst:        "dst",
	ArgWeights:    "weights",
	ArgBias:       "bias",
	ArgWorkspace:  "workspace",
	ArgScratchpad: "scratchpad",
}

// String implements fmt.Stringer.
func (r ArgRole) String() string {
	if name, found := argRoleNames[r]; found {
		return name
	}
	if r >= ArgMultipleSrc && r < argMultipleSrcEnd {
		return fmt.Sprintf("multiple_src_%d", int(r-ArgMultipleSrc))
	}
	return fmt.Sprintf("ArgRole(%d)", int(r))
}

// Usage of an argument by a primitive.
type Usage int

//go:generate go tool enumer -type Usage -trimprefix=Usage -transform=lower -output=gen_usage_enumer.go args.go

const (
	UsageInput Usage = iota
	UsageOutput
)

// ArgSpec describes one argument of a primitive's signature.
type ArgSpec struct {
	Role  ArgRole
	Usage Usage

	// Optional arguments may be omitted in executions.
	Optional bool

	// Desc the memory given for the argument must match.
	Desc memory.Desc
}

// ExecArg is one (role, memory) pair given by the caller of an execution.
// A nil Memory is a "dummy" argument, and is ignored.
type ExecArg struct {
	Role   ArgRole
	Memory *memory.Storage
}

// ExecArgValue is a bound argument.
type ExecArgValue struct {
	Memory  *memory.Storage
	IsInput bool
}

// ExecArgs maps argument roles to bound memory, as produced by BindArgs.
type ExecArgs map[ArgRole]ExecArgValue

// Input returns the memory bound as input for role, or nil if not bound.
func (a ExecArgs) Input(role ArgRole) *memory.Storage {
	if v, found := a[role]; found && v.IsInput {
		return v.Memory
	}
	return nil
}

// Output returns the memory bound as output for role, or nil if not bound.
func (a ExecArgs) Output(role ArgRole) *memory.Storage {
	if v, found := a[role]; found && !v.IsInput {
		return v.Memory
	}
	return nil
}
