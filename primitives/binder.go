package primitives

import (
	"github.com/gomlx/interop/engines"
	"github.com/gomlx/interop/status"
)

// BindArgs converts the (role, memory) pairs given by a caller into the primitive's ExecArgs.
//
// Arguments with a nil Memory are dummies and are skipped. It fails with InvalidArguments if a role
// is not part of the primitive signature, is given twice, or if a required role is missing. It
// also checks that every memory is valid, lives on the primitive's engine and matches the
// descriptor in the signature (if one is set).
//
// Nothing is bound on failure.
func BindArgs(p *Primitive, args []ExecArg) (ExecArgs, error) {
	if p == nil {
		return nil, status.InvalidArgumentsf("BindArgs() requires a primitive")
	}
	execArgs := make(ExecArgs, len(args))
	for ii, arg := range args {
		if arg.Memory == nil {
			continue
		}
		spec, found := p.desc.Arg(arg.Role)
		if !found {
			return nil, status.InvalidArgumentsf("argument #%d: role %s is not an argument of %s", ii, arg.Role, p)
		}
		if _, dup := execArgs[arg.Role]; dup {
			return nil, status.InvalidArgumentsf("argument #%d: role %s given more than once for %s", ii, arg.Role, p)
		}
		if !arg.Memory.IsValid() {
			return nil, status.InvalidArgumentsf("argument #%d (%s): memory was finalized", ii, arg.Role)
		}
		if !engines.Same(arg.Memory.Engine(), p.engine) {
			return nil, status.InvalidArgumentsf("argument #%d (%s): memory on engine %s, but %s runs on engine %s",
				ii, arg.Role, arg.Memory.Engine(), p, p.engine)
		}
		if spec.Desc.Ok() && !spec.Desc.Equal(arg.Memory.Desc()) {
			return nil, status.InvalidArgumentsf("argument #%d (%s): %s requires memory %s, got %s",
				ii, arg.Role, p, spec.Desc, arg.Memory.Desc())
		}
		execArgs[arg.Role] = ExecArgValue{Memory: arg.Memory, IsInput: spec.Usage == UsageInput}
	}
	for _, spec := range p.desc.Signature {
		if _, found := execArgs[spec.Role]; !found && !spec.Optional {
			return nil, status.InvalidArgumentsf("missing required %s argument %s for %s", spec.Usage, spec.Role, p)
		}
	}
	return execArgs, nil
}
