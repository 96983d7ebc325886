package plan

import (
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/interop/engines"
	"github.com/gomlx/interop/kernels"
	"github.com/gomlx/interop/memory"
	"github.com/gomlx/interop/primitives"
	"github.com/pkg/errors"
)

// Launchable is a step built on an engine: its primitive and the memory for every argument.
type Launchable struct {
	Step      *Step
	Primitive *primitives.Primitive
	Args      []primitives.ExecArg
}

// Dst returns the destination memory.
func (l *Launchable) Dst() *memory.Storage {
	for _, arg := range l.Args {
		if arg.Role == primitives.ArgDst {
			return arg.Memory
		}
	}
	return nil
}

// Bytes returns the total memory used by the arguments.
func (l *Launchable) Bytes() uintptr {
	var total uintptr
	for _, arg := range l.Args {
		total += arg.Memory.Desc().Memory()
	}
	return total
}

// Finalize the memory of the arguments.
func (l *Launchable) Finalize() {
	for _, arg := range l.Args {
		arg.Memory.Finalize()
	}
}

// Build creates the primitives of every step on engine, in the order returned by Order.
func (p *Plan) Build(engine *engines.Engine) ([]*Launchable, error) {
	order, err := p.Order()
	if err != nil {
		return nil, err
	}
	dtype, err := p.MemoryDType()
	if err != nil {
		return nil, err
	}
	launchables := make([]*Launchable, 0, len(order))
	for _, step := range order {
		l, err := step.Build(engine, dtype)
		if err != nil {
			for _, built := range launchables {
				built.Finalize()
			}
			return nil, errors.WithMessagef(err, "plan %q", p.Name)
		}
		launchables = append(launchables, l)
	}
	return launchables, nil
}

// Build the step's primitive on the engine, and allocate its arguments. Inputs are filled with a
// deterministic pattern, outputs are zero.
func (s *Step) Build(engine *engines.Engine, dtype dtypes.DType) (*Launchable, error) {
	var (
		p   *primitives.Primitive
		err error
	)
	switch s.Kind {
	case KindMatMul:
		p, err = kernels.NewMatMul(engine, dtype, s.Dims[0], s.Dims[1], s.Dims[2], s.Bias)
	case KindEltwise:
		algorithm := kernels.EltwiseReLU
		if s.Algorithm == "linear" {
			algorithm = kernels.EltwiseLinear
		}
		p, err = kernels.NewEltwise(engine, algorithm, s.Alpha, s.Beta, dtype, s.Dims...)
	case KindAdd:
		p, err = kernels.NewBinaryAdd(engine, dtype, s.Dims...)
	case KindSum:
		p, err = kernels.NewSum(engine, s.Scales, dtype, s.Dims...)
	case KindReorder:
		var dstDType dtypes.DType
		dstDType, err = parseDType(s.DstDType)
		if err == nil {
			p, err = kernels.NewReorder(engine, dtype, dstDType, s.Dims...)
		}
	default:
		err = errors.Errorf("unknown kind %q", s.Kind)
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "building step %q", s.Name)
	}

	l := &Launchable{Step: s, Primitive: p}
	for ii, spec := range p.Descriptor().Signature {
		m, err := memory.New(engine, spec.Desc)
		if err != nil {
			l.Finalize()
			return nil, errors.WithMessagef(err, "step %q: allocating %s", s.Name, spec.Role)
		}
		l.Args = append(l.Args, primitives.ExecArg{Role: spec.Role, Memory: m})
		if spec.Usage != primitives.UsageInput {
			continue
		}
		seed := ii + 1
		err = kernels.Fill(m, func(idx int) float64 {
			return float64((idx*7+seed)%13)/13 - 0.5
		})
		if err != nil {
			l.Finalize()
			return nil, errors.WithMessagef(err, "step %q: filling %s", s.Name, spec.Role)
		}
	}
	return l, nil
}
