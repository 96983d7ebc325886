// Package plan loads launch plans: a YAML description of primitives to launch through the interop
// bridge and the ordering between them.
//
// Example:
//
//	name: mlp
//	engine: "cq:parallelism=4"
//	dtype: float32
//	repeat: 10
//	steps:
//	  - name: dense
//	    kind: matmul
//	    dims: [64, 128, 32]
//	    bias: true
//	  - name: act
//	    kind: eltwise
//	    algorithm: relu
//	    dims: [64, 32]
//	    after: [dense]
//
// Steps only describe launch ordering (through "after"): each step owns its own memory.
package plan

import (
	"os"
	"slices"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/interop/pkg/support/sets"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Supported step kinds.
const (
	KindMatMul  = "matmul"
	KindEltwise = "eltwise"
	KindAdd     = "add"
	KindSum     = "sum"
	KindReorder = "reorder"
)

// Kinds lists the supported step kinds.
var Kinds = sets.MakeWith(KindMatMul, KindEltwise, KindAdd, KindSum, KindReorder)

// Plan of launches.
type Plan struct {
	Name string `yaml:"name"`

	// Engine configuration, in the format of GOMLX_ENGINE. Empty means engines.New() defaults.
	Engine string `yaml:"engine,omitempty"`

	// DType of the steps' memory. Defaults to float32.
	DType string `yaml:"dtype,omitempty"`

	// Repeat the whole plan this many times. Defaults to 1.
	Repeat int `yaml:"repeat,omitempty"`

	Steps []*Step `yaml:"steps"`
}

// Step is one primitive launch.
type Step struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`

	// Dims are [m, k, n] for matmul, and the memory dimensions for the other kinds.
	Dims []int `yaml:"dims"`

	// Bias adds a bias to a matmul.
	Bias bool `yaml:"bias,omitempty"`

	// Algorithm (relu or linear), Alpha and Beta of an eltwise step.
	Algorithm string  `yaml:"algorithm,omitempty"`
	Alpha     float64 `yaml:"alpha,omitempty"`
	Beta      float64 `yaml:"beta,omitempty"`

	// Scales of a sum step, one per source.
	Scales []float64 `yaml:"scales,omitempty"`

	// DstDType of a reorder step.
	DstDType string `yaml:"dst_dtype,omitempty"`

	// After lists the steps (of the same repetition) that must complete before this one starts.
	After []string `yaml:"after,omitempty"`
}

// Load reads and validates a plan from a YAML file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading plan %q", path)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, errors.WithMessagef(err, "plan %q", path)
	}
	return p, nil
}

// Parse and validate a plan in YAML.
func Parse(data []byte) (*Plan, error) {
	p := &Plan{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, errors.Wrap(err, "parsing plan")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Marshal the plan back to YAML.
func (p *Plan) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(p)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling plan")
	}
	return data, nil
}

// Repetitions returns Repeat, or 1 if not set.
func (p *Plan) Repetitions() int {
	if p.Repeat <= 0 {
		return 1
	}
	return p.Repeat
}

// MemoryDType returns the parsed DType.
func (p *Plan) MemoryDType() (dtypes.DType, error) {
	return parseDType(p.DType)
}

func parseDType(name string) (dtypes.DType, error) {
	if name == "" {
		return dtypes.Float32, nil
	}
	dtype, err := dtypes.DTypeString(name)
	if err != nil {
		return dtypes.InvalidDType, errors.Wrapf(err, "invalid dtype %q", name)
	}
	return dtype, nil
}

// Step returns the step with the given name, or nil.
func (p *Plan) Step(name string) *Step {
	idx := slices.IndexFunc(p.Steps, func(s *Step) bool { return s.Name == name })
	if idx < 0 {
		return nil
	}
	return p.Steps[idx]
}

// Validate checks the steps are well-formed and that their "after" references form a DAG.
func (p *Plan) Validate() error {
	if p.Repeat < 0 {
		return errors.Errorf("plan %q: negative repeat %d", p.Name, p.Repeat)
	}
	if _, err := p.MemoryDType(); err != nil {
		return errors.WithMessagef(err, "plan %q", p.Name)
	}
	if len(p.Steps) == 0 {
		return errors.Errorf("plan %q has no steps", p.Name)
	}
	names := sets.Make[string](len(p.Steps))
	for ii, step := range p.Steps {
		if step == nil || step.Name == "" {
			return errors.Errorf("plan %q: step #%d has no name", p.Name, ii)
		}
		if names.Has(step.Name) {
			return errors.Errorf("plan %q: step %q defined more than once", p.Name, step.Name)
		}
		names.Insert(step.Name)
		if err := step.validate(); err != nil {
			return errors.WithMessagef(err, "plan %q: step %q", p.Name, step.Name)
		}
	}
	for _, step := range p.Steps {
		for _, dep := range step.After {
			if !names.Has(dep) {
				return errors.Errorf("plan %q: step %q runs after unknown step %q", p.Name, step.Name, dep)
			}
		}
	}
	if _, err := p.Order(); err != nil {
		return err
	}
	return nil
}

func (s *Step) validate() error {
	if !Kinds.Has(s.Kind) {
		return errors.Errorf("unknown kind %q, valid kinds are %q", s.Kind, sets.Sorted(Kinds))
	}
	if len(s.Dims) == 0 {
		return errors.New("missing dims")
	}
	if slices.ContainsFunc(s.Dims, func(d int) bool { return d <= 0 }) {
		return errors.Errorf("dims %v must be positive", s.Dims)
	}
	switch s.Kind {
	case KindMatMul:
		if len(s.Dims) != 3 {
			return errors.Errorf("matmul dims must be [m, k, n], got %v", s.Dims)
		}
	case KindEltwise:
		if s.Algorithm != "relu" && s.Algorithm != "linear" {
			return errors.Errorf("eltwise algorithm must be relu or linear, got %q", s.Algorithm)
		}
	case KindSum:
		if len(s.Scales) == 0 {
			return errors.New("sum requires scales")
		}
	case KindReorder:
		if _, err := parseDType(s.DstDType); err != nil {
			return err
		}
	}
	if slices.Contains(s.After, s.Name) {
		return errors.New("step runs after itself")
	}
	return nil
}

// Order returns the steps in an order where every step comes after the steps it depends on. Ties
// are broken by the order of declaration.
func (p *Plan) Order() ([]*Step, error) {
	pending := make(map[string]int, len(p.Steps))
	dependents := make(map[string][]*Step, len(p.Steps))
	for _, step := range p.Steps {
		after := sets.MakeWith(step.After...)
		pending[step.Name] = len(after)
		for dep := range after {
			dependents[dep] = append(dependents[dep], step)
		}
	}
	order := make([]*Step, 0, len(p.Steps))
	done := sets.Make[string](len(p.Steps))
	for len(order) < len(p.Steps) {
		idx := slices.IndexFunc(p.Steps, func(step *Step) bool {
			return !done.Has(step.Name) && pending[step.Name] == 0
		})
		if idx < 0 {
			var cycle []string
			for _, step := range p.Steps {
				if !done.Has(step.Name) {
					cycle = append(cycle, step.Name)
				}
			}
			return nil, errors.Errorf("plan %q: steps %q have cyclic dependencies", p.Name, cycle)
		}
		step := p.Steps[idx]
		done.Insert(step.Name)
		order = append(order, step)
		for _, dependent := range dependents[step.Name] {
			pending[dependent.Name]--
		}
	}
	return order, nil
}
