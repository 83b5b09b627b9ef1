package transform

import (
	"errors"
	"fmt"

	"github.com/treegrep/treegrep/pkg/match"
	"github.com/treegrep/treegrep/pkg/toposort"
)

// Pipeline holds a rule's named transforms in dependency order. A transform
// may read the output of another by naming it as source; the order is fixed
// once by topological sort when the pipeline is sealed.
type Pipeline struct {
	transforms map[string]Trans
	order      []string
}

// NewPipeline returns an empty pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{transforms: map[string]Trans{}}
}

// Add registers a named transform. Names must be unique within a rule.
func (p *Pipeline) Add(name string, t Trans) error {
	if _, ok := p.transforms[name]; ok {
		return fmt.Errorf("%w: %q", ErrAlreadyDefined, name)
	}

	p.transforms[name] = t
	p.order = nil

	return nil
}

// Len reports how many transforms are registered.
func (p *Pipeline) Len() int {
	return len(p.transforms)
}

// Names returns transform names in application order, sealing the pipeline
// if needed.
func (p *Pipeline) Names() ([]string, error) {
	if err := p.seal(); err != nil {
		return nil, err
	}

	return p.order, nil
}

// seal computes the application order. Dependencies on captured variables
// (not produced by any transform) are free; dependencies between transforms
// must form a DAG.
func (p *Pipeline) seal() error {
	if p.order != nil || len(p.transforms) == 0 {
		return nil
	}

	graph := toposort.NewGraph()
	for name, t := range p.transforms {
		graph.AddNode(name)
		// Sources naming captured variables are unknown to the graph and
		// sort as already satisfied.
		graph.AddEdge(name, t.Source())
	}

	order, err := graph.Sort()
	if err != nil {
		if errors.Is(err, toposort.ErrCycle) {
			return fmt.Errorf("%w: %v", ErrCyclic, err)
		}

		return err
	}

	p.order = order

	return nil
}

// Apply runs every transform in order, recording each result in env.
func (p *Pipeline) Apply(env *match.MetaVarEnv) error {
	if err := p.seal(); err != nil {
		return err
	}

	for _, name := range p.order {
		env.InsertTransformation(name, []byte(p.transforms[name].Apply(env)))
	}

	return nil
}

// Validate seals the pipeline, surfacing cyclic dependencies early.
func (p *Pipeline) Validate() error {
	return p.seal()
}
