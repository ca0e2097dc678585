package synth

import (
	"kgen/internal/core/target"

	"k8s.io/apimachinery/pkg/util/sets"
)

// PreventImplicitImagePush is set when the selected target reads images from the
// local daemon, so built images must not be pushed to a registry.
const PreventImplicitImagePush = target.PreventImplicitImagePush

// Capabilities is the set of flags a run exposes to build tooling.
type Capabilities struct {
	flags sets.Set[string]
}

func (c *Capabilities) Set(name string) {
	if c.flags == nil {
		c.flags = sets.New[string]()
	}
	c.flags.Insert(name)
}

func (c Capabilities) Has(name string) bool {
	return c.flags.Has(name)
}

// List returns the flags in lexical order.
func (c Capabilities) List() []string {
	return sets.List(c.flags)
}
