// AngelaMos | 2026
// catalog.go

package catalog

import (
	"context"
	"fmt"
	"slices"

	"github.com/carterperez-dev/templates/resource-directory/internal/core"
)

// Source supplies the raw directory for a session.
type Source interface {
	FetchCatalog(ctx context.Context) ([]Resource, error)
}

// Catalog is an immutable, ordered set of resources with unique ids.
type Catalog struct {
	resources []Resource
	index     map[string]int
}

func New(resources []Resource) (*Catalog, error) {
	c := &Catalog{
		resources: slices.Clone(resources),
		index:     make(map[string]int, len(resources)),
	}

	for i, r := range c.resources {
		if _, exists := c.index[r.ID]; exists {
			return nil, fmt.Errorf(
				"catalog: resource id %q: %w",
				r.ID,
				core.ErrDuplicateKey,
			)
		}
		c.index[r.ID] = i
	}

	return c, nil
}

func Empty() *Catalog {
	return &Catalog{index: map[string]int{}}
}

func (c *Catalog) Len() int {
	return len(c.resources)
}

func (c *Catalog) All() []Resource {
	return slices.Clone(c.resources)
}

func (c *Catalog) Get(id string) (Resource, bool) {
	i, ok := c.index[id]
	if !ok {
		return Resource{}, false
	}
	return c.resources[i], true
}
