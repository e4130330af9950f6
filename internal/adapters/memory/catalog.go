package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/samirrijal/tourguide/internal/core/domain"
	"github.com/samirrijal/tourguide/internal/core/ports"
)

// Catalog loads attractions from a source once and serves that snapshot for
// the rest of the process. It implements ports.AttractionCatalog and
// ports.AttractionFinder.
type Catalog struct {
	source ports.AttractionCatalog

	once        sync.Once
	attractions []domain.Attraction
	err         error
}

// NewCatalog wraps source. Nothing is loaded until Load or All is called.
func NewCatalog(source ports.AttractionCatalog) *Catalog {
	return &Catalog{source: source}
}

// Load fetches the snapshot. A failed load is not retried.
func (c *Catalog) Load(ctx context.Context) error {
	c.once.Do(func() {
		attractions, err := c.source.All(ctx)
		if err != nil {
			c.err = fmt.Errorf("load attraction catalog: %w", err)
			return
		}
		c.attractions = attractions
	})
	return c.err
}

// All returns the snapshot. Callers must not modify the slice.
func (c *Catalog) All(ctx context.Context) ([]domain.Attraction, error) {
	if err := c.Load(ctx); err != nil {
		return nil, err
	}
	return c.attractions, nil
}

// FindWithin returns the attractions inside b.
func (c *Catalog) FindWithin(ctx context.Context, b domain.Bounds) ([]domain.Attraction, error) {
	all, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Attraction
	for _, a := range all {
		if b.Contains(a.Location) {
			out = append(out, a)
		}
	}
	return out, nil
}
