package benefits

import (
	"context"
	"fmt"
	"sort"
)

// StaticCatalog is an immutable in-memory Catalog.
type StaticCatalog struct {
	byID  map[BenefitID]Benefit
	order []BenefitID
}

// NewStaticCatalog indexes benefits by ID. Duplicate or empty IDs are rejected.
func NewStaticCatalog(list []Benefit) (*StaticCatalog, error) {
	c := &StaticCatalog{byID: make(map[BenefitID]Benefit, len(list))}
	for _, b := range list {
		if b.ID == "" {
			return nil, fmt.Errorf("benefit %q: empty id", b.Name)
		}
		if _, dup := c.byID[b.ID]; dup {
			return nil, fmt.Errorf("benefit %s: duplicate id", b.ID)
		}
		c.byID[b.ID] = b
		c.order = append(c.order, b.ID)
	}
	sort.Slice(c.order, func(i, j int) bool { return c.order[i] < c.order[j] })
	return c, nil
}

func (c *StaticCatalog) Benefit(_ context.Context, id BenefitID) (Benefit, error) {
	b, ok := c.byID[id]
	if !ok {
		return Benefit{}, fmt.Errorf("%w: %s", ErrBenefitNotFound, id)
	}
	return b, nil
}

func (c *StaticCatalog) Benefits(_ context.Context) ([]Benefit, error) {
	out := make([]Benefit, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out, nil
}
