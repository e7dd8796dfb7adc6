package session

import (
	"context"

	"github.com/mediplus/clinic/internal/domain/supply"
)

// inventory is the supply management shared by doctors and administrators.
type inventory struct {
	s *base
}

func (i inventory) Supplies(ctx context.Context) ([]*supply.Supply, error) {
	if err := i.s.check(); err != nil {
		return nil, err
	}
	return i.s.deps.Supplies.List(ctx)
}

func (i inventory) CreateSupply(ctx context.Context, sp *supply.Supply) error {
	if err := i.s.check(); err != nil {
		return err
	}
	return i.s.deps.Supplies.Create(ctx, sp)
}

func (i inventory) UpdateStock(ctx context.Context, id int64, stock int) error {
	if err := i.s.check(); err != nil {
		return err
	}
	return i.s.deps.Supplies.UpdateStock(ctx, id, stock)
}

func (i inventory) DeleteSupply(ctx context.Context, id int64) error {
	if err := i.s.check(); err != nil {
		return err
	}
	return i.s.deps.Supplies.Delete(ctx, id)
}
