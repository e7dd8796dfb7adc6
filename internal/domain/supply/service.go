package supply

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mediplus/clinic/internal/platform/db"
	"github.com/mediplus/clinic/internal/platform/sanitize"
)

var (
	ErrNotFound         = errors.New("supply not found")
	ErrInvalidSupply    = errors.New("invalid supply")
	ErrNegativeQuantity = errors.New("quantity must be a non-negative number")
	ErrSupplyInUse      = errors.New("supply is linked to prescriptions")
	ErrStore            = errors.New("supply storage failure")
)

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger.With().Str("component", "supply").Logger()}
}

func (s *Service) fail(err error, msg string, id int64) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	case db.IsForeignKeyViolation(err):
		s.logger.Warn().Err(err).Int64("supply_id", id).Msg(msg)
		return ErrSupplyInUse
	}
	s.logger.Error().Err(err).Int64("supply_id", id).Msg(msg)
	return ErrStore
}

// Create validates and stores a new supply. Stock and cost must not be
// negative, and the cost must be a finite number.
func (s *Service) Create(ctx context.Context, sp *Supply) error {
	sp.Name = strings.TrimSpace(sp.Name)
	sp.Category = strings.TrimSpace(sp.Category)
	if sp.Name == "" || sp.Category == "" {
		return fmt.Errorf("%w: name and category are required", ErrInvalidSupply)
	}
	if sp.Stock < 0 || !validAmount(sp.UnitCostUSD) {
		return ErrNegativeQuantity
	}
	if err := sanitize.Fields("name", sp.Name, "category", sp.Category); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, sp); err != nil {
		return s.fail(err, "create supply", 0)
	}
	s.logger.Info().Int64("supply_id", sp.ID).Str("name", sp.Name).Msg("supply created")
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Supply, error) {
	sp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(err, "get supply", id)
	}
	return sp, nil
}

// List returns all supplies ordered by name.
func (s *Service) List(ctx context.Context) ([]*Supply, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.fail(err, "list supplies", 0)
	}
	return items, nil
}

// UpdateStock sets the stock of a supply. A negative value is refused before
// storage is touched.
func (s *Service) UpdateStock(ctx context.Context, id int64, stock int) error {
	if stock < 0 {
		return ErrNegativeQuantity
	}
	if err := s.repo.UpdateStock(ctx, id, stock); err != nil {
		return s.fail(err, "update stock", id)
	}
	s.logger.Info().Int64("supply_id", id).Int("stock", stock).Msg("stock updated")
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.fail(err, "delete supply", id)
	}
	s.logger.Info().Int64("supply_id", id).Msg("supply deleted")
	return nil
}

// validAmount rejects negatives, NaN and infinities. NaN compares false
// against everything, so a plain < 0 test lets it through.
func validAmount(x float64) bool {
	return x >= 0 && !math.IsInf(x, 1)
}
