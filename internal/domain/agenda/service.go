package agenda

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mediplus/clinic/internal/platform/db"
)

var (
	ErrNotFound         = errors.New("schedule entry not found")
	ErrInvalidEntry     = errors.New("invalid schedule entry")
	ErrInvalidStatus    = errors.New("status must be pending, completed or cancelled")
	ErrUnknownReference = errors.New("patient or doctor does not exist")
	ErrStore            = errors.New("agenda storage failure")
)

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger.With().Str("component", "agenda").Logger()}
}

func (s *Service) fail(err error, msg string, id int64) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	case db.IsForeignKeyViolation(err):
		s.logger.Warn().Err(err).Int64("entry_id", id).Msg(msg)
		return ErrUnknownReference
	}
	s.logger.Error().Err(err).Int64("entry_id", id).Msg(msg)
	return ErrStore
}

// Schedule stores a new entry. An empty status means pending.
func (s *Service) Schedule(ctx context.Context, e *Entry) error {
	if e.PatientID <= 0 || e.DoctorID <= 0 {
		return fmt.Errorf("%w: patient and doctor are required", ErrInvalidEntry)
	}
	if e.ScheduledFor.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidEntry)
	}
	if e.Status == "" {
		e.Status = StatusPending
	}
	if !e.Status.Valid() {
		return ErrInvalidStatus
	}
	if err := s.repo.Create(ctx, e); err != nil {
		e.ID = 0
		return s.fail(err, "schedule", 0)
	}
	s.logger.Info().Int64("entry_id", e.ID).Int64("doctor_id", e.DoctorID).Msg("appointment scheduled")
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Entry, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(err, "get schedule entry", id)
	}
	return e, nil
}

func (s *Service) List(ctx context.Context) ([]*Entry, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.fail(err, "list agenda", 0)
	}
	return items, nil
}

func (s *Service) ListByPatient(ctx context.Context, username string) ([]*Entry, error) {
	items, err := s.repo.ListByPatient(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, s.fail(err, "list agenda by patient", 0)
	}
	return items, nil
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID int64) ([]*Entry, error) {
	items, err := s.repo.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, s.fail(err, "list agenda by doctor", 0)
	}
	return items, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return s.fail(err, "update agenda status", id)
	}
	s.logger.Info().Int64("entry_id", id).Str("status", string(status)).Msg("status updated")
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.fail(err, "delete schedule entry", id)
	}
	s.logger.Info().Int64("entry_id", id).Msg("schedule entry deleted")
	return nil
}
