package consultation

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
	ErrNotFound            = errors.New("consultation not found")
	ErrInvalidConsultation = errors.New("invalid consultation")
	ErrNegativeValue       = errors.New("value must be a non-negative number")
	ErrUnknownReference    = errors.New("patient, doctor or prescription does not exist")
	ErrStore               = errors.New("consultation storage failure")
)

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger.With().Str("component", "consultation").Logger()}
}

func (s *Service) fail(err error, msg string, id int64) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	case db.IsForeignKeyViolation(err):
		s.logger.Warn().Err(err).Int64("consultation_id", id).Msg(msg)
		return ErrUnknownReference
	}
	s.logger.Error().Err(err).Int64("consultation_id", id).Msg(msg)
	return ErrStore
}

func (s *Service) Create(ctx context.Context, c *Consultation) error {
	c.Comments = strings.TrimSpace(c.Comments)
	switch {
	case c.PatientID <= 0 || c.DoctorID <= 0:
		return fmt.Errorf("%w: patient and doctor are required", ErrInvalidConsultation)
	case c.Date.IsZero():
		return fmt.Errorf("%w: date is required", ErrInvalidConsultation)
	case c.PrescriptionID != nil && *c.PrescriptionID <= 0:
		return fmt.Errorf("%w: prescription id must be positive", ErrInvalidConsultation)
	case !(c.Value >= 0) || math.IsInf(c.Value, 1):
		return ErrNegativeValue
	}
	if err := sanitize.Check("comments", c.Comments); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		c.ID = 0
		return s.fail(err, "create consultation", 0)
	}
	s.logger.Info().Int64("consultation_id", c.ID).Int64("patient_id", c.PatientID).Msg("consultation created")
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Consultation, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(err, "get consultation", id)
	}
	return c, nil
}

// List returns every consultation, newest first.
func (s *Service) List(ctx context.Context) ([]*Consultation, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.fail(err, "list consultations", 0)
	}
	return items, nil
}

func (s *Service) ListByPatient(ctx context.Context, username string) ([]*Consultation, error) {
	items, err := s.repo.ListByPatient(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, s.fail(err, "list consultations by patient", 0)
	}
	return items, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.fail(err, "delete consultation", id)
	}
	s.logger.Info().Int64("consultation_id", id).Msg("consultation deleted")
	return nil
}
