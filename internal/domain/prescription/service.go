package prescription

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
	ErrNotFound            = errors.New("prescription not found")
	ErrInvalidPrescription = errors.New("invalid prescription")
	ErrNegativeCost        = errors.New("cost must be a non-negative number")
	ErrNotPersisted        = errors.New("prescription has not been saved yet")
	ErrInvalidQuantity     = errors.New("quantity must be greater than zero")
	ErrUnknownReference    = errors.New("patient, doctor or supply does not exist")
	ErrStore               = errors.New("prescription storage failure")
)

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger.With().Str("component", "prescription").Logger()}
}

func (s *Service) fail(err error, msg string, id int64) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	case db.IsForeignKeyViolation(err):
		s.logger.Warn().Err(err).Int64("prescription_id", id).Msg(msg)
		return ErrUnknownReference
	}
	s.logger.Error().Err(err).Int64("prescription_id", id).Msg(msg)
	return ErrStore
}

func (s *Service) Create(ctx context.Context, p *Prescription) error {
	p.Description = strings.TrimSpace(p.Description)
	p.Medications = strings.TrimSpace(p.Medications)
	if p.PatientID <= 0 || p.DoctorID <= 0 {
		return fmt.Errorf("%w: patient and doctor are required", ErrInvalidPrescription)
	}
	if p.Description == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidPrescription)
	}
	if !(p.CostCLP >= 0) || math.IsInf(p.CostCLP, 1) {
		return ErrNegativeCost
	}
	if err := sanitize.Fields("description", p.Description, "medications", p.Medications); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		p.ID = 0
		return s.fail(err, "create prescription", 0)
	}
	s.logger.Info().Int64("prescription_id", p.ID).Int64("patient_id", p.PatientID).Int64("doctor_id", p.DoctorID).Msg("prescription created")
	return nil
}

// Get returns a prescription with its patient and doctor attached.
func (s *Service) Get(ctx context.Context, id int64) (*Prescription, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(err, "get prescription", id)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]*Prescription, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.fail(err, "list prescriptions", 0)
	}
	return items, nil
}

// ListByPatient returns the prescriptions of the patient with username,
// ordered by id.
func (s *Service) ListByPatient(ctx context.Context, username string) ([]*Prescription, error) {
	items, err := s.repo.ListByPatient(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, s.fail(err, "list prescriptions by patient", 0)
	}
	return items, nil
}

// Delete removes a prescription. Its supply links go with it and
// consultations that pointed at it keep existing without one.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.fail(err, "delete prescription", id)
	}
	s.logger.Info().Int64("prescription_id", id).Msg("prescription deleted")
	return nil
}

// LinkSupply records that qty units of a supply belong to p. The supply's
// stock is left as it is. p must have been stored first.
func (s *Service) LinkSupply(ctx context.Context, p *Prescription, supplyID int64, qty int) (*Item, error) {
	if !p.Persisted() {
		return nil, ErrNotPersisted
	}
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	if supplyID <= 0 {
		return nil, ErrUnknownReference
	}

	it := &Item{PrescriptionID: p.ID, SupplyID: supplyID, Quantity: qty}
	if err := s.repo.AddItem(ctx, it); err != nil {
		return nil, s.fail(err, "link supply", p.ID)
	}
	s.logger.Info().Int64("prescription_id", p.ID).Int64("supply_id", supplyID).Int("quantity", qty).Msg("supply linked")
	return it, nil
}

// LinkSupplyByID loads the prescription and links the supply to it.
func (s *Service) LinkSupplyByID(ctx context.Context, prescriptionID, supplyID int64, qty int) (*Item, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	p, err := s.Get(ctx, prescriptionID)
	if err != nil {
		return nil, err
	}
	return s.LinkSupply(ctx, p, supplyID, qty)
}

// Supplies lists the supplies linked to a prescription.
func (s *Service) Supplies(ctx context.Context, prescriptionID int64) ([]*Item, error) {
	if _, err := s.Get(ctx, prescriptionID); err != nil {
		return nil, err
	}
	items, err := s.repo.Items(ctx, prescriptionID)
	if err != nil {
		return nil, s.fail(err, "list prescription supplies", prescriptionID)
	}
	return items, nil
}
