package session

import (
	"context"

	"github.com/mediplus/clinic/internal/domain/agenda"
	"github.com/mediplus/clinic/internal/domain/consultation"
	"github.com/mediplus/clinic/internal/domain/prescription"
)

// Patient is the session of a logged-in patient. Every read is limited to
// the patient's own records.
type Patient struct {
	base
}

func (*Patient) State() State { return PatientSession }

func (p *Patient) Menu() []PatientOp { return PatientMenu() }

func (p *Patient) Prescriptions(ctx context.Context) ([]*prescription.Prescription, error) {
	if err := p.check(); err != nil {
		return nil, err
	}
	return p.deps.Prescriptions.ListByPatient(ctx, p.identity.Username)
}

func (p *Patient) Consultations(ctx context.Context) ([]*consultation.Consultation, error) {
	if err := p.check(); err != nil {
		return nil, err
	}
	return p.deps.Consultations.ListByPatient(ctx, p.identity.Username)
}

func (p *Patient) Appointments(ctx context.Context) ([]*agenda.Entry, error) {
	if err := p.check(); err != nil {
		return nil, err
	}
	return p.deps.Agenda.ListByPatient(ctx, p.identity.Username)
}
