package session

import (
	"context"
	"strings"
	"time"

	"github.com/mediplus/clinic/internal/domain/account"
	"github.com/mediplus/clinic/internal/domain/agenda"
	"github.com/mediplus/clinic/internal/domain/consultation"
	"github.com/mediplus/clinic/internal/domain/prescription"
	"github.com/mediplus/clinic/internal/platform/auth"
)

// Doctor is the session of a logged-in doctor. Records the doctor creates
// are always attributed to the doctor's own account.
type Doctor struct {
	base
	inventory
}

func newDoctor(b base) *Doctor {
	d := &Doctor{base: b}
	d.inventory = inventory{s: &d.base}
	return d
}

func (*Doctor) State() State { return DoctorSession }

func (d *Doctor) Menu() []DoctorOp { return DoctorMenu() }

func (d *Doctor) Patients(ctx context.Context) ([]*account.Account, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	return d.deps.Accounts.ListPatients(ctx)
}

// Patient looks up a patient account by username.
func (d *Doctor) Patient(ctx context.Context, username string) (*account.Account, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	return resolvePatient(ctx, d.deps.Accounts, username)
}

func resolvePatient(ctx context.Context, accounts Accounts, username string) (*account.Account, error) {
	a, err := accounts.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if a.Role != auth.RolePatient {
		return nil, ErrNotAPatient
	}
	return a, nil
}

// Prescribe creates a prescription for the patient with username.
func (d *Doctor) Prescribe(ctx context.Context, patientUsername, description, medications string, costCLP float64) (*prescription.Prescription, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	patient, err := resolvePatient(ctx, d.deps.Accounts, patientUsername)
	if err != nil {
		return nil, err
	}
	p := &prescription.Prescription{
		PatientID:   patient.ID,
		DoctorID:    d.identity.ID,
		Description: description,
		Medications: medications,
		CostCLP:     costCLP,
	}
	if err := d.deps.Prescriptions.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (d *Doctor) Prescription(ctx context.Context, id int64) (*prescription.Prescription, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	return d.deps.Prescriptions.Get(ctx, id)
}

func (d *Doctor) Prescriptions(ctx context.Context) ([]*prescription.Prescription, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	return d.deps.Prescriptions.List(ctx)
}

func (d *Doctor) PatientPrescriptions(ctx context.Context, username string) ([]*prescription.Prescription, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	return d.deps.Prescriptions.ListByPatient(ctx, username)
}

func (d *Doctor) DeletePrescription(ctx context.Context, id int64) error {
	if err := d.check(); err != nil {
		return err
	}
	return d.deps.Prescriptions.Delete(ctx, id)
}

// LinkSupply attaches qty units of a supply to a prescription. Stock is not
// changed.
func (d *Doctor) LinkSupply(ctx context.Context, prescriptionID, supplyID int64, qty int) (*prescription.Item, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	return d.deps.Prescriptions.LinkSupplyByID(ctx, prescriptionID, supplyID, qty)
}

func (d *Doctor) PrescriptionSupplies(ctx context.Context, prescriptionID int64) ([]*prescription.Item, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	return d.deps.Prescriptions.Supplies(ctx, prescriptionID)
}

// ConsultationInput is what a doctor records after seeing a patient.
type ConsultationInput struct {
	PatientUsername string
	Date            time.Time
	Comments        string
	Value           float64
	PrescriptionID  *int64
}

func (d *Doctor) RecordConsultation(ctx context.Context, in ConsultationInput) (*consultation.Consultation, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	patient, err := resolvePatient(ctx, d.deps.Accounts, in.PatientUsername)
	if err != nil {
		return nil, err
	}
	c := &consultation.Consultation{
		PatientID:      patient.ID,
		DoctorID:       d.identity.ID,
		PrescriptionID: in.PrescriptionID,
		Date:           in.Date,
		Comments:       in.Comments,
		Value:          in.Value,
	}
	if err := d.deps.Consultations.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (d *Doctor) Consultations(ctx context.Context) ([]*consultation.Consultation, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	return d.deps.Consultations.List(ctx)
}

// Schedule books a pending appointment with this doctor.
func (d *Doctor) Schedule(ctx context.Context, patientUsername string, on time.Time) (*agenda.Entry, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	patient, err := resolvePatient(ctx, d.deps.Accounts, patientUsername)
	if err != nil {
		return nil, err
	}
	e := &agenda.Entry{PatientID: patient.ID, DoctorID: d.identity.ID, ScheduledFor: on, Status: agenda.StatusPending}
	if err := d.deps.Agenda.Schedule(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (d *Doctor) UpdateAppointmentStatus(ctx context.Context, id int64, status agenda.Status) error {
	if err := d.check(); err != nil {
		return err
	}
	return d.deps.Agenda.UpdateStatus(ctx, id, status)
}

// Agenda lists every appointment of the clinic.
func (d *Doctor) Agenda(ctx context.Context) ([]*agenda.Entry, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	return d.deps.Agenda.List(ctx)
}

func (d *Doctor) OwnAgenda(ctx context.Context) ([]*agenda.Entry, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	return d.deps.Agenda.ListByDoctor(ctx, d.identity.ID)
}
