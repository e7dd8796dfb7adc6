// Package memdb keeps clinic records in maps. It implements the repository
// interface of every domain package, foreign keys included, so services can
// be exercised in tests without PostgreSQL.
package memdb

import (
	"context"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mediplus/clinic/internal/domain/account"
	"github.com/mediplus/clinic/internal/domain/agenda"
	"github.com/mediplus/clinic/internal/domain/consultation"
	"github.com/mediplus/clinic/internal/domain/prescription"
	"github.com/mediplus/clinic/internal/domain/supply"
	"github.com/mediplus/clinic/internal/platform/auth"
)

// Errors shaped like the ones PostgreSQL reports, so services classify them
// the same way.
var (
	ErrDuplicate  = &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
	ErrForeignKey = &pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"}
)

// Store holds every table. It is not safe for concurrent use.
type Store struct {
	seq              int64
	AccountRows      map[int64]*account.Account
	SupplyRows       map[int64]*supply.Supply
	PrescriptionRows map[int64]*prescription.Prescription
	ItemRows         []*prescription.Item
	ConsultationRows map[int64]*consultation.Consultation
	EntryRows        map[int64]*agenda.Entry
}

func New() *Store {
	return &Store{
		AccountRows:      make(map[int64]*account.Account),
		SupplyRows:       make(map[int64]*supply.Supply),
		PrescriptionRows: make(map[int64]*prescription.Prescription),
		ConsultationRows: make(map[int64]*consultation.Consultation),
		EntryRows:        make(map[int64]*agenda.Entry),
	}
}

func (m *Store) Accounts() account.Repository { return accountRepo{m} }
func (m *Store) Supplies() supply.Repository { return supplyRepo{m} }
func (m *Store) Prescriptions() prescription.Repository { return prescriptionRepo{m} }
func (m *Store) Consultations() consultation.Repository { return consultationRepo{m} }
func (m *Store) Agenda() agenda.Repository { return agendaRepo{m} }

func (m *Store) next() int64 {
	m.seq++
	return m.seq
}

func (m *Store) hasRole(id int64, role auth.Role) bool {
	a, ok := m.AccountRows[id]
	return ok && a.Role == role
}

func (m *Store) referenced(accountID int64) bool {
	for _, p := range m.PrescriptionRows {
		if p.PatientID == accountID || p.DoctorID == accountID {
			return true
		}
	}
	for _, c := range m.ConsultationRows {
		if c.PatientID == accountID || c.DoctorID == accountID {
			return true
		}
	}
	for _, e := range m.EntryRows {
		if e.PatientID == accountID || e.DoctorID == accountID {
			return true
		}
	}
	return false
}

// Tx runs fn directly. Nothing is rolled back.
type Tx struct{}

func (Tx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type accountRepo struct{ *Store }

func (r accountRepo) Create(_ context.Context, a *account.Account) error {
	for _, e := range r.AccountRows {
		if e.Username == a.Username {
			return ErrDuplicate
		}
	}
	a.ID = r.next()
	a.CreatedAt = time.Now()
	c := *a
	c.Profile = nil
	r.AccountRows[a.ID] = &c
	return nil
}

func (r accountRepo) CreatePatient(_ context.Context, id int64, p *account.PatientProfile) error {
	if _, ok := r.AccountRows[id]; !ok {
		return ErrForeignKey
	}
	c := *p
	r.AccountRows[id].Profile = &c
	return nil
}

func (r accountRepo) CreateDoctor(_ context.Context, id int64, d *account.DoctorProfile) error {
	if _, ok := r.AccountRows[id]; !ok {
		return ErrForeignKey
	}
	c := *d
	r.AccountRows[id].Profile = &c
	return nil
}

func (r accountRepo) GetByUsername(ctx context.Context, username string) (*account.Account, error) {
	for _, a := range r.AccountRows {
		if a.Username == username {
			return r.GetByID(ctx, a.ID)
		}
	}
	return nil, account.ErrNotFound
}

func (r accountRepo) GetByID(_ context.Context, id int64) (*account.Account, error) {
	a, ok := r.AccountRows[id]
	if !ok {
		return nil, account.ErrNotFound
	}
	c := *a
	switch p := a.Profile.(type) {
	case *account.PatientProfile:
		cp := *p
		c.Profile = &cp
	case *account.DoctorProfile:
		cp := *p
		c.Profile = &cp
	}
	return &c, nil
}

func (r accountRepo) List(ctx context.Context, role auth.Role) ([]*account.Account, error) {
	var out []*account.Account
	for id, a := range r.AccountRows {
		if role == "" || a.Role == role {
			c, _ := r.GetByID(ctx, id)
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		if out[i].Surname != out[j].Surname {
			return out[i].Surname < out[j].Surname
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r accountRepo) Update(_ context.Context, a *account.Account) error {
	stored, ok := r.AccountRows[a.ID]
	if !ok {
		return account.ErrNotFound
	}
	stored.Name, stored.Surname, stored.BirthDate = a.Name, a.Surname, a.BirthDate
	stored.Phone, stored.Email = a.Phone, a.Email
	return nil
}

func (r accountRepo) UpdatePatient(_ context.Context, id int64, p *account.PatientProfile) error {
	if !r.hasRole(id, auth.RolePatient) {
		return account.ErrNotFound
	}
	c := *p
	r.AccountRows[id].Profile = &c
	return nil
}

func (r accountRepo) UpdateDoctor(_ context.Context, id int64, d *account.DoctorProfile) error {
	if !r.hasRole(id, auth.RoleDoctor) {
		return account.ErrNotFound
	}
	c := *d
	r.AccountRows[id].Profile = &c
	return nil
}

func (r accountRepo) deleteProfile(id int64) (int64, error) {
	a, ok := r.AccountRows[id]
	if !ok || a.Profile == nil {
		return 0, nil
	}
	if r.referenced(id) {
		return 0, ErrForeignKey
	}
	a.Profile = nil
	return 1, nil
}

func (r accountRepo) DeletePatient(_ context.Context, id int64) (int64, error) {
	return r.deleteProfile(id)
}

func (r accountRepo) DeleteDoctor(_ context.Context, id int64) (int64, error) {
	return r.deleteProfile(id)
}

func (r accountRepo) Delete(_ context.Context, id int64) (int64, error) {
	if _, ok := r.AccountRows[id]; !ok {
		return 0, nil
	}
	if r.referenced(id) {
		return 0, ErrForeignKey
	}
	delete(r.AccountRows, id)
	return 1, nil
}

type supplyRepo struct{ *Store }

func (r supplyRepo) Create(_ context.Context, s *supply.Supply) error {
	s.ID = r.next()
	c := *s
	r.SupplyRows[s.ID] = &c
	return nil
}

func (r supplyRepo) GetByID(_ context.Context, id int64) (*supply.Supply, error) {
	s, ok := r.SupplyRows[id]
	if !ok {
		return nil, supply.ErrNotFound
	}
	c := *s
	return &c, nil
}

func (r supplyRepo) List(_ context.Context) ([]*supply.Supply, error) {
	var out []*supply.Supply
	for _, s := range r.SupplyRows {
		c := *s
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r supplyRepo) UpdateStock(_ context.Context, id int64, stock int) error {
	s, ok := r.SupplyRows[id]
	if !ok {
		return supply.ErrNotFound
	}
	s.Stock = stock
	return nil
}

func (r supplyRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.SupplyRows[id]; !ok {
		return supply.ErrNotFound
	}
	for _, it := range r.ItemRows {
		if it.SupplyID == id {
			return ErrForeignKey
		}
	}
	delete(r.SupplyRows, id)
	return nil
}

type prescriptionRepo struct{ *Store }

func (r prescriptionRepo) person(id int64) *prescription.Person {
	a, ok := r.AccountRows[id]
	if !ok {
		return nil
	}
	return &prescription.Person{ID: a.ID, Username: a.Username, Name: a.Name, Surname: a.Surname}
}

func (r prescriptionRepo) Create(_ context.Context, p *prescription.Prescription) error {
	if !r.hasRole(p.PatientID, auth.RolePatient) || !r.hasRole(p.DoctorID, auth.RoleDoctor) {
		return ErrForeignKey
	}
	p.ID = r.next()
	c := *p
	c.Patient, c.Doctor = nil, nil
	r.PrescriptionRows[p.ID] = &c
	return nil
}

func (r prescriptionRepo) GetByID(_ context.Context, id int64) (*prescription.Prescription, error) {
	p, ok := r.PrescriptionRows[id]
	if !ok {
		return nil, prescription.ErrNotFound
	}
	c := *p
	c.Patient, c.Doctor = r.person(p.PatientID), r.person(p.DoctorID)
	return &c, nil
}

func (r prescriptionRepo) List(ctx context.Context) ([]*prescription.Prescription, error) {
	ids := make([]int64, 0, len(r.PrescriptionRows))
	for id := range r.PrescriptionRows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*prescription.Prescription, 0, len(ids))
	for _, id := range ids {
		p, _ := r.GetByID(ctx, id)
		out = append(out, p)
	}
	return out, nil
}

func (r prescriptionRepo) ListByPatient(ctx context.Context, username string) ([]*prescription.Prescription, error) {
	all, _ := r.List(ctx)
	var out []*prescription.Prescription
	for _, p := range all {
		if p.Patient != nil && p.Patient.Username == username {
			out = append(out, p)
		}
	}
	return out, nil
}

// Delete cascades to linked supplies and detaches consultations.
func (r prescriptionRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.PrescriptionRows[id]; !ok {
		return prescription.ErrNotFound
	}
	kept := r.ItemRows[:0]
	for _, it := range r.ItemRows {
		if it.PrescriptionID != id {
			kept = append(kept, it)
		}
	}
	r.ItemRows = kept
	for _, c := range r.ConsultationRows {
		if c.PrescriptionID != nil && *c.PrescriptionID == id {
			c.PrescriptionID = nil
		}
	}
	delete(r.PrescriptionRows, id)
	return nil
}

func (r prescriptionRepo) AddItem(_ context.Context, it *prescription.Item) error {
	_, rx := r.PrescriptionRows[it.PrescriptionID]
	_, sp := r.SupplyRows[it.SupplyID]
	if !rx || !sp {
		return ErrForeignKey
	}
	it.ID = r.next()
	c := *it
	r.ItemRows = append(r.ItemRows, &c)
	return nil
}

func (r prescriptionRepo) Items(_ context.Context, prescriptionID int64) ([]*prescription.Item, error) {
	var out []*prescription.Item
	for _, it := range r.ItemRows {
		if it.PrescriptionID != prescriptionID {
			continue
		}
		c := *it
		if s, ok := r.SupplyRows[it.SupplyID]; ok {
			c.SupplyName, c.SupplyCategory, c.UnitCostUSD = s.Name, s.Category, s.UnitCostUSD
		}
		out = append(out, &c)
	}
	return out, nil
}

type consultationRepo struct{ *Store }

func (r consultationRepo) person(id int64) *consultation.Person {
	a, ok := r.AccountRows[id]
	if !ok {
		return nil
	}
	return &consultation.Person{ID: a.ID, Username: a.Username, Name: a.Name, Surname: a.Surname}
}

func (r consultationRepo) Create(_ context.Context, c *consultation.Consultation) error {
	if !r.hasRole(c.PatientID, auth.RolePatient) || !r.hasRole(c.DoctorID, auth.RoleDoctor) {
		return ErrForeignKey
	}
	if c.PrescriptionID != nil {
		if _, ok := r.PrescriptionRows[*c.PrescriptionID]; !ok {
			return ErrForeignKey
		}
	}
	c.ID = r.next()
	cp := *c
	cp.Patient, cp.Doctor = nil, nil
	r.ConsultationRows[c.ID] = &cp
	return nil
}

func (r consultationRepo) GetByID(_ context.Context, id int64) (*consultation.Consultation, error) {
	c, ok := r.ConsultationRows[id]
	if !ok {
		return nil, consultation.ErrNotFound
	}
	cp := *c
	cp.Patient, cp.Doctor = r.person(c.PatientID), r.person(c.DoctorID)
	return &cp, nil
}

func (r consultationRepo) List(ctx context.Context) ([]*consultation.Consultation, error) {
	out := make([]*consultation.Consultation, 0, len(r.ConsultationRows))
	for id := range r.ConsultationRows {
		c, _ := r.GetByID(ctx, id)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r consultationRepo) ListByPatient(ctx context.Context, username string) ([]*consultation.Consultation, error) {
	all, _ := r.List(ctx)
	var out []*consultation.Consultation
	for _, c := range all {
		if c.Patient != nil && c.Patient.Username == username {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r consultationRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.ConsultationRows[id]; !ok {
		return consultation.ErrNotFound
	}
	delete(r.ConsultationRows, id)
	return nil
}

type agendaRepo struct{ *Store }

func (r agendaRepo) person(id int64) *agenda.Person {
	a, ok := r.AccountRows[id]
	if !ok {
		return nil
	}
	return &agenda.Person{ID: a.ID, Username: a.Username, Name: a.Name, Surname: a.Surname}
}

func (r agendaRepo) Create(_ context.Context, e *agenda.Entry) error {
	if !r.hasRole(e.PatientID, auth.RolePatient) || !r.hasRole(e.DoctorID, auth.RoleDoctor) {
		return ErrForeignKey
	}
	e.ID = r.next()
	c := *e
	c.Patient, c.Doctor = nil, nil
	r.EntryRows[e.ID] = &c
	return nil
}

func (r agendaRepo) GetByID(_ context.Context, id int64) (*agenda.Entry, error) {
	e, ok := r.EntryRows[id]
	if !ok {
		return nil, agenda.ErrNotFound
	}
	c := *e
	c.Patient, c.Doctor = r.person(e.PatientID), r.person(e.DoctorID)
	return &c, nil
}

func (r agendaRepo) filter(keep func(e *agenda.Entry) bool) []*agenda.Entry {
	var out []*agenda.Entry
	for id := range r.EntryRows {
		e, _ := r.GetByID(context.Background(), id)
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledFor.Equal(out[j].ScheduledFor) {
			return out[i].ScheduledFor.Before(out[j].ScheduledFor)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r agendaRepo) List(_ context.Context) ([]*agenda.Entry, error) {
	return r.filter(func(*agenda.Entry) bool { return true }), nil
}

func (r agendaRepo) ListByPatient(_ context.Context, username string) ([]*agenda.Entry, error) {
	return r.filter(func(e *agenda.Entry) bool { return e.Patient != nil && e.Patient.Username == username }), nil
}

func (r agendaRepo) ListByDoctor(_ context.Context, doctorID int64) ([]*agenda.Entry, error) {
	return r.filter(func(e *agenda.Entry) bool { return e.DoctorID == doctorID }), nil
}

func (r agendaRepo) UpdateStatus(_ context.Context, id int64, status agenda.Status) error {
	e, ok := r.EntryRows[id]
	if !ok {
		return agenda.ErrNotFound
	}
	e.Status = status
	return nil
}

func (r agendaRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.EntryRows[id]; !ok {
		return agenda.ErrNotFound
	}
	delete(r.EntryRows, id)
	return nil
}
