package session

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mediplus/clinic/internal/domain/account"
	"github.com/mediplus/clinic/internal/domain/agenda"
	"github.com/mediplus/clinic/internal/domain/consultation"
	"github.com/mediplus/clinic/internal/domain/prescription"
	"github.com/mediplus/clinic/internal/domain/supply"
	"github.com/mediplus/clinic/internal/platform/auth"
	"github.com/mediplus/clinic/internal/testutil/memdb"
)

type fixture struct {
	store    *memdb.Store
	accounts *account.Service
	router   *Router
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zerolog.Nop()
	store := memdb.New()

	hasher, err := auth.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	accounts := account.NewService(store.Accounts(), memdb.Tx{}, hasher, log)
	deps := Deps{
		Auth:          auth.NewAuthenticator(accounts, hasher, auth.NewThrottle(600, 100), log),
		Accounts:      accounts,
		Supplies:      supply.NewService(store.Supplies(), log),
		Prescriptions: prescription.NewService(store.Prescriptions(), log),
		Consultations: consultation.NewService(store.Consultations(), log),
		Agenda:        agenda.NewService(store.Agenda(), log),
	}
	return &fixture{store: store, accounts: accounts, router: NewRouter(deps, log)}
}

func (f *fixture) addAccount(t *testing.T, username, password string, role auth.Role) *account.Account {
	t.Helper()
	a, err := f.accounts.CreateAccount(context.Background(), account.NewAccount{
		Username:  username,
		Password:  password,
		Name:      "Test",
		Surname:   username,
		BirthDate: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Role:      role,
	}, account.CreateOptions{AllowAdministrator: true})
	require.NoError(t, err)
	return a
}

func (f *fixture) loginDoctor(t *testing.T, username, password string) *Doctor {
	t.Helper()
	s, err := f.router.Login(context.Background(), username, password)
	require.NoError(t, err)
	d, ok := s.(*Doctor)
	require.True(t, ok, "expected *Doctor, got %T", s)
	return d
}

func TestRouter_DoctorLogin(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, "dr_lopez", "pass123", auth.RoleDoctor)

	assert.Equal(t, LoggedOut, f.router.State())
	d := f.loginDoctor(t, "dr_lopez", "pass123")

	assert.Equal(t, auth.RoleDoctor, d.Identity().Role)
	assert.Equal(t, DoctorSession, f.router.State())
	assert.NotEmpty(t, d.ID())
	assert.Equal(t, DoctorMenu(), d.Menu())
}

func TestRouter_UnknownUser(t *testing.T) {
	f := newFixture(t)

	s, err := f.router.Login(context.Background(), "ghost", "x")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Nil(t, s)
	assert.Equal(t, LoggedOut, f.router.State())
}

func TestRouter_WrongPassword(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, "ana", "pw1", auth.RolePatient)

	_, err := f.router.Login(context.Background(), "ana", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Equal(t, LoggedOut, f.router.State())
}

func TestRouter_SessionPerRole(t *testing.T) {
	tests := []struct {
		role  auth.Role
		state State
	}{
		{auth.RolePatient, PatientSession},
		{auth.RoleDoctor, DoctorSession},
		{auth.RoleAdministrator, AdminSession},
	}
	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			f := newFixture(t)
			f.addAccount(t, "user1", "secret", tt.role)

			s, err := f.router.Login(context.Background(), "user1", "secret")
			require.NoError(t, err)
			assert.Equal(t, tt.state, s.State())
			assert.Equal(t, tt.state, f.router.State())
			assert.Same(t, s, f.router.Current())

			switch tt.state {
			case PatientSession:
				assert.IsType(t, &Patient{}, s)
			case DoctorSession:
				assert.IsType(t, &Doctor{}, s)
			case AdminSession:
				assert.IsType(t, &Admin{}, s)
			}
		})
	}
}

func TestRouter_SingleSession(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, "ana", "pw1", auth.RolePatient)
	f.addAccount(t, "dr_lopez", "pass123", auth.RoleDoctor)
	ctx := context.Background()

	_, err := f.router.Login(ctx, "ana", "pw1")
	require.NoError(t, err)

	_, err = f.router.Login(ctx, "dr_lopez", "pass123")
	assert.ErrorIs(t, err, ErrAlreadyLoggedIn)
	assert.Equal(t, PatientSession, f.router.State())

	_, err = f.router.Signup(ctx, account.NewAccount{Username: "x"})
	assert.ErrorIs(t, err, ErrAlreadyLoggedIn)
}

func TestRouter_LogoutClosesSession(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, "ana", "pw1", auth.RolePatient)
	ctx := context.Background()

	s, err := f.router.Login(ctx, "ana", "pw1")
	require.NoError(t, err)
	p := s.(*Patient)

	f.router.Logout()
	assert.Equal(t, LoggedOut, f.router.State())
	assert.Nil(t, f.router.Current())

	_, err = p.Prescriptions(ctx)
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, err = p.Profile(ctx)
	assert.ErrorIs(t, err, ErrSessionClosed)

	// a second logout is a no-op
	f.router.Logout()

	_, err = f.router.Login(ctx, "ana", "pw1")
	assert.NoError(t, err)
}

func TestRouter_Signup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := account.NewAccount{
		Username:  "new_doc",
		Password:  "pw",
		Name:      "Nora",
		Surname:   "Diaz",
		BirthDate: time.Date(1980, 5, 2, 0, 0, 0, 0, time.UTC),
		Role:      auth.RoleDoctor,
	}
	a, err := f.router.Signup(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleDoctor, a.Role)

	in.Username, in.Role = "root2", auth.RoleAdministrator
	_, err = f.router.Signup(ctx, in)
	assert.ErrorIs(t, err, account.ErrAdministratorNotAllowed)

	d := f.loginDoctor(t, "new_doc", "pw")
	prof, err := d.Profile(ctx)
	require.NoError(t, err)
	dp, ok := prof.DoctorProfile()
	require.True(t, ok)
	assert.Equal(t, account.DefaultOfficeHours, *dp.OfficeHours)
}

func TestDoctor_PrescriptionVisibleToPatient(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, "ana", "pw1", auth.RolePatient)
	f.addAccount(t, "dr_lopez", "pass123", auth.RoleDoctor)
	ctx := context.Background()

	d := f.loginDoctor(t, "dr_lopez", "pass123")
	p, err := d.Prescribe(ctx, "ana", "rest", "", 0)
	require.NoError(t, err)
	assert.Equal(t, d.Identity().ID, p.DoctorID)

	list, err := d.PatientPrescriptions(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "rest", list[0].Description)

	f.router.Logout()
	s, err := f.router.Login(ctx, "ana", "pw1")
	require.NoError(t, err)
	own, err := s.(*Patient).Prescriptions(ctx)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, p.ID, own[0].ID)
	assert.Equal(t, "dr_lopez", own[0].Doctor.Username)
}

func TestDoctor_LinkSupplyKeepsStock(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, "ana", "pw1", auth.RolePatient)
	f.addAccount(t, "dr_lopez", "pass123", auth.RoleDoctor)
	ctx := context.Background()

	d := f.loginDoctor(t, "dr_lopez", "pass123")
	gauze := &supply.Supply{Name: "Gauze", Category: "Wound care", Stock: 100, UnitCostUSD: 2.5}
	require.NoError(t, d.CreateSupply(ctx, gauze))

	p, err := d.Prescribe(ctx, "ana", "dressing", "", 1500)
	require.NoError(t, err)

	_, err = d.LinkSupply(ctx, p.ID, gauze.ID, 10)
	require.NoError(t, err)

	items, err := d.PrescriptionSupplies(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 10, items[0].Quantity)
	assert.Equal(t, "Gauze", items[0].SupplyName)

	supplies, err := d.Supplies(ctx)
	require.NoError(t, err)
	require.Len(t, supplies, 1)
	assert.Equal(t, 100, supplies[0].Stock)

	_, err = d.LinkSupply(ctx, p.ID, gauze.ID, 0)
	assert.ErrorIs(t, err, prescription.ErrInvalidQuantity)
}

func TestDoctor_RejectsNonPatient(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, "dr_lopez", "pass123", auth.RoleDoctor)
	f.addAccount(t, "dr_ruiz", "pass123", auth.RoleDoctor)
	ctx := context.Background()

	d := f.loginDoctor(t, "dr_lopez", "pass123")

	_, err := d.Prescribe(ctx, "dr_ruiz", "rest", "", 0)
	assert.ErrorIs(t, err, ErrNotAPatient)
	_, err = d.Schedule(ctx, "dr_ruiz", time.Now())
	assert.ErrorIs(t, err, ErrNotAPatient)
	_, err = d.Patient(ctx, "nobody")
	assert.ErrorIs(t, err, account.ErrNotFound)
	assert.Empty(t, f.store.PrescriptionRows)
}

func TestDoctor_ConsultationsAndAgenda(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, "ana", "pw1", auth.RolePatient)
	f.addAccount(t, "dr_lopez", "pass123", auth.RoleDoctor)
	ctx := context.Background()

	d := f.loginDoctor(t, "dr_lopez", "pass123")

	c, err := d.RecordConsultation(ctx, ConsultationInput{
		PatientUsername: "ana",
		Date:            time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Comments:        "follow up in two weeks",
		Value:           25000,
	})
	require.NoError(t, err)
	assert.Equal(t, d.Identity().ID, c.DoctorID)

	first, err := d.Schedule(ctx, "ana", time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, agenda.StatusPending, first.Status)
	_, err = d.Schedule(ctx, "ana", time.Date(2024, 3, 8, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.NoError(t, d.UpdateAppointmentStatus(ctx, first.ID, agenda.StatusCompleted))

	own, err := d.OwnAgenda(ctx)
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.True(t, own[0].ScheduledFor.Before(own[1].ScheduledFor))
	assert.Equal(t, agenda.StatusCompleted, own[1].Status)

	f.router.Logout()
	s, err := f.router.Login(ctx, "ana", "pw1")
	require.NoError(t, err)
	p := s.(*Patient)

	cs, err := p.Consultations(ctx)
	require.NoError(t, err)
	require.Len(t, cs, 1)
	assert.Equal(t, "follow up in two weeks", cs[0].Comments)

	appts, err := p.Appointments(ctx)
	require.NoError(t, err)
	assert.Len(t, appts, 2)
}

func TestAdmin_Accounts(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, "root", "toor", auth.RoleAdministrator)
	f.addAccount(t, "ana", "pw1", auth.RolePatient)
	ctx := context.Background()

	s, err := f.router.Login(ctx, "root", "toor")
	require.NoError(t, err)
	a := s.(*Admin)

	created, err := a.CreateAccount(ctx, account.NewAccount{
		Username:  "ops",
		Password:  "pw",
		Name:      "Olga",
		Surname:   "Perez",
		BirthDate: time.Date(1985, 1, 1, 0, 0, 0, 0, time.UTC),
		Role:      auth.RoleAdministrator,
	})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdministrator, created.Role)

	all, err := a.Accounts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	patients, err := a.Patients(ctx)
	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.Equal(t, "ana", patients[0].Username)

	assert.ErrorIs(t, a.DeleteAccount(ctx, "root"), ErrCannotDeleteSelf)
	assert.ErrorIs(t, a.DeleteAccount(ctx, " root "), ErrCannotDeleteSelf)

	require.NoError(t, a.DeleteAccount(ctx, "ana"))
	_, err = a.Account(ctx, "ana")
	assert.ErrorIs(t, err, account.ErrNotFound)
}

func TestAdmin_UpdateOwnAccountRefreshesIdentity(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, "root", "toor", auth.RoleAdministrator)
	ctx := context.Background()

	s, err := f.router.Login(ctx, "root", "toor")
	require.NoError(t, err)
	a := s.(*Admin)

	name := "Rosa"
	_, err = a.UpdateAccount(ctx, "root", account.Update{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Rosa", a.Identity().Name)
}

func TestAdmin_Inventory(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, "root", "toor", auth.RoleAdministrator)
	ctx := context.Background()

	s, err := f.router.Login(ctx, "root", "toor")
	require.NoError(t, err)
	a := s.(*Admin)

	sp := &supply.Supply{Name: "Syringe", Category: "Injection", Stock: 5, UnitCostUSD: 0.3}
	require.NoError(t, a.CreateSupply(ctx, sp))
	require.NoError(t, a.UpdateStock(ctx, sp.ID, 40))
	assert.ErrorIs(t, a.UpdateStock(ctx, sp.ID, -1), supply.ErrNegativeQuantity)
	assert.Equal(t, 40, f.store.SupplyRows[sp.ID].Stock)

	require.NoError(t, a.DeleteSupply(ctx, sp.ID))
	list, err := a.Supplies(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	f.router.Logout()
	assert.ErrorIs(t, a.CreateSupply(ctx, sp), ErrSessionClosed)
}

func TestMenus(t *testing.T) {
	assertLabels := func(t *testing.T, labels []string) {
		seen := map[string]bool{}
		for _, l := range labels {
			assert.NotEmpty(t, l)
			assert.False(t, seen[l], "duplicate label %q", l)
			seen[l] = true
		}
	}

	var labels []string
	for _, op := range PatientMenu() {
		labels = append(labels, op.String())
	}
	assertLabels(t, labels)

	labels = nil
	for _, op := range DoctorMenu() {
		labels = append(labels, op.String())
	}
	assert.Len(t, labels, 21)
	assertLabels(t, labels)

	labels = nil
	for _, op := range AdminMenu() {
		labels = append(labels, op.String())
	}
	assert.Len(t, labels, 13)
	assertLabels(t, labels)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "logged out", LoggedOut.String())
	assert.Equal(t, "administrator session", AdminSession.String())
	assert.Equal(t, "State(9)", State(9).String())
}
