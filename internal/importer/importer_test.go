package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediplus/clinic/internal/domain/account"
	"github.com/mediplus/clinic/internal/domain/supply"
	"github.com/mediplus/clinic/internal/platform/auth"
)

type fakeAccounts struct {
	created map[string]account.NewAccount
	order   []string
	fail    map[string]bool
	opts    []account.CreateOptions
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{created: map[string]account.NewAccount{}, fail: map[string]bool{}}
}

func (f *fakeAccounts) CreateAccount(_ context.Context, in account.NewAccount, opts account.CreateOptions) (*account.Account, error) {
	f.opts = append(f.opts, opts)
	if f.fail[in.Username] {
		return nil, account.ErrAccountNotCreated
	}
	if _, ok := f.created[in.Username]; ok {
		return nil, account.ErrAccountNotCreated
	}
	f.created[in.Username] = in
	f.order = append(f.order, in.Username)
	return &account.Account{ID: int64(len(f.order)), Username: in.Username, Role: in.Role}, nil
}

func (f *fakeAccounts) GetByUsername(_ context.Context, username string) (*account.Account, error) {
	in, ok := f.created[username]
	if !ok {
		return nil, account.ErrNotFound
	}
	return &account.Account{Username: username, Role: in.Role}, nil
}

type fakeSupplies struct {
	items []*supply.Supply
}

func (f *fakeSupplies) Create(_ context.Context, s *supply.Supply) error {
	if s.Stock < 0 {
		return supply.ErrNegativeQuantity
	}
	s.ID = int64(len(f.items) + 1)
	f.items = append(f.items, s)
	return nil
}

func TestLoadAccounts(t *testing.T) {
	accounts := newFakeAccounts()
	im := New(accounts, &fakeSupplies{}, zerolog.Nop())

	const file = `[
		{"username": "ana", "password": "pw1", "name": "Ana", "surname": "Rojas", "birth_date": "1992-04-10", "role": "patient", "locality": "Providencia"},
		{"username": "dr_lopez", "password": "pass123", "name": "Luis", "surname": "Lopez", "birth_date": "1975-09-01", "role": "doctor"},
		{"username": "root", "password": "toor", "name": "Rosa", "surname": "Soto", "birth_date": "1980-01-01", "role": "administrator"},
		{"username": "nurse", "password": "x", "name": "N", "surname": "N", "birth_date": "1980-01-01", "role": "nurse"},
		{"username": "bad_date", "password": "x", "name": "B", "surname": "D", "birth_date": "01/02/1980", "role": "patient"}
	]`

	rep, err := im.LoadAccounts(context.Background(), strings.NewReader(file))
	require.NoError(t, err)
	assert.Equal(t, Report{Created: 3, Skipped: 1, Failed: 1}, rep)

	ana := accounts.created["ana"]
	p, ok := ana.Profile.(*account.PatientProfile)
	require.True(t, ok)
	require.NotNil(t, p.Locality)
	assert.Equal(t, "Providencia", *p.Locality)

	doc := accounts.created["dr_lopez"].Profile.(*account.DoctorProfile)
	assert.Equal(t, DefaultSpecialty, *doc.Specialty)

	assert.Equal(t, auth.RoleAdministrator, accounts.created["root"].Role)
	for _, o := range accounts.opts {
		assert.True(t, o.AllowAdministrator)
	}
}

func TestLoadAccounts_FailedRowDoesNotAbort(t *testing.T) {
	accounts := newFakeAccounts()
	accounts.fail["dup"] = true
	im := New(accounts, &fakeSupplies{}, zerolog.Nop())

	const file = `[
		{"username": "dup", "password": "x", "name": "D", "surname": "U", "birth_date": "1990-01-01", "role": "patient"},
		{"username": "ok", "password": "x", "name": "O", "surname": "K", "birth_date": "1990-01-01", "role": "patient"}
	]`
	rep, err := im.LoadAccounts(context.Background(), strings.NewReader(file))
	require.NoError(t, err)
	assert.Equal(t, Report{Created: 1, Failed: 1}, rep)
	assert.Contains(t, accounts.created, "ok")
}

func TestLoadDirectory(t *testing.T) {
	accounts := newFakeAccounts()
	accounts.created["Bret"] = account.NewAccount{Username: "Bret", Role: auth.RolePatient}
	im := New(accounts, &fakeSupplies{}, zerolog.Nop())

	const file = `[
		{"id": 1, "username": "Bret", "name": "Leanne Graham", "email": "a@b.c", "phone": "1-770", "address": {"city": "Gwenborough"}},
		{"id": 2, "username": "Antonette", "name": "Ervin Howell", "email": "e@h.c", "phone": "010", "address": {"city": "Wisokyburgh"}},
		{"id": 3, "username": "Samantha", "name": "Clementine Bauch", "address": {"city": "McKenziehaven"}},
		{"id": 4, "name": "Patricia", "address": {"city": "South Elvis"}}
	]`

	rep, err := im.LoadDirectory(context.Background(), strings.NewReader(file))
	require.NoError(t, err)
	assert.Equal(t, Report{Created: 3, Skipped: 1}, rep)

	// Bret occupied the patient slot, so rotation continues with doctor.
	antonette := accounts.created["Antonette"]
	assert.Equal(t, auth.RoleDoctor, antonette.Role)
	assert.Equal(t, "Ervin", antonette.Name)
	assert.Equal(t, "Howell", antonette.Surname)
	assert.Equal(t, DirectoryPassword, antonette.Password)
	assert.Equal(t, DirectoryBirthDate, antonette.BirthDate)
	assert.Equal(t, "e@h.c", antonette.Email)

	assert.Equal(t, auth.RoleAdministrator, accounts.created["Samantha"].Role)

	user4, ok := accounts.created["user4"]
	require.True(t, ok)
	assert.Equal(t, auth.RolePatient, user4.Role)
	assert.Equal(t, "Patricia", user4.Name)
	assert.Equal(t, "Test", user4.Surname)
	p := user4.Profile.(*account.PatientProfile)
	assert.Equal(t, "South Elvis", *p.Locality)
}

func TestLoadSupplies(t *testing.T) {
	supplies := &fakeSupplies{}
	im := New(newFakeAccounts(), supplies, zerolog.Nop())

	const file = `[
		{"name": "Gauze", "category": "Wound care", "stock": 100, "unit_cost_usd": 2.5},
		{"name": "Broken", "category": "X", "stock": -1, "unit_cost_usd": 1}
	]`
	rep, err := im.LoadSupplies(context.Background(), strings.NewReader(file))
	require.NoError(t, err)
	assert.Equal(t, Report{Created: 1, Failed: 1}, rep)
	require.Len(t, supplies.items, 1)
	assert.Equal(t, "Gauze", supplies.items[0].Name)
	assert.Equal(t, 2.5, supplies.items[0].UnitCostUSD)
}

func TestMalformedFile(t *testing.T) {
	im := New(newFakeAccounts(), &fakeSupplies{}, zerolog.Nop())

	_, err := im.LoadSupplies(context.Background(), strings.NewReader(`{"name": "not an array"}`))
	assert.True(t, errors.Is(err, ErrMalformedFile))
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		in, name, surname string
	}{
		{"Leanne Graham", "Leanne", "Graham"},
		{"Mrs. Dennis Schulist", "Mrs.", "Dennis Schulist"},
		{"Kurtis", "Kurtis", "Test"},
		{"", "User", "Test"},
	}
	for _, tt := range tests {
		name, surname := splitName(tt.in)
		assert.Equal(t, tt.name, name, tt.in)
		assert.Equal(t, tt.surname, surname, tt.in)
	}
}

func TestReport_String(t *testing.T) {
	assert.Equal(t, "2 created, 1 skipped, 0 failed", Report{Created: 2, Skipped: 1}.String())
}
