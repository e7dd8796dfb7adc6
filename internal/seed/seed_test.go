package seed

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediplus/clinic/internal/domain/account"
	"github.com/mediplus/clinic/internal/domain/supply"
	"github.com/mediplus/clinic/internal/importer"
	"github.com/mediplus/clinic/internal/platform/auth"
	"github.com/mediplus/clinic/internal/platform/sanitize"
)

func TestAccounts_Counts(t *testing.T) {
	rows := Accounts(Options{Patients: 4, Doctors: 2, Admins: 1, Seed: 42})
	require.Len(t, rows, 7)

	roles := map[string]int{}
	usernames := map[string]bool{}
	for _, r := range rows {
		roles[r.Role]++
		assert.False(t, usernames[r.Username], "duplicate username %s", r.Username)
		usernames[r.Username] = true
		assert.NotEmpty(t, r.Password)
		assert.NoError(t, sanitize.Fields("username", r.Username, "name", r.Name, "surname", r.Surname))
	}
	assert.Equal(t, 4, roles[auth.RolePatient.String()])
	assert.Equal(t, 2, roles[auth.RoleDoctor.String()])
	assert.Equal(t, 1, roles[auth.RoleAdministrator.String()])

	assert.NotEmpty(t, rows[0].Locality)
	assert.NotEmpty(t, rows[4].Specialty)
}

func TestAccounts_Deterministic(t *testing.T) {
	a := Accounts(Options{Patients: 3, Doctors: 3, Seed: 7})
	b := Accounts(Options{Patients: 3, Doctors: 3, Seed: 7})
	assert.Equal(t, a, b)
}

func TestUsername(t *testing.T) {
	assert.Equal(t, "mary.oneil3", username("Mary", "O'Neil", 3))
	assert.Equal(t, "jos.pea12", username("José", "Peña", 12))
	assert.Equal(t, "ana.diaz1", username("Ana", "Diaz", 1))
}

type countingAccounts struct{ n int }

func (c *countingAccounts) CreateAccount(_ context.Context, in account.NewAccount, _ account.CreateOptions) (*account.Account, error) {
	c.n++
	return &account.Account{Username: in.Username, Role: in.Role}, nil
}

func (c *countingAccounts) GetByUsername(context.Context, string) (*account.Account, error) {
	return nil, account.ErrNotFound
}

type countingSupplies struct{ n int }

func (c *countingSupplies) Create(context.Context, *supply.Supply) error {
	c.n++
	return nil
}

func TestGenerate_RoundTripsThroughImporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Generate(&buf, Options{Patients: 5, Doctors: 3, Admins: 2, Seed: 1}))

	accounts := &countingAccounts{}
	im := importer.New(accounts, &countingSupplies{}, zerolog.Nop())
	rep, err := im.LoadAccounts(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, importer.Report{Created: 10}, rep)
	assert.Equal(t, 10, accounts.n)
}

func TestGenerateSupplies(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, GenerateSupplies(&buf, 6, 3))

	supplies := &countingSupplies{}
	im := importer.New(&countingAccounts{}, supplies, zerolog.Nop())
	rep, err := im.LoadSupplies(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, 6, rep.Created)

	for _, s := range Supplies(6, 3) {
		assert.GreaterOrEqual(t, s.Stock, 0)
		assert.GreaterOrEqual(t, s.UnitCostUSD, 1.0)
	}
}

func TestGenerate_NegativeCount(t *testing.T) {
	assert.Error(t, Generate(&bytes.Buffer{}, Options{Patients: -1}))
	assert.Error(t, GenerateSupplies(&bytes.Buffer{}, -1, 0))
}
