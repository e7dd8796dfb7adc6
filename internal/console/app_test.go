package console

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
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
	"github.com/mediplus/clinic/internal/importer"
	"github.com/mediplus/clinic/internal/platform/auth"
	"github.com/mediplus/clinic/internal/session"
	"github.com/mediplus/clinic/internal/testutil/memdb"
)

type harness struct {
	store    *memdb.Store
	accounts *account.Service
	supplies *supply.Service
	router   *session.Router
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := zerolog.Nop()
	store := memdb.New()
	hasher, err := auth.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	accounts := account.NewService(store.Accounts(), memdb.Tx{}, hasher, log)
	supplies := supply.NewService(store.Supplies(), log)
	router := session.NewRouter(session.Deps{
		Auth:          auth.NewAuthenticator(accounts, hasher, auth.NewThrottle(600, 100), log),
		Accounts:      accounts,
		Supplies:      supplies,
		Prescriptions: prescription.NewService(store.Prescriptions(), log),
		Consultations: consultation.NewService(store.Consultations(), log),
		Agenda:        agenda.NewService(store.Agenda(), log),
	}, log)
	return &harness{store: store, accounts: accounts, supplies: supplies, router: router}
}

func (h *harness) addAccount(t *testing.T, username, password string, role auth.Role) {
	t.Helper()
	_, err := h.accounts.CreateAccount(context.Background(), account.NewAccount{
		Username:  username,
		Password:  password,
		Name:      "Test",
		Surname:   username,
		BirthDate: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Role:      role,
	}, account.CreateOptions{AllowAdministrator: true})
	require.NoError(t, err)
}

// run feeds the lines to a fresh App and returns everything it printed.
func (h *harness) run(t *testing.T, opts Options, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	app := New(h.router, in, &out, opts, zerolog.Nop())
	require.NoError(t, app.Run(context.Background()))
	return out.String()
}

func TestRun_ExitAndEOF(t *testing.T) {
	h := newHarness(t)

	out := h.run(t, Options{}, "0")
	assert.Contains(t, out, "MediPlus - Main menu")
	assert.Contains(t, out, "Goodbye.")

	var buf bytes.Buffer
	app := New(h.router, strings.NewReader(""), &buf, Options{}, zerolog.Nop())
	assert.NoError(t, app.Run(context.Background()))
	assert.Contains(t, buf.String(), "Goodbye.")
}

func TestRun_InvalidOptionReprompts(t *testing.T) {
	h := newHarness(t)

	out := h.run(t, Options{}, "9", "abc", "-1", "0")
	assert.Equal(t, 3, strings.Count(out, "[ERROR]: invalid option, try again"))
	assert.Equal(t, 1, strings.Count(out, "MediPlus - Main menu"))
}

func TestRun_UnknownUser(t *testing.T) {
	h := newHarness(t)

	out := h.run(t, Options{}, "2", "ghost", "x", "0")
	assert.Contains(t, out, "[ERROR]: invalid username or password")
	assert.Equal(t, session.LoggedOut, h.router.State())
}

func TestRun_SignupAndViewProfile(t *testing.T) {
	h := newHarness(t)

	out := h.run(t, Options{},
		"1", "1", // sign up as patient
		"ana", "pw1", "Ana", "Rojas",
		"1990-13-01", "1990-01-01", // invalid date reprompts
		"", "ana@example.org", "Providencia",
		"2", "ana", "pw1",
		"1", // view my profile
		"0", "0",
	)
	assert.Contains(t, out, "[ERROR]: enter a date as YYYY-MM-DD")
	assert.Contains(t, out, "[OK]: account ana created.")
	assert.Contains(t, out, "Welcome, Ana Rojas (patient).")
	assert.Contains(t, out, "Locality: Providencia")
	assert.Contains(t, out, "Phone: (not registered)")
	assert.Contains(t, out, "Email: ana@example.org")
	assert.Contains(t, out, "Session closed.")
}

func TestRun_DoctorPrescribes(t *testing.T) {
	h := newHarness(t)
	h.addAccount(t, "ana", "pw1", auth.RolePatient)
	h.addAccount(t, "dr_lopez", "pass123", auth.RoleDoctor)

	out := h.run(t, Options{},
		"2", "dr_lopez", "pass123",
		"9", "ana", "rest", "", "0",
		"12", "ana",
		"9", "dr_lopez", "rest", "", "0",
		"0", "0",
	)
	assert.Contains(t, out, "Welcome, Test dr_lopez (doctor).")
	assert.Contains(t, out, "[OK]: prescription")
	assert.Contains(t, out, "DESCRIPTION")
	assert.Contains(t, out, "Test ana (ana)")
	assert.Contains(t, out, "[ERROR]: account is not a patient")
	assert.Len(t, h.store.PrescriptionRows, 1)
}

func TestRun_LinkSupplyKeepsStock(t *testing.T) {
	h := newHarness(t)
	h.addAccount(t, "ana", "pw1", auth.RolePatient)
	h.addAccount(t, "dr_lopez", "pass123", auth.RoleDoctor)
	ctx := context.Background()

	gauze := &supply.Supply{Name: "Gauze", Category: "Wound care", Stock: 100, UnitCostUSD: 2.5}
	require.NoError(t, h.supplies.Create(ctx, gauze))

	out := h.run(t, Options{},
		"2", "dr_lopez", "pass123",
		"9", "ana", "dressing", "", "1500",
		"14", "4", "3", "10", // prescription 4, supply 3, quantity 10
		"15", "4",
		"0", "0",
	)
	assert.Contains(t, out, "[OK]: 10 units of supply 3 linked to prescription 4.")
	assert.Equal(t, 100, h.store.SupplyRows[gauze.ID].Stock)
}

func TestRun_AdminCannotDeleteSelf(t *testing.T) {
	h := newHarness(t)
	h.addAccount(t, "root", "toor", auth.RoleAdministrator)

	out := h.run(t, Options{},
		"2", "root", "toor",
		"9", "root", "y",
		"0", "0",
	)
	assert.Contains(t, out, "[ERROR]: an administrator cannot delete their own account")
	assert.Contains(t, h.store.AccountRows, int64(1))
}

func TestRun_AdminEditAccount(t *testing.T) {
	h := newHarness(t)
	h.addAccount(t, "root", "toor", auth.RoleAdministrator)
	h.addAccount(t, "dr_lopez", "pass123", auth.RoleDoctor)

	out := h.run(t, Options{},
		"2", "root", "toor",
		"8", "dr_lopez",
		"Luis", "", "", "555-1234", "", // name, surname, birth date, phone, email
		"Cardiology", "", "", // specialty, office hours, hire date
		"6", "dr_lopez",
		"0", "0",
	)
	assert.Contains(t, out, "[OK]: account dr_lopez updated.")
	assert.Contains(t, out, "Name: Luis dr_lopez")
	assert.Contains(t, out, "Phone: 555-1234")
	assert.Contains(t, out, "Specialty: Cardiology")
	assert.Contains(t, out, "Office hours: "+account.DefaultOfficeHours)
}

func TestRun_LoadSupplies(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()
	data := `[{"name": "Gauze", "category": "Wound care", "stock": 100, "unit_cost_usd": 2.5}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, SuppliesFile), []byte(data), 0o600))

	opts := Options{
		Importer: importer.New(h.accounts, h.supplies, zerolog.Nop()),
		DataDir:  dir,
	}
	out := h.run(t, opts, "5", "3", "0")
	assert.Contains(t, out, "[INFO]: supplies.json: 1 created, 0 skipped, 0 failed.")
	assert.Contains(t, out, "[ERROR]: cannot open "+filepath.Join(dir, DirectoryFile))
	assert.Len(t, h.store.SupplyRows, 1)
}

func TestRun_LoadEntriesHiddenWithoutImporter(t *testing.T) {
	h := newHarness(t)

	out := h.run(t, Options{}, "0")
	assert.NotContains(t, out, "Load supplies")
}

func TestRun_CreateSupplyRejectsNonFiniteCost(t *testing.T) {
	h := newHarness(t)
	h.addAccount(t, "dr_lopez", "pass123", auth.RoleDoctor)

	out := h.run(t, Options{},
		"2", "dr_lopez", "pass123",
		"6", "Gauze", "Wound care", "100", "NaN", "+Inf", "2,5",
		"0", "0",
	)
	assert.Equal(t, 2, strings.Count(out, "[ERROR]: enter a number"))
	require.Len(t, h.store.SupplyRows, 1)
	for id, sp := range h.store.SupplyRows {
		assert.Contains(t, out, fmt.Sprintf("[OK]: supply %d created.", id))
		assert.InDelta(t, 2.5, sp.UnitCostUSD, 0.0001)
	}
}

// runUntilCancelled starts Run on a pipe, writes lines, cancels and waits
// for Run to return.
func runUntilCancelled(t *testing.T, h *harness, lines ...string) string {
	t.Helper()
	pr, pw := io.Pipe()
	defer pw.Close()

	var out bytes.Buffer
	app := New(h.router, pr, &out, Options{}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	for _, l := range lines {
		_, err := io.WriteString(pw, l+"\n")
		require.NoError(t, err)
	}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run still blocked after cancel")
	}
	return out.String()
}

func TestRun_CancelWhileWaitingForInput(t *testing.T) {
	h := newHarness(t)

	out := runUntilCancelled(t, h)
	assert.Contains(t, out, "Interrupted. Goodbye.")
}

func TestRun_CancelDuringReprompt(t *testing.T) {
	h := newHarness(t)
	h.addAccount(t, "dr_lopez", "pass123", auth.RoleDoctor)

	out := runUntilCancelled(t, h, "2", "dr_lopez", "pass123", "42")
	assert.Contains(t, out, "Interrupted. Goodbye.")
	assert.Equal(t, session.LoggedOut, h.router.State())
}
