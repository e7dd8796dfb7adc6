// Package seed writes synthetic import files for demos and load tests.
package seed

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/mediplus/clinic/internal/importer"
	"github.com/mediplus/clinic/internal/platform/auth"
)

// Options sizes the generated accounts file. Seed 0 picks a random seed.
type Options struct {
	Patients int
	Doctors  int
	Admins   int
	Seed     uint64
}

var specialties = []string{
	"General Medicine", "Pediatrics", "Cardiology", "Dermatology",
	"Traumatology", "Gynecology", "Neurology", "Ophthalmology",
}

var supplyCategories = []string{"Wound care", "Injection", "Diagnostics", "Protection", "Medication"}

func username(first, last string, n int) string {
	var b strings.Builder
	for _, r := range strings.ToLower(first + "." + last) {
		if (unicode.IsLetter(r) && r < unicode.MaxASCII) || r == '.' {
			b.WriteRune(r)
		}
	}
	return fmt.Sprintf("%s%d", b.String(), n)
}

// Accounts returns opts.Patients patients, then doctors, then administrators.
// Every generated password is "password" followed by the row number.
func Accounts(opts Options) []importer.AccountRecord {
	f := gofakeit.New(opts.Seed)
	end := time.Date(2005, 12, 31, 0, 0, 0, 0, time.UTC)
	start := time.Date(1945, 1, 1, 0, 0, 0, 0, time.UTC)

	counts := []struct {
		role auth.Role
		n    int
	}{
		{auth.RolePatient, opts.Patients},
		{auth.RoleDoctor, opts.Doctors},
		{auth.RoleAdministrator, opts.Admins},
	}

	var out []importer.AccountRecord
	for _, c := range counts {
		for i := 0; i < c.n; i++ {
			row := len(out) + 1
			first, last := f.FirstName(), f.LastName()
			rec := importer.AccountRecord{
				Username:  username(first, last, row),
				Password:  fmt.Sprintf("password%d", row),
				Name:      first,
				Surname:   last,
				BirthDate: f.DateRange(start, end).Format(importer.DateLayout),
				Role:      c.role.String(),
				Phone:     f.Phone(),
				Email:     strings.ToLower(fmt.Sprintf("%s.%s%d@example.org", first, last, row)),
			}
			switch c.role {
			case auth.RolePatient:
				rec.Locality = f.City()
			case auth.RoleDoctor:
				rec.Specialty = f.RandomString(specialties)
			}
			out = append(out, rec)
		}
	}
	return out
}

// Supplies returns n supply rows.
func Supplies(n int, seed uint64) []importer.SupplyRecord {
	f := gofakeit.New(seed)
	out := make([]importer.SupplyRecord, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, importer.SupplyRecord{
			Name:        fmt.Sprintf("%s %d", f.ProductName(), i+1),
			Category:    f.RandomString(supplyCategories),
			Stock:       f.Number(0, 500),
			UnitCostUSD: f.Price(1, 200),
		})
	}
	return out
}

func write(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write seed file: %w", err)
	}
	return nil
}

// Generate writes an accounts file that importer.LoadAccounts accepts.
func Generate(w io.Writer, opts Options) error {
	if opts.Patients < 0 || opts.Doctors < 0 || opts.Admins < 0 {
		return fmt.Errorf("seed: negative account count")
	}
	return write(w, Accounts(opts))
}

// GenerateSupplies writes a supplies file that importer.LoadSupplies accepts.
func GenerateSupplies(w io.Writer, n int, seed uint64) error {
	if n < 0 {
		return fmt.Errorf("seed: negative supply count")
	}
	return write(w, Supplies(n, seed))
}
