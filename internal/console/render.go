package console

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mediplus/clinic/internal/domain/account"
	"github.com/mediplus/clinic/internal/domain/agenda"
	"github.com/mediplus/clinic/internal/domain/consultation"
	"github.com/mediplus/clinic/internal/domain/prescription"
	"github.com/mediplus/clinic/internal/domain/supply"
)

const notRegistered = "(not registered)"

func formatDate(t time.Time) string {
	if t.IsZero() {
		return notRegistered
	}
	return t.Format(DateLayout)
}

func orNone(s *string) string {
	if s == nil || *s == "" {
		return notRegistered
	}
	return *s
}

func who(name, username string) string {
	if username == "" {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", name, username)
}

func rxPerson(p *prescription.Person) string {
	if p == nil {
		return "-"
	}
	return who(p.FullName(), p.Username)
}

func visitPerson(p *consultation.Person) string {
	if p == nil {
		return "-"
	}
	return who(p.FullName(), p.Username)
}

func agendaPerson(p *agenda.Person) string {
	if p == nil {
		return "-"
	}
	return who(p.FullName(), p.Username)
}

// table writes tab separated rows aligned in columns.
func (a *App) table(header string, rows [][]string) {
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, header)
	for _, r := range rows {
		fmt.Fprintln(w, strings.Join(r, "\t"))
	}
	w.Flush()
}

func (a *App) showAccount(acc *account.Account) {
	a.printf("\n--- %s ---\n", strings.ToUpper(acc.Role.String()[:1])+acc.Role.String()[1:])
	a.printf("ID: %d\n", acc.ID)
	a.printf("Username: %s\n", acc.Username)
	a.printf("Name: %s\n", acc.FullName())
	a.printf("Birth date: %s\n", formatDate(acc.BirthDate))
	a.printf("Phone: %s\n", orNone(acc.Phone))
	a.printf("Email: %s\n", orNone(acc.Email))
	a.printf("Role: %s\n", acc.Role)
	if p, ok := acc.PatientProfile(); ok {
		a.printf("Locality: %s\n", orNone(p.Locality))
		a.printf("First visit: %s\n", formatDate(p.FirstVisit))
	}
	if d, ok := acc.DoctorProfile(); ok {
		a.printf("Specialty: %s\n", orNone(d.Specialty))
		a.printf("Office hours: %s\n", orNone(d.OfficeHours))
		a.printf("Hire date: %s\n", formatDate(d.HireDate))
	}
}

func (a *App) showAccounts(list []*account.Account, what string) {
	if len(list) == 0 {
		a.info("No %s registered.", what)
		return
	}
	rows := make([][]string, 0, len(list))
	for _, acc := range list {
		rows = append(rows, []string{
			fmt.Sprint(acc.ID), acc.Username, acc.FullName(), acc.Role.String(), formatDate(acc.BirthDate),
		})
	}
	a.table("ID\tUSERNAME\tNAME\tROLE\tBIRTH DATE", rows)
}

func (a *App) showSupplies(list []*supply.Supply) {
	if len(list) == 0 {
		a.info("No supplies registered.")
		return
	}
	rows := make([][]string, 0, len(list))
	for _, s := range list {
		rows = append(rows, []string{
			fmt.Sprint(s.ID), s.Name, s.Category, fmt.Sprint(s.Stock), fmt.Sprintf("%.2f", s.UnitCostUSD),
		})
	}
	a.table("ID\tNAME\tCATEGORY\tSTOCK\tUNIT COST (USD)", rows)
}

func (a *App) showPrescription(p *prescription.Prescription) {
	a.printf("\n--- Prescription %d ---\n", p.ID)
	a.printf("Patient: %s\n", rxPerson(p.Patient))
	a.printf("Doctor: %s\n", rxPerson(p.Doctor))
	a.printf("Description: %s\n", p.Description)
	a.printf("Medications: %s\n", p.Medications)
	a.printf("Cost (CLP): %.0f\n", p.CostCLP)
}

func (a *App) showPrescriptions(list []*prescription.Prescription) {
	if len(list) == 0 {
		a.info("No prescriptions registered.")
		return
	}
	rows := make([][]string, 0, len(list))
	for _, p := range list {
		rows = append(rows, []string{
			fmt.Sprint(p.ID),
			rxPerson(p.Patient),
			rxPerson(p.Doctor),
			p.Description,
			p.Medications,
			fmt.Sprintf("%.0f", p.CostCLP),
		})
	}
	a.table("ID\tPATIENT\tDOCTOR\tDESCRIPTION\tMEDICATIONS\tCOST (CLP)", rows)
}

func (a *App) showItems(list []*prescription.Item) {
	if len(list) == 0 {
		a.info("No supplies linked to this prescription.")
		return
	}
	rows := make([][]string, 0, len(list))
	for _, it := range list {
		rows = append(rows, []string{
			fmt.Sprint(it.SupplyID), it.SupplyName, it.SupplyCategory, fmt.Sprint(it.Quantity), fmt.Sprintf("%.2f", it.UnitCostUSD),
		})
	}
	a.table("SUPPLY\tNAME\tCATEGORY\tQUANTITY\tUNIT COST (USD)", rows)
}

func (a *App) showConsultations(list []*consultation.Consultation) {
	if len(list) == 0 {
		a.info("No consultations registered.")
		return
	}
	rows := make([][]string, 0, len(list))
	for _, c := range list {
		rx := "-"
		if c.PrescriptionID != nil {
			rx = fmt.Sprint(*c.PrescriptionID)
		}
		rows = append(rows, []string{
			fmt.Sprint(c.ID),
			formatDate(c.Date),
			visitPerson(c.Patient),
			visitPerson(c.Doctor),
			rx,
			fmt.Sprintf("%.0f", c.Value),
			c.Comments,
		})
	}
	a.table("ID\tDATE\tPATIENT\tDOCTOR\tPRESCRIPTION\tVALUE\tCOMMENTS", rows)
}

func (a *App) showAgenda(list []*agenda.Entry) {
	if len(list) == 0 {
		a.info("No appointments scheduled.")
		return
	}
	rows := make([][]string, 0, len(list))
	for _, e := range list {
		rows = append(rows, []string{
			fmt.Sprint(e.ID),
			formatDate(e.ScheduledFor),
			agendaPerson(e.Patient),
			agendaPerson(e.Doctor),
			string(e.Status),
		})
	}
	a.table("ID\tDATE\tPATIENT\tDOCTOR\tSTATUS", rows)
}
