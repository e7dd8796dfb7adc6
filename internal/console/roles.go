package console

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mediplus/clinic/internal/domain/account"
	"github.com/mediplus/clinic/internal/domain/agenda"
	"github.com/mediplus/clinic/internal/domain/supply"
	"github.com/mediplus/clinic/internal/platform/auth"
	"github.com/mediplus/clinic/internal/session"
)

type profileOwner interface {
	Profile(ctx context.Context) (*account.Account, error)
	UpdateProfile(ctx context.Context, u account.Update) (*account.Account, error)
}

type inventory interface {
	Supplies(ctx context.Context) ([]*supply.Supply, error)
	CreateSupply(ctx context.Context, sp *supply.Supply) error
	UpdateStock(ctx context.Context, id int64, stock int) error
	DeleteSupply(ctx context.Context, id int64) error
}

func labels[T fmt.Stringer](ops []T) []string {
	out := make([]string, len(ops))
	for i, op := range ops {
		out[i] = op.String()
	}
	return out
}

func (a *App) logout() error {
	a.router.Logout()
	a.info("Session closed.")
	return nil
}

func (a *App) patientMenu(ctx context.Context, p *session.Patient) error {
	ops := p.Menu()
	n, err := a.choose("Patient menu - "+p.Identity().FullName(), labels(ops), "Log out")
	if err != nil {
		return err
	}
	if n == 0 {
		return a.logout()
	}

	switch ops[n-1] {
	case session.PatientViewProfile:
		err = a.viewProfile(ctx, p)
	case session.PatientEditProfile:
		err = a.editProfile(ctx, p)
	case session.PatientListPrescriptions:
		list, lerr := p.Prescriptions(ctx)
		if err = lerr; err == nil {
			a.showPrescriptions(list)
		}
	case session.PatientListConsultations:
		list, lerr := p.Consultations(ctx)
		if err = lerr; err == nil {
			a.showConsultations(list)
		}
	case session.PatientListAgenda:
		list, lerr := p.Appointments(ctx)
		if err = lerr; err == nil {
			a.showAgenda(list)
		}
	}
	return a.step(err)
}

func (a *App) doctorMenu(ctx context.Context, d *session.Doctor) error {
	ops := d.Menu()
	n, err := a.choose("Doctor menu - "+d.Identity().FullName(), labels(ops), "Log out")
	if err != nil {
		return err
	}
	if n == 0 {
		return a.logout()
	}
	return a.step(a.doctorOp(ctx, d, ops[n-1]))
}

func (a *App) doctorOp(ctx context.Context, d *session.Doctor, op session.DoctorOp) error {
	switch op {
	case session.DoctorViewProfile:
		return a.viewProfile(ctx, d)
	case session.DoctorEditProfile:
		return a.editProfile(ctx, d)
	case session.DoctorListPatients:
		list, err := d.Patients(ctx)
		if err != nil {
			return err
		}
		a.showAccounts(list, "patients")
	case session.DoctorViewPatient:
		username, err := a.required("Patient username")
		if err != nil {
			return err
		}
		acc, err := d.Patient(ctx, username)
		if err != nil {
			return err
		}
		a.showAccount(acc)
	case session.DoctorListSupplies:
		return a.listSupplies(ctx, d)
	case session.DoctorCreateSupply:
		return a.createSupply(ctx, d)
	case session.DoctorUpdateStock:
		return a.updateStock(ctx, d)
	case session.DoctorDeleteSupply:
		return a.deleteSupply(ctx, d)
	case session.DoctorCreatePrescription:
		return a.prescribe(ctx, d)
	case session.DoctorViewPrescription:
		id, err := a.id("Prescription ID")
		if err != nil {
			return err
		}
		p, err := d.Prescription(ctx, id)
		if err != nil {
			return err
		}
		a.showPrescription(p)
	case session.DoctorListPrescriptions:
		list, err := d.Prescriptions(ctx)
		if err != nil {
			return err
		}
		a.showPrescriptions(list)
	case session.DoctorListPatientPrescriptions:
		username, err := a.required("Patient username")
		if err != nil {
			return err
		}
		list, err := d.PatientPrescriptions(ctx, username)
		if err != nil {
			return err
		}
		a.showPrescriptions(list)
	case session.DoctorDeletePrescription:
		id, err := a.id("Prescription ID")
		if err != nil {
			return err
		}
		if yes, err := a.confirm(fmt.Sprintf("Delete prescription %d?", id)); err != nil || !yes {
			return err
		}
		if err := d.DeletePrescription(ctx, id); err != nil {
			return err
		}
		a.ok("prescription %d deleted.", id)
	case session.DoctorLinkSupply:
		return a.linkSupply(ctx, d)
	case session.DoctorListPrescriptionSupplies:
		id, err := a.id("Prescription ID")
		if err != nil {
			return err
		}
		items, err := d.PrescriptionSupplies(ctx, id)
		if err != nil {
			return err
		}
		a.showItems(items)
	case session.DoctorCreateConsultation:
		return a.recordConsultation(ctx, d)
	case session.DoctorListConsultations:
		list, err := d.Consultations(ctx)
		if err != nil {
			return err
		}
		a.showConsultations(list)
	case session.DoctorScheduleAppointment:
		username, err := a.required("Patient username")
		if err != nil {
			return err
		}
		on, err := a.date("Date")
		if err != nil {
			return err
		}
		e, err := d.Schedule(ctx, username, on)
		if err != nil {
			return err
		}
		a.ok("appointment %d scheduled for %s.", e.ID, formatDate(e.ScheduledFor))
	case session.DoctorUpdateAppointmentStatus:
		return a.updateAppointment(ctx, d)
	case session.DoctorListAgenda:
		list, err := d.Agenda(ctx)
		if err != nil {
			return err
		}
		a.showAgenda(list)
	case session.DoctorListOwnAgenda:
		list, err := d.OwnAgenda(ctx)
		if err != nil {
			return err
		}
		a.showAgenda(list)
	}
	return nil
}

func (a *App) prescribe(ctx context.Context, d *session.Doctor) error {
	username, err := a.required("Patient username")
	if err != nil {
		return err
	}
	desc, err := a.required("Description")
	if err != nil {
		return err
	}
	meds, err := a.text("Medications")
	if err != nil {
		return err
	}
	cost, err := a.amount("Cost (CLP)")
	if err != nil {
		return err
	}
	p, err := d.Prescribe(ctx, username, desc, meds, cost)
	if err != nil {
		return err
	}
	a.ok("prescription %d created.", p.ID)
	return nil
}

func (a *App) linkSupply(ctx context.Context, d *session.Doctor) error {
	rx, err := a.id("Prescription ID")
	if err != nil {
		return err
	}
	sp, err := a.id("Supply ID")
	if err != nil {
		return err
	}
	qty, err := a.count("Quantity")
	if err != nil {
		return err
	}
	if _, err := d.LinkSupply(ctx, rx, sp, qty); err != nil {
		return err
	}
	a.ok("%d units of supply %d linked to prescription %d.", qty, sp, rx)
	return nil
}

func (a *App) recordConsultation(ctx context.Context, d *session.Doctor) error {
	var in session.ConsultationInput
	var err error
	if in.PatientUsername, err = a.required("Patient username"); err != nil {
		return err
	}
	if in.Date, err = a.date("Date"); err != nil {
		return err
	}
	if in.Comments, err = a.text("Comments"); err != nil {
		return err
	}
	if in.Value, err = a.amount("Value"); err != nil {
		return err
	}
	err = a.parsed("Prescription ID (blank for none)", func(s string) error {
		if s == "" {
			return nil
		}
		id, perr := strconv.ParseInt(s, 10, 64)
		if perr != nil || id <= 0 {
			return fmt.Errorf("enter a positive whole number")
		}
		in.PrescriptionID = &id
		return nil
	})
	if err != nil {
		return err
	}

	c, err := d.RecordConsultation(ctx, in)
	if err != nil {
		return err
	}
	a.ok("consultation %d recorded.", c.ID)
	return nil
}

func (a *App) updateAppointment(ctx context.Context, d *session.Doctor) error {
	id, err := a.id("Appointment ID")
	if err != nil {
		return err
	}
	statuses := agenda.Statuses()
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	n, err := a.choose("New status", names, "Back")
	if err != nil || n == 0 {
		return err
	}
	if err := d.UpdateAppointmentStatus(ctx, id, statuses[n-1]); err != nil {
		return err
	}
	a.ok("appointment %d is now %s.", id, statuses[n-1])
	return nil
}

func (a *App) adminMenu(ctx context.Context, ad *session.Admin) error {
	ops := ad.Menu()
	n, err := a.choose("Administrator menu - "+ad.Identity().FullName(), labels(ops), "Log out")
	if err != nil {
		return err
	}
	if n == 0 {
		return a.logout()
	}
	return a.step(a.adminOp(ctx, ad, ops[n-1]))
}

func (a *App) adminOp(ctx context.Context, ad *session.Admin, op session.AdminOp) error {
	switch op {
	case session.AdminViewProfile:
		return a.viewProfile(ctx, ad)
	case session.AdminEditProfile:
		return a.editProfile(ctx, ad)
	case session.AdminListAccounts:
		list, err := ad.Accounts(ctx)
		if err != nil {
			return err
		}
		a.showAccounts(list, "accounts")
	case session.AdminListPatients:
		list, err := ad.Patients(ctx)
		if err != nil {
			return err
		}
		a.showAccounts(list, "patients")
	case session.AdminListDoctors:
		list, err := ad.Doctors(ctx)
		if err != nil {
			return err
		}
		a.showAccounts(list, "doctors")
	case session.AdminViewAccount:
		username, err := a.required("Username")
		if err != nil {
			return err
		}
		acc, err := ad.Account(ctx, username)
		if err != nil {
			return err
		}
		a.showAccount(acc)
	case session.AdminCreateAccount:
		roles := auth.Roles()
		names := make([]string, len(roles))
		for i, r := range roles {
			names[i] = r.String()
		}
		n, err := a.choose("Account type", names, "Back")
		if err != nil || n == 0 {
			return err
		}
		in, err := a.newAccount(roles[n-1])
		if err != nil {
			return err
		}
		created, err := ad.CreateAccount(ctx, in)
		if err != nil {
			return err
		}
		a.ok("account %s created.", created.Username)
	case session.AdminEditAccount:
		username, err := a.required("Username")
		if err != nil {
			return err
		}
		acc, err := ad.Account(ctx, username)
		if err != nil {
			return err
		}
		u, err := a.readUpdate(acc)
		if err != nil {
			return err
		}
		if u == (account.Update{}) {
			a.info("Nothing to update.")
			return nil
		}
		if _, err := ad.UpdateAccount(ctx, acc.Username, u); err != nil {
			return err
		}
		a.ok("account %s updated.", acc.Username)
	case session.AdminDeleteAccount:
		username, err := a.required("Username")
		if err != nil {
			return err
		}
		if yes, err := a.confirm("Delete account " + username + "?"); err != nil || !yes {
			return err
		}
		if err := ad.DeleteAccount(ctx, username); err != nil {
			return err
		}
		a.ok("account %s deleted.", username)
	case session.AdminListSupplies:
		return a.listSupplies(ctx, ad)
	case session.AdminCreateSupply:
		return a.createSupply(ctx, ad)
	case session.AdminUpdateStock:
		return a.updateStock(ctx, ad)
	case session.AdminDeleteSupply:
		return a.deleteSupply(ctx, ad)
	}
	return nil
}

func (a *App) viewProfile(ctx context.Context, s profileOwner) error {
	acc, err := s.Profile(ctx)
	if err != nil {
		return err
	}
	a.showAccount(acc)
	return nil
}

func (a *App) editProfile(ctx context.Context, s profileOwner) error {
	acc, err := s.Profile(ctx)
	if err != nil {
		return err
	}
	u, err := a.readUpdate(acc)
	if err != nil {
		return err
	}
	if u == (account.Update{}) {
		a.info("Nothing to update.")
		return nil
	}
	if _, err := s.UpdateProfile(ctx, u); err != nil {
		return err
	}
	a.ok("profile updated.")
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// readUpdate prompts for every editable field of acc. Blank input keeps a
// value.
func (a *App) readUpdate(acc *account.Account) (account.Update, error) {
	var u account.Update
	var err error
	if u.Name, err = a.edit("Name", acc.Name, false); err != nil {
		return u, err
	}
	if u.Surname, err = a.edit("Surname", acc.Surname, false); err != nil {
		return u, err
	}
	if u.BirthDate, err = a.editDate("Birth date", acc.BirthDate); err != nil {
		return u, err
	}
	if u.Phone, err = a.edit("Phone", deref(acc.Phone), true); err != nil {
		return u, err
	}
	if u.Email, err = a.edit("Email", deref(acc.Email), true); err != nil {
		return u, err
	}

	if p, ok := acc.PatientProfile(); ok {
		if u.Locality, err = a.edit("Locality", deref(p.Locality), true); err != nil {
			return u, err
		}
	}
	if d, ok := acc.DoctorProfile(); ok {
		if u.Specialty, err = a.edit("Specialty", deref(d.Specialty), true); err != nil {
			return u, err
		}
		if u.OfficeHours, err = a.edit("Office hours", deref(d.OfficeHours), true); err != nil {
			return u, err
		}
		if u.HireDate, err = a.editDate("Hire date", d.HireDate); err != nil {
			return u, err
		}
	}
	return u, nil
}

func (a *App) listSupplies(ctx context.Context, inv inventory) error {
	list, err := inv.Supplies(ctx)
	if err != nil {
		return err
	}
	a.showSupplies(list)
	return nil
}

func (a *App) createSupply(ctx context.Context, inv inventory) error {
	var sp supply.Supply
	var err error
	if sp.Name, err = a.required("Name"); err != nil {
		return err
	}
	if sp.Category, err = a.required("Category"); err != nil {
		return err
	}
	if sp.Stock, err = a.count("Stock"); err != nil {
		return err
	}
	if sp.UnitCostUSD, err = a.amount("Unit cost (USD)"); err != nil {
		return err
	}
	if err := inv.CreateSupply(ctx, &sp); err != nil {
		return err
	}
	a.ok("supply %d created.", sp.ID)
	return nil
}

func (a *App) updateStock(ctx context.Context, inv inventory) error {
	id, err := a.id("Supply ID")
	if err != nil {
		return err
	}
	stock, err := a.count("New stock")
	if err != nil {
		return err
	}
	if err := inv.UpdateStock(ctx, id, stock); err != nil {
		return err
	}
	a.ok("stock of supply %d set to %d.", id, stock)
	return nil
}

func (a *App) deleteSupply(ctx context.Context, inv inventory) error {
	id, err := a.id("Supply ID")
	if err != nil {
		return err
	}
	if yes, err := a.confirm(fmt.Sprintf("Delete supply %d?", id)); err != nil || !yes {
		return err
	}
	if err := inv.DeleteSupply(ctx, id); err != nil {
		return err
	}
	a.ok("supply %d deleted.", id)
	return nil
}
