package account

import (
	"time"

	"github.com/mediplus/clinic/internal/platform/auth"
)

// DefaultOfficeHours is used for doctors created without office hours.
const DefaultOfficeHours = "09:00-18:00"

// Account maps to the account table. Profile holds the role-specific
// sub-record: *PatientProfile for patients, *DoctorProfile for doctors and
// nil for administrators.
type Account struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name"`
	Surname      string    `db:"surname" json:"surname"`
	BirthDate    time.Time `db:"birth_date" json:"birth_date"`
	Role         auth.Role `db:"role" json:"role"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	Email        *string   `db:"email" json:"email,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	Profile      Profile   `db:"-" json:"profile,omitempty"`
}

func (a *Account) FullName() string {
	return a.Name + " " + a.Surname
}

// Identity strips the account down to what a session needs.
func (a *Account) Identity() auth.Identity {
	return auth.Identity{
		ID:        a.ID,
		Username:  a.Username,
		Name:      a.Name,
		Surname:   a.Surname,
		BirthDate: a.BirthDate,
		Role:      a.Role,
	}
}

func (a *Account) PatientProfile() (*PatientProfile, bool) {
	p, ok := a.Profile.(*PatientProfile)
	return p, ok && p != nil
}

func (a *Account) DoctorProfile() (*DoctorProfile, bool) {
	d, ok := a.Profile.(*DoctorProfile)
	return d, ok && d != nil
}

// Profile is implemented only by *PatientProfile and *DoctorProfile.
type Profile interface {
	role() auth.Role
}

// PatientProfile maps to the patient table.
type PatientProfile struct {
	Locality   *string   `db:"locality" json:"locality,omitempty"`
	FirstVisit time.Time `db:"first_visit" json:"first_visit"`
}

func (*PatientProfile) role() auth.Role { return auth.RolePatient }

// DoctorProfile maps to the doctor table.
type DoctorProfile struct {
	Specialty   *string   `db:"specialty" json:"specialty,omitempty"`
	OfficeHours *string   `db:"office_hours" json:"office_hours,omitempty"`
	HireDate    time.Time `db:"hire_date" json:"hire_date"`
}

func (*DoctorProfile) role() auth.Role { return auth.RoleDoctor }

// NewAccount is the input to account creation. Profile may be nil, in which
// case the sub-record for a patient or doctor is created with defaults.
type NewAccount struct {
	Username  string
	Password  string
	Name      string
	Surname   string
	BirthDate time.Time
	Role      auth.Role
	Phone     string
	Email     string
	Profile   Profile
}

// CreateOptions carries the caller's authority. Only administrator sessions
// and operator tools set AllowAdministrator.
type CreateOptions struct {
	AllowAdministrator bool
}

// Update lists the fields to change. A nil pointer keeps the stored value.
// For Phone, Email, Locality, Specialty and OfficeHours an empty string
// clears the column. The role is not updatable.
type Update struct {
	Name        *string
	Surname     *string
	BirthDate   *time.Time
	Phone       *string
	Email       *string
	Locality    *string
	FirstVisit  *time.Time
	Specialty   *string
	OfficeHours *string
	HireDate    *time.Time
}

func (u Update) touchesAccount() bool {
	return u.Name != nil || u.Surname != nil || u.BirthDate != nil || u.Phone != nil || u.Email != nil
}

func (u Update) touchesPatient() bool {
	return u.Locality != nil || u.FirstVisit != nil
}

func (u Update) touchesDoctor() bool {
	return u.Specialty != nil || u.OfficeHours != nil || u.HireDate != nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
