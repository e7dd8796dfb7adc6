package agenda

import (
	"strings"
	"time"
)

// Status of a schedule entry.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func Statuses() []Status {
	return []Status{StatusPending, StatusCompleted, StatusCancelled}
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus accepts a status name in any case; "canceled" is read as
// cancelled.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if st == "canceled" {
		st = StatusCancelled
	}
	if !st.Valid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// Person is the slice of an account shown next to a schedule entry.
type Person struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
}

func (p *Person) FullName() string {
	if p == nil {
		return ""
	}
	return p.Name + " " + p.Surname
}

// Entry maps to the agenda table.
type Entry struct {
	ID           int64     `db:"id" json:"id"`
	PatientID    int64     `db:"patient_id" json:"patient_id"`
	DoctorID     int64     `db:"doctor_id" json:"doctor_id"`
	ScheduledFor time.Time `db:"scheduled_for" json:"scheduled_for"`
	Status       Status    `db:"status" json:"status"`
	Patient      *Person   `db:"-" json:"patient,omitempty"`
	Doctor       *Person   `db:"-" json:"doctor,omitempty"`
}
