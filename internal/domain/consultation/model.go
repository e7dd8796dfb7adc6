package consultation

import "time"

// Person is the slice of an account shown next to a consultation.
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

// Consultation maps to the consultation table. PrescriptionID is nil when no
// prescription was issued or it has since been deleted.
type Consultation struct {
	ID             int64     `db:"id" json:"id"`
	PatientID      int64     `db:"patient_id" json:"patient_id"`
	DoctorID       int64     `db:"doctor_id" json:"doctor_id"`
	PrescriptionID *int64    `db:"prescription_id" json:"prescription_id,omitempty"`
	Date           time.Time `db:"date" json:"date"`
	Comments       string    `db:"comments" json:"comments"`
	Value          float64   `db:"value" json:"value"`
	Patient        *Person   `db:"-" json:"patient,omitempty"`
	Doctor         *Person   `db:"-" json:"doctor,omitempty"`
}
