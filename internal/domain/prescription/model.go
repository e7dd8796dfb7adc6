package prescription

// Person is the slice of an account shown next to clinical records.
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

// Prescription maps to the prescription table. PatientID and DoctorID are
// account ids. Patient and Doctor are filled by reads.
type Prescription struct {
	ID          int64   `db:"id" json:"id"`
	PatientID   int64   `db:"patient_id" json:"patient_id"`
	DoctorID    int64   `db:"doctor_id" json:"doctor_id"`
	Description string  `db:"description" json:"description"`
	Medications string  `db:"medications" json:"medications"`
	CostCLP     float64 `db:"cost_clp" json:"cost_clp"`
	Patient     *Person `db:"-" json:"patient,omitempty"`
	Doctor      *Person `db:"-" json:"doctor,omitempty"`
}

// Persisted reports whether the prescription has been stored.
func (p *Prescription) Persisted() bool {
	return p != nil && p.ID > 0
}

// Item is a prescription_supply row with the linked supply attached.
type Item struct {
	ID             int64   `db:"id" json:"id"`
	PrescriptionID int64   `db:"prescription_id" json:"prescription_id"`
	SupplyID       int64   `db:"supply_id" json:"supply_id"`
	Quantity       int     `db:"quantity" json:"quantity"`
	SupplyName     string  `db:"-" json:"supply_name"`
	SupplyCategory string  `db:"-" json:"supply_category"`
	UnitCostUSD    float64 `db:"-" json:"unit_cost_usd"`
}
