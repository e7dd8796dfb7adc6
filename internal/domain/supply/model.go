package supply

// Supply maps to the supply table. UnitCostUSD is the purchase price per
// unit in US dollars.
type Supply struct {
	ID          int64   `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Category    string  `db:"category" json:"category"`
	Stock       int     `db:"stock" json:"stock"`
	UnitCostUSD float64 `db:"unit_cost_usd" json:"unit_cost_usd"`
}
