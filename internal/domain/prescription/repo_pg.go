package prescription

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediplus/clinic/internal/platform/db"
)

type prescriptionRepoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &prescriptionRepoPG{pool: pool}
}

func (r *prescriptionRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const prescriptionSelect = `SELECT r.id, r.patient_id, r.doctor_id, r.description, r.medications, r.cost_clp,
	pa.username, pa.name, pa.surname,
	da.username, da.name, da.surname
	FROM prescription r
	JOIN account pa ON pa.id = r.patient_id
	JOIN account da ON da.id = r.doctor_id`

func (r *prescriptionRepoPG) scanPrescription(row pgx.Row) (*Prescription, error) {
	var p Prescription
	patient, doctor := &Person{}, &Person{}
	err := row.Scan(&p.ID, &p.PatientID, &p.DoctorID, &p.Description, &p.Medications, &p.CostCLP,
		&patient.Username, &patient.Name, &patient.Surname,
		&doctor.Username, &doctor.Name, &doctor.Surname)
	if err != nil {
		return nil, err
	}
	patient.ID, doctor.ID = p.PatientID, p.DoctorID
	p.Patient, p.Doctor = patient, doctor
	return &p, nil
}

func (r *prescriptionRepoPG) Create(ctx context.Context, p *Prescription) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO prescription (patient_id, doctor_id, description, medications, cost_clp)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		p.PatientID, p.DoctorID, p.Description, p.Medications, p.CostCLP,
	).Scan(&p.ID)
}

func (r *prescriptionRepoPG) GetByID(ctx context.Context, id int64) (*Prescription, error) {
	p, err := r.scanPrescription(r.conn(ctx).QueryRow(ctx, prescriptionSelect+` WHERE r.id = $1`, id))
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *prescriptionRepoPG) query(ctx context.Context, sql string, args ...interface{}) ([]*Prescription, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Prescription
	for rows.Next() {
		p, err := r.scanPrescription(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *prescriptionRepoPG) List(ctx context.Context) ([]*Prescription, error) {
	return r.query(ctx, prescriptionSelect+` ORDER BY r.id ASC`)
}

func (r *prescriptionRepoPG) ListByPatient(ctx context.Context, username string) ([]*Prescription, error) {
	return r.query(ctx, prescriptionSelect+` WHERE pa.username = $1 ORDER BY r.id ASC`, username)
}

func (r *prescriptionRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM prescription WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *prescriptionRepoPG) AddItem(ctx context.Context, it *Item) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO prescription_supply (prescription_id, supply_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id`,
		it.PrescriptionID, it.SupplyID, it.Quantity,
	).Scan(&it.ID)
}

func (r *prescriptionRepoPG) Items(ctx context.Context, prescriptionID int64) ([]*Item, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT ps.id, ps.prescription_id, ps.supply_id, ps.quantity, s.name, s.category, s.unit_cost_usd
		FROM prescription_supply ps
		JOIN supply s ON s.id = ps.supply_id
		WHERE ps.prescription_id = $1
		ORDER BY ps.id ASC`, prescriptionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.PrescriptionID, &it.SupplyID, &it.Quantity,
			&it.SupplyName, &it.SupplyCategory, &it.UnitCostUSD); err != nil {
			return nil, err
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}
