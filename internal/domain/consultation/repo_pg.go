package consultation

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediplus/clinic/internal/platform/db"
)

type consultationRepoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &consultationRepoPG{pool: pool}
}

func (r *consultationRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const consultationSelect = `SELECT c.id, c.patient_id, c.doctor_id, c.prescription_id, c.date, c.comments, c.value,
	pa.username, pa.name, pa.surname,
	da.username, da.name, da.surname
	FROM consultation c
	JOIN account pa ON pa.id = c.patient_id
	JOIN account da ON da.id = c.doctor_id`

const newestFirst = ` ORDER BY c.date DESC, c.id DESC`

func (r *consultationRepoPG) scanConsultation(row pgx.Row) (*Consultation, error) {
	var c Consultation
	patient, doctor := &Person{}, &Person{}
	err := row.Scan(&c.ID, &c.PatientID, &c.DoctorID, &c.PrescriptionID, &c.Date, &c.Comments, &c.Value,
		&patient.Username, &patient.Name, &patient.Surname,
		&doctor.Username, &doctor.Name, &doctor.Surname)
	if err != nil {
		return nil, err
	}
	patient.ID, doctor.ID = c.PatientID, c.DoctorID
	c.Patient, c.Doctor = patient, doctor
	return &c, nil
}

func (r *consultationRepoPG) Create(ctx context.Context, c *Consultation) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO consultation (patient_id, doctor_id, prescription_id, date, comments, value)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		c.PatientID, c.DoctorID, c.PrescriptionID, c.Date, c.Comments, c.Value,
	).Scan(&c.ID)
}

func (r *consultationRepoPG) GetByID(ctx context.Context, id int64) (*Consultation, error) {
	c, err := r.scanConsultation(r.conn(ctx).QueryRow(ctx, consultationSelect+` WHERE c.id = $1`, id))
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	return c, err
}

func (r *consultationRepoPG) query(ctx context.Context, sql string, args ...interface{}) ([]*Consultation, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Consultation
	for rows.Next() {
		c, err := r.scanConsultation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (r *consultationRepoPG) List(ctx context.Context) ([]*Consultation, error) {
	return r.query(ctx, consultationSelect+newestFirst)
}

func (r *consultationRepoPG) ListByPatient(ctx context.Context, username string) ([]*Consultation, error) {
	return r.query(ctx, consultationSelect+` WHERE pa.username = $1`+newestFirst, username)
}

func (r *consultationRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM consultation WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
