package agenda

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediplus/clinic/internal/platform/db"
)

type agendaRepoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &agendaRepoPG{pool: pool}
}

func (r *agendaRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const entrySelect = `SELECT g.id, g.patient_id, g.doctor_id, g.scheduled_for, g.status,
	pa.username, pa.name, pa.surname,
	da.username, da.name, da.surname
	FROM agenda g
	JOIN account pa ON pa.id = g.patient_id
	JOIN account da ON da.id = g.doctor_id`

const earliestFirst = ` ORDER BY g.scheduled_for ASC, g.id ASC`

func (r *agendaRepoPG) scanEntry(row pgx.Row) (*Entry, error) {
	var (
		e      Entry
		status string
	)
	patient, doctor := &Person{}, &Person{}
	err := row.Scan(&e.ID, &e.PatientID, &e.DoctorID, &e.ScheduledFor, &status,
		&patient.Username, &patient.Name, &patient.Surname,
		&doctor.Username, &doctor.Name, &doctor.Surname)
	if err != nil {
		return nil, err
	}
	e.Status = Status(status)
	patient.ID, doctor.ID = e.PatientID, e.DoctorID
	e.Patient, e.Doctor = patient, doctor
	return &e, nil
}

func (r *agendaRepoPG) Create(ctx context.Context, e *Entry) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO agenda (patient_id, doctor_id, scheduled_for, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		e.PatientID, e.DoctorID, e.ScheduledFor, string(e.Status),
	).Scan(&e.ID)
}

func (r *agendaRepoPG) GetByID(ctx context.Context, id int64) (*Entry, error) {
	e, err := r.scanEntry(r.conn(ctx).QueryRow(ctx, entrySelect+` WHERE g.id = $1`, id))
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	return e, err
}

func (r *agendaRepoPG) query(ctx context.Context, sql string, args ...interface{}) ([]*Entry, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Entry
	for rows.Next() {
		e, err := r.scanEntry(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (r *agendaRepoPG) List(ctx context.Context) ([]*Entry, error) {
	return r.query(ctx, entrySelect+earliestFirst)
}

func (r *agendaRepoPG) ListByPatient(ctx context.Context, username string) ([]*Entry, error) {
	return r.query(ctx, entrySelect+` WHERE pa.username = $1`+earliestFirst, username)
}

func (r *agendaRepoPG) ListByDoctor(ctx context.Context, doctorID int64) ([]*Entry, error) {
	return r.query(ctx, entrySelect+` WHERE g.doctor_id = $1`+earliestFirst, doctorID)
}

func (r *agendaRepoPG) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE agenda SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *agendaRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM agenda WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
