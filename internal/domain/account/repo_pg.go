package account

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediplus/clinic/internal/platform/auth"
	"github.com/mediplus/clinic/internal/platform/db"
)

type accountRepoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &accountRepoPG{pool: pool}
}

func (r *accountRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const accountSelect = `SELECT a.id, a.username, a.password_hash, a.name, a.surname, a.birth_date,
	a.role, a.phone, a.email, a.created_at,
	p.account_id, p.locality, p.first_visit,
	d.account_id, d.specialty, d.office_hours, d.hire_date
	FROM account a
	LEFT JOIN patient p ON p.account_id = a.id
	LEFT JOIN doctor d ON d.account_id = a.id`

func (r *accountRepoPG) scanAccount(row pgx.Row) (*Account, error) {
	var (
		a                  Account
		role               string
		patientID, docID   *int64
		locality           *string
		firstVisit         *time.Time
		specialty, officeH *string
		hireDate           *time.Time
	)
	err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Name, &a.Surname, &a.BirthDate,
		&role, &a.Phone, &a.Email, &a.CreatedAt,
		&patientID, &locality, &firstVisit,
		&docID, &specialty, &officeH, &hireDate)
	if err != nil {
		return nil, err
	}
	a.Role = auth.Role(role)

	switch {
	case patientID != nil:
		p := &PatientProfile{Locality: locality}
		if firstVisit != nil {
			p.FirstVisit = *firstVisit
		}
		a.Profile = p
	case docID != nil:
		d := &DoctorProfile{Specialty: specialty, OfficeHours: officeH}
		if hireDate != nil {
			d.HireDate = *hireDate
		}
		a.Profile = d
	}
	return &a, nil
}

func (r *accountRepoPG) Create(ctx context.Context, a *Account) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO account (username, password_hash, name, surname, birth_date, role, phone, email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		a.Username, a.PasswordHash, a.Name, a.Surname, a.BirthDate, string(a.Role), a.Phone, a.Email,
	).Scan(&a.ID, &a.CreatedAt)
}

func (r *accountRepoPG) CreatePatient(ctx context.Context, accountID int64, p *PatientProfile) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient (account_id, locality, first_visit) VALUES ($1, $2, $3)`,
		accountID, p.Locality, p.FirstVisit)
	return err
}

func (r *accountRepoPG) CreateDoctor(ctx context.Context, accountID int64, d *DoctorProfile) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO doctor (account_id, specialty, office_hours, hire_date) VALUES ($1, $2, $3, $4)`,
		accountID, d.Specialty, d.OfficeHours, d.HireDate)
	return err
}

func (r *accountRepoPG) get(ctx context.Context, where string, arg interface{}) (*Account, error) {
	a, err := r.scanAccount(r.conn(ctx).QueryRow(ctx, accountSelect+` WHERE `+where, arg))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *accountRepoPG) GetByUsername(ctx context.Context, username string) (*Account, error) {
	return r.get(ctx, `a.username = $1`, username)
}

func (r *accountRepoPG) GetByID(ctx context.Context, id int64) (*Account, error) {
	return r.get(ctx, `a.id = $1`, id)
}

func (r *accountRepoPG) List(ctx context.Context, role auth.Role) ([]*Account, error) {
	query := accountSelect
	var args []interface{}
	if role != "" {
		query += ` WHERE a.role = $1`
		args = append(args, string(role))
	}
	query += ` ORDER BY a.name ASC, a.surname ASC, a.id ASC`

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Account
	for rows.Next() {
		a, err := r.scanAccount(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *accountRepoPG) Update(ctx context.Context, a *Account) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE account SET name = $2, surname = $3, birth_date = $4, phone = $5, email = $6
		WHERE id = $1`,
		a.ID, a.Name, a.Surname, a.BirthDate, a.Phone, a.Email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *accountRepoPG) UpdatePatient(ctx context.Context, accountID int64, p *PatientProfile) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET locality = $2, first_visit = $3 WHERE account_id = $1`,
		accountID, p.Locality, p.FirstVisit)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("patient profile %d: %w", accountID, ErrNotFound)
	}
	return nil
}

func (r *accountRepoPG) UpdateDoctor(ctx context.Context, accountID int64, d *DoctorProfile) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE doctor SET specialty = $2, office_hours = $3, hire_date = $4 WHERE account_id = $1`,
		accountID, d.Specialty, d.OfficeHours, d.HireDate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("doctor profile %d: %w", accountID, ErrNotFound)
	}
	return nil
}

func (r *accountRepoPG) DeletePatient(ctx context.Context, accountID int64) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient WHERE account_id = $1`, accountID)
	return tag.RowsAffected(), err
}

func (r *accountRepoPG) DeleteDoctor(ctx context.Context, accountID int64) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM doctor WHERE account_id = $1`, accountID)
	return tag.RowsAffected(), err
}

func (r *accountRepoPG) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM account WHERE id = $1`, id)
	return tag.RowsAffected(), err
}
