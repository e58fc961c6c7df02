package payer

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moonlitpsych/moonlit-scheduler-sub007/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const payerCols = `id, name, payer_type, credentialing_status, effective_date, projected_effective_date,
	requires_attending, requires_individual_contract, state_coverage, notes, created_at, updated_at`

func (r *repoPG) scanPayer(row pgx.Row) (*Payer, error) {
	var p Payer
	err := row.Scan(&p.ID, &p.Name, &p.PayerType, &p.CredentialingStatus, &p.EffectiveDate,
		&p.ProjectedEffectiveDate, &p.RequiresAttending, &p.RequiresIndividualContract,
		&p.StateCoverage, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Payer) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO payer (id, name, payer_type, credentialing_status, effective_date,
			projected_effective_date, requires_attending, requires_individual_contract, state_coverage, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.Name, p.PayerType, p.CredentialingStatus, p.EffectiveDate,
		p.ProjectedEffectiveDate, p.RequiresAttending, p.RequiresIndividualContract, p.StateCoverage, p.Notes)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Payer, error) {
	return r.scanPayer(r.conn(ctx).QueryRow(ctx, `SELECT `+payerCols+` FROM payer WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, p *Payer) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE payer SET name=$2, payer_type=$3, credentialing_status=$4, effective_date=$5,
			projected_effective_date=$6, requires_attending=$7, requires_individual_contract=$8,
			state_coverage=$9, notes=$10, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.PayerType, p.CredentialingStatus, p.EffectiveDate,
		p.ProjectedEffectiveDate, p.RequiresAttending, p.RequiresIndividualContract, p.StateCoverage, p.Notes)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Payer, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM payer`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+payerCols+` FROM payer ORDER BY name ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Payer
	for rows.Next() {
		p, err := r.scanPayer(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}

func (r *repoPG) SearchByName(ctx context.Context, q string) ([]*Payer, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+payerCols+` FROM payer WHERE name ILIKE $1 ORDER BY name ASC`, "%"+q+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Payer
	for rows.Next() {
		p, err := r.scanPayer(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, nil
}
