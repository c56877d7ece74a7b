package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/case-tracker/backend/internal/models"
	"github.com/google/uuid"
)

const caseColumns = `id, code, status, priority, service, responsible, summary,
	opened_at, closed_at, created_by, created_at, updated_at`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type CaseRepo struct {
	db DB
}

func NewCaseRepo(db DB) *CaseRepo {
	return &CaseRepo{db: db}
}

// Create inserts c and assigns its id. A taken code yields models.ErrConflict.
func (r *CaseRepo) Create(ctx context.Context, c *models.Case) error {
	err := querierFrom(ctx, r.db).QueryRow(ctx, `
		INSERT INTO cases (code, status, priority, service, responsible, summary,
		                   opened_at, closed_at, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`, c.Code, string(c.Status), string(c.Priority), c.Service, c.Responsible, c.Summary,
		c.OpenedAt, c.ClosedAt, c.CreatedBy, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	return mapError(err, "case", c.Code)
}

func (r *CaseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	row := querierFrom(ctx, r.db).QueryRow(ctx, `SELECT `+caseColumns+` FROM cases WHERE id = $1`, id)
	c, err := scanCase(row)
	if err != nil {
		return nil, mapError(err, "case", id.String())
	}
	return c, nil
}

func (r *CaseRepo) GetByCode(ctx context.Context, code string) (*models.Case, error) {
	row := querierFrom(ctx, r.db).QueryRow(ctx, `SELECT `+caseColumns+` FROM cases WHERE code = $1`, code)
	c, err := scanCase(row)
	if err != nil {
		return nil, mapError(err, "case", code)
	}
	return c, nil
}

// Update overwrites every scalar column of c. There is no version check.
func (r *CaseRepo) Update(ctx context.Context, c *models.Case) error {
	tag, err := querierFrom(ctx, r.db).Exec(ctx, `
		UPDATE cases SET code = $1, status = $2, priority = $3, service = $4, responsible = $5,
		       summary = $6, opened_at = $7, closed_at = $8, updated_at = $9
		WHERE id = $10
	`, c.Code, string(c.Status), string(c.Priority), c.Service, c.Responsible,
		c.Summary, c.OpenedAt, c.ClosedAt, c.UpdatedAt, c.ID)
	if err != nil {
		return mapError(err, "case", c.ID.String())
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("case %s: %w", c.ID, models.ErrNotFound)
	}
	return nil
}

func (r *CaseRepo) List(ctx context.Context, f models.CaseFilter) ([]models.Case, error) {
	q := psql.Select(caseColumns).From("cases")

	if f.Status != nil {
		q = q.Where(sq.Eq{"status": string(*f.Status)})
	}
	if f.Priority != nil {
		q = q.Where(sq.Eq{"priority": string(*f.Priority)})
	}
	if f.Service != "" {
		q = q.Where(sq.ILike{"service": "%" + f.Service + "%"})
	}
	if f.Responsible != "" {
		q = q.Where(sq.ILike{"responsible": "%" + f.Responsible + "%"})
	}
	if f.Search != "" {
		q = q.Where(sq.Or{
			sq.ILike{"summary": "%" + f.Search + "%"},
			sq.ILike{"code": "%" + f.Search + "%"},
		})
	}
	if f.UpdatedFrom != nil {
		q = q.Where(sq.GtOrEq{"updated_at": *f.UpdatedFrom})
	}
	if f.UpdatedTo != nil {
		q = q.Where(sq.LtOrEq{"updated_at": *f.UpdatedTo})
	}

	q = q.OrderBy("updated_at DESC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build case list query: %w", err)
	}

	rows, err := querierFrom(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	defer rows.Close()

	var cases []models.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		cases = append(cases, *c)
	}
	return cases, rows.Err()
}

func scanCase(row scanner) (*models.Case, error) {
	var c models.Case
	var status, priority string
	err := row.Scan(&c.ID, &c.Code, &status, &priority, &c.Service, &c.Responsible, &c.Summary,
		&c.OpenedAt, &c.ClosedAt, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Status = models.CaseStatus(status)
	c.Priority = models.Priority(priority)
	return &c, nil
}
