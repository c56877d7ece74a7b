package repositories

import (
	"context"
	"fmt"

	"github.com/case-tracker/backend/internal/models"
	"github.com/google/uuid"
)

// UserRepo reads the user directory. Accounts are managed elsewhere.
type UserRepo struct {
	db DB
}

func NewUserRepo(db DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := querierFrom(ctx, r.db).QueryRow(ctx, `
		SELECT id, name, email, role, is_active, created_at
		FROM users WHERE id = $1
	`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapError(err, "user", id.String())
	}
	return u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := querierFrom(ctx, r.db).QueryRow(ctx, `
		SELECT id, name, email, role, is_active, created_at
		FROM users WHERE email = $1
	`, email)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapError(err, "user", email)
	}
	return u, nil
}

// NamesByIDs resolves display names; unknown ids are absent from the map.
func (r *UserRepo) NamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	rows, err := querierFrom(ctx, r.db).Query(ctx, `SELECT id, name FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve user names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   uuid.UUID
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan user name: %w", err)
		}
		names[id] = name
	}
	return names, rows.Err()
}

func scanUser(row scanner) (*models.User, error) {
	var u models.User
	var role string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &u.IsActive, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	return &u, nil
}
