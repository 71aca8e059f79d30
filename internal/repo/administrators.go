package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/bayworx/event-management-system-sub001/internal/model"
)

type AdministratorRepository interface {
	CreateAdministrator(ctx context.Context, a *model.Administrator) (int64, error)
	GetAdministratorByID(ctx context.Context, id int64) (*model.Administrator, error)
	GetAdministratorByEmail(ctx context.Context, email string) (*model.Administrator, error)
	ListAdministrators(ctx context.Context) ([]model.Administrator, error)
	TouchLastLogin(ctx context.Context, id int64) error
}

const administratorColumns = `id, name, email, roles, password, is_active, is_super_admin,
	department, last_login_at, created_at, updated_at`

// prefixed qualifies a column list with a table alias for joins.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

func scanAdministrator(row rowScanner) (*model.Administrator, error) {
	var a model.Administrator
	if err := row.Scan(
		&a.ID, &a.Name, &a.Email, &a.Roles, &a.PasswordHash, &a.IsActive, &a.IsSuperAdmin,
		&a.Department, &a.LastLoginAt, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) CreateAdministrator(ctx context.Context, a *model.Administrator) (int64, error) {
	query := `
		INSERT INTO administrators (name, email, roles, password, is_active, is_super_admin, department)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7)
		RETURNING id, email, created_at, updated_at
	`
	err := r.db.Master.QueryRowContext(ctx, query,
		a.Name, a.Email, a.Roles, a.PasswordHash, a.IsActive, a.IsSuperAdmin, a.Department,
	).Scan(&a.ID, &a.Email, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert administrator: %w", classify(err, nil))
	}
	return a.ID, nil
}

func (r *repository) GetAdministratorByID(ctx context.Context, id int64) (*model.Administrator, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+administratorColumns+` FROM administrators WHERE id = $1`, id)
	a, err := scanAdministrator(row)
	if err != nil {
		return nil, classify(err, ErrAdministratorNotFound)
	}
	return a, nil
}

func (r *repository) GetAdministratorByEmail(ctx context.Context, email string) (*model.Administrator, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+administratorColumns+` FROM administrators WHERE email = lower($1)`, email)
	a, err := scanAdministrator(row)
	if err != nil {
		return nil, classify(err, ErrAdministratorNotFound)
	}
	return a, nil
}

func (r *repository) ListAdministrators(ctx context.Context) ([]model.Administrator, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+administratorColumns+` FROM administrators ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get administrators: %w", err)
	}
	defer rows.Close()

	var admins []model.Administrator
	for rows.Next() {
		a, err := scanAdministrator(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan administrator: %w", err)
		}
		admins = append(admins, *a)
	}
	return admins, rows.Err()
}

func (r *repository) TouchLastLogin(ctx context.Context, id int64) error {
	res, err := r.db.Master.ExecContext(ctx, `UPDATE administrators SET last_login_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAdministratorNotFound
	}
	return nil
}
