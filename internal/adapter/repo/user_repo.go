package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"colorspot-server/internal/domain"
	"colorspot-server/internal/infra"
	"colorspot-server/internal/sqlinline"
)

// UserRepositoryPG implements domain.UserRepository backed by PostgreSQL.
type UserRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewUserRepository(sql infra.SQLExecutor) *UserRepositoryPG {
	return &UserRepositoryPG{sql: sql}
}

// Create inserts a new local account. A duplicate email surfaces as
// domain.ErrEmailTaken.
func (r *UserRepositoryPG) Create(ctx context.Context, user *domain.User) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertUser,
		user.ID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.GoogleSub,
		user.Locale,
		user.Role,
		user.Plan,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("users: create: %w", err)
	}
	return nil
}

// GetByID fetches a user by UUID.
func (r *UserRepositoryPG) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectUserByID, id)
	return scanUser(row)
}

// GetByEmail fetches a user by email, case-insensitively.
func (r *UserRepositoryPG) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectUserByEmail, email)
	return scanUser(row)
}

// UpsertByGoogleSub inserts or refreshes an account from Google sign-in claims.
func (r *UserRepositoryPG) UpsertByGoogleSub(ctx context.Context, user *domain.User) (*domain.User, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QUpsertGoogleUser,
		user.ID,
		user.Email,
		user.Name,
		user.GoogleSub,
		user.Locale,
	)
	return scanUser(row)
}

// SetPlan updates the user's billing plan.
func (r *UserRepositoryPG) SetPlan(ctx context.Context, userID string, plan domain.UserPlan) error {
	if _, err := r.sql.Exec(ctx, sqlinline.QUpdateUserPlan, userID, plan); err != nil {
		return fmt.Errorf("users: set plan: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.GoogleSub, &u.Locale, &u.Role, &u.Plan, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ domain.UserRepository = (*UserRepositoryPG)(nil)
