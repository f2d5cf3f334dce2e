package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/dberrors"
)

// StaffRepository handles database operations for staff users
type StaffRepository struct {
	db *pgxpool.Pool
}

// NewStaffRepository creates a new StaffRepository
func NewStaffRepository(db *pgxpool.Pool) *StaffRepository {
	return &StaffRepository{db: db}
}

// Create stores a new staff user
func (r *StaffRepository) Create(ctx context.Context, staff *models.StaffUser) error {
	sql, args, err := squirrel.Insert("staff_users").
		Columns("email", "password_hash", "full_name", "role", "is_active").
		Values(staff.Email, staff.PasswordHash, staff.FullName, string(staff.Role), staff.IsActive).
		Suffix("RETURNING id, created_at, updated_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&staff.ID, &staff.CreatedAt, &staff.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "staff_users_email_key") {
			return apperrors.ErrStaffExists
		}
		return fmt.Errorf("error inserting staff user: %w", err)
	}
	return nil
}

// GetByEmail retrieves a staff user by email
func (r *StaffRepository) GetByEmail(ctx context.Context, email string) (*models.StaffUser, error) {
	sql, args, err := squirrel.Select("id", "email", "password_hash", "full_name", "role", "is_active", "created_at", "updated_at").
		From("staff_users").
		Where("LOWER(email) = LOWER(?)", email).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var (
		staff models.StaffUser
		role  string
	)
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&staff.ID,
		&staff.Email,
		&staff.PasswordHash,
		&staff.FullName,
		&role,
		&staff.IsActive,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStaffNotFound
		}
		return nil, fmt.Errorf("error retrieving staff user: %w", err)
	}
	staff.Role = models.RoleType(role)
	return &staff, nil
}

// EmailExists checks if a staff user with the given email exists
func (r *StaffRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM staff_users WHERE LOWER(email) = LOWER($1))`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking staff email: %w", err)
	}
	return exists, nil
}
