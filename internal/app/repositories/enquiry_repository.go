package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
)

var enquiryColumns = []string{
	"id", "enquiry_number", "student_name", "parent_name", "class_applied",
	"mobile_number", "location", "email", "message", "status", "created_at", "updated_at",
}

// EnquiryFilter narrows an enquiry listing. A nil Status lists every status.
type EnquiryFilter struct {
	Status *models.Status
	Offset uint64
	Limit  int
}

// EnquiryRepository handles database operations for enquiries
type EnquiryRepository struct {
	db     *pgxpool.Pool
	prefix string
}

// NewEnquiryRepository creates a new EnquiryRepository. prefix is prepended to the sequence value, e.g. "ENQ-".
func NewEnquiryRepository(db *pgxpool.Pool, prefix string) *EnquiryRepository {
	return &EnquiryRepository{db: db, prefix: prefix}
}

func insertEnquiryQuery(prefix string, e *models.Enquiry) squirrel.InsertBuilder {
	return squirrel.Insert("enquiries").
		Columns("enquiry_number", "student_name", "parent_name", "class_applied",
			"mobile_number", "location", "email", "message", "status").
		Values(
			squirrel.Expr("?::text || nextval('enquiry_number_seq')::text", prefix),
			e.StudentName, e.ParentName, e.ClassApplied,
			e.MobileNumber, e.Location, e.Email, e.Message, e.Status,
		).
		Suffix("RETURNING id, enquiry_number, created_at, updated_at").
		PlaceholderFormat(squirrel.Dollar)
}

// Create stores a new enquiry and fills in the generated id, number and timestamps.
func (r *EnquiryRepository) Create(ctx context.Context, e *models.Enquiry) error {
	sql, args, err := insertEnquiryQuery(r.prefix, e).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&e.ID, &e.EnquiryNumber, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error inserting enquiry: %w", err)
	}
	return nil
}

func scanEnquiry(row pgx.Row) (*models.Enquiry, error) {
	var e models.Enquiry
	err := row.Scan(
		&e.ID,
		&e.EnquiryNumber,
		&e.StudentName,
		&e.ParentName,
		&e.ClassApplied,
		&e.MobileNumber,
		&e.Location,
		&e.Email,
		&e.Message,
		&e.Status,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EnquiryRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Enquiry, error) {
	sql, args, err := squirrel.Select(enquiryColumns...).
		From("enquiries").
		Where(where).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	e, err := scanEnquiry(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEnquiryNotFound
		}
		return nil, fmt.Errorf("error retrieving enquiry: %w", err)
	}
	return e, nil
}

// GetByNumber retrieves an enquiry by its exact enquiry number.
func (r *EnquiryRepository) GetByNumber(ctx context.Context, number string) (*models.Enquiry, error) {
	return r.getOne(ctx, squirrel.Eq{"enquiry_number": number})
}

// GetByID retrieves an enquiry by ID
func (r *EnquiryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Enquiry, error) {
	return r.getOne(ctx, squirrel.Expr("id = ?", id))
}

func listEnquiriesQuery(filter EnquiryFilter) squirrel.SelectBuilder {
	query := squirrel.Select(append(enquiryColumns, "COUNT(*) OVER()")...).
		From("enquiries").
		OrderBy("created_at DESC", "enquiry_number DESC").
		PlaceholderFormat(squirrel.Dollar)

	if filter.Status != nil {
		query = query.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit)).Offset(filter.Offset)
	}
	return query
}

// List returns one page of enquiries, newest first, and the total number of matches.
func (r *EnquiryRepository) List(ctx context.Context, filter EnquiryFilter) ([]*models.Enquiry, int64, error) {
	sql, args, err := listEnquiriesQuery(filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	enquiries := make([]*models.Enquiry, 0)
	var total int64
	for rows.Next() {
		var e models.Enquiry
		if err := rows.Scan(
			&e.ID,
			&e.EnquiryNumber,
			&e.StudentName,
			&e.ParentName,
			&e.ClassApplied,
			&e.MobileNumber,
			&e.Location,
			&e.Email,
			&e.Message,
			&e.Status,
			&e.CreatedAt,
			&e.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("error scanning row: %w", err)
		}
		enquiries = append(enquiries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating rows: %w", err)
	}

	if len(enquiries) == 0 && filter.Offset > 0 {
		total, err = r.count(ctx, filter.Status)
		if err != nil {
			return nil, 0, err
		}
	}

	return enquiries, total, nil
}

func (r *EnquiryRepository) count(ctx context.Context, status *models.Status) (int64, error) {
	query := squirrel.Select("COUNT(*)").From("enquiries").PlaceholderFormat(squirrel.Dollar)
	if status != nil {
		query = query.Where(squirrel.Eq{"status": *status})
	}
	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("error counting enquiries: %w", err)
	}
	return total, nil
}

// UpdateStatus sets the status of an enquiry and returns the updated record.
func (r *EnquiryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) (*models.Enquiry, error) {
	sql, args, err := squirrel.Update("enquiries").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Expr("id = ?", id)).
		Suffix("RETURNING " + joinColumns(enquiryColumns)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	e, err := scanEnquiry(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEnquiryNotFound
		}
		return nil, fmt.Errorf("error updating enquiry status: %w", err)
	}
	return e, nil
}
