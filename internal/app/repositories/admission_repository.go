package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/dberrors"
)

// AdmissionEnquiryConstraint enforces one admission per enquiry.
const AdmissionEnquiryConstraint = "admissions_enquiry_number_key"

var admissionColumns = []string{
	"id", "enquiry_number", "admission_no",
	"student_name", "class", "session", "gender", "date_of_birth", "date_of_birth_in_words", "blood_group",
	"father_name", "father_occupation", "father_qualification", "father_mobile", "father_email",
	"mother_name", "mother_occupation", "mother_qualification", "mother_mobile", "mother_email",
	"residential_address", "permanent_address", "city", "state", "pin_code",
	"previous_school", "previous_class", "previous_board",
	"is_single_girl_child", "is_specially_abled", "is_ews", "category", "aadhar_no",
	"siblings", "academics",
	"photo_url", "photo_public_id", "birth_certificate_url", "birth_certificate_public_id",
	"status", "created_at", "updated_at",
}

// AdmissionFilter narrows an admission listing. A nil Status lists every status.
type AdmissionFilter struct {
	Status *models.Status
	Offset uint64
	Limit  int // 0 means no limit
}

// AdmissionRepository handles database operations for admissions
type AdmissionRepository struct {
	db *pgxpool.Pool
}

// NewAdmissionRepository creates a new AdmissionRepository
func NewAdmissionRepository(db *pgxpool.Pool) *AdmissionRepository {
	return &AdmissionRepository{db: db}
}

func insertAdmissionQuery(a *models.Admission) (squirrel.InsertBuilder, error) {
	siblings, err := marshalList(a.Siblings)
	if err != nil {
		return squirrel.InsertBuilder{}, fmt.Errorf("error encoding siblings: %w", err)
	}
	academics, err := marshalList(a.Academics)
	if err != nil {
		return squirrel.InsertBuilder{}, fmt.Errorf("error encoding academics: %w", err)
	}

	return squirrel.Insert("admissions").
		SetMap(map[string]interface{}{
			"enquiry_number":              a.EnquiryNumber,
			"admission_no":                a.AdmissionNo,
			"student_name":                a.StudentName,
			"class":                       a.Class,
			"session":                     a.Session,
			"gender":                      a.Gender,
			"date_of_birth":               a.DateOfBirth,
			"date_of_birth_in_words":      a.DateOfBirthInWords,
			"blood_group":                 a.BloodGroup,
			"father_name":                 a.Father.Name,
			"father_occupation":           a.Father.Occupation,
			"father_qualification":        a.Father.Qualification,
			"father_mobile":               a.Father.Mobile,
			"father_email":                a.Father.Email,
			"mother_name":                 a.Mother.Name,
			"mother_occupation":           a.Mother.Occupation,
			"mother_qualification":        a.Mother.Qualification,
			"mother_mobile":               a.Mother.Mobile,
			"mother_email":                a.Mother.Email,
			"residential_address":         a.ResidentialAddress,
			"permanent_address":           a.PermanentAddress,
			"city":                        a.City,
			"state":                       a.State,
			"pin_code":                    a.PinCode,
			"previous_school":             a.PreviousSchool,
			"previous_class":              a.PreviousClass,
			"previous_board":              a.PreviousBoard,
			"is_single_girl_child":        a.IsSingleGirlChild,
			"is_specially_abled":          a.IsSpeciallyAbled,
			"is_ews":                      a.IsEWS,
			"category":                    string(a.Category),
			"aadhar_no":                   a.AadharNo,
			"siblings":                    squirrel.Expr("?::jsonb", siblings),
			"academics":                   squirrel.Expr("?::jsonb", academics),
			"photo_url":                   a.PhotoURL,
			"photo_public_id":             a.PhotoPublicID,
			"birth_certificate_url":       a.BirthCertificateURL,
			"birth_certificate_public_id": a.BirthCertificatePublicID,
			"status":                      string(a.Status),
		}).
		Suffix("RETURNING id, created_at, updated_at").
		PlaceholderFormat(squirrel.Dollar), nil
}

// Create stores a new admission. A second admission for the same enquiry returns apperrors.ErrAdmissionExists.
func (r *AdmissionRepository) Create(ctx context.Context, a *models.Admission) error {
	query, err := insertAdmissionQuery(a)
	if err != nil {
		return err
	}
	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, AdmissionEnquiryConstraint) {
			return apperrors.ErrAdmissionExists
		}
		return fmt.Errorf("error inserting admission: %w", err)
	}
	return nil
}

// ExistsForEnquiry reports whether an admission was already submitted for the enquiry number.
func (r *AdmissionRepository) ExistsForEnquiry(ctx context.Context, enquiryNumber string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM admissions WHERE enquiry_number = $1)`, enquiryNumber).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking admission existence: %w", err)
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAdmission(row rowScanner, extra ...any) (*models.Admission, error) {
	var (
		a                   models.Admission
		category            string
		siblings, academics []byte
	)
	dest := []any{
		&a.ID, &a.EnquiryNumber, &a.AdmissionNo,
		&a.StudentName, &a.Class, &a.Session, &a.Gender, &a.DateOfBirth, &a.DateOfBirthInWords, &a.BloodGroup,
		&a.Father.Name, &a.Father.Occupation, &a.Father.Qualification, &a.Father.Mobile, &a.Father.Email,
		&a.Mother.Name, &a.Mother.Occupation, &a.Mother.Qualification, &a.Mother.Mobile, &a.Mother.Email,
		&a.ResidentialAddress, &a.PermanentAddress, &a.City, &a.State, &a.PinCode,
		&a.PreviousSchool, &a.PreviousClass, &a.PreviousBoard,
		&a.IsSingleGirlChild, &a.IsSpeciallyAbled, &a.IsEWS, &category, &a.AadharNo,
		&siblings, &academics,
		&a.PhotoURL, &a.PhotoPublicID, &a.BirthCertificateURL, &a.BirthCertificatePublicID,
		&a.Status, &a.CreatedAt, &a.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	a.Category = models.Category(category)
	if err := unmarshalList(siblings, &a.Siblings); err != nil {
		return nil, fmt.Errorf("error decoding siblings: %w", err)
	}
	if err := unmarshalList(academics, &a.Academics); err != nil {
		return nil, fmt.Errorf("error decoding academics: %w", err)
	}
	return &a, nil
}

// GetByID retrieves an admission by ID
func (r *AdmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Admission, error) {
	sql, args, err := squirrel.Select(admissionColumns...).
		From("admissions").
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	a, err := scanAdmission(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAdmissionNotFound
		}
		return nil, fmt.Errorf("error retrieving admission: %w", err)
	}
	return a, nil
}

func listAdmissionsQuery(filter AdmissionFilter) squirrel.SelectBuilder {
	query := squirrel.Select(append(admissionColumns, "COUNT(*) OVER()")...).
		From("admissions").
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	if filter.Status != nil {
		query = query.Where(squirrel.Eq{"status": string(*filter.Status)})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit)).Offset(filter.Offset)
	}
	return query
}

// List returns admissions, newest first, and the total number of matches.
func (r *AdmissionRepository) List(ctx context.Context, filter AdmissionFilter) ([]*models.Admission, int64, error) {
	sql, args, err := listAdmissionsQuery(filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	admissions := make([]*models.Admission, 0)
	var total int64
	for rows.Next() {
		a, err := scanAdmission(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning row: %w", err)
		}
		admissions = append(admissions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating rows: %w", err)
	}

	return admissions, total, nil
}

// UpdateReview stores the staff decision. A nil admissionNo leaves the current number untouched.
func (r *AdmissionRepository) UpdateReview(ctx context.Context, id uuid.UUID, status models.Status, admissionNo *string) (*models.Admission, error) {
	query := squirrel.Update("admissions").
		Set("status", string(status)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where("id = ?", id).
		Suffix("RETURNING " + joinColumns(admissionColumns)).
		PlaceholderFormat(squirrel.Dollar)
	if admissionNo != nil {
		query = query.Set("admission_no", *admissionNo)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	a, err := scanAdmission(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAdmissionNotFound
		}
		return nil, fmt.Errorf("error updating admission: %w", err)
	}
	return a, nil
}

func marshalList[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalList[T any](data []byte, out *[]T) error {
	*out = []T{}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}
