package repositories

import (
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	EnquiryRepository   *EnquiryRepository
	AdmissionRepository *AdmissionRepository
	StaffRepository     *StaffRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool, enquiryPrefix string) *Repositories {
	return &Repositories{
		EnquiryRepository:   NewEnquiryRepository(db, enquiryPrefix),
		AdmissionRepository: NewAdmissionRepository(db),
		StaffRepository:     NewStaffRepository(db),
	}
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}
