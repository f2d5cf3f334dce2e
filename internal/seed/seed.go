package seed

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/config"
)

// StaffEnsurer creates a staff account unless one with the same email exists.
type StaffEnsurer interface {
	EnsureStaff(ctx context.Context, email, password, fullName string, role appModels.RoleType) (bool, error)
}

// CreateDefaultData creates the configured admin account if it does not exist yet.
// Without admin credentials in the configuration nothing is created.
func CreateDefaultData(ctx context.Context, cfg *config.Config, staff StaffEnsurer, lgr zerolog.Logger) error {
	email := strings.TrimSpace(cfg.Admin.Email)
	if email == "" || cfg.Admin.Password == "" {
		lgr.Info().Msg("No admin credentials configured, skipping default admin creation")
		return nil
	}

	fullName := cfg.Admin.FullName
	if fullName == "" {
		fullName = "Administrator"
	}

	created, err := staff.EnsureStaff(ctx, email, cfg.Admin.Password, fullName, appModels.RoleAdmin)
	if err != nil {
		lgr.Error().Err(err).Str("email", email).Msg("Error creating admin user")
		return err
	}
	if created {
		lgr.Info().Str("email", email).Msg("Default admin user created successfully")
	} else {
		lgr.Info().Str("email", email).Msg("Admin user already exists, skipping creation")
	}
	return nil
}
