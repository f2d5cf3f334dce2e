package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/auth"
)

// AuthService handles staff authentication
type AuthService struct {
	staff      StaffStore
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(staff StaffStore, jwtService *auth.JWTService, logger zerolog.Logger) *AuthService {
	return &AuthService{
		staff:      staff,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Login checks the credentials of a staff user and issues an access token
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))

	staff, err := s.staff.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			s.logger.Warn().Str("email", emailAddr).Msg("Login attempt for unknown staff user")
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(staff.PasswordHash, req.Password) {
		s.logger.Warn().Str("email", emailAddr).Msg("Login attempt with wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}
	if !staff.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	token, expiresIn, err := s.jwtService.GenerateAccessToken(staff)
	if err != nil {
		s.logger.Error().Err(err).Str("staffId", staff.ID.String()).Msg("Failed to issue access token")
		return nil, err
	}

	s.logger.Info().Str("staffId", staff.ID.String()).Msg("Staff user logged in")
	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
	}, nil
}

// EnsureStaff creates a staff user unless one with the same email exists. It reports whether a user was created.
func (s *AuthService) EnsureStaff(ctx context.Context, emailAddr, password, fullName string, role models.RoleType) (bool, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	exists, err := s.staff.EmailExists(ctx, emailAddr)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}

	err = s.staff.Create(ctx, &models.StaffUser{
		Email:        emailAddr,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         role,
		IsActive:     true,
	})
	if errors.Is(err, apperrors.ErrConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
