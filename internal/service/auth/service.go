// Package auth implements admin and app-user authentication: bcrypt
// credentials, JWT sessions, and the email OTP flows backed by the Redis
// verification store.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/nutriwise/nutriwise-api/internal/cache"
	"github.com/nutriwise/nutriwise-api/internal/config"
	"github.com/nutriwise/nutriwise-api/internal/email"
	prommetrics "github.com/nutriwise/nutriwise-api/internal/metrics"
	"github.com/nutriwise/nutriwise-api/internal/models"
	"github.com/nutriwise/nutriwise-api/internal/repository"
	"github.com/nutriwise/nutriwise-api/pkg/logger"
)

// Service-level errors, mapped to HTTP status at the handler boundary.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCode        = errors.New("invalid or expired verification code")
	ErrInvalidToken       = errors.New("invalid token")
)

// AdminRepository interface for admin account operations.
type AdminRepository interface {
	Create(admin *models.Admin) error
	GetByID(id uint) (*models.Admin, error)
	GetByEmail(email string) (*models.Admin, error)
	Update(admin *models.Admin) error
	EmailExists(email string) (bool, error)
}

// UserRepository interface for app-user account operations.
type UserRepository interface {
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
}

// Service handles authentication for both surfaces.
type Service struct {
	adminRepo     AdminRepository
	userRepo      UserRepository
	verifications *cache.VerificationStore
	mailer        email.Sender
	cfg           *config.AuthConfig
	log           *logger.Logger
}

// NewService creates a new auth service.
func NewService(
	adminRepo *repository.AdminRepository,
	userRepo *repository.UserRepository,
	verifications *cache.VerificationStore,
	mailer email.Sender,
	cfg *config.AuthConfig,
	log *logger.Logger,
) *Service {
	return NewServiceWithInterfaces(adminRepo, userRepo, verifications, mailer, cfg, log)
}

// NewServiceWithInterfaces creates a new auth service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(
	adminRepo AdminRepository,
	userRepo UserRepository,
	verifications *cache.VerificationStore,
	mailer email.Sender,
	cfg *config.AuthConfig,
	log *logger.Logger,
) *Service {
	return &Service{
		adminRepo:     adminRepo,
		userRepo:      userRepo,
		verifications: verifications,
		mailer:        mailer,
		cfg:           cfg,
		log:           log,
	}
}

// pendingAdmin is the signup payload parked in the verification store until
// the OTP is confirmed.
type pendingAdmin struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}

type pendingUser struct {
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}

type pendingEmailChange struct {
	Email string `json:"email"`
}

// AdminSignupInit parks a pending admin account and emails the OTP. The
// account is not created until the code is verified; OTP delivery failure
// fails the whole operation.
func (s *Service) AdminSignupInit(ctx context.Context, firstName, lastName, emailAddr, password string) error {
	exists, err := s.adminRepo.EmailExists(emailAddr)
	if err != nil {
		return err
	}
	if exists {
		return ErrEmailExists
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	code, err := cache.GenerateCode()
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}

	pending := pendingAdmin{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        emailAddr,
		PasswordHash: hash,
	}
	if err := s.verifications.Put(ctx, cache.VerifyAdminSignup, emailAddr, code, pending, s.cfg.AdminOTPTTL()); err != nil {
		return err
	}

	return s.sendOTP("admin_signup", emailAddr, code)
}

// AdminVerifyAndCreate consumes the signup OTP, creates the admin account
// and returns it with a session token.
func (s *Service) AdminVerifyAndCreate(ctx context.Context, emailAddr, code string) (*models.Admin, string, error) {
	payload, ok, err := s.verifications.Consume(ctx, cache.VerifyAdminSignup, emailAddr, code)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", ErrInvalidCode
	}

	var pending pendingAdmin
	if err := json.Unmarshal(payload, &pending); err != nil {
		return nil, "", fmt.Errorf("failed to decode pending signup: %w", err)
	}

	admin := &models.Admin{
		FirstName:    pending.FirstName,
		LastName:     pending.LastName,
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
		IsVerified:   true,
	}
	if err := s.adminRepo.Create(admin); err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(admin.ID, RoleAdmin)
	if err != nil {
		return nil, "", err
	}

	s.log.Info().Str("email", admin.Email).Msg("Admin account created")
	return admin, token, nil
}

// AdminLogin verifies credentials and returns the admin with a session
// token.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) AdminLogin(ctx context.Context, emailAddr, password string) (*models.Admin, string, error) {
	admin, err := s.adminRepo.GetByEmail(emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !checkPassword(admin.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(admin.ID, RoleAdmin)
	if err != nil {
		return nil, "", err
	}
	return admin, token, nil
}

// GetAdminProfile retrieves an admin account by id.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GetAdminProfile(ctx context.Context, adminID uint) (*models.Admin, error) {
	return s.adminRepo.GetByID(adminID)
}

// UpdateAdminProfile updates the admin's name immediately. An email change
// is parked behind an OTP sent to the new address; the returned flag
// reports whether such a verification is pending.
func (s *Service) UpdateAdminProfile(ctx context.Context, adminID uint, firstName, lastName, newEmail string) (emailPending bool, err error) {
	admin, err := s.adminRepo.GetByID(adminID)
	if err != nil {
		return false, err
	}

	admin.FirstName = firstName
	admin.LastName = lastName
	if err := s.adminRepo.Update(admin); err != nil {
		return false, err
	}

	if newEmail == "" || newEmail == admin.Email {
		return false, nil
	}

	exists, err := s.adminRepo.EmailExists(newEmail)
	if err != nil {
		return false, err
	}
	if exists {
		return false, ErrEmailExists
	}

	code, err := cache.GenerateCode()
	if err != nil {
		return false, fmt.Errorf("failed to generate verification code: %w", err)
	}
	pending := pendingEmailChange{Email: newEmail}
	if err := s.verifications.Put(ctx, cache.VerifyAdminEmail, newEmail, code, pending, s.cfg.AdminOTPTTL()); err != nil {
		return false, err
	}
	if err := s.sendOTP("admin_email_change", newEmail, code); err != nil {
		return false, err
	}
	return true, nil
}

// VerifyNewEmail consumes the email-change OTP and applies the new address.
func (s *Service) VerifyNewEmail(ctx context.Context, adminID uint, newEmail, code string) error {
	payload, ok, err := s.verifications.Consume(ctx, cache.VerifyAdminEmail, newEmail, code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCode
	}

	var pending pendingEmailChange
	if err := json.Unmarshal(payload, &pending); err != nil {
		return fmt.Errorf("failed to decode pending email change: %w", err)
	}

	admin, err := s.adminRepo.GetByID(adminID)
	if err != nil {
		return err
	}
	admin.Email = pending.Email
	if err := s.adminRepo.Update(admin); err != nil {
		return err
	}

	s.log.Info().Uint("admin_id", adminID).Msg("Admin email updated")
	return nil
}

// ChangePassword verifies the old password and stores a new hash.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) ChangePassword(ctx context.Context, adminID uint, oldPassword, newPassword string) error {
	admin, err := s.adminRepo.GetByID(adminID)
	if err != nil {
		return err
	}
	if !checkPassword(admin.PasswordHash, oldPassword) {
		return ErrInvalidCredentials
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	admin.PasswordHash = hash
	return s.adminRepo.Update(admin)
}

// ForgotPasswordInit emails a reset OTP to an existing admin.
func (s *Service) ForgotPasswordInit(ctx context.Context, emailAddr string) error {
	if _, err := s.adminRepo.GetByEmail(emailAddr); err != nil {
		return err
	}

	code, err := cache.GenerateCode()
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}
	if err := s.verifications.Put(ctx, cache.VerifyPasswordReset, emailAddr, code, nil, s.cfg.AdminOTPTTL()); err != nil {
		return err
	}
	return s.sendOTP("password_reset", emailAddr, code)
}

// VerifyResetCode checks a reset OTP without consuming it, so the client
// can collect the new password in a second step.
func (s *Service) VerifyResetCode(ctx context.Context, emailAddr, code string) error {
	ok, err := s.verifications.Peek(ctx, cache.VerifyPasswordReset, emailAddr, code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCode
	}
	return nil
}

// ResetPassword consumes the reset OTP and stores the new password hash.
func (s *Service) ResetPassword(ctx context.Context, emailAddr, code, newPassword string) error {
	_, ok, err := s.verifications.Consume(ctx, cache.VerifyPasswordReset, emailAddr, code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCode
	}

	admin, err := s.adminRepo.GetByEmail(emailAddr)
	if err != nil {
		return err
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	admin.PasswordHash = hash
	if err := s.adminRepo.Update(admin); err != nil {
		return err
	}

	s.log.Info().Str("email", emailAddr).Msg("Admin password reset")
	return nil
}

// UserSignupInit parks a pending app-user signup behind an OTP with the
// shorter signup TTL.
func (s *Service) UserSignupInit(ctx context.Context, emailAddr, password string) error {
	if _, err := s.userRepo.GetByEmail(emailAddr); err == nil {
		return ErrEmailExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	code, err := cache.GenerateCode()
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}

	pending := pendingUser{Email: emailAddr, PasswordHash: hash}
	if err := s.verifications.Put(ctx, cache.VerifyUserSignup, emailAddr, code, pending, s.cfg.SignupOTPTTL()); err != nil {
		return err
	}
	return s.sendOTP("user_signup", emailAddr, code)
}

// UserVerifyAndCreate consumes the signup OTP and creates the app user with
// zeroed gamification state.
func (s *Service) UserVerifyAndCreate(ctx context.Context, emailAddr, code string) (*models.User, string, error) {
	payload, ok, err := s.verifications.Consume(ctx, cache.VerifyUserSignup, emailAddr, code)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", ErrInvalidCode
	}

	var pending pendingUser
	if err := json.Unmarshal(payload, &pending); err != nil {
		return nil, "", fmt.Errorf("failed to decode pending signup: %w", err)
	}

	user := &models.User{
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
		Level:        1,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(user.ID, RoleUser)
	if err != nil {
		return nil, "", err
	}

	s.log.Info().Str("email", user.Email).Msg("User account created")
	return user, token, nil
}

// UserLogin verifies app-user credentials and returns a session token.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) UserLogin(ctx context.Context, emailAddr, password string) (*models.User, string, error) {
	user, err := s.userRepo.GetByEmail(emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !checkPassword(user.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user.ID, RoleUser)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// sendOTP delivers a verification code. Unlike other notification mail,
// delivery failure here is the operation's failure.
func (s *Service) sendOTP(flow, to, code string) error {
	subject, body := email.OTPEmail(code)
	if err := s.mailer.Send(to, subject, body); err != nil {
		prommetrics.OTPEmailsSentTotal.WithLabelValues(flow, "error").Inc()
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	prommetrics.OTPEmailsSentTotal.WithLabelValues(flow, "ok").Inc()
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
