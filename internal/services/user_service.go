package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/isdelr/budget-manager-be/internal/auth"
	"github.com/isdelr/budget-manager-be/internal/database"
	"github.com/isdelr/budget-manager-be/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// bcrypt ignores input past this length, so longer passwords are refused.
const maxPasswordBytes = 72

const userColumns = "id, username, email, password_hash, budget, full_name, village, phone_number, profile_photo_path, created_at"

// UserServiceProvider defines the interface for account and credential operations.
type UserServiceProvider interface {
	Register(ctx context.Context, in RegisterInput) (string, error)
	CreateUser(ctx context.Context, in RegisterInput) (models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	ChangePassword(ctx context.Context, user models.User, in ChangePasswordInput) error
	GetByUsername(ctx context.Context, username string) (models.User, error)
}

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Username    string
	Password    string
	FullName    string
	Email       string
	Village     string
	PhoneNumber string
}

// ChangePasswordInput carries a password change request.
type ChangePasswordInput struct {
	CurrentPassword      string
	NewPassword          string
	ConfirmationPassword string
}

// UserService provides registration, login and password management.
type UserService struct {
	db       *database.DB
	tokens   *auth.TokenManager
	activity ActivityServiceProvider
}

// NewUserService creates a new UserService.
func NewUserService(db *database.DB, tokens *auth.TokenManager, activity ActivityServiceProvider) *UserService {
	return &UserService{db: db, tokens: tokens, activity: activity}
}

// Register creates the account and returns a token for it.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (string, error) {
	user, err := s.CreateUser(ctx, in)
	if err != nil {
		return "", err
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	record(ctx, s.activity, "auth.register", LevelInfo, "Account created.", &user.ID)
	return token, nil
}

// CreateUser validates the input, hashes the password and inserts the user
// with a zero budget. Email uniqueness is left to the store constraint.
func (s *UserService) CreateUser(ctx context.Context, in RegisterInput) (models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if err := validateUsername(username); err != nil {
		return models.User{}, err
	}
	if email == "" {
		return models.User{}, invalid("email is required")
	}
	if err := validatePassword(in.Password); err != nil {
		return models.User{}, err
	}

	if _, err := s.GetByUsername(ctx, username); err == nil {
		return models.User{}, ErrDuplicateUsername
	} else if !errors.Is(err, ErrUserNotFound) {
		return models.User{}, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	var id int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash, budget, full_name, village, phone_number)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		username, email, hash, decimal.Zero,
		optional(in.FullName), optional(in.Village), optional(in.PhoneNumber),
	).Scan(&id)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return models.User{}, ErrAlreadyExists
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}

	log.Info().Str("username", username).Int64("user_id", id).Msg("User registered")
	return getUserByID(ctx, s.db, id)
}

// Login verifies the credentials and issues a fresh token. Unknown users and
// wrong passwords produce the same error.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	user, err := s.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Warn().Str("username", username).Msg("Failed authentication attempt: unknown user")
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		log.Warn().Str("username", username).Msg("Failed authentication attempt: wrong password")
		record(ctx, s.activity, "auth.login_failed", LevelWarn, "Failed login attempt.", &user.ID)
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	record(ctx, s.activity, "auth.login", LevelInfo, "Signed in.", &user.ID)
	return token, nil
}

// ChangePassword replaces the password of an authenticated user. Tokens
// issued earlier stay valid until they expire.
func (s *UserService) ChangePassword(ctx context.Context, user models.User, in ChangePasswordInput) error {
	if user.ID == 0 {
		return ErrNotAuthenticated
	}
	if !auth.CheckPassword(user.PasswordHash, in.CurrentPassword) {
		return ErrWrongCurrentPassword
	}
	if in.NewPassword != in.ConfirmationPassword {
		return ErrPasswordMismatch
	}
	if err := validatePassword(in.NewPassword); err != nil {
		return err
	}

	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	res, err := s.db.ExecContext(ctx, "UPDATE users SET password_hash = ? WHERE id = ?", hash, user.ID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}

	log.Info().Str("username", user.Username).Msg("Password changed")
	record(ctx, s.activity, "auth.password_change", LevelInfo, "Password changed.", &user.ID)
	return nil
}

// GetByUsername retrieves a single user, including the password hash.
func (s *UserService) GetByUsername(ctx context.Context, username string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = ?", username)
	return scanUser(row)
}

func getUserByID(ctx context.Context, db *database.DB, id int64) (models.User, error) {
	row := db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Budget,
		&u.FullName, &u.Village, &u.PhoneNumber, &u.ProfilePhotoPath, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return u, nil
}

// validateUsername also keeps usernames usable as photo subfolder names.
func validateUsername(username string) error {
	switch {
	case username == "":
		return invalid("username is required")
	case username == "." || username == "..", strings.ContainsAny(username, `/\`):
		return invalid("username contains invalid characters")
	}
	return nil
}

func validatePassword(password string) error {
	switch {
	case strings.TrimSpace(password) == "":
		return invalid("password is required")
	case len(password) > maxPasswordBytes:
		return invalid("password must be at most %d bytes", maxPasswordBytes)
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
