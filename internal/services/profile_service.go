package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/isdelr/budget-manager-be/internal/database"
	"github.com/isdelr/budget-manager-be/internal/files"
	"github.com/isdelr/budget-manager-be/internal/models"
	"github.com/rs/zerolog/log"
)

// ProfileServiceProvider defines the interface for profile data and photos.
type ProfileServiceProvider interface {
	GetProfile(ctx context.Context, user models.User) (models.User, error)
	UpdateProfile(ctx context.Context, user models.User, in ProfileUpdate) (models.User, error)
	UploadPhoto(ctx context.Context, user models.User, filename, contentType string, r io.Reader) (string, error)
	OpenPhoto(username, filename string) (*os.File, string, error)
	ReferencedPhotoPaths(ctx context.Context) (map[string]struct{}, error)
}

// ProfileUpdate is a partial update. Nil fields keep their stored value.
type ProfileUpdate struct {
	FullName    *string
	Email       *string
	Village     *string
	PhoneNumber *string
}

// ProfileService manages profile fields and the profile photo of a user.
type ProfileService struct {
	db       *database.DB
	files    *files.Store
	activity ActivityServiceProvider
}

// NewProfileService creates a new ProfileService.
func NewProfileService(db *database.DB, store *files.Store, activity ActivityServiceProvider) *ProfileService {
	return &ProfileService{db: db, files: store, activity: activity}
}

// GetProfile re-reads the user so the view reflects the latest stored state.
func (s *ProfileService) GetProfile(ctx context.Context, user models.User) (models.User, error) {
	return getUserByID(ctx, s.db, user.ID)
}

// UpdateProfile overwrites only the fields supplied in the update.
func (s *ProfileService) UpdateProfile(ctx context.Context, user models.User, in ProfileUpdate) (models.User, error) {
	current, err := getUserByID(ctx, s.db, user.ID)
	if err != nil {
		return models.User{}, err
	}

	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email == "" {
			return models.User{}, invalid("email cannot be blank")
		}
		current.Email = email
	}
	if in.FullName != nil {
		current.FullName = optional(*in.FullName)
	}
	if in.Village != nil {
		current.Village = optional(*in.Village)
	}
	if in.PhoneNumber != nil {
		current.PhoneNumber = optional(*in.PhoneNumber)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE users SET email = ?, full_name = ?, village = ?, phone_number = ? WHERE id = ?",
		current.Email, current.FullName, current.Village, current.PhoneNumber, current.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return models.User{}, ErrAlreadyExists
		}
		return models.User{}, fmt.Errorf("update profile: %w", err)
	}

	record(ctx, s.activity, "profile.update", LevelInfo, "Profile updated.", &current.ID)
	return getUserByID(ctx, s.db, current.ID)
}

// UploadPhoto stores a new profile photo and returns its relative path. The
// previous photo file is removed only once the new path has been saved.
func (s *ProfileService) UploadPhoto(ctx context.Context, user models.User, filename, contentType string, r io.Reader) (string, error) {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/") {
		return "", invalid("only image files are allowed")
	}

	relPath, err := s.files.Save(user.Username, filename, r)
	if err != nil {
		switch {
		case errors.Is(err, files.ErrEmptyFile):
			return "", invalid("please select a file to upload")
		case errors.Is(err, files.ErrInvalidPath):
			return "", invalid("invalid file name")
		}
		return "", fmt.Errorf("store photo: %w", err)
	}

	var oldPath *string
	err = s.db.QueryRowContext(ctx, "SELECT profile_photo_path FROM users WHERE id = ?", user.ID).Scan(&oldPath)
	if err == nil {
		_, err = s.db.ExecContext(ctx, "UPDATE users SET profile_photo_path = ? WHERE id = ?", relPath, user.ID)
	}
	if err != nil {
		if derr := s.files.Delete(relPath); derr != nil {
			log.Warn().Err(derr).Str("path", relPath).Msg("Failed to remove orphaned photo")
		}
		return "", fmt.Errorf("save photo path: %w", err)
	}

	if oldPath != nil && *oldPath != "" && *oldPath != relPath {
		if err := s.files.Delete(*oldPath); err != nil {
			log.Warn().Err(err).Str("path", *oldPath).Msg("Failed to remove previous photo")
		}
	}

	log.Info().Str("username", user.Username).Str("path", relPath).Msg("Profile photo uploaded")
	record(ctx, s.activity, "profile.photo", LevelInfo, "Profile photo updated.", &user.ID)
	return relPath, nil
}

// OpenPhoto opens a stored photo for serving. Any failure, including a path
// outside the upload root, is reported as ErrPhotoNotFound.
func (s *ProfileService) OpenPhoto(username, filename string) (*os.File, string, error) {
	f, err := s.files.Open(path.Join(username, filename))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) && !errors.Is(err, files.ErrInvalidPath) {
			log.Warn().Err(err).Str("username", username).Str("file", filename).Msg("Failed to open photo")
		}
		return nil, "", ErrPhotoNotFound
	}

	head := make([]byte, 512)
	n, _ := io.ReadFull(f, head)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, "", ErrPhotoNotFound
	}
	return f, files.ContentType(filename, head[:n]), nil
}

// ReferencedPhotoPaths returns every photo path still stored on a user row.
func (s *ProfileService) ReferencedPhotoPaths(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT profile_photo_path FROM users WHERE profile_photo_path IS NOT NULL")
	if err != nil {
		return nil, fmt.Errorf("list photo paths: %w", err)
	}
	defer rows.Close()

	paths := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths[p] = struct{}{}
	}
	return paths, rows.Err()
}
