package dto

import "github.com/isdelr/budget-manager-be/internal/models"

// ProfileUpdateRequest is a partial update: nil fields are left untouched.
type ProfileUpdateRequest struct {
	FullName    *string `json:"fullName"`
	Email       *string `json:"email"`
	Village     *string `json:"village"`
	PhoneNumber *string `json:"phoneNumber"`
}

type ProfileResponse struct {
	ID              int64   `json:"id"`
	Username        string  `json:"username"`
	FullName        *string `json:"fullName"`
	Email           string  `json:"email"`
	Village         *string `json:"village"`
	PhoneNumber     *string `json:"phoneNumber"`
	ProfilePhotoURL *string `json:"profilePhotoUrl"`
}

type PhotoUploadResponse struct {
	Message  string `json:"message"`
	FilePath string `json:"filePath"`
	FileURL  string `json:"fileUrl"`
}

type PhotoURLResponse struct {
	PhotoURL *string `json:"photoUrl"`
}

// NewProfileResponse maps a user record to its public profile. photoURL is
// only used when the user has a stored photo.
func NewProfileResponse(u models.User, photoURL string) ProfileResponse {
	resp := ProfileResponse{
		ID:          u.ID,
		Username:    u.Username,
		FullName:    u.FullName,
		Email:       u.Email,
		Village:     u.Village,
		PhoneNumber: u.PhoneNumber,
	}
	if u.HasPhoto() && photoURL != "" {
		resp.ProfilePhotoURL = &photoURL
	}
	return resp
}
