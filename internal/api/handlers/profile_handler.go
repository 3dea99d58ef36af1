package handlers

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/budget-manager-be/internal/files"
	"github.com/isdelr/budget-manager-be/internal/models"
	"github.com/isdelr/budget-manager-be/internal/models/dto"
	"github.com/isdelr/budget-manager-be/internal/services"
	"github.com/rs/zerolog/hlog"
)

// PhotoRoute is the public path prefix under which profile photos are served.
const PhotoRoute = "/api/profile/photo/"

// ProfileHandler handles HTTP requests for the user's profile and photo.
type ProfileHandler struct {
	service        services.ProfileServiceProvider
	publicBaseURL  string
	maxUploadBytes int64
}

// NewProfileHandler creates a new ProfileHandler. An empty publicBaseURL makes
// photo links follow the host of each request.
func NewProfileHandler(service services.ProfileServiceProvider, publicBaseURL string, maxUploadBytes int64) *ProfileHandler {
	return &ProfileHandler{
		service:        service,
		publicBaseURL:  strings.TrimRight(publicBaseURL, "/"),
		maxUploadBytes: maxUploadBytes,
	}
}

// Get handles the request to read the user's profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request, user models.User) {
	profile, err := h.service.GetProfile(r.Context(), user)
	if err != nil {
		respondServiceError(w, r, err, "get profile")
		return
	}
	respondJSON(w, http.StatusOK, h.profileResponse(r, profile))
}

// Update handles a partial update of the user's profile.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request, user models.User) {
	var req dto.ProfileUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), user, services.ProfileUpdate{
		FullName:    req.FullName,
		Email:       req.Email,
		Village:     req.Village,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		respondServiceError(w, r, err, "update profile")
		return
	}
	respondJSON(w, http.StatusOK, h.profileResponse(r, profile))
}

// UploadPhoto handles a multipart upload in the "file" field.
func (h *ProfileHandler) UploadPhoto(w http.ResponseWriter, r *http.Request, user models.User) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "file is too large")
			return
		}
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "please select a file to upload")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = files.ContentType(header.Filename, nil)
	}

	relPath, err := h.service.UploadPhoto(r.Context(), user, header.Filename, contentType, file)
	if err != nil {
		respondServiceError(w, r, err, "upload photo")
		return
	}
	respondJSON(w, http.StatusOK, dto.PhotoUploadResponse{
		Message:  "Profile photo uploaded successfully",
		FilePath: relPath,
		FileURL:  h.photoURL(r, relPath),
	})
}

// GetPhoto serves a stored photo. It is public so the URL can be used
// directly as an image source.
func (h *ProfileHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	filename := chi.URLParam(r, "filename")

	f, contentType, err := h.service.OpenPhoto(username, filename)
	if err != nil {
		respondServiceError(w, r, err, "open photo")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("file", filename).Msg("Failed to stat photo")
		respondError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": filename}))
	http.ServeContent(w, r, filename, info.ModTime(), f)
}

// PhotoURL handles the request for the absolute URL of the user's photo.
func (h *ProfileHandler) PhotoURL(w http.ResponseWriter, r *http.Request, user models.User) {
	profile, err := h.service.GetProfile(r.Context(), user)
	if err != nil {
		respondServiceError(w, r, err, "get photo url")
		return
	}

	var resp dto.PhotoURLResponse
	if profile.HasPhoto() {
		u := h.photoURL(r, *profile.ProfilePhotoPath)
		resp.PhotoURL = &u
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *ProfileHandler) profileResponse(r *http.Request, u models.User) dto.ProfileResponse {
	var photoURL string
	if u.HasPhoto() {
		photoURL = h.photoURL(r, *u.ProfilePhotoPath)
	}
	return dto.NewProfileResponse(u, photoURL)
}

func (h *ProfileHandler) photoURL(r *http.Request, relPath string) string {
	segments := strings.Split(relPath, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return h.baseURL(r) + PhotoRoute + strings.Join(segments, "/")
}

func (h *ProfileHandler) baseURL(r *http.Request) string {
	if h.publicBaseURL != "" {
		return h.publicBaseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}
