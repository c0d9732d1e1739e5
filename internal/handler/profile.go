package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"sociable/internal/httputil"
	"sociable/internal/model"
	"sociable/internal/service"
	"sociable/internal/transport/http/middleware"
)

// ProfileHandler groups profile and follow endpoints.
type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// Create makes the caller's profile
// POST /profiles
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req model.CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	profile, err := h.profileService.Create(r.Context(), accountID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNicknameMissing):
			httputil.WriteBadRequest(w, "Nickname is required")
		case errors.Is(err, model.ErrProfileExists):
			httputil.WriteConflict(w, "Account already has a profile")
		case errors.Is(err, model.ErrNicknameExists):
			httputil.WriteConflict(w, "Nickname already taken")
		default:
			httputil.WriteInternalError(w, "Failed to create profile")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, profile)
}

// List returns profiles matching optional filters
// GET /profiles?nickname=&first_name=&last_name=
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := model.ProfileFilter{
		Nickname:  r.URL.Query().Get("nickname"),
		FirstName: r.URL.Query().Get("first_name"),
		LastName:  r.URL.Query().Get("last_name"),
	}

	profiles, err := h.profileService.List(r.Context(), filter)
	if err != nil {
		httputil.WriteInternalError(w, "Failed to list profiles")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profiles)
}

// Get returns one profile with its follow relations
// GET /profiles/{id}
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	profileID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid profile ID")
		return
	}

	detail, err := h.profileService.Get(r.Context(), profileID)
	if err != nil {
		if errors.Is(err, model.ErrProfileNotFound) {
			httputil.WriteNotFound(w, "Profile not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to get profile")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, detail)
}

// Update applies partial changes to a profile
// PUT/PATCH /profiles/{id}
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	profileID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid profile ID")
		return
	}

	var req model.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	profile, err := h.profileService.Update(r.Context(), accountID, profileID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrProfileNotFound):
			httputil.WriteNotFound(w, "Profile not found")
		case errors.Is(err, model.ErrNotProfileOwner):
			httputil.WriteForbidden(w, "You do not own this profile")
		case errors.Is(err, model.ErrNicknameExists):
			httputil.WriteConflict(w, "Nickname already taken")
		default:
			httputil.WriteInternalError(w, "Failed to update profile")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profile)
}

// Delete removes a profile
// DELETE /profiles/{id}
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	profileID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid profile ID")
		return
	}

	if err := h.profileService.Delete(r.Context(), accountID, profileID); err != nil {
		switch {
		case errors.Is(err, model.ErrProfileNotFound):
			httputil.WriteNotFound(w, "Profile not found")
		case errors.Is(err, model.ErrNotProfileOwner):
			httputil.WriteForbidden(w, "You do not own this profile")
		default:
			httputil.WriteInternalError(w, "Failed to delete profile")
		}
		return
	}

	httputil.WriteNoContent(w)
}

// UploadPhoto replaces the profile photo
// POST /profiles/{id}/upload-image
func (h *ProfileHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	profileID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid profile ID")
		return
	}

	maxFormSize := int64(model.MaxImageSizeBytes) + 1024*1024 // allow form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		httputil.WriteBadRequest(w, "Image file is required")
		return
	}
	defer file.Close()

	profile, err := h.profileService.UploadPhoto(r.Context(), accountID, profileID, file, header)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrProfileNotFound):
			httputil.WriteNotFound(w, "Profile not found")
		case errors.Is(err, model.ErrNotProfileOwner):
			httputil.WriteForbidden(w, "You do not own this profile")
		case errors.Is(err, model.ErrFileTooLarge):
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Image exceeds 5MB limit")
		case errors.Is(err, model.ErrInvalidImageType):
			httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Unsupported image type. Allowed: jpeg, png, gif, webp")
		default:
			httputil.WriteInternalError(w, "Failed to upload image")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profile)
}

// Follow adds a follow edge from the caller's profile
// POST /profiles/{id}/follow
func (h *ProfileHandler) Follow(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	targetID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid profile ID")
		return
	}

	if err := h.profileService.Follow(r.Context(), accountID, targetID); err != nil {
		switch {
		case errors.Is(err, model.ErrProfileNotFound):
			httputil.WriteNotFound(w, "Profile not found")
		case errors.Is(err, model.ErrCannotFollowSelf):
			httputil.WriteBadRequest(w, "Cannot follow yourself")
		case errors.Is(err, model.ErrAlreadyFollowing):
			httputil.WriteConflict(w, "Already following this profile")
		default:
			httputil.WriteInternalError(w, "Failed to follow")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]string{"message": "Now following"})
}

// Unfollow removes a follow edge from the caller's profile
// POST /profiles/{id}/unfollow
func (h *ProfileHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	targetID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid profile ID")
		return
	}

	if err := h.profileService.Unfollow(r.Context(), accountID, targetID); err != nil {
		switch {
		case errors.Is(err, model.ErrProfileNotFound):
			httputil.WriteNotFound(w, "Profile not found")
		case errors.Is(err, model.ErrCannotFollowSelf):
			httputil.WriteBadRequest(w, "Cannot unfollow yourself")
		case errors.Is(err, model.ErrNotFollowing):
			httputil.WriteBadRequest(w, "Not following this profile")
		default:
			httputil.WriteInternalError(w, "Failed to unfollow")
		}
		return
	}

	httputil.WriteNoContent(w)
}

// idParam parses a numeric chi URL parameter.
func idParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
