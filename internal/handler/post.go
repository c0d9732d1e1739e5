package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"sociable/internal/httputil"
	"sociable/internal/model"
	"sociable/internal/service"
	"sociable/internal/transport/http/middleware"
)

// PostHandler groups post, feed, tag, and post-like endpoints.
type PostHandler struct {
	postService  *service.PostService
	mediaService *service.MediaService
}

func NewPostHandler(postService *service.PostService, mediaService *service.MediaService) *PostHandler {
	return &PostHandler{
		postService:  postService,
		mediaService: mediaService,
	}
}

// Create handles multipart post creation with optional image upload
// POST /posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	maxFormSize := int64(model.MaxImageSizeBytes) + 1024*1024 // allow form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
			return
		}
		if strings.Contains(err.Error(), "request body too large") {
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Image exceeds 5MB limit")
			return
		}
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	content := strings.TrimSpace(r.FormValue("content"))
	if content == "" {
		httputil.WriteBadRequest(w, "Content is required")
		return
	}

	var tags []string
	if raw := r.FormValue("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}

	var scheduledAt *time.Time
	if raw := r.FormValue("scheduled_at"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httputil.WriteBadRequest(w, "scheduled_at must be RFC3339")
			return
		}
		scheduledAt = &t
	}

	var imageURL, imageKey *string
	file, header, err := r.FormFile("image")
	if err == nil {
		defer file.Close()
		upload, uploadErr := h.mediaService.UploadPostImage(r.Context(), content, file, header)
		if uploadErr != nil {
			switch {
			case errors.Is(uploadErr, model.ErrFileTooLarge):
				httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Image exceeds 5MB limit")
			case errors.Is(uploadErr, model.ErrInvalidImageType):
				httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Unsupported image type. Allowed: jpeg, png, gif, webp")
			default:
				httputil.WriteInternalError(w, "Failed to upload image")
			}
			return
		}
		imageURL = &upload.URL
		imageKey = &upload.Key
	} else if err != http.ErrMissingFile {
		httputil.WriteBadRequest(w, "Invalid image upload")
		return
	}

	req := model.CreatePostRequest{
		Content:     content,
		Tags:        tags,
		ScheduledAt: scheduledAt,
		ImageURL:    imageURL,
		ImageKey:    imageKey,
	}

	post, err := h.postService.Create(r.Context(), accountID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrProfileNotFound):
			httputil.WriteBadRequest(w, "Create a profile before posting")
		case errors.Is(err, model.ErrPostContentMissing):
			httputil.WriteBadRequest(w, "Content is required")
		case errors.Is(err, model.ErrScheduleNotFuture):
			httputil.WriteBadRequest(w, "scheduled_at must be in the future")
		default:
			httputil.WriteInternalError(w, "Failed to create post")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, post)
}

// Feed returns the caller's feed, optionally filtered by tag
// GET /posts?tag=
func (h *PostHandler) Feed(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	var tag *string
	if raw := r.URL.Query().Get("tag"); raw != "" {
		tag = &raw
	}

	posts, err := h.postService.ListFeed(r.Context(), accountID, tag)
	if err != nil {
		if errors.Is(err, model.ErrProfileNotFound) {
			httputil.WriteBadRequest(w, "Create a profile to see a feed")
			return
		}
		httputil.WriteInternalError(w, "Failed to load feed")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, posts)
}

// Liked returns published posts the caller has liked
// GET /posts/liked
func (h *PostHandler) Liked(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	posts, err := h.postService.ListLiked(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, model.ErrProfileNotFound) {
			httputil.WriteBadRequest(w, "Create a profile first")
			return
		}
		httputil.WriteInternalError(w, "Failed to load liked posts")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, posts)
}

// Get returns one post
// GET /posts/{id}
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	postID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	post, err := h.postService.Get(r.Context(), accountID, postID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		case errors.Is(err, model.ErrProfileNotFound):
			httputil.WriteBadRequest(w, "Create a profile first")
		default:
			httputil.WriteInternalError(w, "Failed to get post")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, post)
}

// Update applies partial changes to a post
// PUT/PATCH /posts/{id}
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	postID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	var req model.UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	post, err := h.postService.Update(r.Context(), accountID, postID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		case errors.Is(err, model.ErrNotPostAuthor):
			httputil.WriteForbidden(w, "You are not the author of this post")
		case errors.Is(err, model.ErrPostContentMissing):
			httputil.WriteBadRequest(w, "Content is required")
		case errors.Is(err, model.ErrScheduleNotFuture):
			httputil.WriteBadRequest(w, "scheduled_at must be in the future")
		default:
			httputil.WriteInternalError(w, "Failed to update post")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, post)
}

// Delete removes a post
// DELETE /posts/{id}
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	postID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	if err := h.postService.Delete(r.Context(), accountID, postID); err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		case errors.Is(err, model.ErrNotPostAuthor):
			httputil.WriteForbidden(w, "You are not the author of this post")
		default:
			httputil.WriteInternalError(w, "Failed to delete post")
		}
		return
	}

	httputil.WriteNoContent(w)
}

// ToggleLike likes or unlikes a post
// POST /posts/{id}/like
func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	postID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	liked, err := h.postService.ToggleLike(r.Context(), accountID, postID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		case errors.Is(err, model.ErrProfileNotFound):
			httputil.WriteBadRequest(w, "Create a profile first")
		default:
			httputil.WriteInternalError(w, "Failed to toggle like")
		}
		return
	}

	if liked {
		httputil.WriteJSON(w, http.StatusCreated, map[string]string{"message": "Post liked"})
		return
	}
	httputil.WriteNoContent(w)
}

// Tags returns every known tag
// GET /tags
func (h *PostHandler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.postService.ListTags(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, "Failed to list tags")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, tags)
}
