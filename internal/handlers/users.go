package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/middleware"
	"github.com/cliptube/backend/internal/models"
)

// maxUploadMemory bounds the in-memory portion of multipart parsing; larger
// file parts spill to disk.
const maxUploadMemory = 32 << 20

// UserHandler implements registration, session and profile endpoints.
type UserHandler struct {
	Sessions      SessionFlow
	SecureCookies bool
}

// Register handles POST /api/v1/users/register (multipart).
func (h UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(ctx, w, fmt.Errorf("%w: expected multipart form", auth.ErrValidation))
		return
	}
	defer cleanupMultipart(r)

	in := auth.RegisterInput{
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		FullName: r.FormValue("fullname"),
	}

	avatar, avatarName, ok := formFile(r, "avatar")
	if ok {
		defer avatar.Close()
		in.Avatar = &auth.FileUpload{Name: avatarName, Content: avatar}
	}

	if cover, coverName, ok := formFile(r, "coverImage"); ok {
		defer cover.Close()
		in.CoverImage = &auth.FileUpload{Name: coverName, Content: cover}
	}

	user, err := h.Sessions.Register(ctx, in)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, user, "user registered successfully")
}

// Login handles POST /api/v1/users/login.
func (h UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, fmt.Errorf("%w: invalid request body", auth.ErrValidation))
		return
	}

	identifier := req.Username
	if identifier == "" {
		identifier = req.Email
	}

	user, tokens, err := h.Sessions.Login(ctx, identifier, req.Password)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	setAuthCookies(w, tokens, h.SecureCookies)
	respondJSON(ctx, w, http.StatusOK, map[string]any{
		"user":   user,
		"tokens": tokens,
	}, "logged in successfully")
}

// Logout handles POST /api/v1/users/logout.
func (h UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		h.Unauthorized(w, r)
		return
	}

	if err := h.Sessions.Logout(ctx, user.ID); err != nil {
		respondError(ctx, w, err)
		return
	}

	clearAuthCookies(w, h.SecureCookies)
	respondJSON(ctx, w, http.StatusOK, nil, "logged out successfully")
}

// Refresh handles POST /api/v1/users/refresh-token. The refresh token is
// read from the cookie or the request body.
func (h UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	presented := ""
	if cookie, err := r.Cookie("refreshToken"); err == nil {
		presented = cookie.Value
	}
	if presented == "" {
		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			presented = req.RefreshToken
		}
	}

	tokens, err := h.Sessions.Refresh(ctx, presented)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	setAuthCookies(w, tokens, h.SecureCookies)
	respondJSON(ctx, w, http.StatusOK, tokens, "access token refreshed")
}

// ChangePassword handles POST /api/v1/users/change-password.
func (h UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		h.Unauthorized(w, r)
		return
	}

	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, fmt.Errorf("%w: invalid request body", auth.ErrValidation))
		return
	}

	if err := h.Sessions.ChangePassword(ctx, user.ID, req.OldPassword, req.NewPassword); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, nil, "password changed successfully")
}

// Me handles GET /api/v1/users/me.
func (h UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		h.Unauthorized(w, r)
		return
	}

	profile, err := h.Sessions.CurrentUser(ctx, user.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, profile, "current user fetched")
}

// UpdateAccount handles PATCH /api/v1/users/account.
func (h UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		h.Unauthorized(w, r)
		return
	}

	var req struct {
		FullName string `json:"fullname"`
		Email    string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, fmt.Errorf("%w: invalid request body", auth.ErrValidation))
		return
	}

	updated, err := h.Sessions.UpdateAccount(ctx, user.ID, req.FullName, req.Email)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, updated, "account updated successfully")
}

// UpdateAvatar handles PATCH /api/v1/users/avatar (multipart).
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", h.Sessions.UpdateAvatar)
}

// UpdateCoverImage handles PATCH /api/v1/users/cover-image (multipart).
func (h UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage", h.Sessions.UpdateCoverImage)
}

// Unauthorized writes the standard 401 envelope. It doubles as the rejection
// handler for the auth middleware.
func (h UserHandler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	respondJSON(r.Context(), w, http.StatusUnauthorized, nil, "unauthorized request")
}

func (h UserHandler) updateImage(w http.ResponseWriter, r *http.Request, field string, update func(ctx context.Context, userID string, file auth.FileUpload) (models.User, error)) {
	ctx := r.Context()

	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		h.Unauthorized(w, r)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(ctx, w, fmt.Errorf("%w: expected multipart form", auth.ErrValidation))
		return
	}
	defer cleanupMultipart(r)

	file, name, ok := formFile(r, field)
	if !ok {
		respondError(ctx, w, fmt.Errorf("%w: %s file is required", auth.ErrValidation, field))
		return
	}
	defer file.Close()

	updated, err := update(ctx, user.ID, auth.FileUpload{Name: name, Content: file})
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, updated, field+" updated successfully")
}

func formFile(r *http.Request, field string) (multipart.File, string, bool) {
	f, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", false
	}
	return f, header.Filename, true
}

// cleanupMultipart releases temp files spilled to disk during parsing.
func cleanupMultipart(r *http.Request) {
	if r.MultipartForm != nil {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logging.FromContext(r.Context()).Warn("remove multipart temp files", "error", err)
		}
	}
}
