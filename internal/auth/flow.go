package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/repositories"
)

// UserStore captures the persistence operations required by the session flow.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	// FindByIdentifier matches the identifier against both the username and
	// email columns (lowercased).
	FindByIdentifier(ctx context.Context, identifier string) (models.User, error)
	Update(ctx context.Context, user models.User) error
	// SetRefreshToken overwrites the stored refresh token unconditionally.
	// An empty token clears it.
	SetRefreshToken(ctx context.Context, userID, token string) error
	// RotateRefreshToken replaces the stored refresh token only if it still
	// equals presented, returning ErrNotFound otherwise.
	RotateRefreshToken(ctx context.Context, userID, presented, next string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// MediaStore is the external media host holding avatars and cover images.
type MediaStore interface {
	Upload(ctx context.Context, key string, r io.Reader) (models.MediaAsset, error)
	Delete(ctx context.Context, key string) error
}

// FileUpload is a client-supplied file handed to the media store.
type FileUpload struct {
	Name    string
	Content io.Reader
}

// RegisterInput carries the fields required to create an account. Avatar is
// mandatory; CoverImage is optional.
type RegisterInput struct {
	Username   string
	Email      string
	Password   string
	FullName   string
	Avatar     *FileUpload
	CoverImage *FileUpload
}

// Flow orchestrates the credential and session lifecycle: registration,
// login, logout, refresh-token rotation and password changes.
type Flow struct {
	Users   UserStore
	Media   MediaStore
	Tokens  *TokenIssuer
	NowFunc func() time.Time
}

// Register creates a new account. Username and email are normalized to
// lower case and must be globally unique; all textual fields must be
// non-empty after trimming. The avatar (and optional cover image) is pushed
// to the media store before the account row is written; if that write then
// fails, the uploaded assets are deleted best-effort.
func (f *Flow) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.ToLower(strings.TrimSpace(in.Email))
	fullName := strings.TrimSpace(in.FullName)

	if username == "" || email == "" || fullName == "" || strings.TrimSpace(in.Password) == "" {
		return models.User{}, fmt.Errorf("%w: all fields are required", ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return models.User{}, fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	if len(in.Password) < 8 {
		return models.User{}, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	if in.Avatar == nil {
		return models.User{}, fmt.Errorf("%w: avatar file is required", ErrValidation)
	}

	for _, identifier := range []string{username, email} {
		if _, err := f.Users.FindByIdentifier(ctx, identifier); err == nil {
			return models.User{}, fmt.Errorf("user already exists: %w", repositories.ErrConflict)
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return models.User{}, fmt.Errorf("check existing user: %w", err)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	avatar, err := f.Media.Upload(ctx, assetKey("avatars", in.Avatar.Name), in.Avatar.Content)
	if err != nil {
		return models.User{}, fmt.Errorf("upload avatar: %w", err)
	}

	var cover models.MediaAsset
	if in.CoverImage != nil {
		cover, err = f.Media.Upload(ctx, assetKey("covers", in.CoverImage.Name), in.CoverImage.Content)
		if err != nil {
			f.discardAsset(ctx, avatar)
			return models.User{}, fmt.Errorf("upload cover image: %w", err)
		}
	}

	now := f.now()
	user := models.User{
		ID:         uuid.NewString(),
		Username:   username,
		Email:      email,
		FullName:   fullName,
		Password:   string(hashed),
		Avatar:     avatar,
		CoverImage: cover,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := f.Users.Create(ctx, user); err != nil {
		f.discardAsset(ctx, avatar)
		f.discardAsset(ctx, cover)
		if errors.Is(err, repositories.ErrConflict) {
			return models.User{}, fmt.Errorf("user already exists: %w", repositories.ErrConflict)
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	return user.Sanitized(), nil
}

// Login authenticates by username or email plus password and issues a fresh
// token pair. The new refresh token replaces whatever token was stored
// before, revoking all previously issued refresh tokens for the user.
func (f *Flow) Login(ctx context.Context, identifier, password string) (models.User, models.SessionTokens, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if identifier == "" || password == "" {
		return models.User{}, models.SessionTokens{}, fmt.Errorf("%w: identifier and password are required", ErrValidation)
	}

	user, err := f.Users.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.User{}, models.SessionTokens{}, ErrInvalidCredentials
		}
		return models.User{}, models.SessionTokens{}, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return models.User{}, models.SessionTokens{}, ErrInvalidCredentials
	}

	tokens, err := f.Tokens.IssuePair(user)
	if err != nil {
		return models.User{}, models.SessionTokens{}, err
	}

	if err := f.Users.SetRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return models.User{}, models.SessionTokens{}, fmt.Errorf("persist refresh token: %w", err)
	}

	return user.Sanitized(), tokens, nil
}

// Logout clears the stored refresh token, making every outstanding refresh
// token for the user permanently unusable. Clients discard their own copies.
func (f *Flow) Logout(ctx context.Context, userID string) error {
	if err := f.Users.SetRefreshToken(ctx, userID, ""); err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	return nil
}

// Refresh exchanges a refresh token for a new pair. The presented token must
// verify against the refresh secret and exactly equal the token stored on
// the user record; rotation is a compare-and-swap, so a superseded or reused
// token fails even when its signature is still valid.
func (f *Flow) Refresh(ctx context.Context, presented string) (models.SessionTokens, error) {
	presented = strings.TrimSpace(presented)
	if presented == "" {
		return models.SessionTokens{}, ErrTokenInvalid
	}

	claims, err := f.Tokens.VerifyRefresh(presented)
	if err != nil {
		return models.SessionTokens{}, err
	}

	user, err := f.Users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.SessionTokens{}, ErrTokenInvalid
		}
		return models.SessionTokens{}, fmt.Errorf("find user: %w", err)
	}

	if user.RefreshToken != presented {
		return models.SessionTokens{}, ErrTokenInvalid
	}

	tokens, err := f.Tokens.IssuePair(user)
	if err != nil {
		return models.SessionTokens{}, err
	}

	if err := f.Users.RotateRefreshToken(ctx, user.ID, presented, tokens.RefreshToken); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// A concurrent rotation won the race; this token is spent.
			return models.SessionTokens{}, ErrTokenInvalid
		}
		return models.SessionTokens{}, fmt.Errorf("rotate refresh token: %w", err)
	}

	return tokens, nil
}

// ChangePassword verifies the old password and stores a hash of the new one.
// The stored refresh token is left untouched, so existing sessions survive a
// password change.
func (f *Flow) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" || len(newPassword) < 8 {
		return fmt.Errorf("%w: new password must be at least 8 characters", ErrValidation)
	}

	user, err := f.Users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := f.Users.UpdatePassword(ctx, userID, string(hashed)); err != nil {
		return fmt.Errorf("store password: %w", err)
	}

	return nil
}

// CurrentUser loads the caller's own profile.
func (f *Flow) CurrentUser(ctx context.Context, userID string) (models.User, error) {
	user, err := f.Users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	return user.Sanitized(), nil
}

// UpdateAccount changes the full name and/or email of an account.
func (f *Flow) UpdateAccount(ctx context.Context, userID, fullName, email string) (models.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))
	if fullName == "" && email == "" {
		return models.User{}, fmt.Errorf("%w: nothing to update", ErrValidation)
	}

	user, err := f.Users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}

	if fullName != "" {
		user.FullName = fullName
	}
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return models.User{}, fmt.Errorf("%w: invalid email address", ErrValidation)
		}
		user.Email = email
	}
	user.UpdatedAt = f.now()

	if err := f.Users.Update(ctx, user); err != nil {
		return models.User{}, fmt.Errorf("update account: %w", err)
	}

	return user.Sanitized(), nil
}

// UpdateAvatar uploads a replacement avatar and deletes the previous asset
// best-effort once the new reference is saved.
func (f *Flow) UpdateAvatar(ctx context.Context, userID string, file FileUpload) (models.User, error) {
	return f.replaceImage(ctx, userID, file, "avatars", func(u *models.User) *models.MediaAsset {
		return &u.Avatar
	})
}

// UpdateCoverImage uploads a replacement cover image, analogous to
// UpdateAvatar.
func (f *Flow) UpdateCoverImage(ctx context.Context, userID string, file FileUpload) (models.User, error) {
	return f.replaceImage(ctx, userID, file, "covers", func(u *models.User) *models.MediaAsset {
		return &u.CoverImage
	})
}

func (f *Flow) replaceImage(ctx context.Context, userID string, file FileUpload, prefix string, field func(*models.User) *models.MediaAsset) (models.User, error) {
	if file.Content == nil {
		return models.User{}, fmt.Errorf("%w: image file is required", ErrValidation)
	}

	user, err := f.Users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}

	uploaded, err := f.Media.Upload(ctx, assetKey(prefix, file.Name), file.Content)
	if err != nil {
		return models.User{}, fmt.Errorf("upload image: %w", err)
	}

	previous := *field(&user)
	*field(&user) = uploaded
	user.UpdatedAt = f.now()

	if err := f.Users.Update(ctx, user); err != nil {
		f.discardAsset(ctx, uploaded)
		return models.User{}, fmt.Errorf("save image reference: %w", err)
	}

	f.discardAsset(ctx, previous)

	return user.Sanitized(), nil
}

// discardAsset removes an asset that is no longer referenced. Failures are
// logged, not propagated: there is no transaction spanning the media store
// and the database.
func (f *Flow) discardAsset(ctx context.Context, asset models.MediaAsset) {
	if asset.Key == "" {
		return
	}
	if err := f.Media.Delete(ctx, asset.Key); err != nil {
		logging.FromContext(ctx).Warn("orphaned media asset", "key", asset.Key, "error", err)
	}
}

func (f *Flow) now() time.Time {
	if f.NowFunc != nil {
		return f.NowFunc()
	}
	return time.Now().UTC()
}

func assetKey(prefix, name string) string {
	return prefix + "/" + uuid.NewString() + strings.ToLower(path.Ext(name))
}
