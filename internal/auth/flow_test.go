package auth

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/repositories"
)

type fakeMediaStore struct {
	uploads map[string][]byte
	deleted []string
	failAt  string
}

func newFakeMediaStore() *fakeMediaStore {
	return &fakeMediaStore{uploads: make(map[string][]byte)}
}

func (s *fakeMediaStore) Upload(_ context.Context, key string, r io.Reader) (models.MediaAsset, error) {
	if s.failAt != "" && strings.HasPrefix(key, s.failAt) {
		return models.MediaAsset{}, errors.New("upload failed")
	}
	contents, err := io.ReadAll(r)
	if err != nil {
		return models.MediaAsset{}, err
	}
	s.uploads[key] = contents
	return models.MediaAsset{URL: "https://cdn.test/" + key, Key: key}, nil
}

func (s *fakeMediaStore) Delete(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	delete(s.uploads, key)
	return nil
}

// failingUserStore wraps the in-memory store so Create always fails.
type failingUserStore struct {
	*repositories.InMemoryUserStore
}

func (failingUserStore) Create(context.Context, models.User) error {
	return errors.New("database down")
}

func newTestFlow() (*Flow, *repositories.InMemoryUserStore, *fakeMediaStore) {
	users := repositories.NewInMemoryUserStore()
	media := newFakeMediaStore()
	flow := &Flow{
		Users:  users,
		Media:  media,
		Tokens: NewTokenIssuer(testTokenConfig()),
	}
	return flow, users, media
}

func registerInput(username, email string) RegisterInput {
	return RegisterInput{
		Username: username,
		Email:    email,
		Password: "password123",
		FullName: "Test User",
		Avatar:   &FileUpload{Name: "avatar.png", Content: bytes.NewReader([]byte("png-bytes"))},
	}
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	flow, _, media := newTestFlow()

	user, err := flow.Register(ctx, registerInput("Alice", "Alice@Example.com"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Username != "alice" || user.Email != "alice@example.com" {
		t.Fatalf("expected normalized identity, got %+v", user)
	}
	if user.Password != "" || user.RefreshToken != "" {
		t.Fatal("registered user must be sanitized")
	}
	if user.Avatar.Key == "" {
		t.Fatal("expected avatar asset reference")
	}
	if _, ok := media.uploads[user.Avatar.Key]; !ok {
		t.Fatalf("avatar %q not uploaded", user.Avatar.Key)
	}

	for _, identifier := range []string{"alice", "alice@example.com"} {
		loggedIn, tokens, err := flow.Login(ctx, identifier, "password123")
		if err != nil {
			t.Fatalf("login as %q: %v", identifier, err)
		}
		if loggedIn.ID != user.ID {
			t.Fatalf("logged in as wrong user: %+v", loggedIn)
		}
		if tokens.AccessToken == "" || tokens.RefreshToken == "" {
			t.Fatalf("expected tokens, got %+v", tokens)
		}
	}

	if _, _, err := flow.Login(ctx, "alice", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := flow.Login(ctx, "nobody", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestRegisterDuplicateIdentity(t *testing.T) {
	ctx := context.Background()
	flow, _, _ := newTestFlow()

	if _, err := flow.Register(ctx, registerInput("alice", "alice@example.com")); err != nil {
		t.Fatalf("first register: %v", err)
	}

	cases := []RegisterInput{
		registerInput("ALICE", "other@example.com"),
		registerInput("other", "Alice@Example.com"),
	}
	for _, in := range cases {
		if _, err := flow.Register(ctx, in); !errors.Is(err, repositories.ErrConflict) {
			t.Fatalf("expected ErrConflict for %q/%q, got %v", in.Username, in.Email, err)
		}
	}
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	flow, _, _ := newTestFlow()

	cases := map[string]RegisterInput{
		"missing username": {Email: "a@b.com", Password: "password123", FullName: "A", Avatar: &FileUpload{Name: "a.png", Content: bytes.NewReader(nil)}},
		"bad email":        registerInput("alice", "not-an-email"),
		"short password": {
			Username: "alice", Email: "a@b.com", Password: "short", FullName: "A",
			Avatar: &FileUpload{Name: "a.png", Content: bytes.NewReader(nil)},
		},
		"missing avatar": {Username: "alice", Email: "a@b.com", Password: "password123", FullName: "A"},
	}

	for name, in := range cases {
		if _, err := flow.Register(ctx, in); !errors.Is(err, ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", name, err)
		}
	}
}

func TestRegisterCleansUpAssetsOnStoreFailure(t *testing.T) {
	ctx := context.Background()
	media := newFakeMediaStore()
	flow := &Flow{
		Users:  failingUserStore{repositories.NewInMemoryUserStore()},
		Media:  media,
		Tokens: NewTokenIssuer(testTokenConfig()),
	}

	in := registerInput("alice", "alice@example.com")
	in.CoverImage = &FileUpload{Name: "cover.jpg", Content: bytes.NewReader([]byte("jpg-bytes"))}

	if _, err := flow.Register(ctx, in); err == nil {
		t.Fatal("expected register to fail")
	}

	if len(media.uploads) != 0 {
		t.Fatalf("expected uploaded assets to be discarded, still have %v", media.uploads)
	}
	if len(media.deleted) != 2 {
		t.Fatalf("expected avatar and cover deletions, got %v", media.deleted)
	}
}

func TestRefreshRotatesSingleUse(t *testing.T) {
	ctx := context.Background()
	flow, _, _ := newTestFlow()

	user, err := flow.Register(ctx, registerInput("alice", "alice@example.com"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	_, tokens, err := flow.Login(ctx, "alice", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	rotated, err := flow.Refresh(ctx, tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rotated.RefreshToken == tokens.RefreshToken {
		t.Fatal("refresh must rotate the refresh token")
	}

	// The spent token no longer matches the stored one.
	if _, err := flow.Refresh(ctx, tokens.RefreshToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid replaying spent token, got %v", err)
	}

	// The rotated token is good for exactly one more exchange.
	if _, err := flow.Refresh(ctx, rotated.RefreshToken); err != nil {
		t.Fatalf("refresh with rotated token: %v", err)
	}

	current, err := flow.CurrentUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if current.ID != user.ID {
		t.Fatalf("unexpected current user: %+v", current)
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	ctx := context.Background()
	flow, _, _ := newTestFlow()

	user, err := flow.Register(ctx, registerInput("alice", "alice@example.com"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	_, tokens, err := flow.Login(ctx, "alice", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := flow.Logout(ctx, user.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, err := flow.Refresh(ctx, tokens.RefreshToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid after logout, got %v", err)
	}
}

func TestChangePasswordKeepsSessionAlive(t *testing.T) {
	ctx := context.Background()
	flow, _, _ := newTestFlow()

	user, err := flow.Register(ctx, registerInput("alice", "alice@example.com"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	_, tokens, err := flow.Login(ctx, "alice", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := flow.ChangePassword(ctx, user.ID, "wrong", "newpassword456"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong old password, got %v", err)
	}
	if err := flow.ChangePassword(ctx, user.ID, "password123", "short"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for short password, got %v", err)
	}

	if err := flow.ChangePassword(ctx, user.ID, "password123", "newpassword456"); err != nil {
		t.Fatalf("change password: %v", err)
	}

	// A password change does not revoke the refresh token issued before it.
	// Checked before logging in again: a fresh login overwrites the stored
	// token and would revoke this one.
	if _, err := flow.Refresh(ctx, tokens.RefreshToken); err != nil {
		t.Fatalf("refresh token should survive password change: %v", err)
	}

	if _, _, err := flow.Login(ctx, "alice", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password should be rejected, got %v", err)
	}
	if _, _, err := flow.Login(ctx, "alice", "newpassword456"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestUpdateAvatarReplacesPreviousAsset(t *testing.T) {
	ctx := context.Background()
	flow, _, media := newTestFlow()

	user, err := flow.Register(ctx, registerInput("alice", "alice@example.com"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	oldKey := user.Avatar.Key

	updated, err := flow.UpdateAvatar(ctx, user.ID, FileUpload{Name: "new.png", Content: bytes.NewReader([]byte("new-bytes"))})
	if err != nil {
		t.Fatalf("update avatar: %v", err)
	}
	if updated.Avatar.Key == oldKey {
		t.Fatal("avatar key should change")
	}

	var deletedOld bool
	for _, key := range media.deleted {
		if key == oldKey {
			deletedOld = true
		}
	}
	if !deletedOld {
		t.Fatalf("previous avatar %q was not deleted", oldKey)
	}
}

func TestUpdateAccount(t *testing.T) {
	ctx := context.Background()
	flow, _, _ := newTestFlow()

	user, err := flow.Register(ctx, registerInput("alice", "alice@example.com"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	updated, err := flow.UpdateAccount(ctx, user.ID, "Alice Cooper", "new@example.com")
	if err != nil {
		t.Fatalf("update account: %v", err)
	}
	if updated.FullName != "Alice Cooper" || updated.Email != "new@example.com" {
		t.Fatalf("unexpected account state: %+v", updated)
	}

	if _, err := flow.UpdateAccount(ctx, user.ID, "", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty update, got %v", err)
	}
	if _, err := flow.UpdateAccount(ctx, user.ID, "", "not-an-email"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for bad email, got %v", err)
	}
}
