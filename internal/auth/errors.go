package auth

import "errors"

var (
	// ErrInvalidCredentials indicates the identifier/password pair does not
	// match any account. Deliberately indistinguishable from "no such user".
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrValidation is the base error for missing or malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrTokenInvalid indicates a malformed token or a bad signature.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenExpired indicates the token's expiry has lapsed.
	ErrTokenExpired = errors.New("token expired")
)
