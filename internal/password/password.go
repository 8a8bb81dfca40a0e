// Package password decides whether an archive needs a password and derives it,
// either from a named secret or from the current calendar date.
package password

import (
	"errors"
	"strings"
	"time"

	"fjacquet/mis-parser/internal/dateutils"
	"fjacquet/mis-parser/internal/models"
	"fjacquet/mis-parser/internal/parsererror"
	"fjacquet/mis-parser/internal/secrets"
)

// NoPassword is the placeholder secret value of sources that are flagged
// protected but have no real password.
const NoPassword = "no_password"

// Resolver resolves archive passwords.
type Resolver struct {
	Secrets secrets.Store
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewResolver creates a Resolver reading static passwords from store.
func NewResolver(store secrets.Store) *Resolver {
	return &Resolver{Secrets: store, Now: time.Now}
}

// Dynamic returns today's password: the date formatted DDMMYYYY. It is
// recomputed on every call.
func (r *Resolver) Dynamic() string {
	now := time.Now
	if r != nil && r.Now != nil {
		now = r.Now
	}
	return dateutils.FormatCompact(now())
}

// Resolve returns the password for a source. A time-based password type wins
// over a secret key. Lookup failures come back as PasswordResolutionError.
func (r *Resolver) Resolve(secretKey string, passwordType models.PasswordType) (string, error) {
	if passwordType == models.PasswordChangesWithTime {
		return r.Dynamic(), nil
	}
	if secretKey == "" {
		return "", &parsererror.PasswordResolutionError{Err: errors.New("no password_secret_key configured")}
	}
	if r == nil || r.Secrets == nil {
		return "", &parsererror.PasswordResolutionError{SecretKey: secretKey, Err: errors.New("no secret store configured")}
	}
	v, err := r.Secrets.GetSecret(secretKey)
	if err != nil {
		return "", &parsererror.PasswordResolutionError{SecretKey: secretKey, Err: err}
	}
	return v, nil
}

// IsDual reports whether a source really is password protected: the flag must
// be set and the declared value must not be the no-password placeholder.
func IsDual(value string, protected bool) bool {
	if !protected {
		return false
	}
	v := strings.TrimSpace(value)
	return v != "" && !strings.EqualFold(v, NoPassword)
}

// ForSource resolves the password of cfg. ok is false when the source is not
// protected, or when its secret is the no-password placeholder.
func (r *Resolver) ForSource(cfg models.SourceConfig) (pw string, ok bool, err error) {
	if !cfg.PasswordProtected {
		return "", false, nil
	}
	pw, err = r.Resolve(cfg.PasswordSecretKey, cfg.PasswordType)
	if err != nil {
		return "", false, err
	}
	if !IsDual(pw, cfg.PasswordProtected) {
		return "", false, nil
	}
	return pw, true, nil
}
