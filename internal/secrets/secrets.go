// Package secrets resolves named secrets such as archive passwords.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrSecretNotFound is returned when a store has no value for a name.
var ErrSecretNotFound = errors.New("secret not found")

// Store looks up a secret value by name.
type Store interface {
	GetSecret(name string) (string, error)
}

// EnvStore reads secrets from environment variables. The variable name is the
// prefix followed by the secret name, upper-cased, with '-', '.' and '/' turned into '_'.
type EnvStore struct {
	Prefix string
	lookup func(string) (string, bool)
}

// NewEnvStore creates an EnvStore reading the process environment.
func NewEnvStore(prefix string) *EnvStore {
	return &EnvStore{Prefix: prefix, lookup: os.LookupEnv}
}

var envReplacer = strings.NewReplacer("-", "_", ".", "_", "/", "_")

// VariableName returns the environment variable consulted for name.
func (s *EnvStore) VariableName(name string) string {
	return strings.ToUpper(envReplacer.Replace(s.Prefix + name))
}

// GetSecret implements Store.
func (s *EnvStore) GetSecret(name string) (string, error) {
	lookup := s.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, ok := lookup(s.VariableName(name))
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, s.VariableName(name))
	}
	return v, nil
}

// MapStore serves secrets from a fixed map.
type MapStore map[string]string

// GetSecret implements Store.
func (m MapStore) GetSecret(name string) (string, error) {
	v, ok := m[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
	}
	return v, nil
}
