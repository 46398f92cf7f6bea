package adminapi

import (
	"encoding/base64"
	"errors"
)

// ErrEmptyAPIKey is returned when a credential is built from an empty key.
var ErrEmptyAPIKey = errors.New("api key is empty")

// Credential is the Basic authorization header value for the Admin API.
// It is computed once and never mutated.
type Credential struct {
	header string
}

// NewCredential encodes apiKey as a Basic credential with an empty password.
func NewCredential(apiKey string) (Credential, error) {
	if apiKey == "" {
		return Credential{}, ErrEmptyAPIKey
	}
	token := base64.StdEncoding.EncodeToString([]byte(apiKey + ":"))
	return Credential{header: "Basic " + token}, nil
}

// Header returns the Authorization header value.
func (c Credential) Header() string {
	return c.header
}

// IsZero reports whether the credential was never initialized.
func (c Credential) IsZero() bool {
	return c.header == ""
}

// String keeps the key out of logs.
func (c Credential) String() string {
	if c.IsZero() {
		return "Credential(empty)"
	}
	return "Credential(Basic ***)"
}
