package model

import "context"

// Credential is a stored username/secret pair.
type Credential struct {
	Username string
	Secret   string
}

// CredentialBackend persists the full credential mapping.
// Save must replace the previous mapping atomically from a reader's perspective.
type CredentialBackend interface {
	Load(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, credentials map[string]string) error
}

// PasswordHasher hashes passwords and verifies them against stored secrets.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) bool
}

// CredentialStore is the in-memory view of the credential set used by the auth service.
type CredentialStore interface {
	Get(username string) (string, bool)
	Add(ctx context.Context, username, secret string) error
	Update(ctx context.Context, username, secret string) error
	Remove(ctx context.Context, username string) error
}
