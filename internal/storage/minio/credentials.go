package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/dtroode/gatekeeper/internal/credential"
	"github.com/dtroode/gatekeeper/internal/model"
)

var _ model.CredentialBackend = (*CredentialObject)(nil)

// CredentialObject keeps the credential mapping as one JSON object in
// object storage.
type CredentialObject struct {
	storage model.ObjectStorage
	key     string
}

func NewCredentialObject(storage model.ObjectStorage, key string) *CredentialObject {
	return &CredentialObject{
		storage: storage,
		key:     key,
	}
}

// Load returns an empty mapping when the object does not exist yet.
func (o *CredentialObject) Load(ctx context.Context) (map[string]string, error) {
	exists, err := o.storage.Exists(ctx, o.key)
	if err != nil {
		return nil, err
	}
	if !exists {
		return map[string]string{}, nil
	}

	rc, err := o.storage.Download(ctx, o.key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials object: %w", err)
	}

	return credential.Decode(data)
}

func (o *CredentialObject) Save(ctx context.Context, credentials map[string]string) error {
	data, err := credential.Encode(credentials)
	if err != nil {
		return err
	}

	return o.storage.Upload(ctx, o.key, bytes.NewReader(data), int64(len(data)))
}
