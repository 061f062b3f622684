package credential

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Encode serializes the credential mapping as a JSON object.
func Encode(credentials map[string]string) ([]byte, error) {
	if credentials == nil {
		credentials = map[string]string{}
	}
	data, err := json.Marshal(credentials)
	if err != nil {
		return nil, fmt.Errorf("failed to encode credentials: %w", err)
	}
	return data, nil
}

// Decode parses a JSON object produced by Encode. Empty input yields an empty mapping.
func Decode(data []byte) (map[string]string, error) {
	credentials := map[string]string{}
	if len(bytes.TrimSpace(data)) == 0 {
		return credentials, nil
	}
	if err := json.Unmarshal(data, &credentials); err != nil {
		return nil, fmt.Errorf("failed to decode credentials: %w", err)
	}
	if credentials == nil {
		return nil, fmt.Errorf("failed to decode credentials: expected object, got null")
	}
	return credentials, nil
}
