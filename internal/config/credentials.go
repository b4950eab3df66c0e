package config

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// Environment variables consulted for Firebase service-account credentials,
// in resolution order. The raw-JSON and base64 variants exist for hosting
// platforms that can't ship files; the path variant is for local development.
const (
	EnvCredentials     = "FIREBASE_SERVICE_ACCOUNT"
	EnvCredentialsB64  = "FIREBASE_SERVICE_ACCOUNT_B64"
	EnvCredentialsPath = "FIREBASE_SERVICE_ACCOUNT_PATH"

	defaultCredentialsPath = "firebase-service-account.json"
)

var (
	// ErrNoCredentials means none of the three sources resolved.
	ErrNoCredentials = errors.New("no firebase credentials found")
	// ErrBadCredentials means a source resolved but its content is not a
	// valid service-account JSON blob.
	ErrBadCredentials = errors.New("invalid firebase credentials")
)

// Credentials is the resolved service-account material. Exactly one of JSON
// or Path is set, depending on which source won.
type Credentials struct {
	JSON      []byte
	Path      string
	ProjectID string
	Source    string // which source resolved, for the startup log line
}

var (
	credsOnce   sync.Once
	cachedCreds *Credentials
	credsErr    error
)

// ResolveCredentials resolves service-account credentials once per process.
// Concurrent first callers serialize on the same resolution attempt;
// subsequent calls return the cached result.
func ResolveCredentials() (*Credentials, error) {
	credsOnce.Do(func() {
		cachedCreds, credsErr = resolveCredentials()
	})
	return cachedCreds, credsErr
}

// resolveCredentials tries, in order: a raw JSON blob in the environment, a
// base64-encoded blob, then a file on disk. First match wins.
func resolveCredentials() (*Credentials, error) {
	if raw := os.Getenv(EnvCredentials); raw != "" {
		projectID, err := projectIDFromJSON([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrBadCredentials, EnvCredentials, err)
		}
		return &Credentials{JSON: []byte(raw), ProjectID: projectID, Source: EnvCredentials}, nil
	}

	if encoded := os.Getenv(EnvCredentialsB64); encoded != "" {
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrBadCredentials, EnvCredentialsB64, err)
		}
		projectID, err := projectIDFromJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrBadCredentials, EnvCredentialsB64, err)
		}
		return &Credentials{JSON: raw, ProjectID: projectID, Source: EnvCredentialsB64}, nil
	}

	path := os.Getenv(EnvCredentialsPath)
	if path == "" {
		path = defaultCredentialsPath
	}
	if _, err := os.Stat(path); err == nil {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file %s: %w", path, err)
		}
		projectID, err := projectIDFromJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrBadCredentials, path, err)
		}
		return &Credentials{Path: path, ProjectID: projectID, Source: path}, nil
	}

	return nil, fmt.Errorf("%w: set %s, %s, or %s", ErrNoCredentials,
		EnvCredentials, EnvCredentialsB64, EnvCredentialsPath)
}

func projectIDFromJSON(raw []byte) (string, error) {
	var blob struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.Unmarshal(raw, &blob); err != nil {
		return "", err
	}
	return blob.ProjectID, nil
}
