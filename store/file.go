package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultFileName is used when FileStore.Path is empty.
const DefaultFileName = ".fieldops/credentials.json"

// FileStore keeps the credential pair in a single JSON file with mode 0600.
// Writes go to a temporary file that is renamed over the target, so a crash
// never leaves a half-written pair behind.
type FileStore struct {
	Path string

	mu sync.Mutex
}

// NewFileStore returns a FileStore writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

type fileCredentials struct {
	AccessToken  string `json:"authToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

func (f *FileStore) path() string {
	if strings.TrimSpace(f.Path) == "" {
		return DefaultFileName
	}
	return f.Path
}

func (f *FileStore) Load(ctx context.Context) (Credentials, error) {
	if err := ctx.Err(); err != nil {
		return Credentials{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Credentials{}, nil
		}
		return Credentials{}, fmt.Errorf("%w: read file: %v", ErrUnavailable, err)
	}
	if len(data) == 0 {
		return Credentials{}, nil
	}

	var payload fileCredentials
	if err := json.Unmarshal(data, &payload); err != nil {
		return Credentials{}, fmt.Errorf("%w: decode json: %v", ErrUnavailable, err)
	}

	return Credentials{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
	}, nil
}

func (f *FileStore) Save(ctx context.Context, creds Credentials) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.Marshal(fileCredentials{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
	})
	if err != nil {
		return fmt.Errorf("%w: encode json: %v", ErrUnavailable, err)
	}
	return f.writeAtomic(data)
}

func (f *FileStore) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: remove file: %v", ErrUnavailable, err)
	}
	return nil
}

func (f *FileStore) writeAtomic(data []byte) error {
	path := f.path()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: create dir: %v", ErrUnavailable, err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrUnavailable, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: chmod temp file: %v", ErrUnavailable, err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write temp file: %v", ErrUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp file: %v", ErrUnavailable, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: rename: %v", ErrUnavailable, err)
	}
	return nil
}
