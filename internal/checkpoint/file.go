package checkpoint

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps one file per checkpoint ID under Dir, so a paused graph
// can be resumed by a later process.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create checkpoint dir: %w", err)
	}
	return &FileStore{Dir: dir}, nil
}

// path hex-encodes the ID so every distinct ID gets its own file inside Dir.
func (f *FileStore) path(checkPointID string) string {
	return filepath.Join(f.Dir, hex.EncodeToString([]byte(checkPointID))+".ckpt")
}

func (f *FileStore) Get(_ context.Context, checkPointID string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path(checkPointID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read checkpoint %s: %w", checkPointID, err)
	}
	return data, true, nil
}

func (f *FileStore) Set(_ context.Context, checkPointID string, checkPoint []byte) error {
	if checkPointID == "" {
		return ErrEmptyID
	}
	tmp := f.path(checkPointID) + ".tmp"
	if err := os.WriteFile(tmp, checkPoint, 0o644); err != nil {
		return fmt.Errorf("write checkpoint %s: %w", checkPointID, err)
	}
	return os.Rename(tmp, f.path(checkPointID))
}

func (f *FileStore) Delete(_ context.Context, checkPointID string) error {
	err := os.Remove(f.path(checkPointID))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete checkpoint %s: %w", checkPointID, err)
	}
	return nil
}
