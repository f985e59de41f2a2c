package staticfiles

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FileStore persists uploaded files and returns their public URLs
type FileStore interface {
	Save(filename string, r io.Reader) (url string, err error)
}

// DiskStore writes uploads into a local directory served by the http layer.
// Stored names are derived from the content hash, so equal uploads dedupe
// and different uploads with the same client-supplied name can't clobber
// each other.
type DiskStore struct {
	dir     string
	baseURL string
}

func NewDiskStore(dir string, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error while preparing static directory. Err: %w", err)
	}

	return &DiskStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *DiskStore) Save(filename string, r io.Reader) (string, error) {
	tmp, err := os.CreateTemp(s.dir, "upload-*")
	if err != nil {
		return "", fmt.Errorf("error while creating temp file. Err: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	hash := sha256.New()
	if _, err = io.Copy(io.MultiWriter(tmp, hash), r); err != nil {
		return "", fmt.Errorf("error while writing upload. Err: %w", err)
	}

	name := hex.EncodeToString(hash.Sum(nil)) + strings.ToLower(filepath.Ext(filename))
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("error while closing temp file. Err: %w", err)
	}

	if err = os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("error while storing upload. Err: %w", err)
	}

	return s.baseURL + "/" + path.Clean(name), nil
}
