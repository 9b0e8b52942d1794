package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var ErrInvalidImage = errors.New("invalid base64 image data")

const avatarSubdir = "user_image"

// Store writes decoded user avatars under a local media directory and maps
// stored paths to public URLs.
type Store struct {
	dir     string
	baseURL string
}

func NewStore(dir, baseURL string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, avatarSubdir), 0o755); err != nil {
		return nil, fmt.Errorf("media dir: %w", err)
	}
	return &Store{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// SaveAvatar decodes a base64 image and writes it as <dir>/user_image/<owner>.<ext>.
// The extension is sniffed from the decoded bytes; non-image payloads are rejected.
func (s *Store) SaveAvatar(owner string, b64 string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", ErrInvalidImage
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", ErrInvalidImage
	}

	rel := path.Join(avatarSubdir, sanitize(owner)+mt.Extension())
	if err := os.WriteFile(filepath.Join(s.dir, filepath.FromSlash(rel)), data, 0o644); err != nil {
		return "", fmt.Errorf("write avatar: %w", err)
	}
	return rel, nil
}

// URL maps a stored relative path to its public URL. Nil stays nil.
func (s *Store) URL(rel *string) *string {
	if rel == nil {
		return nil
	}
	u := s.baseURL + "/" + strings.TrimLeft(*rel, "/")
	return &u
}

// Dir is the root served under the media base URL.
func (s *Store) Dir() string { return s.dir }

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '.', ' ':
			return '_'
		}
		return r
	}, name)
}
