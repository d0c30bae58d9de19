package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const MaxSize = 5 << 20

var (
	ErrTooLarge        = errors.New("file exceeds 5 MiB")
	ErrUnsupportedType = errors.New("only jpeg, png and webp images are allowed")
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Store writes uploaded images to a local directory served under /uploads.
type Store struct {
	dir     string
	baseURL string
}

func NewStore(dir, publicURL string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir, baseURL: strings.TrimRight(publicURL, "/") + "/uploads/"}, nil
}

// Save sniffs the content type from the first bytes rather than trusting the
// client's header, then stores the file as <uuid><ext>.
func (s *Store) Save(r io.Reader) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	ext, ok := extensions[http.DetectContentType(head)]
	if !ok {
		return "", ErrUnsupportedType
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}

	body := io.MultiReader(bytes.NewReader(head), io.LimitReader(r, MaxSize+1-int64(n)))
	written, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && written > MaxSize {
		err = ErrTooLarge
	}
	if err != nil {
		os.Remove(path)
		return "", err
	}

	return s.baseURL + name, nil
}
