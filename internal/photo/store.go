// Package photo implements the upload pipeline: MIME sniffing, bounded
// resize, JPEG re-encode and per-user storage under the uploads root.
package photo

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/copasapp/copas-api/internal/config"
	svcErr "github.com/copasapp/copas-api/internal/errors"
)

// URLPrefix is the public mount point for stored photos. Every reference
// persisted to the database is rooted here.
const URLPrefix = "/uploads"

const tmpDirName = "tmp"

// allowedTypes is the raster-format allow-list for uploads, matched against
// the sniffed content type, never the client-declared one.
var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// Store owns the uploads directory tree. One subdirectory per user, plus a
// tmp/ staging area for raw uploads awaiting conversion.
type Store struct {
	root      string
	maxWidth  int
	maxHeight int
	quality   int
}

// NewStore resolves the uploads root to an absolute path and ensures the
// directory tree exists.
func NewStore(cfg *config.Config) (*Store, error) {
	root, err := filepath.Abs(cfg.Uploads.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve uploads root: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(root, tmpDirName), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads root: %w", err)
	}
	return &Store{
		root:      root,
		maxWidth:  cfg.Uploads.MaxWidth,
		maxHeight: cfg.Uploads.MaxHeight,
		quality:   cfg.Uploads.JPEGQuality,
	}, nil
}

// Root returns the absolute uploads root, for the static file mount.
func (s *Store) Root() string { return s.root }

// SaveUserPhoto runs the conversion pipeline for one upload:
//
//  1. Sniff the content type from the payload bytes and check the allow-list.
//  2. Stage the raw upload as a temp file.
//  3. Decode, resize so neither dimension exceeds the configured bounds
//     (aspect preserved, never upscaled), re-encode as JPEG.
//  4. Write the result under the user's directory with a time+random name.
//
// The temp file is always removed, and a partially written output file is
// removed on encode failure: a failed request leaves no bytes behind.
func (s *Store) SaveUserPhoto(userID uint64, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return "", svcErr.Validation("empty upload")
	}

	ctype := http.DetectContentType(data[:min(len(data), 512)])
	if !allowedTypes[ctype] {
		return "", svcErr.Validation("unsupported image type " + ctype)
	}

	tmp := filepath.Join(s.root, tmpDirName, uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to stage upload: %w", err)
	}
	defer os.Remove(tmp)

	img, err := imaging.Open(tmp, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	// Fit preserves aspect ratio and returns the image unchanged when it
	// already fits inside the bounds.
	img = imaging.Fit(img, s.maxWidth, s.maxHeight, imaging.Lanczos)

	userDir := filepath.Join(s.root, strconv.FormatUint(userID, 10))
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create user dir: %w", err)
	}

	name := fmt.Sprintf("%d-%s.jpg", time.Now().UnixMilli(), uuid.NewString()[:8])
	dst := filepath.Join(userDir, name)
	if err := imaging.Save(img, dst, imaging.JPEGQuality(s.quality)); err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	return path.Join(URLPrefix, strconv.FormatUint(userID, 10), name), nil
}

// Resolve validates a client-supplied photo URL or path and returns the
// normalized relative reference (the form stored in the database) plus the
// absolute path of the backing file. Scheme and host are discarded, and any
// normalized path escaping the uploads root is rejected.
func (s *Store) Resolve(clientPath string) (rel string, abs string, err error) {
	clientPath = strings.TrimSpace(clientPath)
	if clientPath == "" {
		return "", "", svcErr.Validation("photo path required")
	}

	u, err := url.Parse(clientPath)
	if err != nil {
		return "", "", svcErr.Validation("invalid photo path")
	}

	p := path.Clean("/" + strings.TrimPrefix(u.Path, "/"))
	if !strings.HasPrefix(p, URLPrefix+"/") {
		return "", "", svcErr.Validation("photo path outside uploads")
	}

	inside := strings.TrimPrefix(p, URLPrefix+"/")
	abs = filepath.Join(s.root, filepath.FromSlash(inside))

	// Containment check on the resolved path, independent of Clean above.
	relToRoot, err := filepath.Rel(s.root, abs)
	if err != nil || relToRoot == ".." || strings.HasPrefix(relToRoot, ".."+string(filepath.Separator)) {
		return "", "", svcErr.Validation("photo path outside uploads")
	}

	return p, abs, nil
}

// Remove deletes the backing file. Callers treat failures as log-only: the
// database is the source of truth for visibility.
func (s *Store) Remove(abs string) error {
	return os.Remove(abs)
}

// RemoveUserDir deletes a user's whole photo directory, used when the user
// record is deleted.
func (s *Store) RemoveUserDir(userID uint64) error {
	return os.RemoveAll(filepath.Join(s.root, strconv.FormatUint(userID, 10)))
}

// Sweep removes empty per-user directories and stale temp files older than
// maxTmpAge. It is invoked by an external trigger (cmd/sweep), never by a
// background timer inside the server. Returns how many entries were removed.
func (s *Store) Sweep(maxTmpAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return 0, fmt.Errorf("failed to read uploads root: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(s.root, e.Name())

		if e.Name() == tmpDirName {
			removed += s.sweepTmp(dir, maxTmpAge)
			continue
		}

		children, err := os.ReadDir(dir)
		if err != nil || len(children) > 0 {
			continue
		}
		if err := os.Remove(dir); err == nil {
			removed++
		}
	}
	return removed, nil
}

func (s *Store) sweepTmp(dir string, maxAge time.Duration) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	removed := 0
	cutoff := time.Now().Add(-maxAge)
	for _, e := range entries {
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err == nil {
			removed++
		}
	}
	return removed
}
