// Package evidence stores uploaded complaint evidence on disk and hands back
// stable references. Only images and PDF documents are accepted.
package evidence

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"complaintdesk/backend/internal/apperr"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// MaxFiles is the upper bound of evidence files per complaint.
const MaxFiles = 5

// Store accepts uploaded files and returns stable references to them.
type Store interface {
	Save(ctx context.Context, files []*multipart.FileHeader) ([]string, error)
}

// Allowed reports whether a declared content type passes the evidence filter.
func Allowed(contentType string) bool {
	mediaType := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	return strings.HasPrefix(mediaType, "image/") || mediaType == "application/pdf"
}

// DiskStore writes evidence files into a local directory and returns
// directory-relative paths, which the server exposes under /uploads.
type DiskStore struct {
	Dir string
}

// NewDiskStore creates the upload directory if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{Dir: dir}, nil
}

// Save validates and persists every file, or none. A single disallowed
// content type fails the whole batch before anything is written; a write
// failure removes the files already stored for this batch. Writes for the
// individual files run concurrently. References come back in input order.
func (d *DiskStore) Save(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	if len(files) > MaxFiles {
		return nil, apperr.Validation("at most %d evidence files are allowed", MaxFiles)
	}

	for _, fh := range files {
		if !Allowed(fh.Header.Get("Content-Type")) {
			return nil, apperr.UnsupportedMedia(fh.Filename)
		}
	}

	refs := make([]string, len(files))
	g, ctx := errgroup.WithContext(ctx)
	for i, fh := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ref, err := d.writeFile(fh)
			if err != nil {
				return err
			}
			refs[i] = ref
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		d.remove(refs)
		return nil, err
	}
	return refs, nil
}

func (d *DiskStore) writeFile(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer src.Close()

	name := fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), uuid.New().String()[:8], filepath.Ext(fh.Filename))
	path := filepath.Join(d.Dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create evidence file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write evidence file: %w", err)
	}
	return path, nil
}

// remove best-effort deletes the files written before a batch failure.
func (d *DiskStore) remove(refs []string) {
	for _, ref := range refs {
		if ref != "" {
			os.Remove(ref)
		}
	}
}
