// file: internal/download/file_saver.go
// version: 1.1.0
// guid: 8a2c5e71-4f93-4b06-9d1e-c7b3a0f4e582

package download

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jdfalk/art-roulette/internal/metrics"
	"github.com/schollz/progressbar/v3"
)

// FileSaver writes images into Dir.
type FileSaver struct {
	Dir string
	// Progress, when set, receives a byte progress bar.
	Progress io.Writer

	fetcher
}

// FileSaverOptions configures NewFileSaver.
type FileSaverOptions struct {
	Client    *http.Client
	UserAgent string
	MaxBytes  int64
	Progress  io.Writer
}

// NewFileSaver creates a saver rooted at dir.
func NewFileSaver(dir string, opts FileSaverOptions) *FileSaver {
	return &FileSaver{
		Dir:      dir,
		Progress: opts.Progress,
		fetcher:  newFetcher(opts.Client, opts.UserAgent, opts.MaxBytes),
	}
}

// Persist downloads imageURL to Dir/<slug(suggestedName)><ext>, never
// overwriting an existing file, and returns the final path.
func (s *FileSaver) Persist(ctx context.Context, imageURL, suggestedName string) (string, error) {
	path, err := s.persist(ctx, imageURL, suggestedName)
	if err != nil {
		metrics.IncSave(metrics.SaveFailed)
		log.Printf("[ERROR] Save of %s failed: %v", imageURL, err)
		return "", err
	}
	metrics.IncSave(metrics.SaveOK)
	log.Printf("[INFO] Saved %s to %s", imageURL, path)
	return path, nil
}

func (s *FileSaver) persist(ctx context.Context, imageURL, suggestedName string) (string, error) {
	if s.Dir == "" {
		return "", fmt.Errorf("no download directory configured")
	}
	resp, ext, err := s.open(ctx, imageURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, ".art-roulette-*.part")
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	var dst io.Writer = tmp
	if s.Progress != nil {
		bar := progressbar.NewOptions64(resp.ContentLength,
			progressbar.OptionSetWriter(s.Progress),
			progressbar.OptionSetDescription("saving"),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetRenderBlankState(true),
		)
		dst = io.MultiWriter(tmp, bar)
		defer bar.Finish()
	}

	if _, err := copyLimited(dst, resp.Body, s.maxBytes); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	dest, err := s.claimPath(Slug(suggestedName), ext, tmpName)
	if err != nil {
		os.Remove(tmpName)
		return "", err
	}
	return dest, nil
}

// claimPath links tmp to the first free stem, stem-2, stem-3 ... path.
func (s *FileSaver) claimPath(stem, ext, tmp string) (string, error) {
	for i := 1; i < 1000; i++ {
		name := stem + ext
		if i > 1 {
			name = stem + "-" + strconv.Itoa(i) + ext
		}
		dest := filepath.Join(s.Dir, name)
		// os.Link fails if dest exists, so a concurrent save cannot clobber it.
		err := os.Link(tmp, dest)
		if err == nil {
			os.Remove(tmp)
			return dest, nil
		}
		if !os.IsExist(err) {
			// Filesystems without hard links: fall back to an existence check.
			if _, statErr := os.Stat(dest); os.IsNotExist(statErr) {
				if err := os.Rename(tmp, dest); err != nil {
					return "", fmt.Errorf("failed to move image into place: %w", err)
				}
				return dest, nil
			}
		}
	}
	return "", fmt.Errorf("no free file name for %s%s", stem, ext)
}
