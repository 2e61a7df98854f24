// Package scan discovers image files under a directory tree and attaches the
// metadata and comparable values the grouping strategies need.
package scan

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/Parth7487/imagedup/internal/hash"
	"github.com/Parth7487/imagedup/internal/models"
)

// Scanner walks a folder for images and computes per-image metadata,
// perceptual hashes, and grayscale buffers in parallel.
type Scanner struct {
	fs         afero.Fs
	log        zerolog.Logger
	workers    int
	timeout    time.Duration
	perceptual bool
	structural bool
	progressFn func(scanned, total int, current string)
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithFs sets the filesystem the scanner reads from.
func WithFs(fs afero.Fs) Option {
	return func(s *Scanner) {
		s.fs = fs
	}
}

// WithLogger sets the scanner's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Scanner) {
		s.log = log
	}
}

// WithWorkers sets the number of parallel workers.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithTimeout sets the timeout for processing each image.
func WithTimeout(d time.Duration) Option {
	return func(s *Scanner) {
		s.timeout = d
	}
}

// WithProgress sets a progress callback.
func WithProgress(fn func(scanned, total int, current string)) Option {
	return func(s *Scanner) {
		s.progressFn = fn
	}
}

// WithStrategies selects which comparable values are computed per image.
// Perceptual hashes and grayscale buffers are only worth decoding for when
// the matching strategy is enabled.
func WithStrategies(perceptual, structural bool) Option {
	return func(s *Scanner) {
		s.perceptual = perceptual
		s.structural = structural
	}
}

// NewScanner creates a Scanner.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		fs:         afero.NewOsFs(),
		log:        zerolog.Nop(),
		workers:    8,
		timeout:    30 * time.Second,
		perceptual: true,
		structural: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanFolder scans a folder recursively and returns records for every
// supported image, sorted by path so grouping runs on a stable order.
// Per-file failures become warnings; the only fatal condition is a missing
// or non-directory root.
func (s *Scanner) ScanFolder(folder string) ([]*models.ImageInfo, []models.Warning, error) {
	info, err := s.fs.Stat(folder)
	if err != nil {
		return nil, nil, fmt.Errorf("folder not found: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("not a directory: %s", folder)
	}

	var paths []string
	err = afero.Walk(s.fs, folder, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip unreadable entries
		}
		if info.IsDir() {
			return nil
		}
		if hash.IsSupportedImage(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to walk folder: %w", err)
	}

	s.log.Info().Int("files", len(paths)).Str("folder", folder).Msg("found image files")
	if len(paths) == 0 {
		return nil, nil, nil
	}

	var (
		results  []*models.ImageInfo
		warnings []models.Warning
		mu       sync.Mutex
		wg       sync.WaitGroup
		scanned  int64
		total    = len(paths)
	)

	work := make(chan string, len(paths))
	for _, p := range paths {
		work <- p
	}
	close(work)

	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range work {
				info, warn := s.processWithTimeout(path)

				mu.Lock()
				if info != nil {
					results = append(results, info)
				}
				if warn != nil {
					warnings = append(warnings, *warn)
				}
				mu.Unlock()

				n := atomic.AddInt64(&scanned, 1)
				if s.progressFn != nil {
					s.progressFn(int(n), total, path)
				}
			}
		}()
	}

	wg.Wait()

	// Workers finish out of order; restore the walk's lexical order so the
	// greedy grouping pass is deterministic.
	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})
	sort.Slice(warnings, func(i, j int) bool {
		return warnings[i].Path < warnings[j].Path
	})

	return results, warnings, nil
}

// processWithTimeout processes one image, abandoning it after the configured
// timeout. Either result may be nil: a stat failure yields only a warning, a
// decode failure yields both a record (still usable for exact matching) and
// a warning.
func (s *Scanner) processWithTimeout(path string) (*models.ImageInfo, *models.Warning) {
	done := make(chan struct{})
	var info *models.ImageInfo
	var warn *models.Warning

	go func() {
		info, warn = s.process(path)
		close(done)
	}()

	select {
	case <-done:
		return info, warn
	case <-time.After(s.timeout):
		s.log.Warn().Str("path", path).Dur("timeout", s.timeout).Msg("image processing timed out")
		return nil, &models.Warning{Path: path, Message: "processing timed out"}
	}
}

func (s *Scanner) process(path string) (*models.ImageInfo, *models.Warning) {
	stat, err := s.fs.Stat(path)
	if err != nil {
		s.log.Warn().Str("path", path).Err(err).Msg("failed to stat file")
		return nil, &models.Warning{Path: path, Message: err.Error()}
	}

	info := &models.ImageInfo{
		Path:     path,
		FileSize: stat.Size(),
		ModTime:  stat.ModTime(),
	}

	if !s.perceptual && !s.structural {
		return info, nil
	}

	img, format, err := hash.DecodeImage(s.fs, path)
	if err != nil {
		// Undecodable files still take part in exact matching.
		s.log.Warn().Str("path", path).Err(err).Msg("failed to decode image")
		return info, &models.Warning{Path: path, Message: err.Error()}
	}

	bounds := img.Bounds()
	info.Width = bounds.Dx()
	info.Height = bounds.Dy()
	info.Format = format
	info.HasExif = hash.HasExif(s.fs, path)

	if s.perceptual {
		phashes, err := hash.ComputePerceptualHashes(img)
		if err != nil {
			s.log.Warn().Str("path", path).Err(err).Msg("failed to compute perceptual hashes")
			return info, &models.Warning{Path: path, Message: err.Error()}
		}
		info.PHashes = phashes
	}
	if s.structural {
		info.Gray = hash.GrayBuffer(img)
	}

	return info, nil
}
