// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/time/rate"

	"github.com/jeranaias/citechat/internal/config"
	"github.com/jeranaias/citechat/internal/util"
)

// DefaultMaxDownloadSize caps a single downloaded file.
const DefaultMaxDownloadSize = 512 * 1024 * 1024

// ErrInvalidFileName means a referenced name cannot be used as a local file.
var ErrInvalidFileName = errors.New("invalid file name")

// DownloadResult is the outcome for one requested file.
type DownloadResult struct {
	FileName string `json:"fileName"`
	Path     string `json:"path,omitempty"`
	Bytes    int64  `json:"bytes"`
	Err      error  `json:"-"`
}

// OK reports whether the file was saved.
func (r DownloadResult) OK() bool {
	return r.Err == nil
}

// Problem describes a failed download in a few words for the user.
func (r DownloadResult) Problem() string {
	switch {
	case r.Err == nil:
		return ""
	case errors.Is(r.Err, ErrFileNotFound):
		return "file not found"
	case errors.Is(r.Err, ErrInvalidFileName):
		return "invalid file name"
	case errors.Is(r.Err, ErrConnection):
		return "connection error"
	default:
		return r.Err.Error()
	}
}

// =============================================================================
// DOWNLOADER
// =============================================================================

// Downloader saves files referenced by replies into a directory.
type Downloader struct {
	client    *Client
	dir       string
	overwrite bool
	maxSize   int64
	limiter   *rate.Limiter
}

// NewDownloader creates a downloader writing into dir ("" is the working
// directory), limited to two requests per second.
func NewDownloader(c *Client, dir string) *Downloader {
	return &Downloader{
		client:  c,
		dir:     dir,
		maxSize: DefaultMaxDownloadSize,
		limiter: rate.NewLimiter(rate.Limit(2), 1),
	}
}

// NewDownloaderFromConfig creates a downloader from the [download] section.
func NewDownloaderFromConfig(c *Client, cfg *config.Config) *Downloader {
	return NewDownloader(c, cfg.Download.Dir).
		WithRate(cfg.Download.RatePerSecond).
		WithOverwrite(cfg.Download.Overwrite)
}

// WithRate sets how many files may be requested per second. Zero or less
// removes the limit.
func (d *Downloader) WithRate(perSecond float64) *Downloader {
	if perSecond <= 0 {
		d.limiter = rate.NewLimiter(rate.Inf, 1)
	} else {
		d.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
	return d
}

// WithOverwrite replaces existing files instead of choosing "name (N).ext".
func (d *Downloader) WithOverwrite(overwrite bool) *Downloader {
	d.overwrite = overwrite
	return d
}

// WithMaxSize caps each file.
func (d *Downloader) WithMaxSize(n int64) *Downloader {
	d.maxSize = n
	return d
}

// Dir returns the target directory.
func (d *Downloader) Dir() string {
	return d.dir
}

// Fetch downloads names in order. A failed file is recorded in its result
// and the batch continues; the returned error is only set when ctx ends
// before every file was attempted.
func (d *Downloader) Fetch(ctx context.Context, names []string) ([]DownloadResult, error) {
	results := make([]DownloadResult, 0, len(names))

	for _, name := range names {
		if err := d.limiter.Wait(ctx); err != nil {
			return results, fmt.Errorf("download interrupted: %w", err)
		}
		results = append(results, d.FetchOne(ctx, name))
	}

	return results, nil
}

// FetchOne downloads a single file without rate limiting.
func (d *Downloader) FetchOne(ctx context.Context, name string) DownloadResult {
	result := DownloadResult{FileName: name}
	log := d.client.log.With(zap.String("file", name))

	local, err := SafeFileName(name)
	if err != nil {
		result.Err = err
		log.Warn("download rejected", zap.Error(err))
		return result
	}

	body, err := d.client.Download(ctx, name)
	if err != nil {
		result.Err = err
		log.Warn("download failed", zap.Error(err))
		return result
	}
	defer body.Close()

	target := filepath.Join(d.dir, local)
	if !d.overwrite {
		target = util.UniquePath(target)
	}

	n, err := util.AtomicWriteReader(target, body, 0644, d.maxSize)
	if err != nil {
		result.Err = fmt.Errorf("failed to save %s: %w", name, err)
		log.Warn("download save failed", zap.String("path", target), zap.Error(err))
		return result
	}

	result.Path = target
	result.Bytes = n
	log.Info("download saved", zap.String("path", target), zap.Int64("bytes", n))
	return result
}

// SafeFileName turns a referenced file name into a local base name. The name
// is NFC-normalised and trimmed; names that are empty, dot names, or that
// contain path separators or control characters are rejected.
func SafeFileName(name string) (string, error) {
	clean := strings.TrimSpace(norm.NFC.String(name))

	switch {
	case clean == "", clean == ".", clean == "..":
		return "", fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	case strings.ContainsAny(clean, `/\`):
		return "", fmt.Errorf("%w: %q contains a path separator", ErrInvalidFileName, name)
	case strings.IndexFunc(clean, unicode.IsControl) >= 0:
		return "", fmt.Errorf("%w: %q contains control characters", ErrInvalidFileName, name)
	}

	if vol := filepath.VolumeName(clean); vol != "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	}
	return clean, nil
}

// EnsureDir creates the target directory if it is missing.
func (d *Downloader) EnsureDir() error {
	if d.dir == "" {
		return nil
	}
	return os.MkdirAll(d.dir, 0755)
}
