// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrTooLarge is returned by AtomicWriteReader when the source exceeds its limit.
var ErrTooLarge = errors.New("content exceeds size limit")

// AtomicWriteFile writes data to path so that readers only ever see the old
// file or the complete new one: the bytes go to a temp file in the same
// directory, are synced, and the temp file is renamed over path.
// Missing parent directories are created.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	return writeAtomic(path, perm, func(f *os.File) error {
		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("failed to write data: %w", err)
		}
		return nil
	})
}

// AtomicWriteReader streams r into path the same way AtomicWriteFile does and
// returns the number of bytes written. A limit above zero caps the size; when
// r holds more, nothing is written and ErrTooLarge is returned.
func AtomicWriteReader(path string, r io.Reader, perm os.FileMode, limit int64) (int64, error) {
	var n int64
	err := writeAtomic(path, perm, func(f *os.File) error {
		src := r
		if limit > 0 {
			src = io.LimitReader(r, limit+1)
		}
		var err error
		n, err = io.Copy(f, src)
		if err != nil {
			return fmt.Errorf("failed to write data: %w", err)
		}
		if limit > 0 && n > limit {
			return ErrTooLarge
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func writeAtomic(path string, perm os.FileMode, write func(*os.File) error) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	// Same directory, so the final rename cannot cross filesystems.
	f, err := os.CreateTemp(dir, ".tmp-")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := f.Name()

	success := false
	defer func() {
		if !success {
			f.Close()
			os.Remove(tempPath)
		}
	}()

	if err := write(f); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync data to disk: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, perm); err != nil {
		return fmt.Errorf("failed to set file permissions: %w", err)
	}
	if err := os.Rename(tempPath, absPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// UniquePath returns path if nothing exists there, otherwise the first free
// "name (N).ext" variant next to it.
func UniquePath(path string) string {
	if _, err := os.Lstat(path); os.IsNotExist(err) {
		return path
	}

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := stem + " (" + strconv.Itoa(i) + ")" + ext
		if _, err := os.Lstat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
