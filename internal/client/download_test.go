// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileServer(t *testing.T, files map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path[len("/download/"):]
		body, ok := files[name]
		if !ok {
			http.Error(w, "file not found", http.StatusNotFound)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFetch_SavesFilesAndContinuesOnFailure(t *testing.T) {
	server := newFileServer(t, map[string]string{
		"a.pdf": "alpha",
		"b.pdf": "bravo",
	})
	dir := t.TempDir()

	d := NewDownloader(NewClient(server.URL), dir).WithRate(0)
	results, err := d.Fetch(context.Background(), []string{"a.pdf", "missing.pdf", "../evil", "b.pdf"})
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.True(t, results[0].OK())
	assert.Equal(t, filepath.Join(dir, "a.pdf"), results[0].Path)
	assert.Equal(t, int64(5), results[0].Bytes)

	assert.ErrorIs(t, results[1].Err, ErrFileNotFound)
	assert.ErrorIs(t, results[2].Err, ErrInvalidFileName)
	assert.True(t, results[3].OK())

	assert.Empty(t, results[0].Problem())
	assert.Equal(t, "file not found", results[1].Problem())
	assert.Equal(t, "invalid file name", results[2].Problem())

	data, err := os.ReadFile(filepath.Join(dir, "b.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "bravo", string(data))
}

func TestFetch_DoesNotOverwriteByDefault(t *testing.T) {
	server := newFileServer(t, map[string]string{"a.pdf": "new"})
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("old"), 0644))

	results, err := NewDownloader(NewClient(server.URL), dir).WithRate(0).
		Fetch(context.Background(), []string{"a.pdf"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a (1).pdf"), results[0].Path)

	old, _ := os.ReadFile(filepath.Join(dir, "a.pdf"))
	assert.Equal(t, "old", string(old))
}

func TestFetch_Overwrite(t *testing.T) {
	server := newFileServer(t, map[string]string{"a.pdf": "new"})
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("old"), 0644))

	_, err := NewDownloader(NewClient(server.URL), dir).WithRate(0).WithOverwrite(true).
		Fetch(context.Background(), []string{"a.pdf"})
	require.NoError(t, err)

	data, _ := os.ReadFile(filepath.Join(dir, "a.pdf"))
	assert.Equal(t, "new", string(data))
}

func TestFetch_MaxSize(t *testing.T) {
	server := newFileServer(t, map[string]string{"big.pdf": "0123456789"})

	results, err := NewDownloader(NewClient(server.URL), t.TempDir()).WithRate(0).WithMaxSize(4).
		Fetch(context.Background(), []string{"big.pdf"})
	require.NoError(t, err)
	assert.Error(t, results[0].Err)
}

func TestFetch_CancelledContext(t *testing.T) {
	server := newFileServer(t, map[string]string{"a.pdf": "x"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDownloader(NewClient(server.URL), t.TempDir()).Fetch(ctx, []string{"a.pdf"})
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestSafeFileName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"guide.pdf", "guide.pdf", false},
		{"  spaced.pdf ", "spaced.pdf", false},
		{"cafe\u0301.pdf", "caf\u00e9.pdf", false},
		{"", "", true},
		{"..", "", true},
		{"dir/file.pdf", "", true},
		{`dir\file.pdf`, "", true},
		{"bad\x00name", "", true},
	}

	for _, tt := range tests {
		got, err := SafeFileName(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidFileName, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}
