// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package internal contains race detection tests for citechat.
//
// Run with: go test -race -v ./internal/...
//
// The chat view and the REPL complete sends on other goroutines while the
// user keeps typing, and the config watcher swaps settings underneath them.
// These tests drive the shared pieces the same way.
package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/citechat/internal/annotate"
	"github.com/jeranaias/citechat/internal/client"
	"github.com/jeranaias/citechat/internal/config"
	"github.com/jeranaias/citechat/internal/model"
	"github.com/jeranaias/citechat/internal/render"
)

// =============================================================================
// TEST CONFIGURATION
// =============================================================================

const (
	// Number of concurrent goroutines for race tests
	raceConcurrency = 50
	// Number of iterations per goroutine
	raceIterations = 20
	// Timeout for race tests
	raceTimeout = 30 * time.Second
)

// =============================================================================
// CONFIG CONCURRENCY TESTS
// =============================================================================

// TestConcurrency_ConfigWatchReload rewrites the config file while the
// watcher reloads it and readers take clones of the current settings.
func TestConcurrency_ConfigWatchReload(t *testing.T) {
	t.Setenv(config.HomeEnv, t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, config.SaveTOML(config.Default(), path))

	ctx, cancel := context.WithTimeout(context.Background(), raceTimeout)
	defer cancel()

	var mu sync.Mutex
	current := config.Default()
	var reloadCount int64

	err := config.Watch(ctx, path, 10*time.Millisecond, func(cfg *config.Config, err error) {
		if err != nil {
			return
		}
		atomic.AddInt64(&reloadCount, 1)
		mu.Lock()
		current = cfg
		mu.Unlock()
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < raceConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < raceIterations; j++ {
				mu.Lock()
				cfg := current.Clone()
				mu.Unlock()
				_ = cfg.Server.URL
				_ = cfg.Download.RatePerSecond
			}
		}()
	}

	const writes = 5
	for i := 0; i < writes; i++ {
		cfg := config.Default()
		cfg.Server.URL = fmt.Sprintf("http://127.0.0.1:%d", 5000+i)
		require.NoError(t, config.SaveTOML(cfg, path))
		time.Sleep(20 * time.Millisecond)
	}
	wg.Wait()

	want := fmt.Sprintf("http://127.0.0.1:%d", 5000+writes-1)
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return current.Server.URL == want
	}, 5*time.Second, 20*time.Millisecond)
	t.Logf("Completed %d reloads", atomic.LoadInt64(&reloadCount))
}

// TestConcurrency_ConfigCloneIsolation mutates clones on many goroutines.
func TestConcurrency_ConfigCloneIsolation(t *testing.T) {
	base := config.Default()
	base.Render.ExtraExtensions = []string{".rtf"}

	var wg sync.WaitGroup
	for i := 0; i < raceConcurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			clone := base.Clone()
			assert.NoError(t, clone.Set("ui.width", fmt.Sprint(idx)))
			clone.Render.ExtraExtensions[0] = ".odt"
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, base.UI.Width)
	assert.Equal(t, []string{".rtf"}, base.Render.ExtraExtensions)
}

// =============================================================================
// TRANSCRIPT CONCURRENCY TESTS
// =============================================================================

// TestConcurrency_TranscriptExchanges completes exchanges from many
// goroutines while others take history snapshots, as overlapping sends do.
func TestConcurrency_TranscriptExchanges(t *testing.T) {
	tr := model.NewTranscript()

	var wg sync.WaitGroup
	for i := 0; i < raceConcurrency; i++ {
		wg.Add(2)
		go func(idx int) {
			defer wg.Done()
			for j := 0; j < raceIterations; j++ {
				tr.AppendExchange(fmt.Sprintf("q%d-%d", idx, j), "a")
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < raceIterations; j++ {
				history := tr.History()
				if len(history)%2 != 0 {
					t.Errorf("history split an exchange: %d entries", len(history))
					return
				}
				for k := 0; k+1 < len(history); k += 2 {
					if history[k].Sender != model.SenderUser || history[k+1].Sender != model.SenderBot {
						t.Errorf("exchange %d out of order", k/2)
						return
					}
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 2*raceConcurrency*raceIterations, tr.Len())
}

// =============================================================================
// ANNOTATION CONCURRENCY TESTS
// =============================================================================

// TestConcurrency_ParserShared runs one Parser and one renderer from many
// goroutines.
func TestConcurrency_ParserShared(t *testing.T) {
	parser := annotate.NewParser(".key")
	renderer := render.NewTerminalRenderer(nil, "http://chat.local")
	raw := "Answer [[SOURCE: Notes.key|3]] [[SOURCE: Notes.key|1]] [[DOWNLOAD: Form.docx]]"
	want := parser.Parse(raw)

	var wg sync.WaitGroup
	for i := 0; i < raceConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < raceIterations; j++ {
				got := parser.Parse(raw)
				if !assert.Equal(t, want, got) {
					return
				}
				_ = renderer.Render(got)
			}
		}()
	}
	wg.Wait()

	require.Len(t, want.Sources, 1)
	assert.Equal(t, "Notes", want.Sources[0].DisplayName)
	assert.Equal(t, []string{"3", "1"}, want.Sources[0].Pages)
}

// =============================================================================
// CLIENT CONCURRENCY TESTS
// =============================================================================

// TestConcurrency_OverlappingSends fires sends without waiting for earlier
// replies. Every send gets its own reply and records its own exchange.
func TestConcurrency_OverlappingSends(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req client.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"response": "re: " + req.Message})
	}))
	defer server.Close()

	c := client.NewClient(server.URL)
	tr := model.NewTranscript()

	var wg sync.WaitGroup
	var failures int64
	for i := 0; i < raceConcurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			msg := fmt.Sprintf("message %d", idx)
			reply, err := c.Send(context.Background(), msg, tr.History())
			if err != nil || reply != "re: "+msg {
				atomic.AddInt64(&failures, 1)
				return
			}
			tr.AppendExchange(msg, reply)
		}(i)
	}
	wg.Wait()

	assert.Zero(t, atomic.LoadInt64(&failures))
	assert.Equal(t, 2*raceConcurrency, tr.Len())

	msgs := tr.Messages()
	for k := 0; k+1 < len(msgs); k += 2 {
		assert.Equal(t, "re: "+msgs[k].Text, msgs[k+1].Text)
	}
}
