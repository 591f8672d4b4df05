// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/citechat/internal/client"
	"github.com/jeranaias/citechat/internal/config"
	"github.com/jeranaias/citechat/internal/model"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// isolate points the config directory at a temp dir, disables colour and
// captures stdout.
func isolate(t *testing.T) *bytes.Buffer {
	t.Helper()
	t.Setenv(config.HomeEnv, t.TempDir())
	t.Setenv("CITECHAT_URL", "")
	t.Setenv("CITECHAT_DOWNLOAD_DIR", "")
	t.Setenv("CITECHAT_THEME", "")
	ForceColorsEnabled(false)

	var out bytes.Buffer
	oldOut, oldErr, oldIn := stdout, stderr, stdin
	stdout, stderr, stdin = &out, io.Discard, strings.NewReader("")
	t.Cleanup(func() {
		stdout, stderr, stdin = oldOut, oldErr, oldIn
	})
	return &out
}

// backend is a fake chat server. Replies are keyed by message.
type backend struct {
	mu       sync.Mutex
	requests []client.ChatRequest
	cleared  int
	replies  map[string]string
	files    map[string]string
}

func newBackend(t *testing.T, replies, files map[string]string) (*backend, *httptest.Server) {
	t.Helper()
	b := &backend{replies: replies, files: files}

	mux := http.NewServeMux()
	mux.HandleFunc("/chat", func(w http.ResponseWriter, r *http.Request) {
		var req client.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		b.mu.Lock()
		b.requests = append(b.requests, req)
		b.mu.Unlock()

		reply, ok := b.replies[req.Message]
		if !ok {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"response": reply})
	})
	mux.HandleFunc("/clear", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.cleared++
		b.mu.Unlock()
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("/download/", func(w http.ResponseWriter, r *http.Request) {
		body, ok := b.files[strings.TrimPrefix(r.URL.Path, "/download/")]
		if !ok {
			http.Error(w, "file not found", http.StatusNotFound)
			return
		}
		w.Write([]byte(body))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return b, server
}

func (b *backend) historyLens() []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]int, len(b.requests))
	for i, r := range b.requests {
		out[i] = len(r.History)
	}
	return out
}

func (b *backend) clearCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cleared
}

// scriptedLines feeds fixed input lines to the REPL, then io.EOF.
type scriptedLines struct {
	lines   []string
	history []string
}

func (s *scriptedLines) Prompt(string) (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *scriptedLines) AppendHistory(item string) { s.history = append(s.history, item) }
func (s *scriptedLines) Close() error              { return nil }

// =============================================================================
// ARGUMENT PARSING
// =============================================================================

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name  string
		argv  []string
		cmd   Command
		check func(t *testing.T, a Args)
	}{
		{"no args starts the tui", nil, CmdTUI, nil},
		{"explicit tui", []string{"tui"}, CmdTUI, nil},
		{"ask joins words", []string{"ask", "what", "is", "leave?"}, CmdAsk, func(t *testing.T, a Args) {
			assert.Equal(t, "what is leave?", a.Query)
			assert.False(t, a.JSON)
		}},
		{"ask json", []string{"ask", "--json", "hi"}, CmdAsk, func(t *testing.T, a Args) {
			assert.True(t, a.JSON)
			assert.Equal(t, "hi", a.Query)
		}},
		{"global flags anywhere", []string{"ask", "hi", "--url", "http://x:1", "-v"}, CmdAsk, func(t *testing.T, a Args) {
			assert.Equal(t, "http://x:1", a.URL)
			assert.True(t, a.Verbose)
			assert.Equal(t, "hi", a.Query)
		}},
		{"equals form", []string{"--url=http://y:2", "--config=/tmp/c.toml", "chat", "--no-color", "-q"}, CmdChat, func(t *testing.T, a Args) {
			assert.Equal(t, "http://y:2", a.URL)
			assert.Equal(t, "/tmp/c.toml", a.ConfigPath)
			assert.True(t, a.NoColor)
			assert.True(t, a.Quiet)
		}},
		{"parse file keeps positional after bool flag", []string{"parse", "--json", "reply.txt"}, CmdParse, func(t *testing.T, a Args) {
			assert.True(t, a.JSON)
			assert.Equal(t, "reply.txt", a.File)
		}},
		{"parse stdin", []string{"parse", "-", "--html"}, CmdParse, func(t *testing.T, a Args) {
			assert.True(t, a.HTML)
			assert.Equal(t, "-", a.File)
		}},
		{"download names and dir", []string{"dl", "a.pdf", "b.pdf", "--dir", "out"}, CmdDownload, func(t *testing.T, a Args) {
			assert.Equal(t, []string{"a.pdf", "b.pdf"}, a.Names)
			assert.Equal(t, "out", a.Dir)
		}},
		{"clear", []string{"clear"}, CmdClear, nil},
		{"config set", []string{"config", "set", "ui.theme", "light"}, CmdConfig, func(t *testing.T, a Args) {
			assert.Equal(t, "set", a.Subcommand)
			assert.Equal(t, "ui.theme", a.ConfigKey)
			assert.Equal(t, "light", a.ConfigVal)
		}},
		{"version json", []string{"version", "--json"}, CmdVersion, func(t *testing.T, a Args) {
			assert.True(t, a.JSON)
		}},
		{"help flag", []string{"--help"}, CmdHelp, nil},
		{"unknown", []string{"bogus"}, CmdUnknown, func(t *testing.T, a Args) {
			assert.Equal(t, "bogus", a.Name)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := ParseArgs(tt.argv)
			assert.Equal(t, tt.cmd, cmd)
			if tt.check != nil {
				tt.check(t, args)
			}
		})
	}
}

func TestArgParser(t *testing.T) {
	p := NewArgParser([]string{"--dir=out", "-n", "3", "--force", "x", "--", "--literal"}, "force")
	assert.Equal(t, "out", p.Flag("dir"))
	assert.Equal(t, "3", p.Flag("count", "n"))
	assert.True(t, p.BoolFlag("force"))
	assert.False(t, p.BoolFlag("json"))
	assert.Equal(t, []string{"x", "--literal"}, p.PositionalFrom(0))
	assert.Equal(t, "", p.Positional(5))
	assert.Nil(t, p.PositionalFrom(5))
}

// =============================================================================
// ASK
// =============================================================================

func TestHandleAsk_RendersAnnotatedReply(t *testing.T) {
	out := isolate(t)
	b, server := newBackend(t, map[string]string{
		"how much leave?": "Thirty days a year. [[SOURCE: Leave Policy.pdf|4]] [[DOWNLOAD: Form 31.docx]]",
	}, nil)

	err := HandleAsk(context.Background(), Args{URL: server.URL, Query: "how much leave?"})
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "Thirty days a year.")
	assert.NotContains(t, got, "[[")
	assert.Contains(t, got, "Source:")
	assert.Contains(t, got, "• Leave Policy (page 4)")
	assert.Contains(t, got, "File")
	assert.Contains(t, got, "Download Form 31.docx")
	assert.Equal(t, []int{0}, b.historyLens())
}

func TestHandleAsk_JSON(t *testing.T) {
	out := isolate(t)
	_, server := newBackend(t, map[string]string{
		"q": "[[DOWNLOAD: a.pdf]]",
	}, nil)

	err := HandleAsk(context.Background(), Args{URL: server.URL, Query: "q", JSON: true})
	require.NoError(t, err)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Question string `json:"question"`
			Response string `json:"response"`
			Parsed   struct {
				Mode      string   `json:"mode"`
				Downloads []string `json:"downloads"`
			} `json:"parsed"`
			DownloadURLs map[string]string `json:"download_urls"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "q", resp.Data.Question)
	assert.Equal(t, "[[DOWNLOAD: a.pdf]]", resp.Data.Response)
	assert.Equal(t, "downloads-only", resp.Data.Parsed.Mode)
	assert.Equal(t, []string{"a.pdf"}, resp.Data.Parsed.Downloads)
	assert.Equal(t, server.URL+"/download/a.pdf", resp.Data.DownloadURLs["a.pdf"])
}

func TestHandleAsk_ServerFailureShowsFixedMessage(t *testing.T) {
	isolate(t)
	_, server := newBackend(t, map[string]string{}, nil)

	err := HandleAsk(context.Background(), Args{URL: server.URL, Query: "anything"})
	require.Error(t, err)
	assert.Equal(t, client.ConnectionErrorMessage, err.Error())
	assert.ErrorIs(t, err, client.ErrConnection)
	assert.Equal(t, ExitNetworkError, ExitCode(err))
}

func TestHandleAsk_NoQuestion(t *testing.T) {
	isolate(t)
	err := HandleAsk(context.Background(), Args{URL: "http://127.0.0.1:1"})

	var usage *UsageError
	require.True(t, errors.As(err, &usage))
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

// =============================================================================
// PARSE
// =============================================================================

func TestHandleParse(t *testing.T) {
	raw := "See the guide. [[SOURCE: Guide.pdf|2]] [[SOURCE: Guide.pdf|5]]"
	path := filepath.Join(t.TempDir(), "reply.txt")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	t.Run("plain", func(t *testing.T) {
		out := isolate(t)
		require.NoError(t, HandleParse(Args{File: path, URL: "http://chat.local"}))
		assert.Contains(t, out.String(), "• Guide (pages 2, 5)")
		assert.Contains(t, out.String(), "See the guide.")
	})

	t.Run("json", func(t *testing.T) {
		out := isolate(t)
		require.NoError(t, HandleParse(Args{File: path, JSON: true}))
		assert.Contains(t, out.String(), `"mode": "annotated"`)
		assert.Contains(t, out.String(), `"displayName": "Guide"`)
	})

	t.Run("html", func(t *testing.T) {
		out := isolate(t)
		require.NoError(t, HandleParse(Args{File: path, HTML: true}))
		assert.Contains(t, out.String(), `class="source-block"`)
	})

	t.Run("stdin", func(t *testing.T) {
		out := isolate(t)
		stdin = strings.NewReader("plain words")
		require.NoError(t, HandleParse(Args{File: "-"}))
		assert.Equal(t, "plain words\n", out.String())
	})

	t.Run("both formats", func(t *testing.T) {
		isolate(t)
		err := HandleParse(Args{File: path, JSON: true, HTML: true})
		assert.Equal(t, ExitUsageError, ExitCode(err))
	})

	t.Run("missing file", func(t *testing.T) {
		isolate(t)
		assert.Error(t, HandleParse(Args{File: filepath.Join(t.TempDir(), "nope.txt")}))
	})
}

// =============================================================================
// DOWNLOAD AND CLEAR
// =============================================================================

func TestHandleDownload(t *testing.T) {
	out := isolate(t)
	_, server := newBackend(t, nil, map[string]string{"a.pdf": "alpha"})
	dir := t.TempDir()

	err := HandleDownload(context.Background(), Args{
		URL:   server.URL,
		Dir:   dir,
		Names: []string{"a.pdf", "missing.pdf"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 downloads failed")
	assert.ErrorIs(t, err, client.ErrFileNotFound)
	assert.Equal(t, ExitNotFoundError, ExitCode(err))

	data, readErr := os.ReadFile(filepath.Join(dir, "a.pdf"))
	require.NoError(t, readErr)
	assert.Equal(t, "alpha", string(data))

	assert.Contains(t, out.String(), "[OK] Saved")
	assert.Contains(t, out.String(), "[X] missing.pdf: file not found")
}

func TestHandleDownload_NoNames(t *testing.T) {
	isolate(t)
	err := HandleDownload(context.Background(), Args{})
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestHandleClear(t *testing.T) {
	out := isolate(t)
	b, server := newBackend(t, nil, nil)

	require.NoError(t, HandleClear(context.Background(), Args{URL: server.URL}))
	assert.Equal(t, 1, b.clearCount())
	assert.Contains(t, out.String(), "cleared")
}

// =============================================================================
// CONFIG
// =============================================================================

func TestHandleConfig_SetShowPath(t *testing.T) {
	out := isolate(t)

	require.NoError(t, HandleConfig(Args{Subcommand: "set", ConfigKey: "ui.theme", ConfigVal: "light"}))
	assert.Contains(t, out.String(), "ui.theme = light")

	out.Reset()
	require.NoError(t, HandleConfig(Args{Subcommand: "path"}))
	path := strings.TrimSpace(out.String())
	assert.Equal(t, filepath.Join(os.Getenv(config.HomeEnv), "config.toml"), path)

	out.Reset()
	require.NoError(t, HandleConfig(Args{Subcommand: "show"}))
	assert.Contains(t, out.String(), `theme = "light"`)

	out.Reset()
	require.NoError(t, HandleConfig(Args{Subcommand: "show", JSON: true, URL: "http://override:9"}))
	assert.Contains(t, out.String(), `"url": "http://override:9"`)
}

func TestHandleConfig_Errors(t *testing.T) {
	isolate(t)

	err := HandleConfig(Args{Subcommand: "set", ConfigKey: "ui.theme", ConfigVal: "neon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid theme")

	err = HandleConfig(Args{Subcommand: "set", ConfigKey: "ui.nope", ConfigVal: "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field")

	err = HandleConfig(Args{Subcommand: "frobnicate"})
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

// =============================================================================
// CHAT REPL
// =============================================================================

func TestChatCLI_SessionFlow(t *testing.T) {
	out := isolate(t)
	b, server := newBackend(t, map[string]string{
		"hello":     "Hi. [[SOURCE: Guide.pdf|2]]",
		"the forms": "[[DOWNLOAD: a.pdf]] [[DOWNLOAD: b.pdf]]",
	}, map[string]string{"a.pdf": "alpha", "b.pdf": "bravo"})

	dir := t.TempDir()
	exportPath := filepath.Join(dir, "chat.md")

	env, err := NewEnv(Args{URL: server.URL, Dir: dir})
	require.NoError(t, err)

	lines := &scriptedLines{lines: []string{
		"hello",
		"   ",
		"the forms",
		"/download 2",
		"unknown question",
		"/export " + exportPath,
		"/bogus",
		"/quit",
		"never read",
	}}
	c := newChatCLIWithReader(env, lines)
	require.NoError(t, c.Run(context.Background()))

	// History is the transcript before each send; failures add nothing.
	assert.Equal(t, []int{0, 2, 4}, b.historyLens())
	assert.Equal(t, 4, c.Transcript().Len())
	assert.Equal(t, []string{"never read"}, lines.lines)

	got := out.String()
	assert.Contains(t, got, "• Guide (page 2)")
	assert.Contains(t, got, "Here are the files you need:")
	assert.Contains(t, got, client.ConnectionErrorMessage)
	assert.Contains(t, got, "Unknown command '/bogus'")

	_, err = os.Stat(filepath.Join(dir, "a.pdf"))
	assert.True(t, os.IsNotExist(err), "only file 2 was requested")
	data, err := os.ReadFile(filepath.Join(dir, "b.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "bravo", string(data))

	md, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "Hi.")
}

func TestChatCLI_ClearAndDownloadWithoutFiles(t *testing.T) {
	out := isolate(t)
	b, server := newBackend(t, map[string]string{"q": "plain answer"}, nil)

	env, err := NewEnv(Args{URL: server.URL})
	require.NoError(t, err)

	c := newChatCLIWithReader(env, &scriptedLines{lines: []string{"q", "/download", "/clear", "q"}})
	require.NoError(t, c.Run(context.Background()))

	assert.Contains(t, out.String(), "No files to download.")
	assert.Contains(t, out.String(), "New chat started.")
	assert.Equal(t, 1, b.clearCount())
	assert.Equal(t, []int{0, 0}, b.historyLens())

	msgs := c.Transcript().Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, model.SenderUser, msgs[0].Sender)
	assert.Equal(t, "plain answer", msgs[1].Text)
}

// =============================================================================
// VERSION AND ERRORS
// =============================================================================

func TestHandleVersion_JSON(t *testing.T) {
	out := isolate(t)
	require.NoError(t, HandleVersion(Args{JSON: true}))

	var resp JSONResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "version", resp.Command)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, ExitCode(nil))
	assert.Equal(t, ExitGeneralError, ExitCode(errors.New("x")))
	assert.Equal(t, ExitUsageError, ExitCode(&UsageError{Usage: "u"}))
	assert.Equal(t, ExitConfigError, ExitCode(config.ValidateErrors{{Field: "f", Message: "m"}}))

	wrapped := &UserError{Message: "shown", Err: client.ErrConnection}
	assert.Equal(t, "shown", wrapped.Error())
	assert.Equal(t, ExitNetworkError, ExitCode(wrapped))
	assert.Equal(t, "Error: shown", FormatError(wrapped))
}
