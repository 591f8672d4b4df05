// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"go.uber.org/zap"

	"github.com/jeranaias/citechat/internal/annotate"
	"github.com/jeranaias/citechat/internal/client"
	"github.com/jeranaias/citechat/internal/config"
	"github.com/jeranaias/citechat/internal/logger"
	"github.com/jeranaias/citechat/internal/model"
	"github.com/jeranaias/citechat/internal/render"
	"github.com/jeranaias/citechat/internal/ui/styles"
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// ChatClient is the chat endpoint as seen by the view.
type ChatClient interface {
	Send(ctx context.Context, message string, history []model.HistoryEntry) (string, error)
	Clear(ctx context.Context) error
	BaseURL() string
}

// FileFetcher saves files offered by a reply.
type FileFetcher interface {
	Fetch(ctx context.Context, names []string) ([]client.DownloadResult, error)
	Dir() string
}

// Options configures a new chat view.
type Options struct {
	Context    context.Context
	Config     *config.Config
	ConfigPath string // watched for live reload when set
	Client     ChatClient
	Downloader FileFetcher
	Transcript *model.Transcript

	// Rebuild creates a new client and downloader after the server URL or
	// download settings change on disk. Nil keeps the originals.
	Rebuild func(cfg *config.Config) (ChatClient, FileFetcher)

	// Adjust runs on every reloaded config before it is applied, so that
	// command-line overrides survive a reload.
	Adjust func(cfg *config.Config)
}

// =============================================================================
// DISPLAY ENTRIES
// =============================================================================

type entryKind int

const (
	entryUser entryKind = iota
	entryBot
	entryFiles
	entryError
	entrySystem
)

// entry is one block in the viewport. Error and system entries are never
// part of the transcript.
type entry struct {
	kind  entryKind
	text  string
	reply annotate.ParsedReply
	at    time.Time
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	ctx context.Context

	// Dependencies
	cfg        *config.Config
	configPath string
	client     ChatClient
	downloader FileFetcher
	transcript *model.Transcript
	parser     *annotate.Parser
	rebuild    func(cfg *config.Config) (ChatClient, FileFetcher)
	adjust     func(cfg *config.Config)
	reloads    chan ConfigReloadedMsg

	// Styling
	theme    *styles.Theme
	renderer *render.TerminalRenderer

	// Dimensions
	width  int
	height int
	ready  bool

	// UI Components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	keyMap   KeyMap

	// Conversation display
	entries       []entry
	pending       int      // sends awaiting a reply
	session       int      // bumped by every new chat
	lastDownloads []string // files of the most recent reply that offered any

	statusMsg string
}

// New creates a chat view.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.Default()
	if opts.Config != nil {
		cfg = opts.Config.Clone()
	}
	transcript := opts.Transcript
	if transcript == nil {
		transcript = model.NewTranscript()
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question..."
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}

	m := Model{
		ctx:        ctx,
		cfg:        cfg,
		configPath: opts.ConfigPath,
		client:     opts.Client,
		downloader: opts.Downloader,
		transcript: transcript,
		parser:     annotate.NewParser(cfg.Render.ExtraExtensions...),
		rebuild:    opts.Rebuild,
		adjust:     opts.Adjust,
		reloads:    make(chan ConfigReloadedMsg, 1),
		viewport:   vp,
		input:      ti,
		spinner:    sp,
		keyMap:     DefaultKeyMap(),
		width:      80,
		height:     24,
	}
	m.applyTheme(cfg.UI.Theme)
	return m
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the cursor blink and, when a config path is set, the watcher.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.configPath != "" {
		cmds = append(cmds, m.watchConfig())
	}
	return tea.Batch(cmds...)
}

// watchConfig starts the file watcher and waits for its first reload.
func (m Model) watchConfig() tea.Cmd {
	ctx, path, ch, adjust := m.ctx, m.configPath, m.reloads, m.adjust
	return func() tea.Msg {
		err := config.Watch(ctx, path, 0, func(cfg *config.Config, err error) {
			if cfg != nil && adjust != nil {
				adjust(cfg)
			}
			select {
			case ch <- ConfigReloadedMsg{Config: cfg, Err: err}:
			case <-ctx.Done():
			}
		})
		if err != nil {
			logger.L().Warn("config watch disabled", zap.String("path", path), zap.Error(err))
			return nil
		}
		return waitForReload(ch)()
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Transcript returns the session transcript.
func (m Model) Transcript() *model.Transcript {
	return m.transcript
}

// Pending returns the number of sends still awaiting a reply.
func (m Model) Pending() int {
	return m.pending
}

// LastDownloads returns the files offered by the most recent reply.
func (m Model) LastDownloads() []string {
	return m.lastDownloads
}

// Config returns the active config.
func (m Model) Config() *config.Config {
	return m.cfg
}

// =============================================================================
// THEME
// =============================================================================

func (m *Model) applyTheme(name string) {
	m.theme = styles.NewTheme(name)
	baseURL := ""
	if m.client != nil {
		baseURL = m.client.BaseURL()
	}
	m.renderer = render.NewTerminalRenderer(m.theme, baseURL).
		WithWidth(m.contentWidth()).
		WithHyperlinks(m.theme.ColorProfile != termenv.Ascii)
	m.spinner.Style = m.theme.Spinner
	m.input.PromptStyle = m.theme.InputPrompt
	m.input.PlaceholderStyle = m.theme.InputPlaceholder
}

// contentWidth is the wrap width of message bodies.
func (m Model) contentWidth() int {
	if m.cfg != nil && m.cfg.UI.Width > 0 && m.cfg.UI.Width < m.width {
		return m.cfg.UI.Width - 4
	}
	if m.width > 8 {
		return m.width - 4
	}
	return 0
}
