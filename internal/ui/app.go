package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"pkt.systems/pslog"

	"github.com/five82/tabshelf/internal/bulk"
	"github.com/five82/tabshelf/internal/collection"
	"github.com/five82/tabshelf/internal/drag"
	"github.com/five82/tabshelf/internal/host"
	"github.com/five82/tabshelf/internal/logging"
	"github.com/five82/tabshelf/internal/prefs"
	"github.com/five82/tabshelf/internal/reconcile"
	"github.com/five82/tabshelf/internal/state"
)

// Options configures the UI.
type Options struct {
	Context    context.Context
	Store      *collection.Store
	Host       host.Provider
	Live       *state.Store
	Tracker    *drag.Tracker
	Reconciler *reconcile.Reconciler
	Bulk       *bulk.Actions
	// Refresh asks the live tab monitor to poll now.
	Refresh   func()
	Logger    pslog.Logger
	LogPath   string
	PollTick  time.Duration
	Prefs     prefs.Prefs
	PrefsPath string
	// Source names the browser backend in the header.
	Source string
}

// pressState tracks a held mouse button.
type pressState struct {
	x, y    int
	hit     hit
	divider int
	moved   bool
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx        context.Context
	store      *collection.Store
	host       host.Provider
	live       *state.Store
	tracker    *drag.Tracker
	reconciler *reconcile.Reconciler
	bulk       *bulk.Actions
	refresh    func()
	log        pslog.Logger
	logPath    string
	prefsPath  string
	pollTick   time.Duration
	source     string

	// UI state
	theme  Theme
	keys   keyMap
	width  int
	height int
	ready  bool
	focus  drag.Pane

	leftWidth  int
	rightWidth int

	// Data state
	groups       []collection.Group
	storeVersion uint64
	snapshot     state.Snapshot

	// Per-pane cursor and scroll, indexed by drag.Pane.
	cursor [4]int
	scroll [4]int

	// Pointer state
	press       *pressState
	hover       hit
	hoverTarget reconcile.Target
	hoverOK     bool

	// Status line
	status    string
	statusErr bool

	// Overlays
	modal       Modal
	showHelp    bool
	showLogs    bool
	logViewport viewport.Model
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = DefaultUIInterval
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	live := opts.Live
	if live == nil {
		live = &state.Store{}
	}
	tracker := opts.Tracker
	if tracker == nil {
		tracker = drag.NewTracker(opts.Logger)
	}
	refresh := opts.Refresh
	if refresh == nil {
		refresh = func() {}
	}

	m := Model{
		ctx:        ctx,
		store:      opts.Store,
		host:       opts.Host,
		live:       live,
		tracker:    tracker,
		reconciler: opts.Reconciler,
		bulk:       opts.Bulk,
		refresh:    refresh,
		log:        logging.OrDiscard(opts.Logger).With("component", "ui"),
		logPath:    opts.LogPath,
		prefsPath:  prefsPath,
		pollTick:   pollTick,
		source:     opts.Source,
		theme:      GetTheme(opts.Prefs.Theme),
		keys:       DefaultKeyMap(),
		focus:      drag.PaneCollections,
		leftWidth:  opts.Prefs.LeftWidth,
		rightWidth: opts.Prefs.RightWidth,
		snapshot:   live.Snapshot(),
	}
	if m.reconciler == nil {
		m.reconciler = reconcile.New(m.store, m.host, opts.Logger)
	}
	if m.bulk == nil {
		m.bulk = bulk.New(m.store, m.host, opts.Logger)
	}
	m.syncGroups()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.pollTick),
		fetchSnapshotCmd(m.live),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncGroups()
	next.clampCursors()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.modal != nil || m.showHelp {
			return m, nil
		}
		if m.showLogs {
			var cmd tea.Cmd
			m.logViewport, cmd = m.logViewport.Update(msg)
			return m, cmd
		}
		return m.handleMouse(tea.MouseEvent(msg))

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.logViewport = viewport.New(msg.Width, max(msg.Height-4, 1))
		}
		m.ready = true
		m.logViewport.Width = max(msg.Width-2, 1)
		m.logViewport.Height = max(msg.Height-3, 1)
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{fetchSnapshotCmd(m.live), tickCmd(m.pollTick)}
		if m.showLogs {
			cmds = append(cmds, m.loadLogsCmd())
		}
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		return m, nil

	case dropMsg:
		return m.applyDrop(msg.res)

	case fetchMsg:
		if msg.err != nil {
			m.log.Debug("dragged tab fetch failed", "err", msg.err)
		}
		return m, nil

	case actionMsg:
		return m.applyAction(msg)

	case modalMsg:
		m.modal = msg.modal
		return m, nil

	case logLinesMsg:
		m.setLogLines(msg)
		return m, nil
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.showLogs {
		return m.renderLogs()
	}
	return m.renderMain()
}

// syncGroups re-reads the collection tree when the store changed.
func (m *Model) syncGroups() {
	if m.store == nil {
		return
	}
	if v := m.store.Version(); v != m.storeVersion || m.groups == nil {
		m.groups = m.store.Groups()
		m.storeVersion = v
	}
}

func (m Model) layout() paneLayout {
	return computeLayout(m.width, m.height, m.leftWidth, m.rightWidth)
}

func (m Model) selectedID() (int, bool) {
	if m.store == nil {
		return -1, false
	}
	return m.store.Selected()
}

func (m Model) selectedCollection() (collection.Collection, bool) {
	id, ok := m.selectedID()
	if !ok {
		return collection.Collection{}, false
	}
	for _, g := range m.groups {
		for _, c := range g.Collections {
			if c.CollectionID == id {
				return c, true
			}
		}
	}
	return collection.Collection{}, false
}

// frame captures the current screen for hit testing.
func (m Model) frame() frame {
	l := m.layout()
	f := frame{
		layout: l,
		rows:   buildCollectionRows(m.groups),
		groups: len(m.groups),
		perRow: cardsPerRow(l.live.inner().w),
		scroll: m.scroll,
	}
	if c, ok := m.selectedCollection(); ok {
		f.selected, f.stored = true, c.Tabs
	}
	f.sections = buildWindowSections(m.snapshot.Tabs, f.perRow)
	return f
}

func (m *Model) setStatus(text string) {
	m.status, m.statusErr = text, false
}

func (m *Model) setError(err error) {
	m.status, m.statusErr = describeError(err), true
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type dropMsg struct {
	res reconcile.Result
}

type fetchMsg struct {
	serial uint64
	err    error
}

// actionMsg reports a finished keyboard or click action.
type actionMsg struct {
	done string
	err  error
	live bool
	// selectID selects a collection after the action when >= 0.
	selectID int
	// group moves the collections cursor to a group header when >= 0.
	group int
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
