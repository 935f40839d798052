// Package picker implements the interactive paginated search-and-select UI.
//
// A selection session owns four pieces of state: a grapheme-aware search
// editor with history, the fetched item list with a highlight, a pagination
// tracker, and a single-slot fetch scheduler. A periodic tick drives
// lookahead prefetching and non-blocking polling of fetch results, so the UI
// never waits on the network.
package picker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrNoSelection is returned when the user leaves the picker without
// selecting an item. It is an outcome, not a failure.
var ErrNoSelection = errors.New("selection aborted")

// ErrInvalidSelection is returned when the highlighted index no longer maps
// to a live item. The state machine should make this impossible.
var ErrInvalidSelection = errors.New("invalid selection")

const (
	// pollInterval is the cadence of the tick that polls fetch results.
	pollInterval = 100 * time.Millisecond

	// loadThreshold is how close to the end of the loaded items the
	// highlight may get before the next page is prefetched.
	loadThreshold = 3
)

type sessionMode int

const (
	modeNormal sessionMode = iota
	modeHelp
)

type focusArea int

const (
	focusList focusArea = iota
	focusSearch
)

type tickMsg struct{}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

// Model is the bubbletea model for one selection session.
type Model[T any] struct {
	ctx   context.Context
	fetch FetchFunc[T]

	editor SearchEditor
	list   itemList[T]
	pages  paginationTracker
	sched  fetchScheduler[T]

	mode  sessionMode
	focus focusArea

	spin   spinner.Model
	help   viewport.Model
	width  int
	height int

	result   *Item[T]
	err      error
	onSubmit func(string)
}

// Option configures a Model.
type Option[T any] func(*Model[T])

// WithSubmitHook calls fn with each non-empty search line the user submits.
func WithSubmitHook[T any](fn func(string)) Option[T] {
	return func(m *Model[T]) {
		m.onSubmit = fn
	}
}

// NewModel creates a session that will issue its first fetch with the given
// initial options on the first tick.
func NewModel[T any](ctx context.Context, fetch FetchFunc[T], options map[string]string, opts ...Option[T]) Model[T] {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorFocus)

	m := Model[T]{
		ctx:    ctx,
		fetch:  fetch,
		editor: NewSearchEditor(),
		list:   newItemList[T](),
		pages:  newPaginationTracker(),
		sched:  fetchScheduler[T]{options: options},
		spin:   sp,
		help:   viewport.New(0, 0),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func (m Model[T]) Init() tea.Cmd {
	return tea.Batch(tick(), m.spin.Tick)
}

func (m Model[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.pages.viewportRows = max(msg.Height-searchBarRows-infoBarRows, minListRows)
		m.help.Width = msg.Width
		m.help.Height = max(msg.Height-2, 1)
		m.help.SetContent(helpText)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tickMsg:
		m.tickUpdate()
		if m.err != nil {
			return m, tea.Quit
		}
		return m, tick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// tickUpdate runs the per-tick duties: start a lookahead fetch when the
// highlight nears the end of the loaded items, then merge at most one
// finished fetch result.
func (m *Model[T]) tickUpdate() {
	reachedEnd := false
	if m.mode == modeNormal && m.focus == focusList {
		if idx, ok := m.list.selectedIndex(); ok {
			reachedEnd = m.list.len()-(idx+1) <= loadThreshold
		} else {
			// Nothing selected yet: this is the initial load.
			reachedEnd = true
		}
	}

	if !m.sched.isFetching() && m.pages.hasMore && reachedEnd {
		m.sched.schedule(m.ctx, m.fetch, m.pages.nextPage(), m.sched.options, mergeAppend)
	}

	res, ok := m.sched.poll()
	if !ok {
		return
	}
	if res.err != nil {
		m.err = fmt.Errorf("fetching items: %w", res.err)
		return
	}

	switch res.mode {
	case mergeReplace:
		m.list.replaceItems(res.items)
	case mergeAppend:
		m.list.appendItems(res.items)
	}
	m.pages.record(res.page, res.hasMore)

	if _, ok := m.list.selectedIndex(); !ok {
		m.list.selectNext()
	}
}

// scheduleReplace abandons any in-flight fetch and starts a fresh search at
// page 1. Resetting the slot first is what makes a new search supersede an
// outstanding lookahead fetch no matter how far along it is.
func (m *Model[T]) scheduleReplace(options map[string]string) {
	m.sched.reset()
	m.pages.reset()
	m.sched.schedule(m.ctx, m.fetch, 1, options, mergeReplace)
}

func (m Model[T]) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == modeHelp {
		return m.handleKeyHelp(msg)
	}
	if m.focus == focusSearch {
		return m.handleKeySearchBar(msg)
	}
	return m.handleKeyList(msg)
}

func (m Model[T]) handleKeyList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		return m, tea.Quit
	case "?":
		m.mode = modeHelp
	case "tab", "shift+tab":
		m.focus = focusSearch
	case "up":
		m.list.selectPrevious()
	case "down":
		m.list.selectNext()
	case "pgup":
		m.list.selectPageUp(m.pages.viewportRows)
	case "pgdown":
		m.list.selectPageDown(m.pages.viewportRows)
	case "enter":
		idx, ok := m.list.selectedIndex()
		if !ok {
			return m, nil
		}
		item, ok := m.list.item(idx)
		if !ok {
			m.err = ErrInvalidSelection
			return m, tea.Quit
		}
		m.result = &item
		return m, tea.Quit
	default:
		if text, ok := keyText(msg); ok {
			m.editor.InsertString(text)
			m.focus = focusSearch
		}
	}
	return m, nil
}

// keyText extracts printable input from a key press, treating the space bar
// like any other rune.
func keyText(msg tea.KeyMsg) (string, bool) {
	if msg.Alt {
		return "", false
	}
	switch msg.Type {
	case tea.KeyRunes:
		return string(msg.Runes), true
	case tea.KeySpace:
		return " ", true
	}
	return "", false
}

func (m Model[T]) handleKeySearchBar(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.editor.HasQuery() {
			m.editor.Clear()
			return m, nil
		}
		return m, tea.Quit
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		raw := m.editor.Query()
		options := ParseQuery(raw)
		if m.onSubmit != nil && raw != "" {
			m.onSubmit(raw)
		}
		m.editor.SaveToHistory()
		m.editor.Clear()
		m.focus = focusList
		m.scheduleReplace(options)
	case "?":
		if !m.editor.HasQuery() {
			m.mode = modeHelp
			return m, nil
		}
		m.editor.InsertString("?")
	case "backspace":
		m.editor.DeleteBefore()
	case "alt+backspace":
		m.editor.DeleteWordBefore()
	case "delete":
		m.editor.DeleteAfter()
	case "alt+delete":
		m.editor.DeleteWordAfter()
	case "left":
		m.editor.MoveLeft()
	case "right":
		m.editor.MoveRight()
	case "ctrl+left", "alt+left":
		m.editor.MoveLeftWord()
	case "ctrl+right", "alt+right":
		m.editor.MoveRightWord()
	case "up":
		m.editor.NavigateHistoryUp()
	case "down":
		m.editor.NavigateHistoryDown()
	case "home", "ctrl+a":
		m.editor.MoveToStart()
	case "end", "ctrl+e":
		m.editor.MoveToEnd()
	case "ctrl+l":
		m.editor.Clear()
	case "tab", "shift+tab":
		m.focus = focusList
	default:
		if text, ok := keyText(msg); ok {
			m.editor.InsertString(text)
		}
	}
	return m, nil
}

func (m Model[T]) handleKeyHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		m.help, cmd = m.help.Update(msg)
		return m, cmd
	default:
		m.mode = modeNormal
	}
	return m, nil
}
