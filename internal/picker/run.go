package picker

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Run drives a full selection session: it fetches the first page with the
// given options, lets the user search and browse, and returns the payload of
// the selected item. A cancelled session returns ErrNoSelection; a failed
// fetch aborts the session with the fetch error.
func Run[T any](ctx context.Context, fetch FetchFunc[T], options map[string]string, opts ...Option[T]) (T, error) {
	var zero T

	lipgloss.SetColorProfile(termenv.ColorProfile())

	m := NewModel(ctx, fetch, options, opts...)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	final, err := p.Run()
	if err != nil {
		return zero, fmt.Errorf("running selection ui: %w", err)
	}

	fm, ok := final.(Model[T])
	if !ok {
		return zero, fmt.Errorf("unexpected model type %T", final)
	}
	switch {
	case fm.err != nil:
		return zero, fm.err
	case fm.result == nil:
		return zero, ErrNoSelection
	}
	return fm.result.Value, nil
}
