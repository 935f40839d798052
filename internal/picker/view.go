package picker

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const (
	minListRows   = 3
	searchBarRows = 3
	infoBarRows   = 2

	selectionPrefix = "> "
	searchPrefix    = "> "
	fillerRow       = "·"
)

var (
	colorFocus = lipgloss.Color("6")
	colorDim   = lipgloss.Color("8")

	focusStyle    = lipgloss.NewStyle().Foreground(colorFocus)
	dimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	selectedStyle = lipgloss.NewStyle().Foreground(colorFocus).Bold(true)
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	sectionStyle  = lipgloss.NewStyle().Bold(true)
)

var helpText = strings.Join([]string{
	sectionStyle.Render("List"),
	"  ↑/↓              Navigate items",
	"  PgUp/PgDn        Navigate by page",
	"  Tab              Focus the search bar",
	"  Enter            Select current item",
	"  Esc              Abort selection",
	"",
	sectionStyle.Render("Search Bar"),
	"  ↑/↓              Navigate search history",
	"  Ctrl+←/→         Navigate words",
	"  Alt+Backspace    Delete previous word",
	"  Tab              Focus the list",
	"  Enter            Start search",
	"  Esc              Clear search, if it exists, otherwise abort selection",
	"  Ctrl+L           Clear search",
	"  Ctrl+A/Home      Go to line start",
	"  Ctrl+E/End       Go to line end",
	"  <text>           Filter items with plain text query",
	"  @<key>=<value>   Add fetch option, e.g. @state=open; see the",
	"                   subcommand help for recognized keys",
	"",
	"  For instance, 'crash @author=alice' searches for items containing",
	"  'crash' which were authored by the user 'alice'",
}, "\n")

func (m Model[T]) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.mode == modeHelp {
		return m.viewHelp()
	}

	listRows := max(m.height-searchBarRows-infoBarRows, minListRows)
	sections := []string{
		m.viewList(listRows),
		m.viewSearchBar(),
		m.viewInfoBar(),
	}
	return strings.Join(sections, "\n")
}

func (m Model[T]) viewHelp() string {
	footer := dimStyle.Render(" Press any key to close Help...")
	return m.help.View() + "\n" + footer
}

func (m Model[T]) viewList(rows int) string {
	lines := make([]string, 0, rows)

	if m.list.isEmpty() {
		if m.sched.isFetching() {
			lines = append(lines, dimStyle.Render("  "+m.spin.View()+"Loading items..."))
		} else {
			lines = append(lines, dimStyle.Render("  No items found"))
		}
	} else {
		selected, ok := m.list.selectedIndex()
		if !ok {
			selected = -1
		}

		// Keep the highlight visible: scroll the window so the selected
		// row is always inside it.
		start := 0
		if selected >= rows {
			start = selected - rows + 1
		}
		end := min(start+rows, m.list.len())

		for i := start; i < end; i++ {
			item, _ := m.list.item(i)
			line := "  " + item.Display
			if i == selected {
				line = selectionPrefix + item.Display
				if m.focus == focusList {
					line = selectedStyle.Render(line)
				}
			}
			lines = append(lines, runewidth.Truncate(line, max(m.width, 1), "…"))
		}

		if m.pages.hasMore {
			for len(lines) < rows {
				lines = append(lines, dimStyle.Render(fillerRow))
			}
		}
	}

	for len(lines) < rows {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// viewSearchBar renders the bordered query line with a block cursor at the
// current grapheme position.
func (m Model[T]) viewSearchBar() string {
	border := strings.Repeat("─", max(m.width, 1))
	if m.focus == focusSearch {
		border = focusStyle.Render(border)
	} else {
		border = dimStyle.Render(border)
	}

	prefix := searchPrefix
	if m.focus == focusSearch {
		prefix = focusStyle.Render(prefix)
	} else {
		prefix = dimStyle.Render(prefix)
	}

	query := m.editor.Query()
	line := prefix + query
	if m.focus == focusSearch {
		cs := graphemes(query)
		cur := m.editor.Cursor()
		before := strings.Join(cs[:cur], "")
		under := " "
		after := ""
		if cur < len(cs) {
			under = cs[cur]
			after = strings.Join(cs[cur+1:], "")
		}
		line = prefix + before + cursorStyle.Render(under) + after
	}

	return border + "\n" + line + "\n" + border
}

func (m Model[T]) viewInfoBar() string {
	status := ""
	if m.sched.isFetching() {
		status = "  " + m.spin.View() + "Loading items..."
	} else if s := formatOptions(m.sched.options); s != "" {
		status = "  " + s
	}

	hint := "?: Show Help"
	gap := m.width - runewidth.StringWidth(status) - runewidth.StringWidth(hint)
	if gap < 1 {
		gap = 1
	}
	return dimStyle.Render(status+strings.Repeat(" ", gap)+hint) + "\n"
}
