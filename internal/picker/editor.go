package picker

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// maxHistorySize bounds the search history; the oldest entries are evicted.
const maxHistorySize = 100

// SearchEditor is a single-line text buffer with a cursor and a bounded
// submission history. All cursor positions are grapheme cluster indexes, so
// combining sequences and emoji are never split by editing operations.
type SearchEditor struct {
	query  string
	cursor int // grapheme index in [0, grapheme count]

	history []string // most recent last
	histPos int      // index into history while browsing, -1 otherwise
}

// NewSearchEditor returns an empty editor with no history.
func NewSearchEditor() SearchEditor {
	return SearchEditor{histPos: -1}
}

// Query returns the current buffer contents.
func (e *SearchEditor) Query() string { return e.query }

// Cursor returns the cursor position as a grapheme index.
func (e *SearchEditor) Cursor() int { return e.cursor }

// History returns the saved submissions, most recent last.
func (e *SearchEditor) History() []string { return e.history }

// HasQuery reports whether the buffer is non-empty.
func (e *SearchEditor) HasQuery() bool { return e.query != "" }

// InsertString inserts s at the cursor and places the cursor after it.
func (e *SearchEditor) InsertString(s string) {
	e.exitHistoryBrowsing()
	if s == "" {
		return
	}
	at := e.byteOffset(e.cursor)
	e.query = e.query[:at] + s + e.query[at:]
	e.cursor = graphemeCount(e.query[:at] + s)
	e.clampCursor()
}

// DeleteBefore removes the grapheme cluster before the cursor.
func (e *SearchEditor) DeleteBefore() {
	e.exitHistoryBrowsing()
	if e.cursor == 0 {
		return
	}
	start := e.byteOffset(e.cursor - 1)
	end := e.byteOffset(e.cursor)
	e.query = e.query[:start] + e.query[end:]
	e.cursor--
}

// DeleteAfter removes the grapheme cluster after the cursor.
func (e *SearchEditor) DeleteAfter() {
	e.exitHistoryBrowsing()
	if e.cursor >= graphemeCount(e.query) {
		return
	}
	start := e.byteOffset(e.cursor)
	end := e.byteOffset(e.cursor + 1)
	e.query = e.query[:start] + e.query[end:]
}

// DeleteWordBefore removes any whitespace directly before the cursor and the
// non-whitespace run preceding it.
func (e *SearchEditor) DeleteWordBefore() {
	e.exitHistoryBrowsing()
	at := e.byteOffset(e.cursor)
	before := strings.TrimRightFunc(e.query[:at], unicode.IsSpace)
	keep := ""
	if i := strings.LastIndexFunc(before, unicode.IsSpace); i >= 0 {
		_, w := utf8.DecodeRuneInString(before[i:])
		keep = before[:i+w]
	}
	e.query = keep + e.query[at:]
	e.cursor = graphemeCount(keep)
}

// DeleteWordAfter removes any whitespace directly after the cursor and the
// non-whitespace run following it.
func (e *SearchEditor) DeleteWordAfter() {
	e.exitHistoryBrowsing()
	at := e.byteOffset(e.cursor)
	after := strings.TrimLeftFunc(e.query[at:], unicode.IsSpace)
	keep := ""
	if i := strings.IndexFunc(after, unicode.IsSpace); i >= 0 {
		keep = after[i:]
	}
	e.query = e.query[:at] + keep
}

// MoveLeft moves the cursor one grapheme to the left.
func (e *SearchEditor) MoveLeft() {
	if e.cursor > 0 {
		e.cursor--
	}
}

// MoveRight moves the cursor one grapheme to the right.
func (e *SearchEditor) MoveRight() {
	if e.cursor < graphemeCount(e.query) {
		e.cursor++
	}
}

// MoveLeftWord moves the cursor left over whitespace and then over the
// adjacent non-whitespace run.
func (e *SearchEditor) MoveLeftWord() {
	cs := graphemes(e.query)
	i := e.cursor
	for i > 0 && isSpaceCluster(cs[i-1]) {
		i--
	}
	for i > 0 && !isSpaceCluster(cs[i-1]) {
		i--
	}
	e.cursor = i
}

// MoveRightWord moves the cursor right over whitespace and then over the
// adjacent non-whitespace run.
func (e *SearchEditor) MoveRightWord() {
	cs := graphemes(e.query)
	i := e.cursor
	for i < len(cs) && isSpaceCluster(cs[i]) {
		i++
	}
	for i < len(cs) && !isSpaceCluster(cs[i]) {
		i++
	}
	e.cursor = i
}

// MoveToStart places the cursor before the first grapheme.
func (e *SearchEditor) MoveToStart() { e.cursor = 0 }

// MoveToEnd places the cursor after the last grapheme.
func (e *SearchEditor) MoveToEnd() { e.cursor = graphemeCount(e.query) }

// Clear empties the buffer and exits history browsing.
func (e *SearchEditor) Clear() {
	e.query = ""
	e.cursor = 0
	e.histPos = -1
}

// NavigateHistoryUp recalls the next-older history entry. From a fresh buffer
// it jumps to the newest entry; at the oldest entry it is a no-op.
func (e *SearchEditor) NavigateHistoryUp() {
	if len(e.history) == 0 {
		return
	}
	switch {
	case e.histPos < 0:
		e.histPos = len(e.history) - 1
	case e.histPos > 0:
		e.histPos--
	default:
		return
	}
	e.query = e.history[e.histPos]
	e.cursor = graphemeCount(e.query)
}

// NavigateHistoryDown recalls the next-newer history entry; moving past the
// newest entry exits browsing and clears the buffer.
func (e *SearchEditor) NavigateHistoryDown() {
	if e.histPos < 0 {
		return
	}
	if e.histPos == len(e.history)-1 {
		e.histPos = -1
		e.query = ""
		e.cursor = 0
		return
	}
	e.histPos++
	e.query = e.history[e.histPos]
	e.cursor = graphemeCount(e.query)
}

// SaveToHistory records the current query. Re-submitting an existing entry
// moves it to the most-recent position instead of duplicating it.
func (e *SearchEditor) SaveToHistory() {
	if e.query == "" {
		return
	}
	for i, h := range e.history {
		if h == e.query {
			e.history = append(e.history[:i], e.history[i+1:]...)
			break
		}
	}
	e.history = append(e.history, e.query)
	if len(e.history) > maxHistorySize {
		e.history = e.history[len(e.history)-maxHistorySize:]
	}
}

// DisplayWidthUpToCursor returns the rendered column width of the text before
// the cursor. Wide graphemes count as two columns.
func (e *SearchEditor) DisplayWidthUpToCursor() int {
	return runewidth.StringWidth(e.query[:e.byteOffset(e.cursor)])
}

func (e *SearchEditor) exitHistoryBrowsing() { e.histPos = -1 }

func (e *SearchEditor) clampCursor() {
	if e.cursor < 0 {
		e.cursor = 0
	}
	if n := graphemeCount(e.query); e.cursor > n {
		e.cursor = n
	}
}

// byteOffset converts a grapheme index into a byte offset into the query.
func (e *SearchEditor) byteOffset(grapheme int) int {
	g := uniseg.NewGraphemes(e.query)
	n := 0
	for g.Next() {
		if n == grapheme {
			from, _ := g.Positions()
			return from
		}
		n++
	}
	return len(e.query)
}

func graphemeCount(s string) int {
	n := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		n++
	}
	return n
}

func graphemes(s string) []string {
	var cs []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		cs = append(cs, g.Str())
	}
	return cs
}

func isSpaceCluster(c string) bool {
	return strings.TrimSpace(c) == ""
}
