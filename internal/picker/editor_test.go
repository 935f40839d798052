package picker

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeText(e *SearchEditor, s string) {
	for _, r := range s {
		e.InsertString(string(r))
	}
}

func TestEditor_InsertAndCursor(t *testing.T) {
	e := NewSearchEditor()
	typeText(&e, "hello")
	assert.Equal(t, "hello", e.Query())
	assert.Equal(t, 5, e.Cursor())

	e.MoveLeft()
	e.MoveLeft()
	e.InsertString("X")
	assert.Equal(t, "helXlo", e.Query())
	assert.Equal(t, 4, e.Cursor())
}

func TestEditor_GraphemeRoundTrip(t *testing.T) {
	// Insert-then-delete of a multi-byte cluster must restore the exact
	// prior state.
	clusters := []string{
		"é",           // e + combining acute
		"🇩🇪",                // regional indicator pair
		"👨‍👩‍👧",   // ZWJ family
		"漢",                 // wide CJK
	}
	for _, c := range clusters {
		t.Run(fmt.Sprintf("%q", c), func(t *testing.T) {
			e := NewSearchEditor()
			typeText(&e, "ab")
			e.MoveLeft()

			before := e.Query()
			cursor := e.Cursor()

			e.InsertString(c)
			e.DeleteBefore()

			assert.Equal(t, before, e.Query())
			assert.Equal(t, cursor, e.Cursor())
		})
	}
}

func TestEditor_DeleteBeforeNeverSplitsCluster(t *testing.T) {
	e := NewSearchEditor()
	e.InsertString("a")
	e.InsertString("🇩🇪")
	e.InsertString("b")
	require.Equal(t, 3, e.Cursor())

	e.MoveLeft()
	e.DeleteBefore()
	assert.Equal(t, "ab", e.Query())
	assert.Equal(t, 1, e.Cursor())
}

func TestEditor_DeleteAfter(t *testing.T) {
	e := NewSearchEditor()
	typeText(&e, "abc")
	e.MoveToStart()
	e.DeleteAfter()
	assert.Equal(t, "bc", e.Query())
	assert.Equal(t, 0, e.Cursor())

	e.MoveToEnd()
	e.DeleteAfter() // no-op at end
	assert.Equal(t, "bc", e.Query())
}

func TestEditor_DeleteWordBefore(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{"single word", "hello", ""},
		{"keeps earlier words", "foo bar", "foo "},
		{"skips trailing spaces", "foo bar   ", "foo "},
		{"empty", "", ""},
		{"only spaces", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewSearchEditor()
			typeText(&e, tt.input)
			e.DeleteWordBefore()
			assert.Equal(t, tt.expect, e.Query())
			assert.Equal(t, graphemeCount(tt.expect), e.Cursor())
		})
	}
}

func TestEditor_DeleteWordAfter(t *testing.T) {
	e := NewSearchEditor()
	typeText(&e, "foo bar baz")
	e.MoveToStart()
	e.MoveRightWord() // after "foo"
	e.DeleteWordAfter()
	assert.Equal(t, "foo baz", e.Query())
}

func TestEditor_WordMovement(t *testing.T) {
	e := NewSearchEditor()
	typeText(&e, "foo  bar baz")

	e.MoveLeftWord()
	assert.Equal(t, 9, e.Cursor()) // before "baz"
	e.MoveLeftWord()
	assert.Equal(t, 5, e.Cursor()) // before "bar"
	e.MoveLeftWord()
	assert.Equal(t, 0, e.Cursor())
	e.MoveLeftWord() // no-op at start
	assert.Equal(t, 0, e.Cursor())

	e.MoveRightWord()
	assert.Equal(t, 3, e.Cursor()) // after "foo"
	e.MoveRightWord()
	assert.Equal(t, 8, e.Cursor()) // after "bar"
}

func TestEditor_HistoryDedupAndCap(t *testing.T) {
	e := NewSearchEditor()

	typeText(&e, "bug")
	e.SaveToHistory()
	e.Clear()
	typeText(&e, "bug")
	e.SaveToHistory()
	e.Clear()
	assert.Equal(t, []string{"bug"}, e.History())

	typeText(&e, "fix")
	e.SaveToHistory()
	e.Clear()
	typeText(&e, "bug")
	e.SaveToHistory()
	e.Clear()
	// Re-submission moves the entry to the most-recent position.
	assert.Equal(t, []string{"fix", "bug"}, e.History())

	e = NewSearchEditor()
	for i := 0; i < 101; i++ {
		typeText(&e, fmt.Sprintf("query-%d", i))
		e.SaveToHistory()
		e.Clear()
	}
	require.Len(t, e.History(), 100)
	assert.Equal(t, "query-1", e.History()[0]) // oldest evicted
	assert.Equal(t, "query-100", e.History()[99])
}

func TestEditor_SaveToHistorySkipsEmpty(t *testing.T) {
	e := NewSearchEditor()
	e.SaveToHistory()
	assert.Empty(t, e.History())
}

func TestEditor_HistoryNavigation(t *testing.T) {
	e := NewSearchEditor()
	for _, q := range []string{"bug", "fix"} {
		typeText(&e, q)
		e.SaveToHistory()
		e.Clear()
	}

	// Up, Up, Down, Down visits fix, bug, fix, "".
	e.NavigateHistoryUp()
	assert.Equal(t, "fix", e.Query())
	assert.Equal(t, 3, e.Cursor())
	e.NavigateHistoryUp()
	assert.Equal(t, "bug", e.Query())
	e.NavigateHistoryUp() // no-op at oldest
	assert.Equal(t, "bug", e.Query())
	e.NavigateHistoryDown()
	assert.Equal(t, "fix", e.Query())
	e.NavigateHistoryDown()
	assert.Equal(t, "", e.Query())
	assert.Equal(t, 0, e.Cursor())
	e.NavigateHistoryDown() // no-op when not browsing
	assert.Equal(t, "", e.Query())
}

func TestEditor_InsertExitsHistoryBrowsing(t *testing.T) {
	e := NewSearchEditor()
	typeText(&e, "bug")
	e.SaveToHistory()
	e.Clear()

	e.NavigateHistoryUp()
	require.Equal(t, "bug", e.Query())
	e.InsertString("s")
	assert.Equal(t, "bugs", e.Query())

	// Up now starts browsing from scratch at the newest entry.
	e.NavigateHistoryUp()
	assert.Equal(t, "bug", e.Query())
}

func TestEditor_DisplayWidthUpToCursor(t *testing.T) {
	e := NewSearchEditor()
	e.InsertString("a")
	e.InsertString("漢") // double width
	e.InsertString("b")
	assert.Equal(t, 4, e.DisplayWidthUpToCursor())
	e.MoveLeft()
	assert.Equal(t, 3, e.DisplayWidthUpToCursor())
	e.MoveLeft()
	assert.Equal(t, 1, e.DisplayWidthUpToCursor())
}

// Cursor must stay within [0, grapheme count] under arbitrary operation
// sequences.
func TestEditor_CursorBoundInvariant(t *testing.T) {
	inserts := []string{"a", "é", "🇩🇪", "漢", " ", "xy"}
	rng := rand.New(rand.NewSource(42))

	e := NewSearchEditor()
	ops := []func(){
		func() { e.InsertString(inserts[rng.Intn(len(inserts))]) },
		e.DeleteBefore,
		e.DeleteAfter,
		e.DeleteWordBefore,
		e.DeleteWordAfter,
		e.MoveLeft,
		e.MoveRight,
		e.MoveLeftWord,
		e.MoveRightWord,
		e.MoveToStart,
		e.MoveToEnd,
		e.Clear,
		e.SaveToHistory,
		e.NavigateHistoryUp,
		e.NavigateHistoryDown,
	}

	for i := 0; i < 5000; i++ {
		ops[rng.Intn(len(ops))]()
		require.GreaterOrEqual(t, e.Cursor(), 0)
		require.LessOrEqual(t, e.Cursor(), graphemeCount(e.Query()))
	}
}
