package picker

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeItems(n int) []Item[int] {
	items := make([]Item[int], n)
	for i := range items {
		items[i] = Item[int]{Display: fmt.Sprintf("item %d", i), Value: i}
	}
	return items
}

func TestItemList_ReplaceSelectsFirst(t *testing.T) {
	l := newItemList[int]()
	_, ok := l.selectedIndex()
	assert.False(t, ok)

	l.replaceItems(makeItems(3))
	idx, ok := l.selectedIndex()
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	l.replaceItems(nil)
	_, ok = l.selectedIndex()
	assert.False(t, ok)
}

func TestItemList_AppendKeepsSelection(t *testing.T) {
	l := newItemList[int]()
	l.replaceItems(makeItems(3))
	l.selectNext()
	l.appendItems(makeItems(2))

	idx, ok := l.selectedIndex()
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 5, l.len())
}

func TestItemList_SelectionSaturates(t *testing.T) {
	l := newItemList[int]()
	l.selectNext() // no-op on empty
	_, ok := l.selectedIndex()
	assert.False(t, ok)

	l.replaceItems(makeItems(2))
	l.selectPrevious()
	idx, _ := l.selectedIndex()
	assert.Equal(t, 0, idx)

	l.selectNext()
	l.selectNext()
	l.selectNext()
	idx, _ = l.selectedIndex()
	assert.Equal(t, 1, idx)
}

func TestItemList_SelectNextFromNone(t *testing.T) {
	l := newItemList[int]()
	l.appendItems(makeItems(3)) // append does not select
	_, ok := l.selectedIndex()
	require.False(t, ok)

	l.selectNext()
	idx, ok := l.selectedIndex()
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestItemList_PageMovement(t *testing.T) {
	l := newItemList[int]()
	l.replaceItems(makeItems(20))

	l.selectPageDown(10)
	idx, _ := l.selectedIndex()
	assert.Equal(t, 9, idx)

	l.selectPageDown(10)
	l.selectPageDown(10)
	idx, _ = l.selectedIndex()
	assert.Equal(t, 19, idx) // saturates at end

	l.selectPageUp(10)
	idx, _ = l.selectedIndex()
	assert.Equal(t, 10, idx)

	l.selectPageUp(100)
	idx, _ = l.selectedIndex()
	assert.Equal(t, 0, idx)

	l.selectPageDown(0) // no-op
	idx, _ = l.selectedIndex()
	assert.Equal(t, 0, idx)
}
