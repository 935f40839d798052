package picker

// Item pairs the text shown in the list with an opaque payload returned to
// the caller on selection.
type Item[T any] struct {
	Display string
	Value   T
}

// itemList holds fetched items in page order plus the highlighted index.
// selected is -1 while nothing is highlighted and is otherwise < len(items).
type itemList[T any] struct {
	items    []Item[T]
	selected int
}

func newItemList[T any]() itemList[T] {
	return itemList[T]{selected: -1}
}

func (l *itemList[T]) len() int { return len(l.items) }

func (l *itemList[T]) isEmpty() bool { return len(l.items) == 0 }

// selectedIndex returns the highlighted index, if any.
func (l *itemList[T]) selectedIndex() (int, bool) {
	if l.selected < 0 || l.selected >= len(l.items) {
		return 0, false
	}
	return l.selected, true
}

func (l *itemList[T]) item(i int) (Item[T], bool) {
	if i < 0 || i >= len(l.items) {
		return Item[T]{}, false
	}
	return l.items[i], true
}

// replaceItems installs a fresh result set and highlights the first item.
func (l *itemList[T]) replaceItems(items []Item[T]) {
	l.items = items
	if len(items) > 0 {
		l.selected = 0
	} else {
		l.selected = -1
	}
}

// appendItems extends the list without touching the highlight.
func (l *itemList[T]) appendItems(items []Item[T]) {
	l.items = append(l.items, items...)
}

func (l *itemList[T]) selectNext() {
	if len(l.items) == 0 {
		return
	}
	if l.selected < 0 {
		l.selected = 0
		return
	}
	if l.selected < len(l.items)-1 {
		l.selected++
	}
}

func (l *itemList[T]) selectPrevious() {
	if len(l.items) == 0 {
		return
	}
	if l.selected <= 0 {
		l.selected = 0
		return
	}
	l.selected--
}

// selectPageDown moves the highlight down by n-1 rows, saturating at the end.
func (l *itemList[T]) selectPageDown(n int) {
	if n == 0 || len(l.items) == 0 {
		return
	}
	if l.selected < 0 {
		l.selected = 0
	}
	l.selected = min(l.selected+n-1, len(l.items)-1)
}

// selectPageUp moves the highlight up by n-1 rows, saturating at the start.
func (l *itemList[T]) selectPageUp(n int) {
	if n == 0 || len(l.items) == 0 {
		return
	}
	if l.selected < 0 {
		l.selected = 0
		return
	}
	l.selected = max(l.selected-(n-1), 0)
}
