package picker

import "context"

// FetchFunc loads one page of items for the given filter options. It is
// invoked on its own goroutine and may block on network I/O; recognized
// option keys are entirely up to the callback.
type FetchFunc[T any] func(ctx context.Context, page int, options map[string]string) ([]Item[T], bool, error)

// mergeMode says how a fetch response is folded into the item list.
type mergeMode int

const (
	mergeReplace mergeMode = iota
	mergeAppend
)

type fetchResult[T any] struct {
	items   []Item[T]
	page    int
	hasMore bool
	mode    mergeMode
	err     error
}

// fetchScheduler owns the single in-flight fetch slot. Each schedule installs
// a fresh one-element channel and spawns a worker that sends its result there.
// Workers are never cancelled or joined: replacing the slot makes a late send
// from the old worker land in a channel nobody polls anymore, so superseded
// results are structurally unobservable.
type fetchScheduler[T any] struct {
	slot    chan fetchResult[T]
	options map[string]string // options of the most recent schedule, for display
}

func (s *fetchScheduler[T]) schedule(ctx context.Context, fetch FetchFunc[T], page int, options map[string]string, mode mergeMode) {
	s.options = options
	slot := make(chan fetchResult[T], 1)
	s.slot = slot

	go func() {
		items, hasMore, err := fetch(ctx, page, options)
		select {
		case slot <- fetchResult[T]{items: items, page: page, hasMore: hasMore, mode: mode, err: err}:
		default:
		}
	}()
}

// poll returns a finished result without blocking and frees the slot.
func (s *fetchScheduler[T]) poll() (fetchResult[T], bool) {
	if s.slot == nil {
		return fetchResult[T]{}, false
	}
	select {
	case res := <-s.slot:
		s.slot = nil
		return res, true
	default:
		return fetchResult[T]{}, false
	}
}

// reset abandons the in-flight fetch, if any. The worker keeps running but
// its result can never be polled.
func (s *fetchScheduler[T]) reset() { s.slot = nil }

func (s *fetchScheduler[T]) isFetching() bool { return s.slot != nil }
