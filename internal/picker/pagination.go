package picker

// paginationTracker records how far into the remote collection the session
// has fetched. currentPage 0 means nothing has been fetched yet; hasMore is
// optimistic until a response proves otherwise.
type paginationTracker struct {
	currentPage  int
	viewportRows int
	hasMore      bool
}

func newPaginationTracker() paginationTracker {
	return paginationTracker{hasMore: true}
}

func (p *paginationTracker) reset() {
	p.currentPage = 0
	p.hasMore = true
}

func (p *paginationTracker) nextPage() int { return p.currentPage + 1 }

// record stores the page and has-more flag of a merged fetch response.
func (p *paginationTracker) record(page int, hasMore bool) {
	p.currentPage = page
	p.hasMore = hasMore
}
