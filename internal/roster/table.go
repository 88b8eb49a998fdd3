package roster

import (
	"sync"

	"github.com/ysy950803/chatroster/internal/model"
)

// View is one consistent read of the table.
type View struct {
	Query Query            `json:"query"`
	Total int              `json:"total"`
	Items []*model.Contact `json:"items"`
}

// Table is the searchable, paginated chatroom view over a Store.
//
// Filtered results are memoized on (store version, keyword) and recomputed
// whenever either changes, so every mutation is visible on the next read.
type Table struct {
	store *Store

	mu    sync.Mutex
	query Query

	cacheValid    bool
	cacheVersion  uint64
	cacheKeyword  string
	cacheFiltered []*model.Contact
}

func NewTable(store *Store) *Table {
	return &Table{
		store: store,
		query: DefaultQuery(),
	}
}

func (t *Table) Store() *Store {
	return t.store
}

func (t *Table) Query() Query {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.query
}

// SetKeyword starts a new search from the first page.
func (t *Table) SetKeyword(keyword string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.query.Keyword = keyword
	t.query.PageIndex = DefaultPageIndex
}

// SetPageSize keeps the current page index, which may now point past the end.
func (t *Table) SetPageSize(size int) {
	if size <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.query.PageSize = size
}

func (t *Table) SetPageIndex(index int) {
	if index < 1 {
		index = 1
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.query.PageIndex = index
}

func (t *Table) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.query = DefaultQuery()
}

func (t *Table) Filtered() []*model.Contact {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.filteredLocked()
}

func (t *Table) Total() int {
	return len(t.Filtered())
}

func (t *Table) Page() []*model.Contact {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Paginate(t.filteredLocked(), t.query)
}

func (t *Table) Snapshot() View {
	t.mu.Lock()
	defer t.mu.Unlock()
	filtered := t.filteredLocked()
	return View{
		Query: t.query,
		Total: len(filtered),
		Items: Paginate(filtered, t.query),
	}
}

func (t *Table) filteredLocked() []*model.Contact {
	contacts, version := t.store.snapshot()
	if t.cacheValid && t.cacheVersion == version && t.cacheKeyword == t.query.Keyword {
		return t.cacheFiltered
	}
	t.cacheFiltered = Filter(contacts, t.query.Keyword)
	t.cacheVersion = version
	t.cacheKeyword = t.query.Keyword
	t.cacheValid = true
	return t.cacheFiltered
}
