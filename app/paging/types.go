package paging

// InitialPageIndex is the page requested when no bookmark can resolve a
// better starting point. Remote page indices start at 1.
const InitialPageIndex = 1

// LoadType identifies the direction of a pagination load event.
type LoadType int

const (
	LoadTypeRefresh LoadType = iota
	LoadTypePrepend
	LoadTypeAppend
)

func (t LoadType) String() string {
	switch t {
	case LoadTypeRefresh:
		return "refresh"
	case LoadTypePrepend:
		return "prepend"
	case LoadTypeAppend:
		return "append"
	default:
		return "unknown"
	}
}

// Config carries the pagination parameters shared by the pager, the paging
// source, and the remote mediator.
type Config struct {
	PageSize int
}

// Page is one window of items together with the key it was loaded for and
// the keys to load the adjacent windows. A nil adjacent key means no further
// page exists in that direction.
type Page[T any] struct {
	Items   []T
	Key     int
	PrevKey *int
	NextKey *int
}

// State is a snapshot of the loaded windows and the viewport anchor, handed
// to the remote mediator so it can resolve which page a load event targets.
// Anchor is a flat index into the concatenation of all loaded pages.
type State[T any] struct {
	Pages  []Page[T]
	Anchor *int
	Config Config
}

// FirstItem returns the first item of the first non-empty page.
func (s State[T]) FirstItem() (T, bool) {
	for _, page := range s.Pages {
		if len(page.Items) > 0 {
			return page.Items[0], true
		}
	}
	var zero T
	return zero, false
}

// LastItem returns the last item of the last non-empty page.
func (s State[T]) LastItem() (T, bool) {
	for i := len(s.Pages) - 1; i >= 0; i-- {
		if len(s.Pages[i].Items) > 0 {
			return s.Pages[i].Items[len(s.Pages[i].Items)-1], true
		}
	}
	var zero T
	return zero, false
}

// ClosestToAnchor returns the loaded item closest to the viewport anchor,
// clamping the anchor into the loaded range. Reports false when no anchor is
// set or nothing is loaded.
func (s State[T]) ClosestToAnchor() (T, bool) {
	var zero T
	if s.Anchor == nil {
		return zero, false
	}

	items := s.Items()
	if len(items) == 0 {
		return zero, false
	}

	idx := *s.Anchor
	if idx < 0 {
		idx = 0
	}
	if idx >= len(items) {
		idx = len(items) - 1
	}
	return items[idx], true
}

// Items flattens all loaded pages in order.
func (s State[T]) Items() []T {
	var items []T
	for _, page := range s.Pages {
		items = append(items, page.Items...)
	}
	return items
}
