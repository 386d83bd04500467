package paging

import "context"

// PagingSource loads windows of locally stored items by page key. It is the
// read side of the pagination pipeline, decoupled from any rendering
// mechanism.
type PagingSource[T any] interface {
	// LoadPage returns the window for key, sized to at most size items, with
	// Key set to the requested key and the keys of the adjacent windows
	// filled in.
	LoadPage(ctx context.Context, key, size int) (Page[T], error)

	// RefreshKey resolves the page key a refresh should reload from, given
	// the current state. Implementations fall back to InitialPageIndex when
	// the state carries no usable anchor.
	RefreshKey(state State[T]) int
}

// RemoteMediator bridges the local paginated store and the remote paged API.
// Load decides which remote page the event targets, fetches it, and persists
// the result; it never panics on fetch or persist failures.
type RemoteMediator[T any] interface {
	Load(ctx context.Context, loadType LoadType, state State[T]) MediatorResult
}

// MediatorResult is the typed outcome of a mediator load. Err is set on fetch
// or persist failure; EndOfPagination reports that no further pages exist in
// the requested direction.
type MediatorResult struct {
	EndOfPagination bool
	Err             error
}
