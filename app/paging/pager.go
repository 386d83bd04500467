package paging

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// LoadResult is what a pager load event hands back to the consumer: the full
// window of currently loaded items and whether pagination is exhausted in the
// requested direction.
type LoadResult[T any] struct {
	Items           []T
	EndOfPagination bool
}

// Pager drives a PagingSource and an optional RemoteMediator from
// Refresh/Prepend/Append events. Load events are single-flighted per
// direction: concurrent calls for the same direction collapse into one
// execution and share its result.
type Pager[T any] struct {
	cfg      Config
	source   PagingSource[T]
	mediator RemoteMediator[T]

	group singleflight.Group

	mu    sync.Mutex
	state State[T]
}

// NewPager creates a pager. mediator may be nil for purely local pagination.
func NewPager[T any](cfg Config, source PagingSource[T], mediator RemoteMediator[T]) *Pager[T] {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 30
	}
	return &Pager[T]{
		cfg:      cfg,
		source:   source,
		mediator: mediator,
		state:    State[T]{Config: cfg},
	}
}

// SetAnchor records the viewport anchor as a flat index into the loaded items.
func (p *Pager[T]) SetAnchor(index int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Anchor = &index
}

// Items returns a snapshot of all currently loaded items.
func (p *Pager[T]) Items() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Items()
}

// State returns a snapshot of the current paging state.
func (p *Pager[T]) State() State[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Refresh reloads from the anchor's page, replacing all loaded windows.
func (p *Pager[T]) Refresh(ctx context.Context) (LoadResult[T], error) {
	return p.load(ctx, LoadTypeRefresh)
}

// Prepend loads the page before the first loaded window.
func (p *Pager[T]) Prepend(ctx context.Context) (LoadResult[T], error) {
	return p.load(ctx, LoadTypePrepend)
}

// Append loads the page after the last loaded window.
func (p *Pager[T]) Append(ctx context.Context) (LoadResult[T], error) {
	return p.load(ctx, LoadTypeAppend)
}

func (p *Pager[T]) load(ctx context.Context, loadType LoadType) (LoadResult[T], error) {
	v, err, _ := p.group.Do(loadType.String(), func() (interface{}, error) {
		return p.doLoad(ctx, loadType)
	})
	if err != nil {
		return LoadResult[T]{}, err
	}
	return v.(LoadResult[T]), nil
}

func (p *Pager[T]) doLoad(ctx context.Context, loadType LoadType) (LoadResult[T], error) {
	p.mu.Lock()
	snapshot := p.state
	p.mu.Unlock()

	endOfPagination := false
	if p.mediator != nil {
		result := p.mediator.Load(ctx, loadType, snapshot)
		if result.Err != nil {
			return LoadResult[T]{}, fmt.Errorf("mediator load failed: %w", result.Err)
		}
		endOfPagination = result.EndOfPagination
	}

	switch loadType {
	case LoadTypeRefresh:
		key := p.source.RefreshKey(snapshot)
		page, err := p.source.LoadPage(ctx, key, p.cfg.PageSize)
		if err != nil {
			return LoadResult[T]{}, err
		}
		p.mu.Lock()
		p.state = State[T]{Pages: []Page[T]{page}, Config: p.cfg}
		items := p.state.Items()
		p.mu.Unlock()
		if p.mediator == nil {
			endOfPagination = page.NextKey == nil
		}
		return LoadResult[T]{Items: items, EndOfPagination: endOfPagination}, nil

	case LoadTypePrepend:
		key := prependKey(snapshot)
		if key == nil {
			return LoadResult[T]{Items: snapshot.Items(), EndOfPagination: true}, nil
		}
		page, err := p.source.LoadPage(ctx, *key, p.cfg.PageSize)
		if err != nil {
			return LoadResult[T]{}, err
		}
		p.mu.Lock()
		p.state.Pages = append([]Page[T]{page}, p.state.Pages...)
		items := p.state.Items()
		p.mu.Unlock()
		if p.mediator == nil {
			endOfPagination = page.PrevKey == nil
		}
		return LoadResult[T]{Items: items, EndOfPagination: endOfPagination}, nil

	case LoadTypeAppend:
		key, replaceLast := appendTarget(snapshot)
		page, err := p.source.LoadPage(ctx, key, p.cfg.PageSize)
		if err != nil {
			return LoadResult[T]{}, err
		}
		p.mu.Lock()
		if replaceLast && len(p.state.Pages) > 0 {
			p.state.Pages[len(p.state.Pages)-1] = page
		} else {
			p.state.Pages = append(p.state.Pages, page)
		}
		items := p.state.Items()
		p.mu.Unlock()
		if p.mediator == nil {
			endOfPagination = page.NextKey == nil
		}
		return LoadResult[T]{Items: items, EndOfPagination: endOfPagination}, nil

	default:
		return LoadResult[T]{}, fmt.Errorf("unsupported load type %s", loadType)
	}
}

func prependKey[T any](state State[T]) *int {
	if len(state.Pages) == 0 {
		return nil
	}
	return state.Pages[0].PrevKey
}

// appendTarget resolves which window an append loads and whether it replaces
// the last loaded page instead of extending the list.
func appendTarget[T any](state State[T]) (key int, replaceLast bool) {
	if len(state.Pages) == 0 {
		return InitialPageIndex, false
	}
	last := state.Pages[len(state.Pages)-1]
	if last.NextKey != nil {
		return *last.NextKey, false
	}
	// The last window was short. The mediator may have extended the cache
	// past it, so re-read that same window in place; appending it again
	// would duplicate its items.
	return last.Key, true
}
