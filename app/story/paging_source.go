package story

import (
	"context"

	"github.com/haqim007/story-app/app/paging"
)

// PagingSource pages through cached stories in insertion order via
// limit/offset windows.
type PagingSource struct {
	local *LocalDataSource
}

func NewPagingSource(local *LocalDataSource) *PagingSource {
	return &PagingSource{local: local}
}

var _ paging.PagingSource[Story] = (*PagingSource)(nil)

func (s *PagingSource) LoadPage(ctx context.Context, key, size int) (paging.Page[Story], error) {
	offset := (key - paging.InitialPageIndex) * size

	entities, err := s.local.StoriesPage(ctx, size, offset)
	if err != nil {
		return paging.Page[Story]{}, err
	}

	page := paging.Page[Story]{Items: storiesFromEntities(entities), Key: key}
	if key > paging.InitialPageIndex {
		prev := key - 1
		page.PrevKey = &prev
	}
	if len(entities) == size {
		next := key + 1
		page.NextKey = &next
	}
	return page, nil
}

// RefreshKey resolves the page holding the anchored item, falling back to the
// first page when no anchor is set.
func (s *PagingSource) RefreshKey(state paging.State[Story]) int {
	if state.Anchor == nil || state.Config.PageSize <= 0 {
		return paging.InitialPageIndex
	}

	idx := *state.Anchor
	if idx < 0 {
		idx = 0
	}
	return paging.InitialPageIndex + idx/state.Config.PageSize
}
