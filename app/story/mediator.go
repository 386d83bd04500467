package story

import (
	"context"

	"github.com/haqim007/story-app/app/database"
	"github.com/haqim007/story-app/app/paging"
)

// Mediator bridges the local story cache and the remote paged API. For each
// load event it resolves the target page through the cached remote keys,
// fetches it, and persists stories and regenerated keys in one transaction.
// All fetch and persist failures are reported through MediatorResult, never
// raised.
type Mediator struct {
	local  *LocalDataSource
	remote StoriesFetcher
}

func NewMediator(local *LocalDataSource, remote StoriesFetcher) *Mediator {
	return &Mediator{local: local, remote: remote}
}

var _ paging.RemoteMediator[Story] = (*Mediator)(nil)

func (m *Mediator) Load(ctx context.Context, loadType paging.LoadType, state paging.State[Story]) paging.MediatorResult {
	var page int

	switch loadType {
	case paging.LoadTypeRefresh:
		key, err := m.remoteKeyClosestToAnchor(ctx, state)
		if err != nil {
			return paging.MediatorResult{Err: err}
		}
		if key != nil && key.NextKey != nil {
			page = *key.NextKey - 1
		} else {
			page = paging.InitialPageIndex
		}

	case paging.LoadTypePrepend:
		key, err := m.remoteKeyForFirstItem(ctx, state)
		if err != nil {
			return paging.MediatorResult{Err: err}
		}
		if key == nil {
			// Nothing cached yet in this direction; not exhaustion.
			return paging.MediatorResult{EndOfPagination: false}
		}
		if key.PrevKey == nil {
			return paging.MediatorResult{EndOfPagination: true}
		}
		page = *key.PrevKey

	case paging.LoadTypeAppend:
		key, err := m.remoteKeyForLastItem(ctx, state)
		if err != nil {
			return paging.MediatorResult{Err: err}
		}
		if key == nil {
			return paging.MediatorResult{EndOfPagination: false}
		}
		if key.NextKey == nil {
			return paging.MediatorResult{EndOfPagination: true}
		}
		page = *key.NextKey
	}

	response, err := m.remote.Stories(ctx, page, state.Config.PageSize, false)
	if err != nil {
		return paging.MediatorResult{Err: err}
	}

	endOfPagination := len(response.ListStory) == 0

	var prevKey, nextKey *int
	if page != paging.InitialPageIndex {
		prev := page - 1
		prevKey = &prev
	}
	if !endOfPagination {
		next := page + 1
		nextKey = &next
	}

	keys := make([]database.RemoteKey, 0, len(response.ListStory))
	for _, s := range response.ListStory {
		keys = append(keys, database.RemoteKey{ID: s.ID, PrevKey: prevKey, NextKey: nextKey})
	}

	err = m.local.InsertKeysAndStories(ctx, keys,
		entitiesFromResponses(response.ListStory), loadType == paging.LoadTypeRefresh)
	if err != nil {
		return paging.MediatorResult{Err: err}
	}

	return paging.MediatorResult{EndOfPagination: endOfPagination}
}

func (m *Mediator) remoteKeyClosestToAnchor(ctx context.Context, state paging.State[Story]) (*database.RemoteKey, error) {
	item, ok := state.ClosestToAnchor()
	if !ok {
		return nil, nil
	}
	return m.local.RemoteKeyByID(ctx, item.ID)
}

func (m *Mediator) remoteKeyForFirstItem(ctx context.Context, state paging.State[Story]) (*database.RemoteKey, error) {
	item, ok := state.FirstItem()
	if !ok {
		return nil, nil
	}
	return m.local.RemoteKeyByID(ctx, item.ID)
}

func (m *Mediator) remoteKeyForLastItem(ctx context.Context, state paging.State[Story]) (*database.RemoteKey, error) {
	item, ok := state.LastItem()
	if !ok {
		return nil, nil
	}
	return m.local.RemoteKeyByID(ctx, item.ID)
}
