package paging

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// sliceSource pages through a fixed slice by offset.
type sliceSource struct {
	mu    sync.Mutex
	items []string
	loads int
}

func (s *sliceSource) LoadPage(ctx context.Context, key, size int) (Page[string], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++

	offset := (key - 1) * size
	if offset > len(s.items) {
		offset = len(s.items)
	}
	end := offset + size
	if end > len(s.items) {
		end = len(s.items)
	}

	page := Page[string]{Items: s.items[offset:end], Key: key}
	if key > InitialPageIndex {
		page.PrevKey = intPtr(key - 1)
	}
	if len(page.Items) == size {
		page.NextKey = intPtr(key + 1)
	}
	return page, nil
}

func (s *sliceSource) RefreshKey(state State[string]) int {
	if state.Anchor == nil || state.Config.PageSize <= 0 {
		return InitialPageIndex
	}
	return InitialPageIndex + *state.Anchor/state.Config.PageSize
}

// funcMediator delegates Load to a closure, for tests that mutate the source
// mid-flight.
type funcMediator struct {
	fn func(loadType LoadType, state State[string]) MediatorResult
}

func (m *funcMediator) Load(ctx context.Context, loadType LoadType, state State[string]) MediatorResult {
	return m.fn(loadType, state)
}

type fakeMediator struct {
	calls  atomic.Int64
	result MediatorResult
	block  chan struct{}
}

func (m *fakeMediator) Load(ctx context.Context, loadType LoadType, state State[string]) MediatorResult {
	m.calls.Add(1)
	if m.block != nil {
		<-m.block
	}
	return m.result
}

func TestPagerRefreshLoadsFirstWindow(t *testing.T) {
	source := &sliceSource{items: []string{"a", "b", "c", "d", "e"}}
	pager := NewPager(Config{PageSize: 2}, source, nil)

	result, err := pager.Refresh(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(result.Items))
	}
	if result.Items[0] != "a" || result.Items[1] != "b" {
		t.Errorf("Expected [a b], got %v", result.Items)
	}
	if result.EndOfPagination {
		t.Error("Expected more pages to exist")
	}
}

func TestPagerAppendExtendsWindow(t *testing.T) {
	source := &sliceSource{items: []string{"a", "b", "c"}}
	pager := NewPager(Config{PageSize: 2}, source, nil)

	if _, err := pager.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	result, err := pager.Append(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(result.Items))
	}
	if !result.EndOfPagination {
		t.Error("Expected end of pagination after the short page")
	}
}

func TestPagerAppendAfterAnchoredShortWindowDoesNotDuplicate(t *testing.T) {
	source := &sliceSource{items: []string{"a", "b", "c"}}
	pager := NewPager(Config{PageSize: 2}, source, nil)

	ctx := context.Background()
	pager.SetAnchor(2)
	if _, err := pager.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if got := pager.Items(); len(got) != 1 || got[0] != "c" {
		t.Fatalf("Expected anchored refresh to load [c], got %v", got)
	}

	result, err := pager.Append(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Items) != 1 || result.Items[0] != "c" {
		t.Errorf("Expected [c] after append past the end, got %v", result.Items)
	}
	if !result.EndOfPagination {
		t.Error("Expected end of pagination")
	}
}

func TestPagerAppendPicksUpExtendedShortWindow(t *testing.T) {
	source := &sliceSource{items: []string{"a", "b", "c"}}
	mediator := &funcMediator{fn: func(loadType LoadType, state State[string]) MediatorResult {
		if loadType == LoadTypeAppend {
			// More items arrived in the store since the short window loaded.
			source.mu.Lock()
			source.items = append(source.items, "d", "e")
			source.mu.Unlock()
		}
		return MediatorResult{}
	}}
	pager := NewPager(Config{PageSize: 2}, source, mediator)

	ctx := context.Background()
	pager.SetAnchor(2)
	if _, err := pager.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	result, err := pager.Append(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Items) != 2 || result.Items[0] != "c" || result.Items[1] != "d" {
		t.Errorf("Expected the short window to refill as [c d], got %v", result.Items)
	}
	if result.EndOfPagination {
		t.Error("Expected more pages after the window refilled")
	}
}

func TestPagerRefreshReplacesLoadedWindows(t *testing.T) {
	source := &sliceSource{items: []string{"a", "b", "c", "d"}}
	pager := NewPager(Config{PageSize: 2}, source, nil)

	ctx := context.Background()
	if _, err := pager.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := pager.Append(ctx); err != nil {
		t.Fatal(err)
	}

	result, err := pager.Refresh(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Items) != 2 {
		t.Errorf("Expected refresh to collapse back to one window, got %d items", len(result.Items))
	}
}

func TestPagerPrependWithoutEarlierPage(t *testing.T) {
	source := &sliceSource{items: []string{"a", "b"}}
	pager := NewPager(Config{PageSize: 2}, source, nil)

	ctx := context.Background()
	if _, err := pager.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	result, err := pager.Prepend(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !result.EndOfPagination {
		t.Error("Expected prepend before page 1 to report exhaustion")
	}
	if source.loads != 1 {
		t.Errorf("Expected no extra source load, got %d loads", source.loads)
	}
}

func TestPagerRunsMediatorBeforeSource(t *testing.T) {
	source := &sliceSource{items: []string{"a"}}
	mediator := &fakeMediator{result: MediatorResult{EndOfPagination: true}}
	pager := NewPager(Config{PageSize: 2}, source, mediator)

	result, err := pager.Refresh(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if mediator.calls.Load() != 1 {
		t.Errorf("Expected 1 mediator call, got %d", mediator.calls.Load())
	}
	if !result.EndOfPagination {
		t.Error("Expected mediator end-of-pagination to propagate")
	}
}

func TestPagerMediatorErrorPropagates(t *testing.T) {
	source := &sliceSource{items: []string{"a"}}
	mediator := &fakeMediator{result: MediatorResult{Err: context.DeadlineExceeded}}
	pager := NewPager(Config{PageSize: 2}, source, mediator)

	_, err := pager.Refresh(context.Background())
	if err == nil {
		t.Fatal("Expected mediator error to propagate")
	}
	if source.loads != 0 {
		t.Errorf("Expected no source load after mediator error, got %d", source.loads)
	}
}

func TestPagerSingleFlightPerDirection(t *testing.T) {
	source := &sliceSource{items: []string{"a", "b", "c", "d"}}
	mediator := &fakeMediator{block: make(chan struct{})}
	pager := NewPager(Config{PageSize: 2}, source, mediator)

	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := pager.Append(ctx); err != nil {
				t.Error(err)
			}
		}()
	}

	// Let all three goroutines reach the pager before releasing the mediator.
	time.Sleep(50 * time.Millisecond)
	close(mediator.block)
	wg.Wait()

	if got := mediator.calls.Load(); got != 1 {
		t.Errorf("Expected concurrent appends to collapse into 1 mediator call, got %d", got)
	}
}
