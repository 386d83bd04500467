package paging

import "testing"

func intPtr(v int) *int { return &v }

func threePageState() State[string] {
	return State[string]{
		Pages: []Page[string]{
			{Items: []string{"a", "b"}, NextKey: intPtr(2)},
			{Items: []string{}, PrevKey: intPtr(1), NextKey: intPtr(3)},
			{Items: []string{"c"}, PrevKey: intPtr(2)},
		},
		Config: Config{PageSize: 2},
	}
}

func TestStateFirstItemSkipsEmptyPages(t *testing.T) {
	state := State[string]{
		Pages: []Page[string]{
			{Items: []string{}},
			{Items: []string{"x", "y"}},
		},
	}

	first, ok := state.FirstItem()
	if !ok {
		t.Fatal("Expected a first item")
	}
	if first != "x" {
		t.Errorf("Expected 'x', got '%s'", first)
	}
}

func TestStateLastItemSkipsEmptyPages(t *testing.T) {
	state := State[string]{
		Pages: []Page[string]{
			{Items: []string{"x"}},
			{Items: []string{}},
		},
	}

	last, ok := state.LastItem()
	if !ok {
		t.Fatal("Expected a last item")
	}
	if last != "x" {
		t.Errorf("Expected 'x', got '%s'", last)
	}
}

func TestStateFirstAndLastItemEmpty(t *testing.T) {
	state := State[string]{}

	if _, ok := state.FirstItem(); ok {
		t.Error("Expected no first item for empty state")
	}
	if _, ok := state.LastItem(); ok {
		t.Error("Expected no last item for empty state")
	}
}

func TestStateClosestToAnchor(t *testing.T) {
	state := threePageState()

	state.Anchor = intPtr(1)
	item, ok := state.ClosestToAnchor()
	if !ok {
		t.Fatal("Expected an anchored item")
	}
	if item != "b" {
		t.Errorf("Expected 'b', got '%s'", item)
	}
}

func TestStateClosestToAnchorClampsOutOfRange(t *testing.T) {
	state := threePageState()

	state.Anchor = intPtr(99)
	item, ok := state.ClosestToAnchor()
	if !ok {
		t.Fatal("Expected an anchored item")
	}
	if item != "c" {
		t.Errorf("Expected clamp to last item 'c', got '%s'", item)
	}

	state.Anchor = intPtr(-5)
	item, ok = state.ClosestToAnchor()
	if !ok {
		t.Fatal("Expected an anchored item")
	}
	if item != "a" {
		t.Errorf("Expected clamp to first item 'a', got '%s'", item)
	}
}

func TestStateClosestToAnchorWithoutAnchor(t *testing.T) {
	state := threePageState()

	if _, ok := state.ClosestToAnchor(); ok {
		t.Error("Expected no anchored item when anchor is unset")
	}
}

func TestStateClosestToAnchorEmptyStore(t *testing.T) {
	state := State[string]{Anchor: intPtr(0)}

	if _, ok := state.ClosestToAnchor(); ok {
		t.Error("Expected no anchored item when nothing is loaded")
	}
}
