package story

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/haqim007/story-app/app/database"
	"github.com/haqim007/story-app/app/prefs"
	"github.com/haqim007/story-app/app/remote"
	"github.com/haqim007/story-app/app/resource"
)

type fakeRemote struct {
	fakeFetcher
	registerResp *remote.BasicResponse
	registerErr  error
	loginResp    *remote.LoginResponse
	loginErr     error
	addResp      *remote.BasicResponse
	addErr       error
}

func (f *fakeRemote) Register(ctx context.Context, name, email, password string) (*remote.BasicResponse, error) {
	return f.registerResp, f.registerErr
}

func (f *fakeRemote) Login(ctx context.Context, email, password string) (*remote.LoginResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeRemote) AddStory(ctx context.Context, story remote.AddStoryRequest) (*remote.BasicResponse, error) {
	return f.addResp, f.addErr
}

func openTestPrefs(t *testing.T) *prefs.Store {
	t.Helper()

	store, err := prefs.Open(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func collectStates[T any](t *testing.T, ch <-chan resource.Resource[T]) []resource.Resource[T] {
	t.Helper()

	var states []resource.Resource[T]
	timeout := time.After(2 * time.Second)
	for {
		select {
		case state, ok := <-ch:
			if !ok {
				return states
			}
			states = append(states, state)
		case <-timeout:
			t.Fatal("timed out waiting for resource stream")
		}
	}
}

func TestRepositoryRegister(t *testing.T) {
	repo := NewRepository(
		&fakeRemote{registerResp: &remote.BasicResponse{Message: "User created"}},
		openTestPrefs(t), newTestLocal(t), 0)

	states := collectStates(t, repo.Register(context.Background(), "Haqim", "haqim@example.com", "secret123"))

	if len(states) != 2 {
		t.Fatalf("Expected 2 states, got %d", len(states))
	}
	if states[0].Status != resource.StatusLoading {
		t.Errorf("Expected loading first, got %s", states[0].Status)
	}
	if states[1].Status != resource.StatusSuccess {
		t.Errorf("Expected success, got %s", states[1].Status)
	}
	if states[1].Data.Message != "User created" {
		t.Errorf("Expected 'User created', got '%s'", states[1].Data.Message)
	}
}

func TestRepositoryLoginPersistsSession(t *testing.T) {
	users := openTestPrefs(t)
	repo := NewRepository(&fakeRemote{loginResp: &remote.LoginResponse{
		Message:     "success",
		LoginResult: remote.LoginResult{UserID: "user-1", Name: "Haqim", Token: "abc"},
	}}, users, newTestLocal(t), 0)

	states := collectStates(t, repo.Login(context.Background(), "haqim@example.com", "secret123"))

	last := states[len(states)-1]
	if last.Status != resource.StatusSuccess {
		t.Fatalf("Expected success, got %s", last.Status)
	}
	if last.Data.Token != "Bearer abc" {
		t.Errorf("Expected bearer token, got '%s'", last.Data.Token)
	}

	saved, err := users.GetUser()
	if err != nil {
		t.Fatal(err)
	}
	if !saved.HasLogin {
		t.Error("Expected session to be persisted")
	}
	if saved.Token != "Bearer abc" {
		t.Errorf("Expected stored token 'Bearer abc', got '%s'", saved.Token)
	}
	if saved.Email != "haqim@example.com" {
		t.Errorf("Expected stored email, got '%s'", saved.Email)
	}
}

func TestRepositoryLoginFailureDoesNotPersist(t *testing.T) {
	users := openTestPrefs(t)
	repo := NewRepository(&fakeRemote{loginErr: errors.New("invalid password")},
		users, newTestLocal(t), 0)

	states := collectStates(t, repo.Login(context.Background(), "haqim@example.com", "wrong"))

	last := states[len(states)-1]
	if last.Status != resource.StatusError {
		t.Fatalf("Expected error state, got %s", last.Status)
	}
	if last.Message != "invalid password" {
		t.Errorf("Expected 'invalid password', got '%s'", last.Message)
	}

	saved, err := users.GetUser()
	if err != nil {
		t.Fatal(err)
	}
	if saved.HasLogin {
		t.Error("Expected no session after failed login")
	}
}

func TestRepositoryStoriesWithLocationUnauthorizedLogsOut(t *testing.T) {
	users := openTestPrefs(t)
	if err := users.SaveUser(prefs.User{HasLogin: true, Token: "Bearer stale"}); err != nil {
		t.Fatal(err)
	}

	repo := NewRepository(&fakeRemote{
		fakeFetcher: fakeFetcher{err: fmt.Errorf("token expired: %w", remote.ErrUnauthorized)},
	}, users, newTestLocal(t), 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	states := collectStates(t, repo.StoriesWithLocation(ctx, 1, 30))

	last := states[len(states)-1]
	if last.Status != resource.StatusError {
		t.Fatalf("Expected error state, got %s", last.Status)
	}

	saved, err := users.GetUser()
	if err != nil {
		t.Fatal(err)
	}
	if saved.HasLogin {
		t.Error("Expected 401 to clear the session")
	}
	if saved.Token != "" {
		t.Errorf("Expected token cleared, got '%s'", saved.Token)
	}
}

func TestRepositoryStoriesWithLocationSurfacesQueryFailure(t *testing.T) {
	db, err := database.NewConnection(filepath.Join(t.TempDir(), "stories.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := database.RunMigrations(db); err != nil {
		t.Fatal(err)
	}
	repo := NewRepository(&fakeRemote{}, openTestPrefs(t), NewLocalDataSource(db), 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := repo.StoriesWithLocation(ctx, 1, 30)

	timeout := time.After(2 * time.Second)
	for sawSuccess := false; !sawSuccess; {
		select {
		case state := <-stream:
			sawSuccess = state.Status == resource.StatusSuccess
		case <-timeout:
			t.Fatal("timed out waiting for the first success state")
		}
	}

	db.Close()
	db.Tracker().Notify(database.TableStories)

	select {
	case state, ok := <-stream:
		if !ok {
			t.Fatal("Stream closed without a terminal error state")
		}
		if state.Status != resource.StatusError {
			t.Fatalf("Expected error state after the database closed, got %s", state.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected an error state after the database closed")
	}

	select {
	case _, ok := <-stream:
		if ok {
			t.Error("Expected stream to close after the terminal error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Stream did not close after the terminal error")
	}
}

func TestRepositoryStoriesWithLocationFollowsStore(t *testing.T) {
	local := newTestLocal(t)
	lon, lat := 110.4, -7.8
	repo := NewRepository(&fakeRemote{
		fakeFetcher: fakeFetcher{responses: map[int]*remote.StoriesResponse{
			1: {ListStory: []remote.StoryResponse{{
				ID: "s1", PhotoURL: "p", CreatedAt: "2023-04-10T08:15:00.000Z",
				Name: "author", Description: "d", Lon: &lon, Lat: &lat,
			}}},
		}},
	}, openTestPrefs(t), local, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := repo.StoriesWithLocation(ctx, 1, 30)

	timeout := time.After(2 * time.Second)
	var first resource.Resource[[]Story]
	for {
		select {
		case state := <-stream:
			if state.Status == resource.StatusSuccess {
				first = state
			}
		case <-timeout:
			t.Fatal("timed out waiting for success state")
		}
		if first.Status == resource.StatusSuccess {
			break
		}
	}

	if len(first.Data) != 1 {
		t.Fatalf("Expected 1 located story, got %d", len(first.Data))
	}
	if first.Data[0].ID != "s1" {
		t.Errorf("Expected 's1', got '%s'", first.Data[0].ID)
	}
}

func TestRepositoryAddStory(t *testing.T) {
	repo := NewRepository(&fakeRemote{addResp: &remote.BasicResponse{Message: "Story created"}},
		openTestPrefs(t), newTestLocal(t), 0)

	states := collectStates(t, repo.AddStory(context.Background(), remote.AddStoryRequest{
		Description: "my story",
	}))

	last := states[len(states)-1]
	if last.Status != resource.StatusSuccess {
		t.Fatalf("Expected success, got %s", last.Status)
	}
	if last.Data.Message != "Story created" {
		t.Errorf("Expected 'Story created', got '%s'", last.Data.Message)
	}
}

func TestRepositoryPagerLoadsFeed(t *testing.T) {
	repo := NewRepository(&fakeRemote{
		fakeFetcher: fakeFetcher{responses: map[int]*remote.StoriesResponse{
			1: {ListStory: storyResponses(3, "s")},
		}},
	}, openTestPrefs(t), newTestLocal(t), 0)

	result, err := repo.Pager().Refresh(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Items) != 3 {
		t.Fatalf("Expected 3 stories in the feed, got %d", len(result.Items))
	}
	if result.Items[0].ID != "s-0" {
		t.Errorf("Expected first story 's-0', got '%s'", result.Items[0].ID)
	}
}
