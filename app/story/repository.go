package story

import (
	"context"
	"errors"
	"log/slog"

	"github.com/haqim007/story-app/app/database"
	"github.com/haqim007/story-app/app/paging"
	"github.com/haqim007/story-app/app/prefs"
	"github.com/haqim007/story-app/app/remote"
	"github.com/haqim007/story-app/app/resource"
)

// DefaultPageSize matches the page size the feed screen requests.
const DefaultPageSize = 30

// Repository implements the story use cases on top of the remote client, the
// local cache, and the user preference store. Every screen-level operation is
// a network-bound resource stream; the feed itself is driven by the pager.
type Repository struct {
	remote RemoteAPI
	users  UserStore
	local  *LocalDataSource
	pager  *paging.Pager[Story]
}

// NewRepository wires the pager from the local cache and remote client.
// pageSize <= 0 falls back to DefaultPageSize.
func NewRepository(remoteAPI RemoteAPI, users UserStore, local *LocalDataSource, pageSize int) *Repository {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	cfg := paging.Config{PageSize: pageSize}
	pager := paging.NewPager[Story](cfg, NewPagingSource(local), NewMediator(local, remoteAPI))

	return &Repository{
		remote: remoteAPI,
		users:  users,
		local:  local,
		pager:  pager,
	}
}

// Pager exposes the paginated feed. Consumers issue Refresh/Prepend/Append
// events and render the returned windows.
func (r *Repository) Pager() *paging.Pager[Story] {
	return r.pager
}

// Register creates a new account. Pure pass-through: nothing is persisted.
func (r *Repository) Register(ctx context.Context, name, email, password string) <-chan resource.Resource[BasicMessage] {
	nb := &resource.NetworkBound[*remote.BasicResponse, BasicMessage]{
		Fetch: func(ctx context.Context) (*remote.BasicResponse, error) {
			return r.remote.Register(ctx, name, email, password)
		},
		Load: func(ctx context.Context, data *remote.BasicResponse) (<-chan resource.Update[BasicMessage], error) {
			return oneShot(messageFromResponse(*data)), nil
		},
	}
	return nb.Run(ctx)
}

// Login authenticates and persists the session in the preference store
// before the result is delivered.
func (r *Repository) Login(ctx context.Context, email, password string) <-chan resource.Resource[Login] {
	nb := &resource.NetworkBound[*remote.LoginResponse, Login]{
		Fetch: func(ctx context.Context) (*remote.LoginResponse, error) {
			return r.remote.Login(ctx, email, password)
		},
		Persist: func(ctx context.Context, data *remote.LoginResponse) error {
			return r.users.SaveUser(prefs.User{
				ID:       data.LoginResult.UserID,
				Name:     data.LoginResult.Name,
				Email:    email,
				Password: password,
				HasLogin: true,
				Token:    "Bearer " + data.LoginResult.Token,
			})
		},
		Load: func(ctx context.Context, data *remote.LoginResponse) (<-chan resource.Update[Login], error) {
			return oneShot(loginFromResponse(*data)), nil
		},
	}
	return nb.Run(ctx)
}

// GetUser returns the locally stored account.
func (r *Repository) GetUser() (User, error) {
	user, err := r.users.GetUser()
	if err != nil {
		return User{}, err
	}
	return userFromPrefs(user), nil
}

// Logout clears the stored session.
func (r *Repository) Logout() error {
	return r.users.Logout()
}

// StoriesWithLocation fetches one remote page of located stories, persists
// it, and then follows the local located-stories query, re-emitting on every
// subsequent write. A 401 from the service invalidates the stored session.
func (r *Repository) StoriesWithLocation(ctx context.Context, page, size int) <-chan resource.Resource[[]Story] {
	nb := &resource.NetworkBound[*remote.StoriesResponse, []Story]{
		Fetch: func(ctx context.Context) (*remote.StoriesResponse, error) {
			return r.remote.Stories(ctx, page, size, true)
		},
		Persist: func(ctx context.Context, data *remote.StoriesResponse) error {
			return r.local.InsertStories(ctx, entitiesFromResponses(data.ListStory))
		},
		Load: func(ctx context.Context, data *remote.StoriesResponse) (<-chan resource.Update[[]Story], error) {
			return mapStream(ctx, r.local.ObserveStoriesWithLocation(ctx), storiesFromEntities), nil
		},
		OnFetchFailed: func(err error) {
			if errors.Is(err, remote.ErrUnauthorized) {
				slog.Warn("Session rejected by service, logging out")
				if logoutErr := r.users.Logout(); logoutErr != nil {
					slog.Error("Failed to clear session", "error", logoutErr)
				}
			}
		},
	}
	return nb.Run(ctx)
}

// AddStory uploads a new story. The feed picks it up on the next refresh.
func (r *Repository) AddStory(ctx context.Context, story remote.AddStoryRequest) <-chan resource.Resource[BasicMessage] {
	nb := &resource.NetworkBound[*remote.BasicResponse, BasicMessage]{
		Fetch: func(ctx context.Context) (*remote.BasicResponse, error) {
			return r.remote.AddStory(ctx, story)
		},
		Load: func(ctx context.Context, data *remote.BasicResponse) (<-chan resource.Update[BasicMessage], error) {
			return oneShot(messageFromResponse(*data)), nil
		},
	}
	return nb.Run(ctx)
}

func oneShot[T any](v T) <-chan resource.Update[T] {
	ch := make(chan resource.Update[T], 1)
	ch <- resource.Update[T]{Value: v}
	close(ch)
	return ch
}

// mapStream converts the entity stream to the domain stream, passing query
// errors through untouched.
func mapStream(ctx context.Context, in <-chan resource.Update[[]database.Story], fn func([]database.Story) []Story) <-chan resource.Update[[]Story] {
	out := make(chan resource.Update[[]Story])
	go func() {
		defer close(out)
		for update := range in {
			mapped := resource.Update[[]Story]{Err: update.Err}
			if update.Err == nil {
				mapped.Value = fn(update.Value)
			}
			select {
			case out <- mapped:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
