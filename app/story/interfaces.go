package story

import (
	"context"

	"github.com/haqim007/story-app/app/prefs"
	"github.com/haqim007/story-app/app/remote"
)

// StoriesFetcher is the slice of the remote client the mediator depends on.
// It must not retry internally.
type StoriesFetcher interface {
	Stories(ctx context.Context, page, size int, withLocation bool) (*remote.StoriesResponse, error)
}

// RemoteAPI is the full remote surface the repository depends on.
type RemoteAPI interface {
	StoriesFetcher
	Register(ctx context.Context, name, email, password string) (*remote.BasicResponse, error)
	Login(ctx context.Context, email, password string) (*remote.LoginResponse, error)
	AddStory(ctx context.Context, story remote.AddStoryRequest) (*remote.BasicResponse, error)
}

// UserStore is the preference-store surface the repository depends on.
type UserStore interface {
	SaveUser(user prefs.User) error
	GetUser() (prefs.User, error)
	Logout() error
}
