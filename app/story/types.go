package story

import (
	"github.com/haqim007/story-app/app/database"
	"github.com/haqim007/story-app/app/prefs"
	"github.com/haqim007/story-app/app/remote"
	"github.com/haqim007/story-app/app/timeago"
)

// Story is the domain story shown in the feed. CreatedAt carries the
// relative "time ago" rendering of the server timestamp.
type Story struct {
	ID          string
	PhotoURL    string
	CreatedAt   string
	Name        string
	Description string
	Lon         *float64
	Lat         *float64
}

// User is the locally known account.
type User struct {
	ID       string
	Name     string
	Email    string
	HasLogin bool
	Token    string
}

// Login is the outcome of a successful authentication.
type Login struct {
	UserID  string
	Name    string
	Token   string
	Error   bool
	Message string
}

// BasicMessage is the generic status result of write operations.
type BasicMessage struct {
	Error   bool
	Message string
}

func storyFromEntity(e database.Story) Story {
	return Story{
		ID:          e.ID,
		PhotoURL:    e.PhotoURL,
		CreatedAt:   timeago.Format(e.CreatedAt),
		Name:        e.Name,
		Description: e.Description,
		Lon:         e.Lon,
		Lat:         e.Lat,
	}
}

func storiesFromEntities(entities []database.Story) []Story {
	stories := make([]Story, 0, len(entities))
	for _, e := range entities {
		stories = append(stories, storyFromEntity(e))
	}
	return stories
}

func entityFromResponse(r remote.StoryResponse) database.Story {
	return database.Story{
		ID:          r.ID,
		PhotoURL:    r.PhotoURL,
		CreatedAt:   r.CreatedAt,
		Name:        r.Name,
		Description: r.Description,
		Lon:         r.Lon,
		Lat:         r.Lat,
	}
}

func entitiesFromResponses(responses []remote.StoryResponse) []database.Story {
	entities := make([]database.Story, 0, len(responses))
	for _, r := range responses {
		entities = append(entities, entityFromResponse(r))
	}
	return entities
}

func userFromPrefs(u prefs.User) User {
	return User{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		HasLogin: u.HasLogin,
		Token:    u.Token,
	}
}

func loginFromResponse(r remote.LoginResponse) Login {
	return Login{
		UserID:  r.LoginResult.UserID,
		Name:    r.LoginResult.Name,
		Token:   "Bearer " + r.LoginResult.Token,
		Error:   r.Error,
		Message: r.Message,
	}
}

func messageFromResponse(r remote.BasicResponse) BasicMessage {
	return BasicMessage{Error: r.Error, Message: r.Message}
}
