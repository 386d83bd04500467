package server

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/haqim007/story-app/app/remote"
)

var (
	ErrEmailTaken         = errors.New("email is already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
)

type account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
}

// Store is the dev server's in-memory backing state. It exists to exercise
// the client against a live HTTP surface, not to survive restarts.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]account // keyed by email
	sessions map[string]string  // token -> account id
	stories  []remote.StoryResponse
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[string]account),
		sessions: make(map[string]string),
	}
}

// CreateAccount registers a new user with a bcrypt-hashed password.
func (s *Store) CreateAccount(name, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[email]; exists {
		return ErrEmailTaken
	}
	s.accounts[email] = account{
		ID:           "user-" + uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	return nil
}

// Authenticate checks credentials and mints a session token.
func (s *Store) Authenticate(email, password string) (remote.LoginResult, error) {
	s.mu.RLock()
	acc, exists := s.accounts[email]
	s.mu.RUnlock()

	if !exists {
		return remote.LoginResult{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(password)); err != nil {
		return remote.LoginResult{}, ErrInvalidCredentials
	}

	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return remote.LoginResult{}, err
	}
	token := hex.EncodeToString(buf)

	s.mu.Lock()
	s.sessions[token] = acc.ID
	s.mu.Unlock()

	return remote.LoginResult{UserID: acc.ID, Name: acc.Name, Token: token}, nil
}

// Authorize resolves a raw session token to an account id.
func (s *Store) Authorize(token string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.sessions[token]
	if !ok {
		return "", ErrInvalidToken
	}
	return id, nil
}

// AddStory appends a story authored by the given account, newest first.
func (s *Store) AddStory(authorName, description string, lon, lat *float64) remote.StoryResponse {
	story := remote.StoryResponse{
		ID:          "story-" + uuid.NewString(),
		PhotoURL:    "https://stories.example.com/photos/" + uuid.NewString() + ".jpg",
		CreatedAt:   time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		Name:        authorName,
		Description: description,
		Lon:         lon,
		Lat:         lat,
	}

	s.mu.Lock()
	s.stories = append([]remote.StoryResponse{story}, s.stories...)
	s.mu.Unlock()

	return story
}

// AccountName returns the display name for an account id.
func (s *Store) AccountName(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, acc := range s.accounts {
		if acc.ID == id {
			return acc.Name
		}
	}
	return ""
}

// StoriesPage returns one page of stories, newest first. withLocation
// restricts the page to stories carrying coordinates.
func (s *Store) StoriesPage(page, size int, withLocation bool) []remote.StoryResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	source := s.stories
	if withLocation {
		source = nil
		for _, story := range s.stories {
			if story.Lon != nil && story.Lat != nil {
				source = append(source, story)
			}
		}
	}

	offset := (page - 1) * size
	if offset >= len(source) {
		return nil
	}
	end := offset + size
	if end > len(source) {
		end = len(source)
	}

	out := make([]remote.StoryResponse, end-offset)
	copy(out, source[offset:end])
	return out
}

// Seed inserts stories directly, for tests and demo data.
func (s *Store) Seed(stories ...remote.StoryResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stories = append(s.stories, stories...)
}
