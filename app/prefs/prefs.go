// Package prefs persists the logged-in user record in a small bbolt file,
// standing in for the platform preference store.
package prefs

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	userBucket = []byte("user")
	userKey    = []byte("current")
)

// User is the persisted user record.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	HasLogin bool   `json:"hasLogin"`
	Token    string `json:"token"`
}

// Store is a bbolt-backed user preference store.
type Store struct {
	db *bolt.DB
}

// Open opens (and creates if missing) the preference file at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening preference store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(userBucket)
		return createErr
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveUser replaces the stored user record.
func (s *Store) SaveUser(user User) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(user)
		if err != nil {
			return err
		}
		return tx.Bucket(userBucket).Put(userKey, data)
	})
}

// GetUser returns the stored user record, or a zero record when none was
// ever saved.
func (s *Store) GetUser() (User, error) {
	var user User
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(userBucket).Get(userKey)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &user)
	})
	return user, err
}

// Logout clears the session: the login flag, credentials and token are
// wiped, only the record itself remains.
func (s *Store) Logout() error {
	user, err := s.GetUser()
	if err != nil {
		return err
	}
	return s.SaveUser(User{Name: user.Name, Email: user.Email})
}

// Token returns the stored bearer token. Satisfies the remote client's
// token source.
func (s *Store) Token() (string, error) {
	user, err := s.GetUser()
	if err != nil {
		return "", err
	}
	return user.Token, nil
}
