package database

import (
	"context"
	"database/sql"
	"fmt"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so repositories can run
// standalone or inside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// StoryRepository handles database operations for cached stories.
type StoryRepository struct {
	db      dbtx
	tracker *Tracker
}

// NewStoryRepository creates a new story repository.
func NewStoryRepository(db *DB) *StoryRepository {
	return &StoryRepository{db: db, tracker: db.Tracker()}
}

// WithTx returns a copy of the repository bound to tx. Tx-bound repositories
// do not notify the tracker; the transaction owner notifies after commit.
func (r *StoryRepository) WithTx(tx *sql.Tx) *StoryRepository {
	return &StoryRepository{db: tx}
}

// InsertStories upserts stories by id, replacing existing rows on conflict.
func (r *StoryRepository) InsertStories(ctx context.Context, stories []Story) error {
	for _, s := range stories {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO stories (id, photo_url, created_at, name, description, lon, lat)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				photo_url = excluded.photo_url,
				created_at = excluded.created_at,
				name = excluded.name,
				description = excluded.description,
				lon = excluded.lon,
				lat = excluded.lat
		`, s.ID, s.PhotoURL, s.CreatedAt, s.Name, s.Description, nullFloat(s.Lon), nullFloat(s.Lat))
		if err != nil {
			return fmt.Errorf("failed to insert story %s: %w", s.ID, err)
		}
	}

	r.notify()
	return nil
}

// GetStoryByID returns the story or nil when absent.
func (r *StoryRepository) GetStoryByID(ctx context.Context, id string) (*Story, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, photo_url, created_at, name, description, lon, lat
		FROM stories
		WHERE id = ?
	`, id)

	story, err := scanStory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get story: %w", err)
	}
	return story, nil
}

// GetStoriesPage returns a window of stories in insertion order.
func (r *StoryRepository) GetStoriesPage(ctx context.Context, limit, offset int) ([]Story, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, photo_url, created_at, name, description, lon, lat
		FROM stories
		ORDER BY rowid
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get stories page: %w", err)
	}
	defer rows.Close()

	return collectStories(rows)
}

// GetStoriesWithLocation returns all stories that carry both coordinates,
// in insertion order. Used by the map view.
func (r *StoryRepository) GetStoriesWithLocation(ctx context.Context) ([]Story, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, photo_url, created_at, name, description, lon, lat
		FROM stories
		WHERE lon IS NOT NULL AND lat IS NOT NULL
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get stories with location: %w", err)
	}
	defer rows.Close()

	return collectStories(rows)
}

// GetStoryCount returns the total number of cached stories.
func (r *StoryRepository) GetStoryCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM stories").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get story count: %w", err)
	}
	return count, nil
}

// ClearStories deletes all cached stories.
func (r *StoryRepository) ClearStories(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM stories"); err != nil {
		return fmt.Errorf("failed to clear stories: %w", err)
	}

	r.notify()
	return nil
}

func (r *StoryRepository) notify() {
	if r.tracker != nil {
		r.tracker.Notify(TableStories)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStory(row rowScanner) (*Story, error) {
	var story Story
	var lon, lat sql.NullFloat64

	err := row.Scan(&story.ID, &story.PhotoURL, &story.CreatedAt,
		&story.Name, &story.Description, &lon, &lat)
	if err != nil {
		return nil, err
	}

	if lon.Valid {
		story.Lon = &lon.Float64
	}
	if lat.Valid {
		story.Lat = &lat.Float64
	}
	return &story, nil
}

func collectStories(rows *sql.Rows) ([]Story, error) {
	var stories []Story
	for rows.Next() {
		story, err := scanStory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan story row: %w", err)
		}
		stories = append(stories, *story)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating story rows: %w", err)
	}
	return stories, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
