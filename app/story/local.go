package story

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/haqim007/story-app/app/database"
	"github.com/haqim007/story-app/app/resource"
)

// LocalDataSource bundles the story and remote-key repositories behind the
// operations the mediator and repository need, including the transactional
// insert used on every successful page fetch.
type LocalDataSource struct {
	db      *database.DB
	stories *database.StoryRepository
	keys    *database.RemoteKeyRepository
}

func NewLocalDataSource(db *database.DB) *LocalDataSource {
	return &LocalDataSource{
		db:      db,
		stories: database.NewStoryRepository(db),
		keys:    database.NewRemoteKeyRepository(db),
	}
}

// InsertKeysAndStories persists one fetched page atomically. On refresh both
// tables are cleared first, inside the same transaction, so readers never see
// stories without their keys or vice versa.
func (l *LocalDataSource) InsertKeysAndStories(ctx context.Context, keys []database.RemoteKey, stories []database.Story, refresh bool) error {
	err := l.db.WithTx(ctx, func(tx *sql.Tx) error {
		storyRepo := l.stories.WithTx(tx)
		keyRepo := l.keys.WithTx(tx)

		if refresh {
			if err := keyRepo.ClearRemoteKeys(ctx); err != nil {
				return err
			}
			if err := storyRepo.ClearStories(ctx); err != nil {
				return err
			}
		}
		if err := keyRepo.InsertRemoteKeys(ctx, keys); err != nil {
			return err
		}
		return storyRepo.InsertStories(ctx, stories)
	})
	if err != nil {
		return err
	}

	l.db.Tracker().Notify(database.TableStories, database.TableRemoteKeys)
	return nil
}

// InsertStories upserts stories outside the pagination flow (map view,
// add-story success path).
func (l *LocalDataSource) InsertStories(ctx context.Context, stories []database.Story) error {
	return l.stories.InsertStories(ctx, stories)
}

func (l *LocalDataSource) StoryByID(ctx context.Context, id string) (*database.Story, error) {
	return l.stories.GetStoryByID(ctx, id)
}

func (l *LocalDataSource) RemoteKeyByID(ctx context.Context, id string) (*database.RemoteKey, error) {
	return l.keys.GetRemoteKeyByID(ctx, id)
}

func (l *LocalDataSource) StoriesPage(ctx context.Context, limit, offset int) ([]database.Story, error) {
	return l.stories.GetStoriesPage(ctx, limit, offset)
}

func (l *LocalDataSource) StoriesWithLocation(ctx context.Context) ([]database.Story, error) {
	return l.stories.GetStoriesWithLocation(ctx)
}

func (l *LocalDataSource) StoryCount(ctx context.Context) (int, error) {
	return l.stories.GetStoryCount(ctx)
}

func (l *LocalDataSource) RemoteKeyCount(ctx context.Context) (int, error) {
	return l.keys.GetRemoteKeyCount(ctx)
}

// ObserveStoriesWithLocation emits the located stories immediately and again
// after every committed write to the stories table, until ctx is cancelled.
// A failing query ends the stream with one error emission so consumers never
// see it vanish silently.
func (l *LocalDataSource) ObserveStoriesWithLocation(ctx context.Context) <-chan resource.Update[[]database.Story] {
	out := make(chan resource.Update[[]database.Story])

	changes, cancel := l.db.Tracker().Subscribe(database.TableStories)

	go func() {
		defer close(out)
		defer cancel()

		for {
			stories, err := l.stories.GetStoriesWithLocation(ctx)
			if err != nil {
				slog.Error("Observed query failed", "table", database.TableStories, "error", err)
				select {
				case out <- resource.Update[[]database.Story]{Err: err}:
				case <-ctx.Done():
				}
				return
			}

			select {
			case out <- resource.Update[[]database.Story]{Value: stories}:
			case <-ctx.Done():
				return
			}

			select {
			case <-changes:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
