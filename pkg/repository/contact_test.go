package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/vatracker/pkg/domain/interfaces"
	"github.com/secmon-lab/vatracker/pkg/domain/model"
	"github.com/secmon-lab/vatracker/pkg/domain/types"
)

func runContactRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	newContact := func(userID, name string, createdAt time.Time) *model.Contact {
		return &model.Contact{
			UserID:      userID,
			Name:        name,
			LinkedInURL: "https://www.linkedin.com/in/" + name,
			Notes:       "met at conference",
			Priority:    types.PriorityHigh,
			ImageURLs:   []string{"https://example.com/a.jpg"},
			DateAdded:   "2024-03-15",
			CreatedAt:   createdAt,
		}
	}

	t.Run("Create and Get", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := uniqueID("va")

		created, err := repo.Contact().Create(ctx, newContact(userID, "alice", time.Now().UTC()))
		gt.NoError(t, err).Required()
		gt.String(t, created.ID.String()).NotEqual("")

		got, err := repo.Contact().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Name).Equal("alice")
		gt.Value(t, got.Priority).Equal(types.PriorityHigh)
		gt.Array(t, got.ImageURLs).Length(1)
		gt.Value(t, got.DateAdded).Equal(types.ActivityDate("2024-03-15"))
	})

	t.Run("DeleteOwned requires owner match", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := uniqueID("va")

		created, err := repo.Contact().Create(ctx, newContact(userID, "bob", time.Now().UTC()))
		gt.NoError(t, err).Required()

		_, err = repo.Contact().DeleteOwned(ctx, created.ID, uniqueID("intruder"))
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()

		// still there
		_, err = repo.Contact().Get(ctx, created.ID)
		gt.NoError(t, err).Required()

		deleted, err := repo.Contact().DeleteOwned(ctx, created.ID, userID)
		gt.NoError(t, err).Required()
		gt.Array(t, deleted.ImageURLs).Length(1)

		_, err = repo.Contact().Get(ctx, created.ID)
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})

	t.Run("ListByUsers newest first across owners", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		va1 := uniqueID("va1")
		va2 := uniqueID("va2")
		base := time.Now().UTC().Truncate(time.Millisecond)

		_, err := repo.Contact().Create(ctx, newContact(va1, "old", base.Add(-2*time.Hour)))
		gt.NoError(t, err).Required()
		_, err = repo.Contact().Create(ctx, newContact(va2, "new", base))
		gt.NoError(t, err).Required()
		_, err = repo.Contact().Create(ctx, newContact(uniqueID("stranger"), "hidden", base))
		gt.NoError(t, err).Required()

		contacts, err := repo.Contact().ListByUsers(ctx, []string{va1, va2})
		gt.NoError(t, err).Required()
		gt.Array(t, contacts).Length(2)
		gt.Value(t, contacts[0].Name).Equal("new")
		gt.Value(t, contacts[1].Name).Equal("old")

		empty, err := repo.Contact().ListByUsers(ctx, nil)
		gt.NoError(t, err).Required()
		gt.Array(t, empty).Length(0)
	})
}

func TestMemoryContactRepository(t *testing.T) {
	runContactRepositoryTest(t, newMemoryRepository)
}

func TestFirestoreContactRepository(t *testing.T) {
	runContactRepositoryTest(t, newFirestoreRepository)
}
