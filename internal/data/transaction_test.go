package data

import (
	"context"
	"errors"
	"testing"

	"Orion_Tube/internal/model"
	"Orion_Tube/internal/repository"
	"Orion_Tube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUoW(db *gorm.DB) UnitOfWork {
	return NewUnitOfWork(db, Repositories{
		Video:        repository.NewVideoRepository(db, nil),
		Comment:      repository.NewCommentRepository(db),
		Reaction:     repository.NewReactionRepository(db),
		Playlist:     repository.NewPlaylistRepository(db),
		WebhookEvent: repository.NewWebhookEventRepository(db),
	})
}

func TestExecute_CommitsOnSuccess(t *testing.T) {
	db := testutil.NewDB(t)
	u := testutil.CreateUser(t, db, "alice")
	ctx := context.Background()

	err := newUoW(db).Execute(ctx, func(repos *TransactionalRepositories) error {
		if err := repos.VideoRepo.Create(ctx, &model.Video{UserID: u.ID, Title: "t", Visibility: model.VisibilityPublic}); err != nil {
			return err
		}
		return repos.WebhookEventRepo.Record(ctx, &model.MuxWebhookEvent{EventID: "e1", Type: "x"})
	})
	require.NoError(t, err)

	var n int64
	db.Model(&model.Video{}).Count(&n)
	assert.Equal(t, int64(1), n)
}

func TestExecute_RollsBackOnError(t *testing.T) {
	db := testutil.NewDB(t)
	u := testutil.CreateUser(t, db, "alice")
	ctx := context.Background()
	boom := errors.New("boom")

	err := newUoW(db).Execute(ctx, func(repos *TransactionalRepositories) error {
		if err := repos.VideoRepo.Create(ctx, &model.Video{UserID: u.ID, Title: "t", Visibility: model.VisibilityPublic}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int64
	db.Model(&model.Video{}).Count(&n)
	assert.Zero(t, n)
}
