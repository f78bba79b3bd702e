package service

import (
	"context"
	"testing"
	"time"

	"Orion_Tube/internal/data"
	"Orion_Tube/internal/model"
	"Orion_Tube/internal/pagination"
	"Orion_Tube/internal/repository"
	"Orion_Tube/internal/testutil"
	"Orion_Tube/pkg/mux"
	"Orion_Tube/pkg/storage"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type mockMux struct{ mock.Mock }

func (m *mockMux) CreateUpload(ctx context.Context, passthrough string) (*mux.Upload, error) {
	args := m.Called(ctx, passthrough)
	if u, ok := args.Get(0).(*mux.Upload); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMux) DeleteAsset(ctx context.Context, assetID string) error {
	return m.Called(ctx, assetID).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(queue string, msg any) error {
	return m.Called(queue, msg).Error(0)
}

type fakeTokens struct{}

func (fakeTokens) GenerateToken(userID uint64, username string) (string, error) {
	return "token-" + username, nil
}

// env 一个测试用的完整服务层，底下是内存SQLite
type env struct {
	db        *gorm.DB
	store     *storage.Memory
	mux       *mockMux
	publisher *mockPublisher

	videoRepo repository.VideoRepository

	videos        VideoService
	studio        StudioService
	comments      CommentService
	subscriptions SubscriptionService
	users         UserService
	playlists     PlaylistService
	webhooks      *webhookService
	cleanup       CleanupService
}

const testSecret = "whsec"

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)

	videoRepo := repository.NewVideoRepository(db, nil)
	commentRepo := repository.NewCommentRepository(db)
	reactionRepo := repository.NewReactionRepository(db)
	playlistRepo := repository.NewPlaylistRepository(db)
	webhookRepo := repository.NewWebhookEventRepository(db)
	viewRepo := repository.NewViewRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	uow := data.NewUnitOfWork(db, data.Repositories{
		Video:        videoRepo,
		Comment:      commentRepo,
		Reaction:     reactionRepo,
		Playlist:     playlistRepo,
		WebhookEvent: webhookRepo,
	})

	e := &env{
		db:        db,
		store:     storage.NewMemory(""),
		mux:       &mockMux{},
		publisher: &mockPublisher{},
		videoRepo: videoRepo,
	}
	e.videos = NewVideoService(videoRepo, viewRepo, reactionRepo, subRepo, uow)
	e.studio = NewStudioService(videoRepo, categoryRepo, viewRepo, reactionRepo, e.mux, e.store, e.publisher)
	e.comments = NewCommentService(commentRepo, reactionRepo, e.videos, uow)
	e.subscriptions = NewSubscriptionService(subRepo, userRepo)
	e.users = NewUserService(userRepo, videoRepo, subRepo, fakeTokens{})
	e.playlists = NewPlaylistService(playlistRepo, videoRepo, reactionRepo, viewRepo, uow)
	e.webhooks = NewWebhookService(uow, videoRepo, e.publisher, testSecret).(*webhookService)
	e.cleanup = NewCleanupService(e.store, e.mux)
	return e
}

func firstPage() pagination.Request {
	return pagination.Request{Limit: pagination.DefaultLimit}
}

func nextPage(t *testing.T, limit int, cursor *string) pagination.Request {
	t.Helper()
	req, err := pagination.ParseRequest("", *cursor)
	require.NoError(t, err)
	req.Limit = limit
	return req
}

func publicVideo(t *testing.T, e *env, userID uint64, title string, at time.Time) *model.Video {
	return testutil.CreateVideo(t, e.db, userID, title, model.VisibilityPublic, at)
}
