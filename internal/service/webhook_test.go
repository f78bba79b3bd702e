package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"Orion_Tube/internal/model"
	"Orion_Tube/internal/testutil"
	"Orion_Tube/pkg/mux"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var webhookNow = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

func deliver(t *testing.T, e *env, body string) error {
	t.Helper()
	e.webhooks.now = func() time.Time { return webhookNow }
	sig := mux.SignatureFor([]byte(body), testSecret, webhookNow)
	return e.webhooks.Handle(context.Background(), []byte(body), sig)
}

func uploadingVideo(t *testing.T, e *env, userID uint64, uploadID string) *model.Video {
	t.Helper()
	v := testutil.CreateVideo(t, e.db, userID, "up", model.VisibilityPrivate, t0)
	require.NoError(t, e.db.Model(v).Update("mux_upload_id", uploadID).Error)
	return v
}

func reload(t *testing.T, e *env, id uint64) *model.Video {
	t.Helper()
	var v model.Video
	require.NoError(t, e.db.First(&v, id).Error)
	return &v
}

func TestWebhook_BadSignatureTouchesNothing(t *testing.T) {
	e := newEnv(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	v := uploadingVideo(t, e, alice.ID, "up-1")
	body := `{"id":"evt-1","type":"video.asset.created","data":{"id":"asset-1","upload_id":"up-1","status":"preparing"}}`

	err := e.webhooks.Handle(context.Background(), []byte(body), "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, ErrUnauthorized)
	err = e.webhooks.Handle(context.Background(), []byte(body), "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	assert.Nil(t, reload(t, e, v.ID).MuxAssetID)
	var n int64
	e.db.Model(&model.MuxWebhookEvent{}).Count(&n)
	assert.Zero(t, n)
}

func TestWebhook_CreatedThenReady(t *testing.T) {
	e := newEnv(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	v := uploadingVideo(t, e, alice.ID, "up-1")

	require.NoError(t, deliver(t, e, `{"id":"evt-1","type":"video.asset.created","data":{"id":"asset-1","upload_id":"up-1","status":"preparing"}}`))
	got := reload(t, e, v.ID)
	require.NotNil(t, got.MuxAssetID)
	assert.Equal(t, "asset-1", *got.MuxAssetID)
	assert.Equal(t, "preparing", *got.MuxStatus)

	require.NoError(t, deliver(t, e, `{"id":"evt-2","type":"video.asset.ready","data":{"id":"asset-1","upload_id":"up-1","status":"ready","duration":12.3456,"playback_ids":[{"id":"pb-1","policy":"public"}]}}`))
	got = reload(t, e, v.ID)
	assert.Equal(t, "ready", *got.MuxStatus)
	assert.Equal(t, "pb-1", *got.MuxPlaybackID)
	assert.Equal(t, "https://image.mux.com/pb-1/thumbnail.jpg", *got.ThumbnailURL)
	assert.Equal(t, "https://image.mux.com/pb-1/animated.gif", *got.PreviewURL)
	assert.Equal(t, int64(12346), got.Duration)
}

func TestWebhook_ReadyKeepsCustomThumbnail(t *testing.T) {
	e := newEnv(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	v := uploadingVideo(t, e, alice.ID, "up-1")
	require.NoError(t, e.db.Model(v).Updates(map[string]any{
		"thumbnail_url": "https://cdn/custom.png",
		"thumbnail_key": "thumbnails/1/custom.png",
	}).Error)

	require.NoError(t, deliver(t, e, `{"id":"evt-1","type":"video.asset.ready","data":{"id":"asset-1","upload_id":"up-1","status":"ready","playback_ids":[{"id":"pb-1"}]}}`))
	assert.Equal(t, "https://cdn/custom.png", *reload(t, e, v.ID).ThumbnailURL)
}

func TestWebhook_MissingFields(t *testing.T) {
	e := newEnv(t)

	err := deliver(t, e, `{"id":"evt-1","type":"video.asset.created","data":{"id":"asset-1"}}`)
	assert.ErrorIs(t, err, ErrBadRequest)

	err = deliver(t, e, `{"id":"evt-2","type":"video.asset.ready","data":{"id":"asset-1","upload_id":"up-1"}}`)
	assert.ErrorIs(t, err, ErrBadRequest)

	err = deliver(t, e, `not json`)
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestWebhook_UnknownTypeIgnored(t *testing.T) {
	e := newEnv(t)
	assert.NoError(t, deliver(t, e, `{"id":"evt-1","type":"video.upload.cancelled","data":{}}`))
}

func TestWebhook_ReplayNotApplied(t *testing.T) {
	e := newEnv(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	v := uploadingVideo(t, e, alice.ID, "up-1")

	require.NoError(t, deliver(t, e, `{"id":"evt-1","type":"video.asset.errored","data":{"id":"asset-1","upload_id":"up-1","status":"errored"}}`))
	require.NoError(t, e.db.Model(v).Update("mux_status", "ready").Error)

	// 同一个event_id再投递一次，不会把状态改回errored
	require.NoError(t, deliver(t, e, `{"id":"evt-1","type":"video.asset.errored","data":{"id":"asset-1","upload_id":"up-1","status":"errored"}}`))
	assert.Equal(t, "ready", *reload(t, e, v.ID).MuxStatus)

	var n int64
	e.db.Model(&model.MuxWebhookEvent{}).Count(&n)
	assert.Equal(t, int64(1), n)
}

func TestWebhook_DeletedRemovesVideo(t *testing.T) {
	e := newEnv(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	v := uploadingVideo(t, e, alice.ID, "up-1")
	require.NoError(t, e.db.Model(v).Update("thumbnail_key", "thumbnails/1/a.png").Error)
	e.publisher.On("Publish", QueueVideoCleanup, mock.MatchedBy(func(msg VideoCleanupMessage) bool {
		return msg.VideoID == v.ID && msg.MuxAssetID == nil && len(msg.ObjectKeys) == 1
	})).Return(nil).Once()

	require.NoError(t, deliver(t, e, `{"id":"evt-1","type":"video.asset.deleted","data":{"id":"asset-1","upload_id":"up-1"}}`))

	var n int64
	e.db.Model(&model.Video{}).Count(&n)
	assert.Zero(t, n)
	e.publisher.AssertExpectations(t)

	// 视频已不存在的事件照常确认
	require.NoError(t, deliver(t, e, `{"id":"evt-2","type":"video.asset.errored","data":{"id":"asset-1","upload_id":"up-1","status":"errored"}}`))
}

func TestWebhook_TrackReadyByAssetID(t *testing.T) {
	e := newEnv(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	v := uploadingVideo(t, e, alice.ID, "up-1")
	require.NoError(t, e.db.Model(v).Update("mux_asset_id", "asset-1").Error)

	require.NoError(t, deliver(t, e, `{"id":"evt-1","type":"video.asset.track.ready","data":{"id":"track-1","asset_id":"asset-1","status":"ready"}}`))
	got := reload(t, e, v.ID)
	assert.Equal(t, "track-1", *got.MuxTrackID)
	assert.Equal(t, "ready", *got.MuxTrackStatus)
}

func TestWebhook_NoSecretConfigured(t *testing.T) {
	e := newEnv(t)
	e.webhooks.secret = ""
	assert.ErrorIs(t, e.webhooks.Handle(context.Background(), []byte(`{}`), "t=1,v1=aa"), ErrUnavailable)
}

func TestCleanup_Process(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	for _, key := range []string{"thumbnails/1/a.png", "previews/1/b.gif"} {
		_, err := e.store.Put(ctx, key, strings.NewReader("x"), 1, "image/png")
		require.NoError(t, err)
	}
	asset := "asset-1"
	e.mux.On("DeleteAsset", mock.Anything, asset).Return(nil).Once()

	err := e.cleanup.Process(ctx, VideoCleanupMessage{
		VideoID:    1,
		MuxAssetID: &asset,
		ObjectKeys: []string{"thumbnails/1/a.png", "previews/1/b.gif"},
	})
	require.NoError(t, err)
	assert.False(t, e.store.Has("thumbnails/1/a.png"))
	assert.False(t, e.store.Has("previews/1/b.gif"))
	e.mux.AssertExpectations(t)
}

func TestCleanup_MuxFailureIsRetryable(t *testing.T) {
	e := newEnv(t)
	asset := "asset-1"
	e.mux.On("DeleteAsset", mock.Anything, asset).Return(fmt.Errorf("wrapped: %w", errors.New("503")))

	err := e.cleanup.Process(context.Background(), VideoCleanupMessage{VideoID: 1, MuxAssetID: &asset})
	assert.Error(t, err)
}

func TestCleanup_RejectedByMux(t *testing.T) {
	for _, tc := range []struct {
		name     string
		status   int
		rejected bool
	}{
		{"bad request", 400, true},
		{"unauthorized", 401, true},
		{"rate limited", 429, false},
		{"server error", 503, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			asset := "asset-" + tc.name
			e.mux.On("DeleteAsset", mock.Anything, asset).Return(&mux.APIError{StatusCode: tc.status})

			err := e.cleanup.Process(context.Background(), VideoCleanupMessage{VideoID: 1, MuxAssetID: &asset})
			require.Error(t, err)
			assert.Equal(t, tc.rejected, errors.Is(err, ErrCleanupRejected))
		})
	}
}
