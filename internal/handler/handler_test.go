package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"Orion_Tube/internal/model"
	"Orion_Tube/internal/pagination"
	"Orion_Tube/internal/service"
	"Orion_Tube/pkg/mux"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockVideoService struct{ mock.Mock }

func (m *mockVideoService) GetMany(ctx context.Context, filter service.BrowseFilter, viewerID uint64, req pagination.Request) (pagination.Page[service.VideoItem], error) {
	args := m.Called(ctx, filter, viewerID, req)
	return args.Get(0).(pagination.Page[service.VideoItem]), args.Error(1)
}

func (m *mockVideoService) GetTrending(ctx context.Context, viewerID uint64, req pagination.Request) (pagination.Page[service.VideoItem], error) {
	args := m.Called(ctx, viewerID, req)
	return args.Get(0).(pagination.Page[service.VideoItem]), args.Error(1)
}

func (m *mockVideoService) GetSubscribed(ctx context.Context, viewerID uint64, req pagination.Request) (pagination.Page[service.VideoItem], error) {
	args := m.Called(ctx, viewerID, req)
	return args.Get(0).(pagination.Page[service.VideoItem]), args.Error(1)
}

func (m *mockVideoService) GetOne(ctx context.Context, videoID, viewerID uint64) (*service.VideoDetail, error) {
	args := m.Called(ctx, videoID, viewerID)
	detail, _ := args.Get(0).(*service.VideoDetail)
	return detail, args.Error(1)
}

func (m *mockVideoService) GetSuggestions(ctx context.Context, videoID, viewerID uint64, req pagination.Request) (pagination.Page[service.VideoItem], error) {
	args := m.Called(ctx, videoID, viewerID, req)
	return args.Get(0).(pagination.Page[service.VideoItem]), args.Error(1)
}

func (m *mockVideoService) GetVideoByID(ctx context.Context, videoID uint64) (*model.Video, error) {
	args := m.Called(ctx, videoID)
	video, _ := args.Get(0).(*model.Video)
	return video, args.Error(1)
}

func (m *mockVideoService) RecordView(ctx context.Context, userID, videoID uint64) error {
	return m.Called(ctx, userID, videoID).Error(0)
}

func (m *mockVideoService) React(ctx context.Context, userID, videoID uint64, reactionType string) (*string, error) {
	args := m.Called(ctx, userID, videoID, reactionType)
	result, _ := args.Get(0).(*string)
	return result, args.Error(1)
}

type mockCommentService struct{ mock.Mock }

func (m *mockCommentService) Create(ctx context.Context, userID, videoID uint64, parentID *uint64, value string) (*model.Comment, error) {
	args := m.Called(ctx, userID, videoID, parentID, value)
	comment, _ := args.Get(0).(*model.Comment)
	return comment, args.Error(1)
}

func (m *mockCommentService) Delete(ctx context.Context, userID, commentID uint64) error {
	return m.Called(ctx, userID, commentID).Error(0)
}

func (m *mockCommentService) GetMany(ctx context.Context, videoID uint64, parentID *uint64, viewerID uint64, req pagination.Request) (*service.CommentPage, error) {
	args := m.Called(ctx, videoID, parentID, viewerID, req)
	page, _ := args.Get(0).(*service.CommentPage)
	return page, args.Error(1)
}

func (m *mockCommentService) React(ctx context.Context, userID, commentID uint64, reactionType string) (*string, error) {
	args := m.Called(ctx, userID, commentID, reactionType)
	result, _ := args.Get(0).(*string)
	return result, args.Error(1)
}

type mockStudioService struct{ mock.Mock }

func (m *mockStudioService) CreateUpload(ctx context.Context, userID uint64) (*service.UploadResult, error) {
	args := m.Called(ctx, userID)
	result, _ := args.Get(0).(*service.UploadResult)
	return result, args.Error(1)
}

func (m *mockStudioService) List(ctx context.Context, userID uint64, req pagination.Request) (pagination.Page[service.VideoItem], error) {
	args := m.Called(ctx, userID, req)
	return args.Get(0).(pagination.Page[service.VideoItem]), args.Error(1)
}

func (m *mockStudioService) Get(ctx context.Context, userID, videoID uint64) (*model.Video, error) {
	args := m.Called(ctx, userID, videoID)
	video, _ := args.Get(0).(*model.Video)
	return video, args.Error(1)
}

func (m *mockStudioService) Update(ctx context.Context, userID, videoID uint64, in service.VideoUpdate) (*model.Video, error) {
	args := m.Called(ctx, userID, videoID, in)
	video, _ := args.Get(0).(*model.Video)
	return video, args.Error(1)
}

func (m *mockStudioService) Delete(ctx context.Context, userID, videoID uint64) error {
	return m.Called(ctx, userID, videoID).Error(0)
}

func (m *mockStudioService) UploadThumbnail(ctx context.Context, userID, videoID uint64, file service.ThumbnailFile) (*model.Video, error) {
	args := m.Called(ctx, userID, videoID, file)
	video, _ := args.Get(0).(*model.Video)
	return video, args.Error(1)
}

func (m *mockStudioService) RestoreThumbnail(ctx context.Context, userID, videoID uint64) (*model.Video, error) {
	args := m.Called(ctx, userID, videoID)
	video, _ := args.Get(0).(*model.Video)
	return video, args.Error(1)
}

type mockWebhookService struct{ mock.Mock }

func (m *mockWebhookService) Handle(ctx context.Context, body []byte, signature string) error {
	return m.Called(ctx, body, signature).Error(0)
}

// 模拟AuthMiddleware写入的用户
func asUser(id uint64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", id)
		c.Next()
	}
}

func do(r *gin.Engine, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: 视频不存在", service.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: 标题不能为空", service.ErrBadRequest), http.StatusBadRequest},
		{service.ErrUnauthorized, http.StatusUnauthorized},
		{service.ErrConflict, http.StatusConflict},
		{service.ErrUnavailable, http.StatusServiceUnavailable},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		videos := new(mockVideoService)
		videos.On("GetOne", mock.Anything, uint64(5), uint64(0)).Return(nil, tc.err)

		r := gin.New()
		r.GET("/videos/:video_id", NewVideoHandler(videos).GetOne)
		w := do(r, http.MethodGet, "/videos/5", nil, "")

		assert.Equal(t, tc.code, w.Code, tc.err.Error())
		body := decode(t, w)
		if tc.code == http.StatusInternalServerError {
			assert.Equal(t, "查找视频失败", body["error"], "500不暴露内部错误")
		} else {
			assert.Equal(t, tc.err.Error(), body["error"])
		}
	}
}

func TestVideoHandlerGetOne(t *testing.T) {
	videos := new(mockVideoService)
	detail := &service.VideoDetail{
		VideoItem: service.VideoItem{
			Video:     model.Video{BaseModel: model.BaseModel{ID: 5}, Title: "hello", Visibility: model.VisibilityPublic},
			ViewCount: 3,
		},
		SubscriberCount: 2,
	}
	videos.On("GetOne", mock.Anything, uint64(5), uint64(9)).Return(detail, nil)

	r := gin.New()
	r.GET("/videos/:video_id", asUser(9), NewVideoHandler(videos).GetOne)

	w := do(r, http.MethodGet, "/videos/5", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "hello", data["title"])
	assert.EqualValues(t, 3, data["view_count"])
	assert.EqualValues(t, 2, data["subscriber_count"])

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/videos/abc", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/videos/0", nil, "").Code)
	videos.AssertExpectations(t)
}

func TestVideoHandlerGetManyParsesQuery(t *testing.T) {
	videos := new(mockVideoService)
	categoryID := uint64(3)
	videos.On("GetMany", mock.Anything,
		service.BrowseFilter{CategoryID: &categoryID, Query: "cat"},
		uint64(0),
		pagination.Request{Limit: 5},
	).Return(pagination.Page[service.VideoItem]{Items: []service.VideoItem{}}, nil)

	r := gin.New()
	r.GET("/videos", NewVideoHandler(videos).GetMany)

	w := do(r, http.MethodGet, "/videos?category_id=3&query=cat&limit=5", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Empty(t, data["items"])
	assert.Nil(t, data["nextCursor"])

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/videos?category_id=x", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/videos?limit=1000", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/videos?cursor=not-a-cursor", nil, "").Code)
	videos.AssertExpectations(t)
}

func TestRecordViewRequiresUser(t *testing.T) {
	videos := new(mockVideoService)
	videos.On("RecordView", mock.Anything, uint64(9), uint64(5)).Return(nil)

	h := NewVideoHandler(videos)
	r := gin.New()
	r.POST("/anon/:video_id/views", h.RecordView)
	r.POST("/videos/:video_id/views", asUser(9), h.RecordView)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/anon/5/views", nil, "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/videos/5/views", nil, "").Code)
	videos.AssertExpectations(t)
}

func TestReactionHandler(t *testing.T) {
	videos := new(mockVideoService)
	comments := new(mockCommentService)
	like := model.ReactionLike
	videos.On("React", mock.Anything, uint64(9), uint64(5), model.ReactionLike).Return(&like, nil)
	comments.On("React", mock.Anything, uint64(9), uint64(7), model.ReactionDislike).Return(nil, nil)

	h := NewReactionHandler(videos, comments)
	r := gin.New()
	r.Use(asUser(9))
	r.POST("/videos/:video_id/reactions/like", h.LikeVideo)
	r.POST("/comments/:comment_id/reactions/dislike", h.DislikeComment)

	w := do(r, http.MethodPost, "/videos/5/reactions/like", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"操作成功","data":{"viewer_reaction":"like"}}`, w.Body.String())

	w = do(r, http.MethodPost, "/comments/7/reactions/dislike", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"操作成功","data":{"viewer_reaction":null}}`, w.Body.String())

	videos.AssertExpectations(t)
	comments.AssertExpectations(t)
}

func TestCommentHandlerCreate(t *testing.T) {
	comments := new(mockCommentService)
	parentID := uint64(4)
	comments.On("Create", mock.Anything, uint64(9), uint64(5), &parentID, "nice").
		Return(&model.Comment{BaseModel: model.BaseModel{ID: 11}, VideoID: 5, UserID: 9, ParentID: &parentID, Value: "nice"}, nil)

	r := gin.New()
	r.POST("/videos/:video_id/comments", asUser(9), NewCommentHandler(comments).Create)

	w := do(r, http.MethodPost, "/videos/5/comments", strings.NewReader(`{"value":"nice","parent_id":4}`), "application/json")
	require.Equal(t, http.StatusCreated, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.EqualValues(t, 11, data["id"])

	w = do(r, http.MethodPost, "/videos/5/comments", strings.NewReader(`{}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	comments.AssertExpectations(t)
}

func TestCommentHandlerGetManyParentFilter(t *testing.T) {
	comments := new(mockCommentService)
	parentID := uint64(4)
	page := &service.CommentPage{Page: pagination.Page[service.CommentItem]{Items: []service.CommentItem{}}, TotalCount: 12}
	comments.On("GetMany", mock.Anything, uint64(5), &parentID, uint64(0), pagination.Request{Limit: pagination.DefaultLimit}).Return(page, nil)

	r := gin.New()
	r.GET("/videos/:video_id/comments", NewCommentHandler(comments).GetMany)

	w := do(r, http.MethodGet, "/videos/5/comments?parent_id=4", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.EqualValues(t, 12, data["total_count"])

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/videos/5/comments?parent_id=no", nil, "").Code)
	comments.AssertExpectations(t)
}

func TestStudioHandlerUpdate(t *testing.T) {
	studio := new(mockStudioService)
	title := "new title"
	visibility := model.VisibilityPublic
	studio.On("Update", mock.Anything, uint64(9), uint64(5), service.VideoUpdate{Title: &title, Visibility: &visibility}).
		Return(&model.Video{BaseModel: model.BaseModel{ID: 5}, Title: title, Visibility: visibility}, nil)

	r := gin.New()
	r.PATCH("/studio/videos/:video_id", asUser(9), NewStudioHandler(studio).Update)

	w := do(r, http.MethodPatch, "/studio/videos/5", strings.NewReader(`{"title":"new title","visibility":"public"}`), "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "new title", data["title"])
	assert.Contains(t, data, "mux_upload_id")
	studio.AssertExpectations(t)
}

func TestStudioHandlerUploadThumbnail(t *testing.T) {
	studio := new(mockStudioService)
	studio.On("UploadThumbnail", mock.Anything, uint64(9), uint64(5), mock.MatchedBy(func(f service.ThumbnailFile) bool {
		b, err := io.ReadAll(f.Reader)
		return err == nil && string(b) == "png-bytes" && f.Size == 9 && f.Filename == "cover.png"
	})).Return(&model.Video{BaseModel: model.BaseModel{ID: 5}}, nil)

	r := gin.New()
	r.POST("/studio/videos/:video_id/thumbnail", asUser(9), NewStudioHandler(studio).UploadThumbnail)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "cover.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := do(r, http.MethodPost, "/studio/videos/5/thumbnail", &buf, mw.FormDataContentType())
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/studio/videos/5/thumbnail", strings.NewReader(""), "multipart/form-data; boundary=x")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	studio.AssertExpectations(t)
}

func TestStudioHandlerCreateUpload(t *testing.T) {
	studio := new(mockStudioService)
	studio.On("CreateUpload", mock.Anything, uint64(9)).Return(&service.UploadResult{
		Video: model.Video{BaseModel: model.BaseModel{ID: 5}, Title: "Untitled"},
		URL:   "https://storage.mux.com/upload",
	}, nil)

	r := gin.New()
	r.POST("/studio/videos", asUser(9), NewStudioHandler(studio).CreateUpload)

	w := do(r, http.MethodPost, "/studio/videos", nil, "")
	require.Equal(t, http.StatusCreated, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "https://storage.mux.com/upload", data["url"])
	studio.AssertExpectations(t)
}

func TestWebhookHandlerPassesRawBody(t *testing.T) {
	webhooks := new(mockWebhookService)
	body := `{"type":"video.asset.ready","id":"evt-1"}`
	webhooks.On("Handle", mock.Anything, []byte(body), "t=1,v1=abc").Return(nil)
	webhooks.On("Handle", mock.Anything, mock.Anything, "").Return(service.ErrUnauthorized)

	r := gin.New()
	r.POST("/api/videos/webhook", NewWebhookHandler(webhooks).HandleMux)

	req := httptest.NewRequest(http.MethodPost, "/api/videos/webhook", strings.NewReader(body))
	req.Header.Set(mux.SignatureHeader, "t=1,v1=abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/api/videos/webhook", strings.NewReader(body), "application/json")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	webhooks.AssertExpectations(t)
}
