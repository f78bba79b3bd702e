package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_PutDelete(t *testing.T) {
	m := NewMemory("http://cdn.local/")
	url, err := m.Put(context.Background(), "thumbnails/a.png", strings.NewReader("img"), 3, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.local/thumbnails/a.png", url)
	assert.True(t, m.Has("thumbnails/a.png"))

	require.NoError(t, m.Delete(context.Background(), "thumbnails/a.png"))
	assert.False(t, m.Has("thumbnails/a.png"))
	// 重复删除不报错
	assert.NoError(t, m.Delete(context.Background(), "thumbnails/a.png"))
}

func TestPublicObjectURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/k.png",
		publicObjectURL(Config{PublicURL: "https://cdn.example.com/"}, "k.png"))
	assert.Equal(t, "http://localhost:9000/thumbs/k.png",
		publicObjectURL(Config{Endpoint: "http://localhost:9000", Bucket: "thumbs"}, "k.png"))
	assert.Equal(t, "https://minio.example.com/thumbs/k.png",
		publicObjectURL(Config{Endpoint: "minio.example.com", Bucket: "thumbs", UseSSL: true}, "k.png"))
}

func TestNew_Drivers(t *testing.T) {
	s, err := New(context.Background(), Config{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = New(context.Background(), Config{Driver: "s3", Bucket: "b", Region: "eu-west-1"})
	require.NoError(t, err)
	assert.NotNil(t, s)

	_, err = New(context.Background(), Config{Driver: "ftp"})
	assert.Error(t, err)
}
