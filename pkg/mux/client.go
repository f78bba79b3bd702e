package mux

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://api.mux.com"

// APIError Mux返回的非2xx响应
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mux api error: status %d: %s", e.StatusCode, strings.TrimSpace(string(e.Body)))
}

type Config struct {
	BaseURL     string
	TokenID     string
	TokenSecret string
	// 每秒最多发出的请求数，<=0表示不限流
	RPS     float64
	Timeout time.Duration
	Retry   RetryConfig
}

// Client Mux视频API的最小客户端，只覆盖直传上传和删除资源
type Client struct {
	base    *http.Client
	cfg     Config
	limiter *rate.Limiter
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Retry.Multiplier == 0 {
		cfg.Retry = DefaultRetryConfig()
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RPS > 0 {
		burst := int(cfg.RPS)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}

	return &Client{
		base:    &http.Client{Timeout: cfg.Timeout},
		cfg:     cfg,
		limiter: limiter,
	}
}

// Upload 直传上传：客户端拿着URL把文件直接PUT给Mux
type Upload struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Status string `json:"status"`
}

type newAssetSettings struct {
	Passthrough    string   `json:"passthrough"`
	PlaybackPolicy []string `json:"playback_policy"`
	MP4Support     string   `json:"mp4_support"`
}

type createUploadRequest struct {
	NewAssetSettings newAssetSettings `json:"new_asset_settings"`
	CORSOrigin       string           `json:"cors_origin"`
}

// CreateUpload 创建直传上传，passthrough写入上传者的用户ID，转码完成后的资源为公开播放
func (c *Client) CreateUpload(ctx context.Context, passthrough string) (*Upload, error) {
	body, err := json.Marshal(createUploadRequest{
		NewAssetSettings: newAssetSettings{
			Passthrough:    passthrough,
			PlaybackPolicy: []string{"public"},
			MP4Support:     "none",
		},
		CORSOrigin: "*",
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data Upload `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/video/v1/uploads", body, &resp); err != nil {
		return nil, err
	}
	if resp.Data.ID == "" || resp.Data.URL == "" {
		return nil, fmt.Errorf("mux返回的上传信息不完整")
	}
	return &resp.Data, nil
}

// DeleteAsset 删除转码资源，资源已经不存在(404)也视为成功
func (c *Client) DeleteAsset(ctx context.Context, assetID string) error {
	err := c.do(ctx, http.MethodDelete, "/video/v1/assets/"+url.PathEscape(assetID), nil, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return nil
	}
	return err
}

// do 发送请求：1、等待限流器放行 2、带重试发请求 3、2xx时把响应解码到out
func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var respBody []byte
	err := withRetry(ctx, c.cfg.Retry, func(ctx context.Context) error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
		if err != nil {
			return err
		}
		req.SetBasicAuth(c.cfg.TokenID, c.cfg.TokenSecret)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.base.Do(req)
		if err != nil {
			return fmt.Errorf("mux请求失败: %w", err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("读取mux响应失败: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &APIError{StatusCode: resp.StatusCode, Body: data}
		}
		respBody = data
		return nil
	})
	if err != nil {
		// 重试耗尽时外层包了一层，这里还原出APIError方便调用方判断状态码
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return apiErr
		}
		return err
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	return json.Unmarshal(respBody, out)
}
