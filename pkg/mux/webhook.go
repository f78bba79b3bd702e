package mux

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	SignatureHeader = "mux-signature"
	// 签名时间戳与当前时间允许的最大偏差
	DefaultTolerance = 5 * time.Minute

	EventAssetCreated    = "video.asset.created"
	EventAssetReady      = "video.asset.ready"
	EventAssetErrored    = "video.asset.errored"
	EventAssetDeleted    = "video.asset.deleted"
	EventAssetTrackReady = "video.asset.track.ready"
)

var (
	ErrMissingSignature = errors.New("缺少mux-signature签名")
	ErrInvalidSignature = errors.New("mux-signature签名无效")
)

// VerifySignature 校验"t=<unix>,v1=<hex>"格式的签名头：1、解析时间戳和所有v1签名 2、检查时间戳是否过期 3、对"t.body"做HMAC-SHA256比较
func VerifySignature(body []byte, header, secret string, tolerance time.Duration, now time.Time) error {
	if header == "" {
		return ErrMissingSignature
	}
	var (
		timestamp  string
		signatures []string
	)
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return ErrInvalidSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	if tolerance > 0 {
		diff := now.Sub(time.Unix(ts, 0))
		if diff > tolerance || diff < -tolerance {
			return fmt.Errorf("%w: 时间戳超出允许范围", ErrInvalidSignature)
		}
	}

	expected := computeSignature(timestamp, body, secret)
	for _, sig := range signatures {
		got, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(got, expected) {
			return nil
		}
	}
	return ErrInvalidSignature
}

// SignatureFor 生成签名头，和Mux发送的格式一致
func SignatureFor(body []byte, secret string, at time.Time) string {
	timestamp := strconv.FormatInt(at.Unix(), 10)
	return "t=" + timestamp + ",v1=" + hex.EncodeToString(computeSignature(timestamp, body, secret))
}

func computeSignature(timestamp string, body []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return mac.Sum(nil)
}

type PlaybackID struct {
	ID     string `json:"id"`
	Policy string `json:"policy"`
}

// EventData 只保留用到的字段；track事件里id是轨道ID，asset_id才是资源ID
type EventData struct {
	ID          string       `json:"id"`
	UploadID    string       `json:"upload_id"`
	AssetID     string       `json:"asset_id"`
	Status      string       `json:"status"`
	Duration    float64      `json:"duration"`
	PlaybackIDs []PlaybackID `json:"playback_ids"`
}

type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	Data      EventData `json:"data"`
}

func ParseEvent(body []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("webhook事件解析失败: %w", err)
	}
	if ev.Type == "" {
		return nil, errors.New("webhook事件缺少type")
	}
	return &ev, nil
}

// FirstPlaybackID 没有则返回空串
func (d EventData) FirstPlaybackID() string {
	if len(d.PlaybackIDs) == 0 {
		return ""
	}
	return d.PlaybackIDs[0].ID
}

// DurationMillis 秒转毫秒，四舍五入
func (d EventData) DurationMillis() int64 {
	if d.Duration <= 0 {
		return 0
	}
	return int64(d.Duration*1000 + 0.5)
}

func ThumbnailURL(playbackID string) string {
	return "https://image.mux.com/" + playbackID + "/thumbnail.jpg"
}

func PreviewURL(playbackID string) string {
	return "https://image.mux.com/" + playbackID + "/animated.gif"
}
