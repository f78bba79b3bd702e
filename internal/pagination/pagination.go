package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strconv"
	"time"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

var (
	ErrInvalidCursor = errors.New("无效的分页游标")
	ErrInvalidLimit  = errors.New("limit必须在1到100之间")
)

// Cursor 上一页最后一行的排序键：按时间排序用T，按计数排序用C，ID用来打破平局
type Cursor struct {
	ID uint64    `json:"id"`
	T  time.Time `json:"t,omitzero"`
	C  int64     `json:"c,omitempty"`
}

// Page 一页结果；NextCursor为nil表示没有更多数据
type Page[T any] struct {
	Items      []T     `json:"items"`
	NextCursor *string `json:"nextCursor"`
}

// Request 解析后的分页参数
type Request struct {
	Limit  int
	Cursor *Cursor
}

func Encode(c Cursor) string {
	b, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(b)
}

func Decode(s string) (*Cursor, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, ErrInvalidCursor
	}
	if c.ID == 0 {
		return nil, ErrInvalidCursor
	}
	c.T = c.T.UTC()
	return &c, nil
}

// ParseRequest 解析limit和cursor查询参数：limit为空取默认值，超出范围报错；cursor为空表示第一页
func ParseRequest(limitStr, cursorStr string) (Request, error) {
	req := Request{Limit: DefaultLimit}
	if limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 || n > MaxLimit {
			return req, ErrInvalidLimit
		}
		req.Limit = n
	}
	if cursorStr != "" {
		c, err := Decode(cursorStr)
		if err != nil {
			return req, err
		}
		req.Cursor = c
	}
	return req, nil
}

// Build 查询时多取一行(limit+1)：1、多出来的行说明还有下一页，把它丢掉 2、用本页最后一行生成下一页游标
func Build[T any](rows []T, limit int, key func(T) Cursor) Page[T] {
	page := Page[T]{Items: rows}
	if page.Items == nil {
		page.Items = []T{}
	}
	if len(rows) > limit {
		page.Items = rows[:limit]
		next := Encode(key(page.Items[limit-1]))
		page.NextCursor = &next
	}
	return page
}

// Map 转换页内元素，游标保持不变
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := Page[U]{Items: make([]U, 0, len(p.Items)), NextCursor: p.NextCursor}
	for _, item := range p.Items {
		out.Items = append(out.Items, fn(item))
	}
	return out
}
