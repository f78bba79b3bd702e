package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	id uint64
	at time.Time
}

func rowKey(r row) Cursor { return Cursor{ID: r.id, T: r.at} }

func TestEncodeDecode(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 123000000, time.UTC)
	s := Encode(Cursor{ID: 9, T: at})

	c, err := Decode(s)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), c.ID)
	assert.True(t, at.Equal(c.T))

	c, err = Decode(Encode(Cursor{ID: 3, C: 42}))
	require.NoError(t, err)
	assert.Equal(t, int64(42), c.C)
	assert.True(t, c.T.IsZero())
}

func TestDecode_Invalid(t *testing.T) {
	for _, s := range []string{"%%%", "bm90LWpzb24", Encode(Cursor{})} {
		_, err := Decode(s)
		assert.ErrorIs(t, err, ErrInvalidCursor, s)
	}
}

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, req.Limit)
	assert.Nil(t, req.Cursor)

	req, err = ParseRequest("5", Encode(Cursor{ID: 1}))
	require.NoError(t, err)
	assert.Equal(t, 5, req.Limit)
	require.NotNil(t, req.Cursor)

	for _, l := range []string{"0", "101", "-1", "abc"} {
		_, err = ParseRequest(l, "")
		assert.ErrorIs(t, err, ErrInvalidLimit, l)
	}
	_, err = ParseRequest("10", "garbage!")
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestBuild(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []row{{3, base}, {2, base}, {1, base}}

	page := Build(rows, 2, rowKey)
	assert.Len(t, page.Items, 2)
	require.NotNil(t, page.NextCursor)
	c, err := Decode(*page.NextCursor)
	require.NoError(t, err)
	// 游标指向本页最后一行
	assert.Equal(t, uint64(2), c.ID)

	page = Build(rows, 3, rowKey)
	assert.Len(t, page.Items, 3)
	assert.Nil(t, page.NextCursor)

	empty := Build[row](nil, 10, rowKey)
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)
	assert.Nil(t, empty.NextCursor)
}

func TestMap(t *testing.T) {
	next := "x"
	p := Page[int]{Items: []int{1, 2}, NextCursor: &next}
	out := Map(p, func(i int) string { return string(rune('a' + i)) })
	assert.Equal(t, []string{"b", "c"}, out.Items)
	assert.Equal(t, &next, out.NextCursor)
}
