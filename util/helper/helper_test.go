package helper_util

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNullableTime(t *testing.T) {
	want := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	got, err := ParseNullableTime(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	for _, in := range []interface{}{want, "2024-05-01T10:00:00Z", want.UnixMilli()} {
		got, err := ParseNullableTime(in)
		require.NoError(t, err)
		assert.True(t, want.Equal(*got), "%v", in)
	}

	_, err = ParseNullableTime(3.14)
	assert.Error(t, err)
}

func TestParseTimeRange(t *testing.T) {
	now := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)

	from, to, err := ParseTimeRange("", "", now)
	require.NoError(t, err)
	assert.Equal(t, now, to)
	assert.Equal(t, now.Add(-24*time.Hour), from)

	_, _, err = ParseTimeRange("2024-05-03T00:00:00Z", "2024-05-01T00:00:00Z", now)
	assert.Error(t, err)

	_, _, err = ParseTimeRange("yesterday", "", now)
	assert.Error(t, err)
}

func TestGetPaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		query   string
		limit   int
		offset  int
		wantErr bool
	}{
		{"", 10, 0, false},
		{"?limit=50&offset=100", 50, 100, false},
		{"?limit=0", 0, 0, true},
		{"?limit=500", 0, 0, true},
		{"?offset=-1", 0, 0, true},
		{"?limit=abc", 0, 0, true},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/"+tt.query, nil)
		limit, offset, err := GetPaginationParams(c)
		if tt.wantErr {
			assert.Error(t, err, tt.query)
			continue
		}
		require.NoError(t, err, tt.query)
		assert.Equal(t, tt.limit, limit)
		assert.Equal(t, tt.offset, offset)
	}
}
