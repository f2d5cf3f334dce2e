package helpers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Aarav Sharma":   "aarav-sharma",
		"  O'Neil  Jr. ": "o-neil-jr",
		"Class 5 / B":    "class-5-b",
		"":               "unnamed",
		"***":            "unnamed",
		"Zoë Müller":     "zo-m-ller",
	}
	for in, want := range tests {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCalculateOffsetLimit(t *testing.T) {
	tests := []struct {
		page, size int
		offset     uint64
		limit      int
	}{
		{page: 1, size: 10, offset: 0, limit: 10},
		{page: 3, size: 20, offset: 40, limit: 20},
		{page: 0, size: 0, offset: 0, limit: DefaultPageSize},
		{page: 2, size: MaxPageSize + 1, offset: DefaultPageSize, limit: DefaultPageSize},
	}
	for _, tt := range tests {
		offset, limit := CalculateOffsetLimit(tt.page, tt.size)
		if offset != tt.offset || limit != tt.limit {
			t.Fatalf("CalculateOffsetLimit(%d, %d) = %d, %d, want %d, %d", tt.page, tt.size, offset, limit, tt.offset, tt.limit)
		}
	}
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(25, 9, 10)
	if info.TotalPages != 3 || info.CurrentPage != 3 {
		t.Fatalf("info = %+v, want 3 pages clamped to page 3", info)
	}

	empty := NewPaginationInfo(0, 1, 10)
	if empty.TotalPages != 1 {
		t.Fatalf("TotalPages = %d, want 1", empty.TotalPages)
	}
}

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest("GET", "/?page=2&size=500", nil)

	page, size := ParsePaginationParams(ctx)
	if page != 2 || size != DefaultPageSize {
		t.Fatalf("page, size = %d, %d, want 2, %d", page, size, DefaultPageSize)
	}
}

func TestFileTimestamp(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	if got := FileTimestamp(ts); got != "20240309_140507" {
		t.Fatalf("FileTimestamp = %q, want %q", got, "20240309_140507")
	}
	if got := ParseDuration("bogus", time.Second); got != time.Second {
		t.Fatalf("ParseDuration fallback = %v, want 1s", got)
	}
}
