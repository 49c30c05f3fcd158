package shared

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestPageQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		query    string
		page     int
		pageSize int
	}{
		{"", 1, 10},
		{"?page=3&page_size=5", 3, 5},
		{"?page=-1&page_size=500", 1, 50},
		{"?page=abc&page_size=x", 1, 10},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/checkout/orders"+tc.query, nil)
		page, pageSize := PageQuery(c)
		if page != tc.page || pageSize != tc.pageSize {
			t.Fatalf("query %q: want %d/%d got %d/%d", tc.query, tc.page, tc.pageSize, page, pageSize)
		}
	}
}

func TestPageInfo(t *testing.T) {
	info := PageInfo(2, 10, 21)
	if info.TotalPage != 3 || info.Page != 2 || info.Total != 21 {
		t.Fatalf("unexpected page info: %+v", info)
	}
	if PageInfo(1, 0, 5).TotalPage != 0 {
		t.Fatalf("zero page size must not divide")
	}
}
