package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestFromQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		query string
		want  Params
	}{
		{"", Params{Page: 1, PageSize: 10}},
		{"page=3&page_size=20", Params{Page: 3, PageSize: 20}},
		{"page=-2&page_size=abc", Params{Page: 1, PageSize: 10}},
		{"page_size=1000", Params{Page: 1, PageSize: MaxPageSize}},
	}

	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/?"+tc.query, nil)
		assert.Equal(t, tc.want, FromQuery(c, 10), tc.query)
	}

	assert.Equal(t, 20, Params{Page: 3, PageSize: 10}.Offset())
}
