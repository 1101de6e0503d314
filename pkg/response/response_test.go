package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name   string
		fn     func(c *gin.Context)
		status int
	}{
		{"success", func(c *gin.Context) { Success(c, gin.H{"a": 1}) }, http.StatusOK},
		{"created", func(c *gin.Context) { Created(c, nil) }, http.StatusCreated},
		{"bad", func(c *gin.Context) { BadRequest(c, "nope") }, http.StatusBadRequest},
		{"forbidden", func(c *gin.Context) { Forbidden(c, "no") }, http.StatusForbidden},
		{"notfound", func(c *gin.Context) { NotFound(c, "x") }, http.StatusNotFound},
		{"unavailable", func(c *gin.Context) { Unavailable(c, errors.New("db down")) }, http.StatusServiceUnavailable},
		{"internal", func(c *gin.Context) { InternalError(c, errors.New("boom")) }, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			tc.fn(c)

			assert.Equal(t, tc.status, w.Code)
			var body Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.status, body.Code)
		})
	}
}

func TestInternalErrorHidesDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	InternalError(c, errors.New("password=secret"))
	assert.NotContains(t, w.Body.String(), "secret")
	assert.Len(t, c.Errors, 1)
}
