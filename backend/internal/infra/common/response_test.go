package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"weekend-at-joes/pkg/wire"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestSuccessWithPaginationDecodesAsEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Success(c, 0, []string{"a", "b"}, MetaPagination{Page: 1, PageSize: 2, TotalItems: 5, TotalPages: 3, CurrentCount: 2})

	require.Equal(t, http.StatusOK, rec.Code)
	var env wire.Envelope[[]string]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, []string{"a", "b"}, env.Data)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 3, env.Meta.TotalPages)
}

func TestFailWritesErrorBody(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Fail(c, http.StatusServiceUnavailable, ErrServiceUnavailable, "database busy", nil)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var env wire.Envelope[any]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "SERVICE_UNAVAILABLE", env.Error.Code)
	assert.Equal(t, "database busy", env.Error.Message)
}

func TestAbortStopsChain(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Abort(c, http.StatusUnauthorized, ErrUnauthorized, "missing token")

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
