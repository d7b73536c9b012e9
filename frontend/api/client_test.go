package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"weekend-at-joes/pkg/ident"
	"weekend-at-joes/pkg/wire"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status int, env any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func TestPublishedArticlesDecodesPageMeta(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/article/articles/1/2", r.URL.Path)
		writeEnvelope(w, http.StatusOK, wire.Envelope[[]wire.ArticlePreviewResponse]{
			Success: true,
			Data:    []wire.ArticlePreviewResponse{{Title: "a"}, {Title: "b"}},
			Meta:    &wire.Pagination{Page: 1, PageSize: 2, TotalItems: 5, TotalPages: 3, CurrentCount: 2},
		})
	}))
	defer srv.Close()

	page, err := NewHTTPClient(srv.URL, srv.Client()).PublishedArticles(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, 5, page.Pagination.TotalItems)
	assert.True(t, page.HasNext())
	assert.True(t, page.HasPrev())
}

func TestErrorEnvelopeBecomesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusForbidden, wire.Envelope[any]{
			Error: &wire.ErrorBody{Code: "FORBIDDEN", Message: "bucket owner required"},
		})
	}))
	defer srv.Close()

	err := NewHTTPClient(srv.URL, srv.Client()).RemoveBucketUser(context.Background(),
		ident.New[ident.BucketUUID](), ident.New[ident.UserUUID]())
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusForbidden))
	assert.Equal(t, "bucket owner required", err.Error())
}

func TestTokenIsSentAsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusOK, wire.Envelope[bool]{Success: true, Data: true})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, srv.Client())
	c.SetToken("abc")
	owner, err := c.IsBucketOwner(context.Background(), ident.New[ident.BucketUUID]())
	require.NoError(t, err)
	assert.True(t, owner)
}

func TestNoContentHasNoBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := NewHTTPClient(srv.URL, srv.Client()).RemoveBucketUser(context.Background(),
		ident.New[ident.BucketUUID](), ident.New[ident.UserUUID]())
	assert.NoError(t, err)
}

func TestUndecodableErrorKeepsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL, srv.Client()).BucketParticipants(context.Background(), ident.New[ident.BucketUUID]())
	assert.True(t, IsStatus(err, http.StatusBadGateway))
}
