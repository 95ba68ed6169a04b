package nattypad

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gmattworld/applibry-api/internal/apperr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUpstream struct {
	logins    int32
	rejectOld bool
}

func (f *fakeUpstream) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/apps/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["client_id"] != "cid" || body["client_secret"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		n := atomic.AddInt32(&f.logins, 1)
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "token-" + string(rune('0'+n))})
	})
	mux.HandleFunc("/apps/categories", func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" || (f.rejectOld && auth == "Bearer token-1") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "chess", r.URL.Query().Get("search"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data":         []map[string]interface{}{{"id": uuid.NewString(), "name": "Games", "is_featured": true}},
			"current_page": 2,
			"page_size":    20,
			"total":        21,
			"message":      "Success",
		})
	})
	mux.HandleFunc("/apps/quotes/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	return mux
}

func newTestClient(srv *httptest.Server, secret string) *Client {
	return NewClient(Config{BaseURL: srv.URL + "/", ClientID: "cid", ClientSecret: secret}, NewTokenCache(time.Hour))
}

func TestClient_CategoriesReusesToken(t *testing.T) {
	up := &fakeUpstream{}
	srv := httptest.NewServer(up.handler(t))
	defer srv.Close()

	c := newTestClient(srv, "secret")
	for i := 0; i < 3; i++ {
		page, err := c.Categories(context.Background(), Query{Search: "chess", Page: 2})
		require.NoError(t, err)
		require.Len(t, page.Data, 1)
		assert.Equal(t, "Games", page.Data[0].Name)
		assert.True(t, page.Data[0].IsFeatured)
		assert.Equal(t, int64(21), page.Total)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&up.logins))
}

func TestClient_RetriesOnceAfterUnauthorized(t *testing.T) {
	up := &fakeUpstream{rejectOld: true}
	srv := httptest.NewServer(up.handler(t))
	defer srv.Close()

	c := newTestClient(srv, "secret")
	_, err := c.Categories(context.Background(), Query{Search: "chess", Page: 2})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&up.logins))
}

func TestClient_Errors(t *testing.T) {
	up := &fakeUpstream{}
	srv := httptest.NewServer(up.handler(t))
	defer srv.Close()

	_, err := newTestClient(srv, "secret").Quote(context.Background(), uuid.New())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = newTestClient(srv, "wrong").Categories(context.Background(), Query{})
	assert.True(t, errors.Is(err, ErrUpstream))
}
