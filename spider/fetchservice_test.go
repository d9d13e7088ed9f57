package spider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/latin1":
			w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
			_, _ = w.Write([]byte("<p>Qu\xe9bec</p>"))
		case "/ua":
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = w.Write([]byte(r.UserAgent() + "|" + r.Header.Get("Cookie")))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	for _, typ := range []FetchType{BaseFetchType, BrowserFetchType} {
		f := NewFetchService(typ, WithUserAgent("Sondeur/0.1"), WithCookie("a=b"), WithTimeout(5*time.Second))

		body, err := f.Get(context.Background(), srv.URL+"/latin1")
		require.NoError(t, err)
		assert.Equal(t, "<p>Québec</p>", string(body))

		body, err = f.Get(context.Background(), srv.URL+"/ua")
		require.NoError(t, err)
		assert.Equal(t, "Sondeur/0.1|a=b", string(body))

		_, err = f.Get(context.Background(), srv.URL+"/absent")
		require.Error(t, err)
		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusNotFound, se.StatusCode)
		assert.True(t, IsStatusError(err))
	}
}

func TestBrowserFetchRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := NewFetchService(BrowserFetchType, WithRetries(2))
	body, err := f.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.EqualValues(t, 2, calls.Load())
}

func TestFetchCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("late"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, typ := range []FetchType{BaseFetchType, BrowserFetchType} {
		_, err := NewFetchService(typ).Get(ctx, srv.URL)
		assert.Error(t, err)
	}
}

func TestParseFetchType(t *testing.T) {
	typ, err := ParseFetchType("Base")
	require.NoError(t, err)
	assert.Equal(t, BaseFetchType, typ)

	typ, err = ParseFetchType("")
	require.NoError(t, err)
	assert.Equal(t, BrowserFetchType, typ)

	_, err = ParseFetchType("chrome")
	assert.Error(t, err)
}
