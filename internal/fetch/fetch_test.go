package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-rarbg-cli/internal/cookies"
)

type jarResolver struct {
	jar   cookies.Jar
	err   error
	calls int
}

func (r *jarResolver) Resolve(_ context.Context, _ string) (cookies.Jar, error) {
	r.calls++
	return r.jar, r.err
}

func TestGetOK(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	f := New(cookies.NewStore(t.TempDir()), &jarResolver{}, true)
	body, err := f.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
}

func TestGetSendsCookies(t *testing.T) {
	t.Parallel()

	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Cookie")
	}))
	defer srv.Close()

	store := cookies.NewStore(t.TempDir())
	require.NoError(t, store.Save(cookies.Jar{"sk": "abc"}))

	f := New(store, &jarResolver{}, false)
	_, err := f.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "sk=abc", got)
}

func TestGetNon200IsTerminal(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := New(cookies.NewStore(t.TempDir()), &jarResolver{}, true)
	_, err := f.Get(context.Background(), srv.URL)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.Code)
}

func TestGetResolvesChallengeAndRetries(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/torrents.php", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("sk"); err != nil {
			http.Redirect(w, r, "/threat_defence.php?r=1", http.StatusFound)
			return
		}
		w.Write([]byte("results"))
	})
	mux.HandleFunc("/threat_defence.php", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("solve me"))
	})

	store := cookies.NewStore(t.TempDir())
	resolver := &jarResolver{jar: cookies.Jar{"sk": "solved"}}

	f := New(store, resolver, false)
	body, err := f.Get(context.Background(), srv.URL+"/torrents.php")
	require.NoError(t, err)
	assert.Equal(t, "results", string(body))
	assert.Equal(t, 1, resolver.calls)

	// The refreshed jar was persisted for the next run.
	assert.Equal(t, cookies.Jar{"sk": "solved"}, store.Load(false))
}

func TestGetResolverFailureAbortsFetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/threat_defence.php", http.StatusFound)
	}))
	defer srv.Close()

	resolveErr := errors.New("solver exploded")
	f := New(cookies.NewStore(t.TempDir()), &jarResolver{err: resolveErr}, true)

	_, err := f.Get(context.Background(), srv.URL)
	require.ErrorIs(t, err, resolveErr)
}

func TestGetChallengeLoopHonorsContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Challenge never goes away: the returned cookies don't help.
		if r.URL.Path != "/threat_defence.php" {
			http.Redirect(w, r, "/threat_defence.php", http.StatusFound)
			return
		}
		w.Write([]byte("still challenged"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	f := New(cookies.NewStore(t.TempDir()), &jarResolver{jar: cookies.Jar{}}, true)
	_, err := f.Get(ctx, srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGetDocument(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><a href="magnet:?xt=urn:btih:ff">dl</a></body></html>`))
	}))
	defer srv.Close()

	f := New(cookies.NewStore(t.TempDir()), &jarResolver{}, true)
	doc, err := f.GetDocument(context.Background(), srv.URL)
	require.NoError(t, err)

	href, ok := doc.Find(`a[href^="magnet:"]`).First().Attr("href")
	require.True(t, ok)
	assert.Equal(t, "magnet:?xt=urn:btih:ff", href)
}
