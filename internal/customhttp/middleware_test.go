package customhttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestChainMiddlewareOrder(t *testing.T) {
	var calls []string
	tag := func(name string) middleware {
		return func(next httpCommandFunc) httpCommandFunc {
			return func(req *http.Request) (*http.Response, error) {
				calls = append(calls, name)
				return next(req)
			}
		}
	}

	final := func(req *http.Request) (*http.Response, error) {
		calls = append(calls, "client")
		return &http.Response{StatusCode: http.StatusOK}, nil
	}

	cmd := chainMiddleware(tag("first"), tag("second"))(final)
	req, err := http.NewRequest(http.MethodGet, "http://dummy/testEndpoint", nil)
	require.NoError(t, err)

	_, err = cmd.Do(req)
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second", "client"}, calls)
}

func TestRequestIDHeader(t *testing.T) {
	var got []string
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get(HeaderRequestID))
	}))
	defer s.Close()

	cmd := New(WithHTTPClient(s.Client()), WithRequestID()).Build()

	for i := 0; i < 2; i++ {
		req, err := http.NewRequest(http.MethodGet, s.URL, nil)
		require.NoError(t, err)
		resp, err := cmd.Do(req)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())
	}

	require.Len(t, got, 2)
	require.NotEmpty(t, got[0])
	require.NotEqual(t, got[0], got[1])
}

func TestRequestIDKeepsCallerValue(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "fixed-id", r.Header.Get(HeaderRequestID))
	}))
	defer s.Close()

	cmd := New(WithHTTPClient(s.Client()), WithRequestID(), WithLogging()).Build()
	req, err := http.NewRequest(http.MethodGet, s.URL, nil)
	require.NoError(t, err)
	req.Header.Set(HeaderRequestID, "fixed-id")

	resp, err := cmd.Do(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
}

func TestRateLimitHonoursContext(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer s.Close()

	cmd := New(WithHTTPClient(s.Client()), WithRateLimit(0.001, 1)).Build()

	req, err := http.NewRequest(http.MethodGet, s.URL, nil)
	require.NoError(t, err)
	resp, err := cmd.Do(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	// the single burst token is spent; the next call cannot get one before the deadline
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	require.NoError(t, err)
	_, err = cmd.Do(req)
	require.Error(t, err)
}

func TestRateLimitDisabled(t *testing.T) {
	b := New(WithRateLimit(0, 5))
	require.Empty(t, b.middlewares)
}
