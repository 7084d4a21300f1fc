package apitest

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerRoutes(t *testing.T) {
	server := NewServer(WithCredentials("admin", "pw"))
	defer server.Close()

	tests := []struct {
		name        string
		method      string
		path        string
		contentType string
		body        string
		token       string
		want        int
	}{
		{name: "health", method: http.MethodGet, path: "/health", want: http.StatusOK},
		{name: "form login", method: http.MethodPost, path: "/api/auth/login", contentType: "application/x-www-form-urlencoded",
			body: url.Values{"username": {"admin"}, "password": {"pw"}}.Encode(), want: http.StatusOK},
		{name: "json login", method: http.MethodPost, path: "/api/auth/login", contentType: "application/json",
			body: `{"username":"admin","password":"pw"}`, want: http.StatusOK},
		{name: "bad password", method: http.MethodPost, path: "/api/auth/login", contentType: "application/json",
			body: `{"username":"admin","password":"no"}`, want: http.StatusUnauthorized},
		{name: "missing token", method: http.MethodGet, path: "/api/v1/accounts/", want: http.StatusUnauthorized},
		{name: "list", method: http.MethodGet, path: "/api/v1/accounts/", token: server.Token, want: http.StatusOK},
		{name: "meta", method: http.MethodGet, path: "/api/v1/leave-types/meta", token: server.Token, want: http.StatusOK},
		{name: "unknown id", method: http.MethodGet, path: "/api/v1/leave-types/nope", token: server.Token, want: http.StatusNotFound},
		{name: "create without parent", method: http.MethodPost, path: "/api/v1/leave-types/", contentType: "application/json",
			body: `{"Name":"Annual","Code":"LT-ANN","AccountId":"missing"}`, token: server.Token, want: http.StatusUnprocessableEntity},
		{name: "batch requires ids", method: http.MethodGet, path: "/api/v1/accounts/batch", token: server.Token, want: http.StatusUnprocessableEntity},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(tc.method, server.URL+tc.path, strings.NewReader(tc.body))
			require.NoError(t, err)
			if tc.contentType != "" {
				req.Header.Set("Content-Type", tc.contentType)
			}
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}

			res, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer res.Body.Close()

			assert.Equal(t, tc.want, res.StatusCode)
		})
	}
}

func TestServerRejectFormLogin(t *testing.T) {
	server := NewServer(RejectFormLogin())
	defer server.Close()

	res, err := http.PostForm(server.URL+"/api/auth/login", url.Values{"username": {server.Username}, "password": {server.Password}})
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
}

func TestServerFailOn(t *testing.T) {
	server := NewServer()
	defer server.Close()
	server.FailOn("health", http.StatusServiceUnavailable)

	res, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
}

func TestServerFailEvery(t *testing.T) {
	server := NewServer()
	defer server.Close()
	server.FailEvery("health", 3, http.StatusBadGateway)

	var got []int
	for i := 0; i < 6; i++ {
		res, err := http.Get(server.URL + "/health")
		require.NoError(t, err)
		got = append(got, res.StatusCode)
		res.Body.Close()
	}

	ok, bad := http.StatusOK, http.StatusBadGateway
	assert.Equal(t, []int{ok, ok, bad, ok, ok, bad}, got)
}
