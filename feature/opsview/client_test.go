package opsview

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := NewClient(Config{
		URL:            url,
		Username:       "admin",
		Password:       "initial",
		TimeoutSeconds: 5,
	}, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	t.Run("MissingURL", func(t *testing.T) {
		_, err := NewClient(Config{}, zap.NewNop())
		require.Error(t, err)
	})

	t.Run("BareHostDefaultsToHTTPS", func(t *testing.T) {
		c, err := NewClient(Config{URL: "opsview.example.com", TimeoutSeconds: 5}, zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, "https://opsview.example.com", c.baseURL.String())
	})
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/login":
			var creds map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			assert.Equal(t, "admin", creds["username"])
			assert.Equal(t, "initial", creds["password"])
			_ = json.NewEncoder(w).Encode(map[string]string{"token": "abc123"})
		case "/rest/config/monitoringcluster":
			// Every call after login carries the session headers.
			assert.Equal(t, "admin", r.Header.Get(headerUsername))
			assert.Equal(t, "abc123", r.Header.Get(headerToken))
			_ = json.NewEncoder(w).Encode(page[Cluster]{List: []Cluster{{ID: "1", Name: "Cluster-01"}}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	require.NoError(t, c.Login(context.Background()))

	clusters, err := c.ListClusters(context.Background())
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Equal(t, "Cluster-01", clusters[0].Name)
}

func TestLoginWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"token": ""})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	err := c.Login(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no token")
}

func TestLogout(t *testing.T) {
	logouts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/rest/logout" {
			logouts++
		}
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	// Without a session there is nothing to invalidate.
	require.NoError(t, c.Logout(context.Background()))
	assert.Equal(t, 0, logouts)

	c.token = "abc123"
	require.NoError(t, c.Logout(context.Background()))
	assert.Equal(t, 1, logouts)
	assert.Empty(t, c.token)
}

func TestListHostsPaginates(t *testing.T) {
	var pages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/config/host", r.URL.Path)
		pageNo := r.URL.Query().Get("page")
		pages = append(pages, pageNo)

		resp := page[Host]{
			List:    []Host{{ID: "1", Name: "a"}, {ID: "2", Name: "b"}},
			Summary: pageSummary{Page: "1", TotalPages: "2"},
		}
		if pageNo == "2" {
			resp = page[Host]{
				List:    []Host{{ID: "3", Name: "c"}},
				Summary: pageSummary{Page: "2", TotalPages: "2"},
			}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	hosts, err := c.ListHosts(context.Background())
	require.NoError(t, err)

	assert.Len(t, hosts, 3)
	assert.Equal(t, []string{"1", "2"}, pages)
}

func TestReloadStatus(t *testing.T) {
	tests := []struct {
		name        string
		status      string
		wantPending bool
		wantErr     bool
	}{
		{"UpToDate", "uptodate", false, false},
		{"Pending", "pending", true, false},
		{"Unexpected", "exploded", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/rest/reload", r.URL.Path)
				_ = json.NewEncoder(w).Encode(map[string]string{"configuration_status": tt.status})
			}))
			defer srv.Close()

			c := newTestClient(t, srv.URL)
			pending, err := c.ReloadStatus(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPending, pending)
		})
	}
}

func TestDeleteHosts(t *testing.T) {
	var gotIDs []string
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/rest/config/host", r.URL.Path)
		gotIDs = r.URL.Query()["id"]
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	require.NoError(t, c.DeleteHosts(context.Background(), nil))
	assert.Equal(t, 0, calls)

	require.NoError(t, c.DeleteHosts(context.Background(), []string{"7", "9"}))
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"7", "9"}, gotIDs)
}

func TestAPIErrorClassification(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		wantTransient bool
		wantMsg       string
	}{
		{"Unauthorized", http.StatusUnauthorized, false, "opsview authentication failed"},
		{"Forbidden", http.StatusForbidden, false, "opsview authorization failed"},
		{"NotFound", http.StatusNotFound, false, "opsview API error (status 404)"},
		{"TooManyRequests", http.StatusTooManyRequests, true, "opsview API error (status 429)"},
		{"ServerError", http.StatusBadGateway, true, "opsview API error (status 502)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &APIError{StatusCode: tt.status, Err: errors.New("boom")}
			assert.Equal(t, tt.wantTransient, e.Transient())
			assert.Equal(t, tt.wantMsg, e.Error())
		})
	}

	t.Run("NoResponse", func(t *testing.T) {
		e := &APIError{Err: errors.New("connection refused")}
		assert.True(t, e.Transient())
		assert.Contains(t, e.Error(), "connection refused")
	})
}

func TestErrorCarriesResponseBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Host name already exists"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	err := c.CreateHost(context.Background(), Host{Name: "dupe"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Err.Error(), "Host name already exists")
}
