package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jw6ventures/callhistory/internal/calls"
	"github.com/jw6ventures/callhistory/internal/config"
)

const paginatedPayload = `{
  "data": {
    "paginatedCalls": {
      "nodes": [
        {
          "id": "4c0b6a53-8e2b-4c8f-9d2c-0a5f0a1e2b3c",
          "direction": "inbound",
          "from": "+33123456789",
          "to": "+33987654321",
          "duration": 65000,
          "via": "+33100000000",
          "is_archived": false,
          "call_type": "missed",
          "created_at": "2024-03-05T09:00:00.000Z",
          "notes": [{"id": "n1", "content": "call back"}]
        },
        {
          "id": "9a1f2e3d-4c5b-4a69-8877-665544332211",
          "direction": "outbound",
          "from": "+33100000000",
          "to": "+33555555555",
          "duration": 1200.0,
          "via": "+33100000000",
          "is_archived": true,
          "call_type": "answered",
          "created_at": "2024-03-06T10:30:00Z",
          "notes": []
        }
      ],
      "totalCount": 2,
      "hasNextPage": false
    }
  }
}`

type capturedRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

func newServer(t *testing.T, status int, payload string, seen *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		if seen != nil {
			body, _ := io.ReadAll(r.Body)
			assert.NoError(t, json.Unmarshal(body, seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, payload)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPaginatedCalls(t *testing.T) {
	var seen capturedRequest
	srv := newServer(t, http.StatusOK, paginatedPayload, &seen)
	client := NewClient(srv.URL, srv.Client())

	page, err := client.PaginatedCalls(context.Background(), 0, 100)
	require.NoError(t, err)

	assert.Contains(t, seen.Query, "paginatedCalls(offset: $offset, limit: $limit)")
	assert.EqualValues(t, 0, seen.Variables["offset"])
	assert.EqualValues(t, 100, seen.Variables["limit"])

	require.Len(t, page.Nodes, 2)
	assert.Equal(t, 2, page.TotalCount)
	assert.False(t, page.HasNextPage)

	first := page.Nodes[0]
	assert.Equal(t, calls.DirectionInbound, first.Direction)
	assert.Equal(t, calls.CallTypeMissed, first.CallType)
	assert.Equal(t, int64(65000), first.Duration)
	assert.Equal(t, time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC), first.CreatedAt.UTC())
	assert.Equal(t, []calls.Note{{ID: "n1", Content: "call back"}}, first.Notes)

	second := page.Nodes[1]
	assert.True(t, second.IsArchived)
	assert.Equal(t, int64(1200), second.Duration)
	assert.Empty(t, second.Notes)
}

func TestPaginatedCallsNullData(t *testing.T) {
	for name, payload := range map[string]string{
		"null data":      `{"data": null}`,
		"missing data":   `{}`,
		"null top field": `{"data": {"paginatedCalls": null}}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := newServer(t, http.StatusOK, payload, nil)
			_, err := NewClient(srv.URL, srv.Client()).PaginatedCalls(context.Background(), 0, 100)
			assert.ErrorIs(t, err, calls.ErrNoData)
		})
	}
}

func TestPaginatedCallsGraphQLErrors(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"errors":[{"message":"Unauthorized"}],"data":null}`, nil)

	_, err := NewClient(srv.URL, srv.Client()).PaginatedCalls(context.Background(), 0, 100)

	var gqlErrs Errors
	require.ErrorAs(t, err, &gqlErrs)
	assert.Equal(t, "Unauthorized", gqlErrs[0].Message)
	assert.NotErrorIs(t, err, calls.ErrNoData)
}

func TestPaginatedCallsHTTPStatus(t *testing.T) {
	srv := newServer(t, http.StatusBadGateway, `upstream down`, nil)

	_, err := NewClient(srv.URL, srv.Client()).PaginatedCalls(context.Background(), 0, 100)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
}

func TestPaginatedCallsHonoursContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewClient(srv.URL, srv.Client()).PaginatedCalls(ctx, 0, 100)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}

func TestCall(t *testing.T) {
	var seen capturedRequest
	srv := newServer(t, http.StatusOK, `{"data":{"call":{"id":"abc","direction":"outbound","call_type":"voicemail","duration":3000,"created_at":"2024-03-05T09:00:00Z"}}}`, &seen)

	got, err := NewClient(srv.URL, srv.Client()).Call(context.Background(), "abc")
	require.NoError(t, err)

	assert.Equal(t, "abc", seen.Variables["id"])
	assert.Equal(t, calls.CallTypeVoicemail, got.CallType)
	assert.Equal(t, calls.DirectionOutbound, got.Direction)
}

func TestCallNotFound(t *testing.T) {
	for name, payload := range map[string]string{
		"null call":       `{"data":{"call":null}}`,
		"not found error": `{"errors":[{"message":"Call not found","path":["call"]}],"data":null}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := newServer(t, http.StatusOK, payload, nil)
			_, err := NewClient(srv.URL, srv.Client()).Call(context.Background(), "missing")
			assert.ErrorIs(t, err, calls.ErrNotFound)
		})
	}
}

func TestHealthCheck(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"data":{"__typename":"Query"}}`, nil)
	assert.NoError(t, NewClient(srv.URL, srv.Client()).HealthCheck(context.Background()))

	down := newServer(t, http.StatusServiceUnavailable, ``, nil)
	assert.Error(t, NewClient(down.URL, down.Client()).HealthCheck(context.Background()))
}

func TestNewHTTPClientStaticToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `{"data":{"__typename":"Query"}}`)
	}))
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.API.Token = "static-token"
	httpClient, err := NewHTTPClient(context.Background(), cfg)
	require.NoError(t, err)

	require.NoError(t, NewClient(srv.URL, httpClient).HealthCheck(context.Background()))
	assert.Equal(t, "Bearer static-token", auth)
}

func TestNewHTTPClientDiscoversTokenEndpoint(t *testing.T) {
	var issuer string
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 issuer,
			"authorization_endpoint": issuer + "/authorize",
			"token_endpoint":         issuer + "/token",
			"jwks_uri":               issuer + "/jwks",
		})
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"issued-token","token_type":"bearer","expires_in":3600}`)
	})
	var auth string
	mux.HandleFunc("/graphql", func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `{"data":{"__typename":"Query"}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	issuer = srv.URL

	cfg := &config.Config{}
	cfg.API.ClientID = "callhistory"
	cfg.API.ClientSecret = "secret"
	cfg.API.IssuerURL = issuer
	httpClient, err := NewHTTPClient(context.Background(), cfg)
	require.NoError(t, err)

	require.NoError(t, NewClient(srv.URL+"/graphql", httpClient).HealthCheck(context.Background()))
	assert.Equal(t, "Bearer issued-token", auth)
}

func TestNewHTTPClientWithoutCredentials(t *testing.T) {
	httpClient, err := NewHTTPClient(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.Equal(t, upstreamTimeout, httpClient.Timeout)
}
