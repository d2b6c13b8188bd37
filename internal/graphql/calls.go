package graphql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jw6ventures/callhistory/internal/calls"
	"github.com/jw6ventures/callhistory/internal/metrics"
)

var errNullData = fmt.Errorf("graphql: %w", calls.ErrNoData)

const callFields = `
  id
  direction
  from
  to
  duration
  via
  is_archived
  call_type
  created_at
  notes {
    id
    content
  }
`

// PaginatedCallsQuery fetches one window of calls.
const PaginatedCallsQuery = `query PaginatedCalls($offset: Float = 0, $limit: Float = 10) {
  paginatedCalls(offset: $offset, limit: $limit) {
    nodes {` + callFields + `}
    totalCount
    hasNextPage
  }
}`

// CallQuery fetches a single call by id.
const CallQuery = `query Call($id: String!) {
  call(id: $id) {` + callFields + `}
}`

const pingQuery = `query Ping { __typename }`

type noteNode struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

type callNode struct {
	ID         string     `json:"id"`
	Direction  string     `json:"direction"`
	From       string     `json:"from"`
	To         string     `json:"to"`
	Duration   float64    `json:"duration"`
	Via        string     `json:"via"`
	IsArchived bool       `json:"is_archived"`
	CallType   string     `json:"call_type"`
	CreatedAt  time.Time  `json:"created_at"`
	Notes      []noteNode `json:"notes"`
}

func (n callNode) toCall() calls.Call {
	c := calls.Call{
		ID:         n.ID,
		Direction:  calls.Direction(n.Direction),
		CallType:   calls.CallType(n.CallType),
		From:       n.From,
		To:         n.To,
		Via:        n.Via,
		Duration:   int64(n.Duration),
		IsArchived: n.IsArchived,
		CreatedAt:  n.CreatedAt,
	}
	for _, note := range n.Notes {
		c.Notes = append(c.Notes, calls.Note{ID: note.ID, Content: note.Content})
	}
	return c
}

// PaginatedCalls implements calls.Source.
func (c *Client) PaginatedCalls(ctx context.Context, offset, limit int) (page *calls.Page, err error) {
	defer func(start time.Time) { metrics.ObserveFetch("paginated_calls", start, err) }(time.Now())

	var data struct {
		PaginatedCalls *struct {
			Nodes       []callNode `json:"nodes"`
			TotalCount  int        `json:"totalCount"`
			HasNextPage bool       `json:"hasNextPage"`
		} `json:"paginatedCalls"`
	}
	vars := map[string]any{"offset": offset, "limit": limit}
	if err := c.Do(ctx, PaginatedCallsQuery, vars, &data); err != nil {
		return nil, fmt.Errorf("paginated calls: %w", err)
	}
	if data.PaginatedCalls == nil {
		return nil, fmt.Errorf("paginated calls: %w", calls.ErrNoData)
	}

	out := &calls.Page{
		Nodes:       make([]calls.Call, 0, len(data.PaginatedCalls.Nodes)),
		TotalCount:  data.PaginatedCalls.TotalCount,
		HasNextPage: data.PaginatedCalls.HasNextPage,
	}
	for _, n := range data.PaginatedCalls.Nodes {
		out.Nodes = append(out.Nodes, n.toCall())
	}
	return out, nil
}

// Call implements calls.Source. A null call, or a "not found" GraphQL error,
// maps to calls.ErrNotFound.
func (c *Client) Call(ctx context.Context, id string) (call *calls.Call, err error) {
	defer func(start time.Time) { metrics.ObserveFetch("call", start, err) }(time.Now())

	var data struct {
		Call *callNode `json:"call"`
	}
	if err := c.Do(ctx, CallQuery, map[string]any{"id": id}, &data); err != nil {
		var gqlErrs Errors
		if errors.As(err, &gqlErrs) && gqlErrs.notFound() {
			return nil, calls.ErrNotFound
		}
		return nil, fmt.Errorf("call %s: %w", id, err)
	}
	if data.Call == nil {
		return nil, calls.ErrNotFound
	}
	found := data.Call.toCall()
	return &found, nil
}

// HealthCheck issues a trivial query to confirm the endpoint answers.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.Do(ctx, pingQuery, nil, nil); err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	return nil
}

func (e Errors) notFound() bool {
	for _, err := range e {
		if strings.Contains(strings.ToLower(err.Message), "not found") {
			return true
		}
	}
	return false
}
