package calls

import (
	"context"
	"errors"
	"time"
)

// Direction tells whether a call was received or placed.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// CallType is the outcome of a call.
type CallType string

const (
	CallTypeMissed    CallType = "missed"
	CallTypeAnswered  CallType = "answered"
	CallTypeVoicemail CallType = "voicemail"
)

// Note is a free-text annotation attached to a call.
type Note struct {
	ID      string
	Content string
}

// Call is one logged phone call as returned by a Source. Records are
// treated as read-only once fetched.
type Call struct {
	ID         string
	Direction  Direction
	CallType   CallType
	From       string
	To         string
	Via        string
	Duration   int64 // milliseconds
	IsArchived bool
	CreatedAt  time.Time
	Notes      []Note
}

// Page is one window of calls fetched from a Source.
type Page struct {
	Nodes       []Call
	TotalCount  int
	HasNextPage bool
}

var (
	// ErrNotFound is returned when a single call lookup has no match.
	ErrNotFound = errors.New("calls: not found")
	// ErrNoData is returned when the source answered without a payload.
	ErrNoData = errors.New("calls: no data returned")
)

// Source fetches call records from the system that owns them.
type Source interface {
	PaginatedCalls(ctx context.Context, offset, limit int) (*Page, error)
	Call(ctx context.Context, id string) (*Call, error)
	HealthCheck(ctx context.Context) error
}
