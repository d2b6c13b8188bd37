package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jw6ventures/callhistory/internal/calls"
	"github.com/jw6ventures/callhistory/internal/metrics"
)

const callColumns = `id::text, direction, call_type, from_number, to_number, via, duration_ms, is_archived, created_at`

// PaginatedCalls returns calls newest first, skipping offset rows.
func (s *Store) PaginatedCalls(ctx context.Context, offset, limit int) (page *calls.Page, err error) {
	defer observeDB(ctx, "calls.list")()
	defer func(start time.Time) { metrics.ObserveFetch("paginated_calls", start, err) }(time.Now())

	if offset < 0 || limit < 0 {
		return nil, fmt.Errorf("invalid window offset=%d limit=%d", offset, limit)
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM calls`).Scan(&total); err != nil {
		return nil, fmt.Errorf("count calls: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+callColumns+` FROM calls ORDER BY created_at DESC, id OFFSET $1 LIMIT $2`,
		offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list calls: %w", err)
	}
	nodes, err := collectCalls(rows)
	if err != nil {
		return nil, fmt.Errorf("list calls: %w", err)
	}

	if err := s.attachNotes(ctx, nodes); err != nil {
		return nil, err
	}

	return &calls.Page{
		Nodes:       nodes,
		TotalCount:  total,
		HasNextPage: offset+len(nodes) < total,
	}, nil
}

// Call returns one call with its notes.
func (s *Store) Call(ctx context.Context, id string) (call *calls.Call, err error) {
	defer observeDB(ctx, "calls.get")()
	defer func(start time.Time) { metrics.ObserveFetch("call", start, err) }(time.Now())

	var c calls.Call
	row := s.pool.QueryRow(ctx, `SELECT `+callColumns+` FROM calls WHERE id = $1::uuid`, id)
	if err := scanCall(row, &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, calls.ErrNotFound
		}
		return nil, fmt.Errorf("get call %s: %w", id, err)
	}

	nodes := []calls.Call{c}
	if err := s.attachNotes(ctx, nodes); err != nil {
		return nil, err
	}
	return &nodes[0], nil
}

// attachNotes loads the notes of every call in nodes with one query.
func (s *Store) attachNotes(ctx context.Context, nodes []calls.Call) error {
	if len(nodes) == 0 {
		return nil
	}
	ids := make([]string, len(nodes))
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
		index[n.ID] = i
		nodes[i].Notes = []calls.Note{}
	}

	rows, err := s.pool.Query(ctx,
		`SELECT call_id::text, id::text, content FROM call_notes WHERE call_id = ANY($1::uuid[]) ORDER BY created_at, id`,
		ids)
	if err != nil {
		return fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var callID string
		var note calls.Note
		if err := rows.Scan(&callID, &note.ID, &note.Content); err != nil {
			return fmt.Errorf("scan note: %w", err)
		}
		if i, ok := index[callID]; ok {
			nodes[i].Notes = append(nodes[i].Notes, note)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("list notes: %w", err)
	}
	return nil
}

func collectCalls(rows pgx.Rows) ([]calls.Call, error) {
	defer rows.Close()
	out := []calls.Call{}
	for rows.Next() {
		var c calls.Call
		if err := scanCall(rows, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCall(row pgx.Row, c *calls.Call) error {
	var direction, callType string
	if err := row.Scan(&c.ID, &direction, &callType, &c.From, &c.To, &c.Via, &c.Duration, &c.IsArchived, &c.CreatedAt); err != nil {
		return err
	}
	c.Direction = calls.Direction(direction)
	c.CallType = calls.CallType(callType)
	return nil
}
