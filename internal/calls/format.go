package calls

import (
	"fmt"
	"time"
)

// DateLayout is used for the per-row creation timestamp.
const DateLayout = "Jan 02 - 15:04"

// IsInbound reports whether the call was received.
func (c Call) IsInbound() bool {
	return c.Direction == DirectionInbound
}

// Title is the headline shown for the call's type.
func (c Call) Title() string {
	switch c.CallType {
	case CallTypeMissed:
		return "Missed call"
	case CallTypeAnswered:
		return "Call answered"
	default:
		return "Voicemail"
	}
}

// Subtitle names the other party: the caller for inbound calls, the callee
// otherwise.
func (c Call) Subtitle() string {
	if c.IsInbound() {
		return "from " + c.From
	}
	return "to " + c.To
}

// NotesCaption summarises attached notes; empty when there are none.
func (c Call) NotesCaption() string {
	if len(c.Notes) == 0 {
		return ""
	}
	return fmt.Sprintf("Call has %d notes", len(c.Notes))
}

// FormatDuration renders a millisecond duration as m:ss, or h:mm:ss once it
// reaches an hour. Sub-second remainders are truncated.
func FormatDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	secs := ms / 1000
	h, m, s := secs/3600, (secs%3600)/60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatDate renders t in loc using DateLayout. A nil loc means UTC.
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}
