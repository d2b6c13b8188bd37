package calls

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var (
	day1 = time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	day2 = time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC)
	day3 = time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC)
)

func call(id string, typ CallType, dir Direction, at time.Time) Call {
	return Call{ID: id, CallType: typ, Direction: dir, CreatedAt: at, From: "+33100000" + id, To: "+33200000" + id}
}

func ids(records []Call) []string {
	out := make([]string, 0, len(records))
	for _, c := range records {
		out = append(out, c.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	records := []Call{
		call("1", CallTypeMissed, DirectionInbound, day1),
		call("2", CallTypeAnswered, DirectionOutbound, day1),
		call("3", CallTypeMissed, DirectionInbound, day2),
		call("4", CallTypeVoicemail, DirectionInbound, day2),
		call("5", CallTypeMissed, DirectionOutbound, day3),
	}

	tests := []struct {
		name    string
		filters Filters
		want    []string
	}{
		{name: "all and all", filters: DefaultFilters(), want: []string{"1", "2", "3", "4", "5"}},
		{name: "missed only", filters: Filters{CallType: "missed", Direction: FilterAll}, want: []string{"1", "3", "5"}},
		{name: "outbound only", filters: Filters{CallType: FilterAll, Direction: "outbound"}, want: []string{"2", "5"}},
		{name: "missed inbound", filters: Filters{CallType: "missed", Direction: "inbound"}, want: []string{"1", "3"}},
		{name: "voicemail outbound", filters: Filters{CallType: "voicemail", Direction: "outbound"}, want: []string{}},
		{name: "unknown selector treated as all", filters: Filters{CallType: "bogus", Direction: ""}, want: []string{"1", "2", "3", "4", "5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(records, tt.filters)
			if diff := cmp.Diff(tt.want, ids(got)); diff != "" {
				t.Errorf("Filter() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilterDoesNotMutateSource(t *testing.T) {
	records := []Call{
		call("1", CallTypeMissed, DirectionInbound, day1),
		call("2", CallTypeAnswered, DirectionOutbound, day1),
		call("3", CallTypeMissed, DirectionOutbound, day2),
	}
	before := append([]Call(nil), records...)

	_ = Filter(records, Filters{CallType: "missed", Direction: "outbound"})

	if diff := cmp.Diff(before, records); diff != "" {
		t.Fatalf("source list changed (-before +after):\n%s", diff)
	}
}

func TestGroupByDateFirstOccurrenceOrder(t *testing.T) {
	records := []Call{
		call("a", CallTypeMissed, DirectionInbound, day2),
		call("b", CallTypeMissed, DirectionInbound, day1),
		call("c", CallTypeMissed, DirectionInbound, day2.Add(time.Hour)),
		call("d", CallTypeMissed, DirectionInbound, day3),
		call("e", CallTypeMissed, DirectionInbound, day1.Add(2*time.Hour)),
	}

	flat := GroupByDate(records, time.UTC)

	var got []string
	var keys []string
	for _, gc := range flat {
		got = append(got, gc.ID)
		keys = append(keys, gc.DateKey)
	}
	if diff := cmp.Diff([]string{"a", "c", "b", "e", "d"}, got); diff != "" {
		t.Errorf("GroupByDate() order mismatch (-want +got):\n%s", diff)
	}
	wantKeys := []string{"Wed Mar 06 2024", "Wed Mar 06 2024", "Tue Mar 05 2024", "Tue Mar 05 2024", "Thu Mar 07 2024"}
	if diff := cmp.Diff(wantKeys, keys); diff != "" {
		t.Errorf("GroupByDate() keys mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupByDateIsIdempotent(t *testing.T) {
	records := []Call{
		call("a", CallTypeMissed, DirectionInbound, day2),
		call("b", CallTypeMissed, DirectionInbound, day1),
		call("c", CallTypeMissed, DirectionInbound, day2),
	}
	once := GroupByDate(records, time.UTC)

	regrouped := make([]Call, 0, len(once))
	for _, gc := range once {
		regrouped = append(regrouped, gc.Call)
	}
	twice := GroupByDate(regrouped, time.UTC)

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("regrouping changed the sequence (-once +twice):\n%s", diff)
	}
}

func TestGroupByDateUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	// 02:00 UTC on the 6th is still the 5th five hours west.
	at := time.Date(2024, 3, 6, 2, 0, 0, 0, time.UTC)

	flat := GroupByDate([]Call{call("x", CallTypeAnswered, DirectionOutbound, at)}, loc)

	if flat[0].DateKey != "Tue Mar 05 2024" {
		t.Fatalf("DateKey = %q, want %q", flat[0].DateKey, "Tue Mar 05 2024")
	}
}

func TestBuildListingExample(t *testing.T) {
	records := []Call{
		call("1", CallTypeMissed, DirectionInbound, day1),
		call("2", CallTypeAnswered, DirectionOutbound, day1),
		call("3", CallTypeMissed, DirectionInbound, day2),
	}

	l := BuildListing(records, Filters{CallType: "missed", Direction: FilterAll}, PageParams{Page: 1, PageSize: 5}, time.UTC)

	if l.Total != 2 {
		t.Fatalf("Total = %d, want 2", l.Total)
	}
	type row struct {
		ID     string
		Key    string
		Header bool
	}
	var got []row
	for _, r := range l.Rows {
		got = append(got, row{ID: r.ID, Key: r.DateKey, Header: r.ShowHeader})
	}
	want := []row{
		{ID: "1", Key: "Tue Mar 05 2024", Header: true},
		{ID: "3", Key: "Wed Mar 06 2024", Header: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildListing() rows mismatch (-want +got):\n%s", diff)
	}
	if !l.ShowPagination() {
		t.Error("expected pagination to be shown")
	}
}

func TestBuildListingHeaderWhenPageStartsMidGroup(t *testing.T) {
	records := []Call{
		call("1", CallTypeMissed, DirectionInbound, day1),
		call("2", CallTypeMissed, DirectionInbound, day1),
		call("3", CallTypeMissed, DirectionInbound, day1),
		call("4", CallTypeMissed, DirectionInbound, day2),
	}

	l := BuildListing(records, DefaultFilters(), PageParams{Page: 2, PageSize: 2}, time.UTC)

	if len(l.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(l.Rows))
	}
	if l.Rows[0].ID != "3" || !l.Rows[0].ShowHeader {
		t.Errorf("first row = %s header=%v, want 3 with header", l.Rows[0].ID, l.Rows[0].ShowHeader)
	}
	if l.Rows[1].ID != "4" || !l.Rows[1].ShowHeader {
		t.Errorf("second row = %s header=%v, want 4 with header", l.Rows[1].ID, l.Rows[1].ShowHeader)
	}
}

func TestBuildListingEmptyResultHidesPagination(t *testing.T) {
	records := []Call{call("1", CallTypeAnswered, DirectionInbound, day1)}

	l := BuildListing(records, Filters{CallType: "voicemail", Direction: FilterAll}, PageParams{Page: 1, PageSize: 5}, time.UTC)

	if len(l.Rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(l.Rows))
	}
	if l.ShowPagination() {
		t.Error("pagination must be hidden for an empty filtered result")
	}
}

func TestBuildListingOutOfRangePage(t *testing.T) {
	records := []Call{
		call("1", CallTypeMissed, DirectionInbound, day1),
		call("2", CallTypeMissed, DirectionInbound, day2),
	}

	l := BuildListing(records, DefaultFilters(), PageParams{Page: 4, PageSize: 5}, time.UTC)

	if len(l.Rows) != 0 {
		t.Fatalf("expected empty page, got %d rows", len(l.Rows))
	}
	if !l.ShowPagination() {
		t.Error("pagination stays visible while the filtered list is non-empty")
	}
	if l.TotalPages() != 1 {
		t.Errorf("TotalPages() = %d, want 1", l.TotalPages())
	}
}
