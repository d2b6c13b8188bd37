package calls

import "time"

// DateKeyLayout renders the date-only key used for grouping and headers,
// e.g. "Tue Mar 05 2024".
const DateKeyLayout = "Mon Jan 02 2006"

// GroupedCall is a call tagged with the date bucket it belongs to.
type GroupedCall struct {
	Call
	DateKey string
}

// DateKey formats the calendar date of t in loc. A nil loc means UTC.
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateKeyLayout)
}

// GroupByDate buckets records by their creation date and flattens the
// buckets back into one sequence. Buckets appear in the order their date was
// first seen and keep the relative order of their records.
func GroupByDate(records []Call, loc *time.Location) []GroupedCall {
	var order []string
	buckets := make(map[string][]GroupedCall)

	for _, c := range records {
		key := DateKey(c.CreatedAt, loc)
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], GroupedCall{Call: c, DateKey: key})
	}

	flat := make([]GroupedCall, 0, len(records))
	for _, key := range order {
		flat = append(flat, buckets[key]...)
	}
	return flat
}
