package calls

// FilterAll is the selector value that matches every record.
const FilterAll = "all"

// Filters holds the two independent selectors of the list view. Each field
// is FilterAll or one concrete enum value.
type Filters struct {
	CallType  string
	Direction string
}

// DefaultFilters returns the selectors a new session starts with.
func DefaultFilters() Filters {
	return Filters{CallType: FilterAll, Direction: FilterAll}
}

// ParseCallTypeFilter validates a call type selector.
func ParseCallTypeFilter(v string) (string, bool) {
	switch CallType(v) {
	case CallTypeMissed, CallTypeAnswered, CallTypeVoicemail:
		return v, true
	}
	if v == FilterAll {
		return v, true
	}
	return "", false
}

// ParseDirectionFilter validates a direction selector.
func ParseDirectionFilter(v string) (string, bool) {
	switch Direction(v) {
	case DirectionInbound, DirectionOutbound:
		return v, true
	}
	if v == FilterAll {
		return v, true
	}
	return "", false
}

// Normalize replaces unknown or empty selectors with FilterAll.
func (f Filters) Normalize() Filters {
	if v, ok := ParseCallTypeFilter(f.CallType); ok {
		f.CallType = v
	} else {
		f.CallType = FilterAll
	}
	if v, ok := ParseDirectionFilter(f.Direction); ok {
		f.Direction = v
	} else {
		f.Direction = FilterAll
	}
	return f
}

// Filter applies the call type selector and then the direction selector.
// The input slice is never modified; the result shares no backing array
// with it.
func Filter(records []Call, f Filters) []Call {
	f = f.Normalize()

	byType := make([]Call, 0, len(records))
	for _, c := range records {
		if f.CallType == FilterAll || string(c.CallType) == f.CallType {
			byType = append(byType, c)
		}
	}

	if f.Direction == FilterAll {
		return byType
	}
	out := byType[:0]
	for _, c := range byType {
		if string(c.Direction) == f.Direction {
			out = append(out, c)
		}
	}
	return out
}
