package date

import "iter"

// Range represents a range of dates.
type Range struct{ From, To Date }

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// Days iterates over every day of the range, backward from To down to From.
func (r Range) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for on := r.To; !on.Before(r.From); on = on.Add(-1) {
			if !yield(on) {
				return
			}
		}
	}
}

// Span returns the smallest range containing all days.
// The zero Range is returned when days is empty.
func Span(days ...Date) Range {
	var r Range
	for i, on := range days {
		if i == 0 || on.Before(r.From) {
			r.From = on
		}
		if i == 0 || on.After(r.To) {
			r.To = on
		}
	}
	return r
}

// String formats the range as "from..to".
func (r Range) String() string { return r.From.String() + ".." + r.To.String() }
