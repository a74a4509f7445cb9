package refresher

// Buffer is the answer to "how far am I from the attendance cutoff":
// exactly one of the fields is ever nonzero.
type Buffer struct {
	// classes that can still be skipped without dropping below the
	// minimum percentage
	CanSkip int
	// consecutive classes that must be attended to climb back over it
	Needed int
}

// CalcBufferClasses computes the skip/need buffer from a course's
// attended and absent counts against a minimum percentage (the portal
// convention is 75). minPercent above 99 is clamped: at 100 the
// "classes needed" series never converges.
func CalcBufferClasses(minPercent, attended, absent int) Buffer {
	if minPercent > 99 {
		minPercent = 99
	}
	if minPercent <= 0 {
		return Buffer{}
	}
	total := attended + absent
	if total == 0 {
		return Buffer{}
	}

	if attended*100 >= minPercent*total {
		// largest n with attended/(total+n) still >= min
		return Buffer{CanSkip: (attended*100 - minPercent*total) / minPercent}
	}

	// smallest n with (attended+n)/(total+n) >= min
	gap := minPercent*total - attended*100
	step := 100 - minPercent
	return Buffer{Needed: (gap + step - 1) / step}
}
