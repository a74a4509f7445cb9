package refresher

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalcBufferClasses(t *testing.T) {
	cases := []struct {
		name       string
		minPercent int
		attended   int
		absent     int
		want       Buffer
	}{
		{"exactly on the line", 75, 30, 10, Buffer{CanSkip: 0}},
		{"comfortably above", 75, 33, 7, Buffer{CanSkip: 4}},
		{"below the line", 75, 20, 10, Buffer{Needed: 10}},
		{"just below", 75, 29, 11, Buffer{Needed: 4}},
		{"no classes yet", 75, 0, 0, Buffer{}},
		{"zero minimum", 0, 10, 10, Buffer{}},
		{"hundred percent clamps", 100, 99, 1, Buffer{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, CalcBufferClasses(c.minPercent, c.attended, c.absent))
		})
	}
}

// the buffer must be self-consistent: skipping CanSkip classes stays at
// or above the minimum, skipping one more falls below; attending Needed
// classes climbs back over.
func TestCalcBufferClassesConsistent(t *testing.T) {
	atLeast := func(attended, total, min int) bool {
		return attended*100 >= min*total
	}

	for attended := 0; attended <= 50; attended++ {
		for absent := 0; absent <= 50; absent++ {
			total := attended + absent
			if total == 0 {
				continue
			}
			b := CalcBufferClasses(75, attended, absent)
			if b.Needed > 0 {
				require.False(t, atLeast(attended, total, 75))
				require.True(t, atLeast(attended+b.Needed, total+b.Needed, 75))
				require.False(t, atLeast(attended+b.Needed-1, total+b.Needed-1, 75))
			} else {
				require.True(t, atLeast(attended, total+b.CanSkip, 75))
				require.False(t, atLeast(attended, total+b.CanSkip+1, 75))
			}
		}
	}
}
