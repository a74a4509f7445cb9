package vtop

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParseTimetable(t *testing.T) {
	doc := loadFixture(t, "timetable.html")

	days, skipped := ParseTimetable(doc)
	require.Equal(t, 0, skipped)
	require.Len(t, days, 2)

	mon := days[0]
	require.Equal(t, "MON", mon.Day)
	// marked "-" and "Lunch" cells are not sessions, unmarked cells
	// are not sessions even when they carry slot text
	require.Len(t, mon.Classes, 4)

	require.Equal(t, ClassSession{
		Type:        ClassTheory,
		Slot:        "A1",
		CourseCode:  "CSE1001",
		CourseTitle: "Problem Solving and Programming",
		Faculty:     "JOHN DOE - SCOPE",
		Venue:       "AB1-202",
		Timings:     ClassTimings{Start: "08:00", End: "08:50"},
	}, mon.Classes[0])

	require.Equal(t, "MAT1011", mon.Classes[1].CourseCode)
	require.Equal(t, "JANE SMITH - SAS", mon.Classes[1].Faculty)

	// lab slot TL1 is not in the legend; the lookup retries with the
	// leading T stripped and lands on L1
	lab := mon.Classes[2]
	require.Equal(t, ClassLab, lab.Type)
	require.Equal(t, "TL1", lab.Slot)
	require.Equal(t, "CSE1001", lab.CourseCode)
	require.Equal(t, "JOHN DOE - SCOPE", lab.Faculty)
	require.Equal(t, ClassTimings{Start: "14:00", End: "14:50"}, lab.Timings)
	require.Equal(t, ClassTimings{Start: "14:51", End: "15:40"}, mon.Classes[3].Timings)

	tue := days[1]
	require.Equal(t, "TUE", tue.Day)
	require.Len(t, tue.Classes, 1)
	require.Equal(t, "TA1", tue.Classes[0].Slot)
	require.Equal(t, ClassTimings{Start: "09:00", End: "09:50"}, tue.Classes[0].Timings)
}

func TestMergeLabBlocks(t *testing.T) {
	days := []TimetableDay{{
		Day: "MON",
		Classes: []ClassSession{
			{
				Type: ClassLab, CourseCode: "X", Slot: "TL1",
				Timings: ClassTimings{Start: "14:00", End: "14:50"},
			},
			{
				Type: ClassLab, CourseCode: "X", Slot: "TL2",
				Timings: ClassTimings{Start: "14:50", End: "15:40"},
			},
		},
	}}

	merged := MergeLabBlocks(days)
	require.Len(t, merged[0].Classes, 1)
	require.Equal(t, ClassTimings{Start: "14:00", End: "15:40"}, merged[0].Classes[0].Timings)
}

func TestMergeLabBlocksKeepsDistinctCourses(t *testing.T) {
	days := []TimetableDay{{
		Day: "WED",
		Classes: []ClassSession{
			{
				Type: ClassTheory, CourseCode: "X",
				Timings: ClassTimings{Start: "14:00", End: "14:50"},
			},
			{
				Type: ClassLab, CourseCode: "X",
				Timings: ClassTimings{Start: "14:50", End: "15:40"},
			},
			{
				Type: ClassLab, CourseCode: "Y",
				Timings: ClassTimings{Start: "15:40", End: "16:30"},
			},
		},
	}}

	merged := MergeLabBlocks(days)
	if diff := cmp.Diff(days, merged); diff != "" {
		t.Fatalf("nothing should merge across types or courses:\n%s", diff)
	}
}

func TestMergeLabBlocksSortsByStart(t *testing.T) {
	days := []TimetableDay{{
		Day: "FRI",
		Classes: []ClassSession{
			{
				Type: ClassLab, CourseCode: "X",
				Timings: ClassTimings{Start: "14:50", End: "15:40"},
			},
			{
				Type: ClassLab, CourseCode: "X",
				Timings: ClassTimings{Start: "14:00", End: "14:50"},
			},
		},
	}}

	merged := MergeLabBlocks(days)
	require.Len(t, merged[0].Classes, 1)
	require.Equal(t, ClassTimings{Start: "14:00", End: "15:40"}, merged[0].Classes[0].Timings)
}

func TestMergeLabBlocksOrdersUnpaddedHours(t *testing.T) {
	// single-digit hours are not zero padded; "10:01" must not sort
	// before "9:10" the way a string comparison would put it
	days := []TimetableDay{{
		Day: "THU",
		Classes: []ClassSession{
			{
				Type: ClassLab, CourseCode: "X",
				Timings: ClassTimings{Start: "10:01", End: "10:50"},
			},
			{
				Type: ClassLab, CourseCode: "X",
				Timings: ClassTimings{Start: "9:10", End: "10:00"},
			},
		},
	}}

	merged := MergeLabBlocks(days)
	require.Len(t, merged[0].Classes, 1)
	require.Equal(t, ClassTimings{Start: "9:10", End: "10:50"}, merged[0].Classes[0].Timings)
}
