package vtop

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAttendance(t *testing.T) {
	doc := loadFixture(t, "attendance.html")

	rows, skipped := ParseAttendance(doc, "AP2025261")
	// one spacer row and one row with an unreadable count
	require.Equal(t, 2, skipped)
	require.Len(t, rows, 3)

	require.Equal(t, AttendanceSummary{
		CourseID:      "CSE1001",
		ClassType:     "ETH",
		CourseDetails: "CSE1001 - Problem Solving and Programming - Theory",
		FacultyName:   "JOHN DOE - SCOPE",
		Attended:      23,
		Total:         25,
		Percentage:    92,
		SemesterID:    "AP2025261",
	}, rows[0])

	require.Equal(t, "ELA", rows[1].ClassType)
	require.Equal(t, 88, rows[1].Percentage)

	// the onclick regex found nothing on this row; it is kept with
	// empty ids rather than dropped
	require.Equal(t, "", rows[2].CourseID)
	require.Equal(t, "", rows[2].ClassType)
	require.Equal(t, "MAT1011 - Calculus for Engineers - Theory", rows[2].CourseDetails)
	require.Equal(t, 75, rows[2].Percentage)
}

func TestParseAttendanceDetail(t *testing.T) {
	doc := loadFixture(t, "attendance_detail.html")

	detail, skipped := ParseAttendanceDetail(doc)
	require.Equal(t, 1, skipped)

	require.Equal(t, 10, detail.Present)
	require.Equal(t, 2, detail.Absent)
	require.Equal(t, 1, detail.OnDuty)
	require.Equal(t, 11, detail.Attended)
	require.Equal(t, 13, detail.Total)
	require.Equal(t, 85, detail.Percentage)

	require.Len(t, detail.Log, 4)

	first := detail.Log[0]
	require.Equal(t, "01-Aug-2025", first.Date)
	require.Equal(t, "A1", first.Slot)
	require.Equal(t, "MON", first.Day)
	require.Equal(t, "08:00-08:50", first.Time)
	require.Equal(t, "Present", first.Status)
	require.True(t, first.IsPresent)
	// a reason equal to the header label means no reason
	require.Equal(t, "", first.Reason)
	require.Equal(t, "01-Aug-2025#08:00-08:50", first.Key())

	require.False(t, detail.Log[1].IsPresent)
	require.Equal(t, "Medical leave not approved", detail.Log[1].Reason)

	// on duty counts as present
	require.True(t, detail.Log[2].IsPresent)

	require.Equal(t, "Not Posted", detail.Log[3].Status)
	require.False(t, detail.Log[3].IsPresent)
}

func TestIsPresentStatus(t *testing.T) {
	require.True(t, isPresentStatus("Present"))
	require.True(t, isPresentStatus(" on duty "))
	require.False(t, isPresentStatus("Absent"))
	require.False(t, isPresentStatus("Not Posted"))
	require.False(t, isPresentStatus(""))
}
