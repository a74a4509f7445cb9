package vtop

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"vtop-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
)

// the only place the server exposes raw course/class ids is the
// argument list of an inline onclick handler. fragile, but load
// bearing; fixtures in testdata pin its behavior.
var onclickArgsRegex = regexp.MustCompile(`\(\s*'([^']*)'\s*,\s*'([^']*)'`)

func parseCount(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

// percentages render as "85", "85%" or "85.71" depending on template
func parsePercent(s string) (int, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(f + 0.5), true
}

// ParseAttendance extracts one summary row per course-section from the
// attendance table. Rows whose onclick regex fails to match are kept
// with empty ids; rows whose counts are unreadable are skipped and
// counted.
func ParseAttendance(doc *goquery.Document, semesterID string) ([]AttendanceSummary, int) {
	var out []AttendanceSummary
	skipped := 0

	table := doc.Find("table#AttendanceDetailDataTable")
	htmlutil.DirectRows(table).Each(func(_ int, row *goquery.Selection) {
		cells := htmlutil.CellTexts(row)
		// header rows are not reliably the 0th row, match on content
		if len(cells) > 0 && strings.EqualFold(cells[0], "Sl.No.") {
			return
		}
		if len(cells) < 8 {
			// spacer/separator rows
			skipped++
			return
		}

		attended, okAttended := parseCount(cells[4])
		total, okTotal := parseCount(cells[5])
		percentage, okPercent := parsePercent(cells[6])
		if !okAttended || !okTotal || !okPercent {
			skipped++
			return
		}

		summary := AttendanceSummary{
			CourseDetails: cells[1],
			FacultyName:   cells[3],
			Attended:      attended,
			Total:         total,
			Percentage:    percentage,
			SemesterID:    semesterID,
		}

		onclick, _ := row.Find("a[onclick]").First().Attr("onclick")
		groups := onclickArgsRegex.FindStringSubmatch(onclick)
		if len(groups) == 3 {
			summary.CourseID = groups[1]
			summary.ClassType = groups[2]
		}

		out = append(out, summary)
	})

	return out, skipped
}

// ParseAttendanceDetail reads the two independent tables of a
// per-course attendance page: the labeled counters and the session
// log. isPresent is always derived here, never read off the server.
func ParseAttendanceDetail(doc *goquery.Document) (AttendanceDetail, int) {
	var detail AttendanceDetail
	skipped := 0

	doc.Find("span").Each(func(_ int, span *goquery.Selection) {
		text := htmlutil.CellText(span)
		label, _, found := strings.Cut(text, ":")
		if !found {
			return
		}
		value := htmlutil.LabeledValue(text)
		switch strings.ToLower(strings.TrimSpace(label)) {
		case "present":
			detail.Present, _ = parseCount(value)
		case "absent":
			detail.Absent, _ = parseCount(value)
		case "on duty":
			detail.OnDuty, _ = parseCount(value)
		case "attended":
			detail.Attended, _ = parseCount(value)
		case "total":
			detail.Total, _ = parseCount(value)
		case "percentage":
			detail.Percentage, _ = parsePercent(value)
		}
	})

	table := doc.Find("table#StudentAttendanceDetailDataTable")
	htmlutil.DirectRows(table).Each(func(_ int, row *goquery.Selection) {
		cells := htmlutil.CellTexts(row)
		// locale-dependent literal header labels, reproduced as-is;
		// if the portal renames them this misfires silently
		if containsAll(cells, "Date", "Slot", "Status") {
			return
		}
		if len(cells) < 6 {
			skipped++
			return
		}

		day, classTime, _ := strings.Cut(cells[3], " / ")
		status := cells[4]
		reason := cells[5]
		// the reason column echoes its own header label when empty
		if strings.EqualFold(reason, "Remarks") {
			reason = ""
		}

		detail.Log = append(detail.Log, AttendanceLogEntry{
			Date:      cells[1],
			Slot:      cells[2],
			Day:       strings.TrimSpace(day),
			Time:      strings.TrimSpace(classTime),
			Status:    status,
			IsPresent: isPresentStatus(status),
			Reason:    reason,
		})
	})

	return detail, skipped
}

func isPresentStatus(status string) bool {
	s := strings.ToLower(strings.TrimSpace(status))
	return s == "present" || s == "on duty"
}

func containsAll(cells []string, want ...string) bool {
	found := 0
	for _, w := range want {
		for _, c := range cells {
			if strings.EqualFold(c, w) {
				found++
				break
			}
		}
	}
	return found == len(want)
}

// Attendance fetches the per-course attendance summary for a semester.
func (c *Client) Attendance(ctx context.Context, semesterID string) ([]AttendanceSummary, error) {
	ctx, span := tracer.Start(ctx, "client:Attendance")
	defer span.End()
	span.SetAttributes(attribute.String("semester", semesterID))

	err := c.EnsureSession(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := c.postPage(ctx, attendanceEndpoint, map[string]string{
		"semesterSubId": semesterID,
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fetch attendance: %w", err)
	}

	rows, skipped := ParseAttendance(doc, semesterID)
	reportSkipped(ctx, span, "attendance", skipped)
	return rows, nil
}

// AttendanceDetail fetches the dated session log for one course
// section.
func (c *Client) AttendanceDetail(ctx context.Context, semesterID, courseID, classType string) (AttendanceDetail, error) {
	ctx, span := tracer.Start(ctx, "client:AttendanceDetail")
	defer span.End()
	span.SetAttributes(
		attribute.String("course", courseID),
		attribute.String("class_type", classType),
	)

	err := c.EnsureSession(ctx)
	if err != nil {
		return AttendanceDetail{}, err
	}

	doc, err := c.postPage(ctx, attendanceDetailEndpoint, map[string]string{
		"semesterSubId":  semesterID,
		"registerNumber": c.username(),
		"courseId":       courseID,
		"courseType":     classType,
	})
	if err != nil {
		span.RecordError(err)
		return AttendanceDetail{}, fmt.Errorf("fetch attendance detail: %w", err)
	}

	detail, skipped := ParseAttendanceDetail(doc)
	reportSkipped(ctx, span, "attendance detail", skipped)
	return detail, nil
}
