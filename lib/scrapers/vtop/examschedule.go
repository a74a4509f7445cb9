package vtop

import (
	"context"
	"fmt"
	"strings"
	"vtop-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
)

// ParseExamSchedule reads the flat exam table: a wide single-cell row
// opens a new exam-type group ("FAT", "CAT1", ...), the row right
// after it is a column-header row to discard, then fixed 13-column
// data rows follow. Groups that accumulate no data rows are dropped.
func ParseExamSchedule(doc *goquery.Document) ([]ExamGroup, int) {
	var out []ExamGroup
	skipped := 0

	var current *ExamGroup
	expectHeader := false

	flush := func() {
		if current != nil && len(current.Rows) > 0 {
			out = append(out, *current)
		}
		current = nil
	}

	rows := htmlutil.DirectRows(doc.Find("table#examScheduleTable"))
	rows.Each(func(_ int, row *goquery.Selection) {
		cells := htmlutil.CellTexts(row)

		if len(cells) == 1 {
			flush()
			name := strings.TrimSpace(cells[0])
			if name == "" {
				skipped++
				return
			}
			current = &ExamGroup{Type: name}
			expectHeader = true
			return
		}
		if expectHeader {
			expectHeader = false
			return
		}
		if current == nil {
			skipped++
			return
		}
		if len(cells) < 13 {
			skipped++
			return
		}

		current.Rows = append(current.Rows, ExamRow{
			CourseCode:    cells[1],
			CourseTitle:   cells[2],
			CourseType:    cells[3],
			ClassID:       cells[4],
			Slot:          cells[5],
			ExamDate:      cells[6],
			ExamSession:   cells[7],
			ReportingTime: cells[8],
			ExamTime:      cells[9],
			Venue:         cells[10],
			SeatLocation:  cells[11],
			SeatNo:        cells[12],
		})
	})
	flush()

	return out, skipped
}

// ExamSchedule fetches the exam seating/schedule groups for a
// semester.
func (c *Client) ExamSchedule(ctx context.Context, semesterID string) ([]ExamGroup, error) {
	ctx, span := tracer.Start(ctx, "client:ExamSchedule")
	defer span.End()
	span.SetAttributes(attribute.String("semester", semesterID))

	err := c.EnsureSession(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := c.postPage(ctx, examScheduleEndpoint, map[string]string{
		"semesterSubId": semesterID,
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fetch exam schedule: %w", err)
	}

	groups, skipped := ParseExamSchedule(doc)
	reportSkipped(ctx, span, "exam schedule", skipped)
	return groups, nil
}
