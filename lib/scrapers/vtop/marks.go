package vtop

import (
	"context"
	"fmt"
	"strings"
	"vtop-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
)

// ParseMarks walks the marks table, where each course row is
// immediately followed by an auxiliary row holding a nested sub-table
// of per-assessment lines. Row i pairs with row i+1; i+1 is consumed
// only when a nested table was actually found, so a course without a
// parseable sub-table still yields an empty marks list.
func ParseMarks(doc *goquery.Document) ([]MarksRecord, int) {
	var out []MarksRecord
	skipped := 0

	rows := htmlutil.DirectRows(doc.Find("table.customTable").First())
	nodes := rows.Nodes

	for i := 0; i < len(nodes); i++ {
		row := rows.Eq(i)
		cells := htmlutil.CellTexts(row)
		if len(cells) > 0 && strings.EqualFold(cells[0], "Sl.No.") {
			continue
		}
		if len(cells) < 8 {
			skipped++
			continue
		}

		record := MarksRecord{
			Marks:       []MarkLine{},
			ClassNumber: cells[1],
			CourseCode:  cells[2],
			CourseTitle: cells[3],
			CourseType:  cells[4],
			Faculty:     cells[5],
			Slot:        cells[6],
			Mode:        cells[7],
		}

		if i+1 < len(nodes) {
			nested := rows.Eq(i + 1).Find("table").First()
			if nested.Length() > 0 {
				record.Marks = parseMarkLines(nested)
				i++
			}
		}

		out = append(out, record)
	}

	return out, skipped
}

func parseMarkLines(table *goquery.Selection) []MarkLine {
	lines := []MarkLine{}
	htmlutil.DirectRows(table).Each(func(_ int, row *goquery.Selection) {
		cells := htmlutil.CellTexts(row)
		if len(cells) > 0 && strings.EqualFold(cells[0], "Sl.No.") {
			return
		}
		if len(cells) < 8 {
			return
		}
		lines = append(lines, MarkLine{
			Title:         cells[1],
			Max:           cells[2],
			Weightage:     cells[3],
			Status:        cells[4],
			Scored:        cells[5],
			WeightageMark: cells[6],
			Remark:        cells[7],
		})
	})
	return lines
}

// Marks fetches the per-assessment marks breakdown for a semester.
func (c *Client) Marks(ctx context.Context, semesterID string) ([]MarksRecord, error) {
	ctx, span := tracer.Start(ctx, "client:Marks")
	defer span.End()
	span.SetAttributes(attribute.String("semester", semesterID))

	err := c.EnsureSession(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := c.postPage(ctx, marksEndpoint, map[string]string{
		"semesterSubId": semesterID,
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fetch marks: %w", err)
	}

	records, skipped := ParseMarks(doc)
	reportSkipped(ctx, span, "marks", skipped)
	return records, nil
}
