package vtop

import (
	"context"
	"fmt"
	"vtop-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// ParseSemesters reads the semester <select>'s non-empty options in
// document order. That order is load-bearing: the first entry is the
// portal's idea of the current semester.
func ParseSemesters(doc *goquery.Document) []Semester {
	var out []Semester
	doc.Find("select#semesterSubId option").Each(func(_ int, opt *goquery.Selection) {
		id := opt.AttrOr("value", "")
		if id == "" {
			return
		}
		out = append(out, Semester{
			ID:   id,
			Name: htmlutil.CellText(opt),
		})
	})
	return out
}

// Semesters fetches the semester list, which doubles as the session
// probe page.
func (c *Client) Semesters(ctx context.Context) ([]Semester, error) {
	ctx, span := tracer.Start(ctx, "client:Semesters")
	defer span.End()

	err := c.EnsureSession(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := c.postPage(ctx, semesterListEndpoint, map[string]string{
		"verifyMenu": "true",
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fetch semesters: %w", err)
	}

	return ParseSemesters(doc), nil
}
