package vtop

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"vtop-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
)

// occupied grid cells are marked by this exact background color; text
// alone is not enough because free cells repeat slot labels
const occupiedCellColor = "#CCFF33"

var weekdayLabels = map[string]bool{
	"MON": true, "TUE": true, "WED": true, "THU": true,
	"FRI": true, "SAT": true, "SUN": true,
}

type legendEntry struct {
	title   string
	faculty string
}

// parseLegend reads the per-student registered-course table that sits
// above the grid. It is the only source of course titles and faculty
// names; the grid itself carries just codes.
func parseLegend(doc *goquery.Document) map[string]legendEntry {
	legend := map[string]legendEntry{}

	rows := htmlutil.DirectRows(doc.Find("table#studentDetailsList"))
	rows.Each(func(_ int, row *goquery.Selection) {
		cells := htmlutil.CellTexts(row)
		if len(cells) > 0 && strings.EqualFold(cells[0], "Sl.No.") {
			return
		}
		if len(cells) < 5 {
			return
		}

		code, title, _ := strings.Cut(cells[2], " - ")
		slotPart, _, _ := strings.Cut(cells[3], " - ")
		entry := legendEntry{
			title:   strings.TrimSpace(title),
			faculty: cells[4],
		}
		for _, slot := range strings.Split(slotPart, "+") {
			slot = strings.TrimSpace(slot)
			if slot == "" {
				continue
			}
			legend[strings.TrimSpace(code)+"#"+slot] = entry
		}
	})

	return legend
}

// lab slot codes in the grid carry a leading "T" the legend's stored
// codes lack, so lookups retry with it stripped
func lookupLegend(legend map[string]legendEntry, code, slot string) (legendEntry, bool) {
	entry, ok := legend[code+"#"+slot]
	if ok {
		return entry, true
	}
	entry, ok = legend[code+"#"+strings.TrimPrefix(slot, "T")]
	return entry, ok
}

// ParseTimetable decodes the weekly grid. The grid interleaves two
// sub-grids: four header rows carry theory/lab period timings, then
// each weekday contributes a theory row and a lab row whose cells line
// up with those timings column by column.
func ParseTimetable(doc *goquery.Document) ([]TimetableDay, int) {
	legend := parseLegend(doc)
	skipped := 0

	var theoryTimes, labTimes []ClassTimings
	var out []TimetableDay

	section := ""
	rows := htmlutil.DirectRows(doc.Find("table#timeTableStyle"))
	nodes := rows.Nodes

	for i := 0; i < len(nodes); i++ {
		row := rows.Eq(i)
		cells := htmlutil.CellTexts(row)
		if len(cells) == 0 {
			continue
		}

		switch {
		case strings.EqualFold(cells[0], "THEORY") && len(cells) > 1 && strings.EqualFold(cells[1], "Start"):
			section = "theory"
			theoryTimes = startTimings(cells[2:])
		case strings.EqualFold(cells[0], "LAB") && len(cells) > 1 && strings.EqualFold(cells[1], "Start"):
			section = "lab"
			labTimes = startTimings(cells[2:])
		case strings.EqualFold(cells[0], "End"):
			if section == "theory" {
				fillEndTimings(theoryTimes, cells[1:])
			} else if section == "lab" {
				fillEndTimings(labTimes, cells[1:])
			}
		case weekdayLabels[strings.ToUpper(cells[0])]:
			day := TimetableDay{Day: strings.ToUpper(cells[0])}

			// theory row: day label + "THEORY" lead the data cells
			day.Classes, skipped = appendSessions(
				day.Classes, row, 2, ClassTheory, theoryTimes, legend, skipped,
			)

			// the day cell spans both rows, so the lab row starts
			// with its "LAB" label directly
			if i+1 < len(nodes) {
				labRow := rows.Eq(i + 1)
				labCells := htmlutil.CellTexts(labRow)
				if len(labCells) > 0 && strings.EqualFold(labCells[0], "LAB") {
					day.Classes, skipped = appendSessions(
						day.Classes, labRow, 1, ClassLab, labTimes, legend, skipped,
					)
					i++
				}
			}

			out = append(out, day)
		}
	}

	return out, skipped
}

func startTimings(starts []string) []ClassTimings {
	out := make([]ClassTimings, len(starts))
	for i, s := range starts {
		out[i] = ClassTimings{Start: s}
	}
	return out
}

func fillEndTimings(timings []ClassTimings, ends []string) {
	for i := range timings {
		if i < len(ends) {
			timings[i].End = ends[i]
		}
	}
}

func appendSessions(
	classes []ClassSession,
	row *goquery.Selection,
	lead int,
	classType string,
	timings []ClassTimings,
	legend map[string]legendEntry,
	skipped int,
) ([]ClassSession, int) {
	row.ChildrenFiltered("td").Each(func(col int, td *goquery.Selection) {
		idx := col - lead
		if idx < 0 || idx >= len(timings) {
			return
		}
		if td.AttrOr("bgcolor", "") != occupiedCellColor {
			return
		}
		text := htmlutil.CellText(td)
		if text == "-" || strings.EqualFold(text, "Lunch") {
			return
		}

		// hyphen-delimited fixed fields: slot-courseCode-kind-venue...
		parts := strings.Split(text, "-")
		if len(parts) < 4 {
			skipped++
			return
		}
		slot := parts[0]
		courseCode := parts[1]
		venue := strings.Join(parts[3:len(parts)-1], "-")
		if len(parts) == 4 {
			venue = parts[3]
		}

		session := ClassSession{
			Type:       classType,
			Slot:       slot,
			CourseCode: courseCode,
			Venue:      venue,
			Timings:    timings[idx],
		}
		if entry, ok := lookupLegend(legend, courseCode, slot); ok {
			session.CourseTitle = entry.title
			session.Faculty = entry.faculty
		}
		classes = append(classes, session)
	})
	return classes, skipped
}

// MergeLabBlocks collapses back-to-back lab periods of the same course
// into one session spanning both, scanning sessions sorted by start
// time. Theory sessions and differing courses never merge.
// grid times render as "H:MM" or "HH:MM"; ordered lexicographically
// "14:00" would sort before "8:00". Unparseable times sort first.
func minuteOfDay(s string) int {
	h, m, found := strings.Cut(s, ":")
	if !found {
		return -1
	}
	hour, err1 := strconv.Atoi(strings.TrimSpace(h))
	minute, err2 := strconv.Atoi(strings.TrimSpace(m))
	if err1 != nil || err2 != nil {
		return -1
	}
	return hour*60 + minute
}

func MergeLabBlocks(days []TimetableDay) []TimetableDay {
	out := make([]TimetableDay, len(days))
	for i, day := range days {
		classes := slices.Clone(day.Classes)
		slices.SortStableFunc(classes, func(a, b ClassSession) int {
			return minuteOfDay(a.Timings.Start) - minuteOfDay(b.Timings.Start)
		})

		var merged []ClassSession
		for _, session := range classes {
			n := len(merged)
			if n > 0 &&
				merged[n-1].Type == ClassLab &&
				session.Type == ClassLab &&
				merged[n-1].CourseCode == session.CourseCode {
				merged[n-1].Timings.End = session.Timings.End
				continue
			}
			merged = append(merged, session)
		}

		out[i] = TimetableDay{Day: day.Day, Classes: merged}
	}
	return out
}

// Timetable fetches the weekly grid for a semester, with double lab
// periods merged.
func (c *Client) Timetable(ctx context.Context, semesterID string) ([]TimetableDay, error) {
	ctx, span := tracer.Start(ctx, "client:Timetable")
	defer span.End()
	span.SetAttributes(attribute.String("semester", semesterID))

	err := c.EnsureSession(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := c.postPage(ctx, timetableEndpoint, map[string]string{
		"semesterSubId": semesterID,
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fetch timetable: %w", err)
	}

	days, skipped := ParseTimetable(doc)
	reportSkipped(ctx, span, "timetable", skipped)
	return MergeLabBlocks(days), nil
}
