package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText collapses the whitespace soup server-rendered table cells
// come wrapped in down to a single-spaced trimmed string.
func CleanText(s string) string {
	s = removeNonPrintable(s)
	s = strings.Trim(s, " \t\n")
	return innerWhitespace.ReplaceAllString(s, " ")
}

func CellText(sel *goquery.Selection) string {
	return CleanText(sel.Text())
}

// CellTexts returns the cleaned text of every <td> directly under row.
func CellTexts(row *goquery.Selection) []string {
	cells := row.ChildrenFiltered("td")
	out := make([]string, cells.Length())
	cells.Each(func(i int, td *goquery.Selection) {
		out[i] = CleanText(td.Text())
	})
	return out
}

// DirectRows returns only the rows belonging to `table` itself, not
// rows of tables nested inside its cells.
func DirectRows(table *goquery.Selection) *goquery.Selection {
	rows := table.ChildrenFiltered("tbody").ChildrenFiltered("tr")
	if rows.Length() > 0 {
		return rows
	}
	return table.ChildrenFiltered("tr")
}

// LabeledValue pulls the value out of a "Label : value" span. The
// portal is inconsistent about spacing around the colon.
func LabeledValue(text string) string {
	_, value, found := strings.Cut(text, ":")
	if !found {
		return ""
	}
	return CleanText(value)
}
