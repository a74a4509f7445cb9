package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	require.Equal(t, "CSE1001 - Problem Solving", CleanText("\n\t  CSE1001   -\n Problem Solving \t"))
	require.Equal(t, "", CleanText("  \n\t "))
}

func TestCellTexts(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<table><tr>
			<td> 1 </td>
			<td>CSE1001 -
				Problem Solving</td>
			<td><span>85%</span></td>
		</tr></table>`))
	require.NoError(t, err)

	cells := CellTexts(doc.Find("tr").First())
	require.Equal(t, []string{"1", "CSE1001 - Problem Solving", "85%"}, cells)
}

func TestLabeledValue(t *testing.T) {
	require.Equal(t, "23", LabeledValue("Total Attended : 23"))
	require.Equal(t, "92%", LabeledValue("Attendance Percentage: 92%"))
	require.Equal(t, "", LabeledValue("no separator here"))
}
