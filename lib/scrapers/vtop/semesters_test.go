package vtop

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSemesters(t *testing.T) {
	doc := loadFixture(t, "semesters.html")

	semesters := ParseSemesters(doc)
	require.Equal(t, []Semester{
		{ID: "AP2025262", Name: "Winter Semester 2025-26"},
		{ID: "AP2025261", Name: "Fall Semester 2025-26"},
		{ID: "AP2024252", Name: "Winter Semester 2024-25"},
	}, semesters)
}
