package composer

import (
	"testing"

	"letrystudio/models"

	"github.com/stretchr/testify/assert"
)

func item(id, name string) models.WardrobeItem {
	return models.WardrobeItem{ImageRef: models.ImageRef{ID: id, Name: name, MIMEType: "image/png"}}
}

func itemIDs(items []models.WardrobeItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestResolveSelectionDropsUnknownNames(t *testing.T) {
	items := []models.WardrobeItem{item("1", "A"), item("2", "B")}

	assert.Equal(t, []string{"2"}, itemIDs(resolveSelection(items, []string{"Z", "B"})))
	assert.Empty(t, resolveSelection(items, []string{"C"}))
}

func TestResolveSelectionIsExactMatch(t *testing.T) {
	items := []models.WardrobeItem{item("1", "Blue Jeans")}

	assert.Empty(t, resolveSelection(items, []string{"blue jeans"}))
	assert.Empty(t, resolveSelection(items, []string{"Blue Jeans "}))
}

func TestResolveSelectionIncludesAllDuplicates(t *testing.T) {
	items := []models.WardrobeItem{item("1", "tee"), item("2", "jeans"), item("3", "tee")}

	got := resolveSelection(items, []string{"jeans", "tee", "tee"})
	assert.Equal(t, []string{"2", "1", "3"}, itemIDs(got))
}

func TestCandidateNamesAreUnique(t *testing.T) {
	items := []models.WardrobeItem{item("1", "tee"), item("2", "jeans"), item("3", "tee")}

	assert.Equal(t, []string{"tee", "jeans"}, candidateNames(items))
}

func TestPreferredNames(t *testing.T) {
	items := []models.WardrobeItem{item("1", "tee"), item("2", "jeans")}

	assert.Equal(t, []string{"jeans"}, preferredNames(items, []string{"2", "missing"}))
	assert.Nil(t, preferredNames(items, nil))
}
