package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mediadb/mediadb/internal/models"
)

func tag(category, label string) models.Tag {
	return models.Tag{Category: category, Label: label}
}

func TestMatchEmptyFilterReturnsEverything(t *testing.T) {
	tagsByPath := map[string][]models.Tag{
		"b/movie": {tag("genres", "Drama")},
		"a/movie": {tag("genres", "Action")},
		"c/bare":  nil,
	}

	got := Match(tagsByPath, nil, models.FilterOr)
	assert.Equal(t, []string{"a/movie", "b/movie", "c/bare"}, got)

	got = Match(tagsByPath, []models.Tag{}, models.FilterAnd)
	assert.Equal(t, []string{"a/movie", "b/movie", "c/bare"}, got)
}

func TestMatchOrNeedsOneLabelPerCategory(t *testing.T) {
	tagsByPath := map[string][]models.Tag{
		"action": {tag("genres", "Action"), tag("genres", "Thriller")},
		"drama":  {tag("genres", "Drama")},
	}

	got := Match(tagsByPath, []models.Tag{
		tag("genres", "Action"),
		tag("genres", "Comedy"),
	}, models.FilterOr)
	assert.Equal(t, []string{"action"}, got)
}

func TestMatchAndNeedsEveryLabelPerCategory(t *testing.T) {
	tagsByPath := map[string][]models.Tag{
		"both":   {tag("genres", "Action"), tag("genres", "Thriller")},
		"single": {tag("genres", "Action")},
	}

	selection := []models.Tag{
		tag("genres", "Action"),
		tag("genres", "Thriller"),
	}

	assert.Equal(t, []string{"both"}, Match(tagsByPath, selection, models.FilterAnd))
	// The same selection in OR mode accepts the partial overlap too.
	assert.Equal(t, []string{"both", "single"}, Match(tagsByPath, selection, models.FilterOr))
}

func TestMatchCategoriesCombineWithAnd(t *testing.T) {
	tagsByPath := map[string][]models.Tag{
		"match": {
			tag("genres", "Action"),
			tag("actors", "Pat Lee"),
		},
		"wrong-actor": {
			tag("genres", "Action"),
			tag("actors", "Sam Roe"),
		},
	}

	got := Match(tagsByPath, []models.Tag{
		tag("genres", "Action"),
		tag("actors", "Pat Lee"),
	}, models.FilterOr)
	assert.Equal(t, []string{"match"}, got)
}

func TestMatchIgnoresCategoriesAbsentFromCandidate(t *testing.T) {
	// A candidate with no tags in a selected category is unconstrained
	// by that category.
	tagsByPath := map[string][]models.Tag{
		"no-actors": {tag("genres", "Action")},
	}

	got := Match(tagsByPath, []models.Tag{
		tag("genres", "Action"),
		tag("actors", "Pat Lee"),
	}, models.FilterAnd)
	assert.Equal(t, []string{"no-actors"}, got)
}

func TestMatchOutputSorted(t *testing.T) {
	tagsByPath := map[string][]models.Tag{
		"z": {tag("genres", "Action")},
		"a": {tag("genres", "Action")},
		"m": {tag("genres", "Action")},
	}

	got := Match(tagsByPath, []models.Tag{tag("genres", "Action")}, models.FilterOr)
	assert.Equal(t, []string{"a", "m", "z"}, got)
}
