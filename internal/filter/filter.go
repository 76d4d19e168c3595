// Package filter implements the tag-based filtering applied to a
// library's media at query time.
package filter

import (
	"sort"

	"github.com/mediadb/mediadb/internal/models"
)

// Match computes the media paths that pass the user's filter selection.
// tagsByPath maps each candidate to its (category, label) tags;
// filterTags is the flat user selection. With an empty selection every
// candidate passes.
//
// Within a category, OR mode requires a non-empty intersection with the
// selection and AND mode requires the selection to be a subset of the
// candidate's labels. Categories the selection touches are ANDed across
// regardless of mode; categories it does not touch impose no constraint.
func Match(tagsByPath map[string][]models.Tag, filterTags []models.Tag, mode models.FilterType) []string {
	paths := make([]string, 0, len(tagsByPath))
	if len(filterTags) == 0 {
		for p := range tagsByPath {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		return paths
	}

	wanted := groupLabels(filterTags)
	for p, tags := range tagsByPath {
		if matches(groupLabels(tags), wanted, mode) {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}

func matches(have, wanted map[string]map[string]bool, mode models.FilterType) bool {
	for category, labels := range have {
		wantedLabels, ok := wanted[category]
		if !ok {
			continue
		}
		if mode == models.FilterOr {
			if !intersects(labels, wantedLabels) {
				return false
			}
			continue
		}
		if !subset(wantedLabels, labels) {
			return false
		}
	}
	return true
}

func groupLabels(tags []models.Tag) map[string]map[string]bool {
	groups := make(map[string]map[string]bool)
	for _, t := range tags {
		labels, ok := groups[t.Category]
		if !ok {
			labels = make(map[string]bool)
			groups[t.Category] = labels
		}
		labels[t.Label] = true
	}
	return groups
}

func intersects(a, b map[string]bool) bool {
	for v := range a {
		if b[v] {
			return true
		}
	}
	return false
}

func subset(sub, super map[string]bool) bool {
	for v := range sub {
		if !super[v] {
			return false
		}
	}
	return true
}
