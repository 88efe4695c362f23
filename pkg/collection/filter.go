package collection

import (
	"strings"

	"github.com/user/ainspire/pkg/pipeline"
)

// Options lists, per category, the sorted distinct labels present in the
// classified images. Categories with no labels are absent.
type Options map[pipeline.Category][]string

// Query selects images from the collection.
type Query struct {
	// Filters requires an exact label match for each listed category.
	Filters map[pipeline.Category]string
	// Search is matched case-insensitively against the source name and
	// every label.
	Search string
}

// FilterOptions returns the filter choices for the current collection.
func (s *Store) FilterOptions() Options {
	return OptionsFor(s.Images())
}

// Filter returns the classified images matching q, in collection order.
func (s *Store) Filter(q Query) []pipeline.ReferenceImage {
	return Apply(s.Images(), q)
}

// OptionsFor computes filter options over images.
func OptionsFor(images []pipeline.ReferenceImage) Options {
	opts := make(Options)
	for _, cat := range pipeline.Categories {
		if labels := pipeline.SortedLabels(images, cat); len(labels) > 0 {
			opts[cat] = labels
		}
	}
	return opts
}

// Apply runs category filters first, then the search query on the result.
func Apply(images []pipeline.ReferenceImage, q Query) []pipeline.ReferenceImage {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]pipeline.ReferenceImage, 0, len(images))
	for _, img := range images {
		if !matchesFilters(img, q.Filters) {
			continue
		}
		if needle != "" && !matchesSearch(img, needle) {
			continue
		}
		out = append(out, img)
	}
	return out
}

func matchesFilters(img pipeline.ReferenceImage, filters map[pipeline.Category]string) bool {
	for cat, want := range filters {
		if want == "" {
			continue
		}
		if img.Classifications[cat] != want {
			return false
		}
	}
	return true
}

func matchesSearch(img pipeline.ReferenceImage, needle string) bool {
	if strings.Contains(strings.ToLower(img.SourceName), needle) {
		return true
	}
	for _, v := range img.Classifications {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}
