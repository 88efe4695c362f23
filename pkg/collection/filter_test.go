package collection

import (
	"testing"

	"github.com/user/ainspire/pkg/pipeline"
)

func sampleStore() *Store {
	s := NewStore()
	s.ReplaceAll([]pipeline.ReferenceImage{
		image("1", "Blade Runner.mp4", pipeline.Classification{
			pipeline.CategoryComposition: "Wide Shot",
			pipeline.CategoryLighting:    "Low-Key",
			pipeline.CategorySetting:     "Urban",
		}),
		image("2", "Meadow.mov", pipeline.Classification{
			pipeline.CategoryComposition: "Close-Up",
			pipeline.CategorySetting:     "Nature",
		}),
		image("3", "city_walk.mp4", pipeline.Classification{
			pipeline.CategoryComposition: "Wide Shot",
			pipeline.CategoryAction:      "Walking",
			pipeline.CategorySetting:     "Urban",
		}),
	})
	s.OnFrameOrJobCreated(job("4", "pending.mp4"))
	return s
}

func TestStore_FilterOptions(t *testing.T) {
	opts := sampleStore().FilterOptions()

	want := map[pipeline.Category][]string{
		pipeline.CategoryComposition: {"Close-Up", "Wide Shot"},
		pipeline.CategoryAction:      {"Walking"},
		pipeline.CategoryLighting:    {"Low-Key"},
		pipeline.CategorySetting:     {"Nature", "Urban"},
	}
	if len(opts) != len(want) {
		t.Fatalf("expected %d categories, got %v", len(want), opts)
	}
	for cat, labels := range want {
		if !equalStrings(opts[cat], labels) {
			t.Errorf("%s: got %v, want %v", cat, opts[cat], labels)
		}
	}
	if _, ok := opts[pipeline.CategoryColor]; ok {
		t.Error("color has no labels and should be absent")
	}
}

func TestStore_Filter(t *testing.T) {
	s := sampleStore()

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"no query returns classified only", Query{}, []string{"1", "2", "3"}},
		{"single filter", Query{Filters: map[pipeline.Category]string{pipeline.CategorySetting: "Urban"}}, []string{"1", "3"}},
		{"filters are combined", Query{Filters: map[pipeline.Category]string{
			pipeline.CategorySetting: "Urban",
			pipeline.CategoryAction:  "Walking",
		}}, []string{"3"}},
		{"empty filter value ignored", Query{Filters: map[pipeline.Category]string{pipeline.CategoryColor: ""}}, []string{"1", "2", "3"}},
		{"search source name", Query{Search: "blade"}, []string{"1"}},
		{"search label case-insensitive", Query{Search: "  CLOSE-up "}, []string{"2"}},
		{"search after filter", Query{
			Filters: map[pipeline.Category]string{pipeline.CategoryComposition: "Wide Shot"},
			Search:  "walk",
		}, []string{"3"}},
		{"no match", Query{Search: "underwater"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(s.Filter(tt.query))
			if !equalStrings(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
