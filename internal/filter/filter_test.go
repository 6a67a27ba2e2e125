package filter

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/memory-map/internal/domain"
)

func testRecords() []domain.Record {
	return []domain.Record{
		{ID: 1, Author: "Aiko", Title: "Ramen stand", Description: "Late night noodles", HashtagText: "#food #travel", GenreText: "Food culture"},
		{ID: 2, Author: "Ken", Title: "Harbor", Description: "Boats at dawn", HashtagText: "#foodie", GenreText: "Work"},
		{ID: 4, Author: "Mio", Title: "Festival", Description: "Summer lanterns", HashtagText: "＃Matsuri #Summer", GenreText: "Events"},
		{ID: 5, Author: "Sora", Title: "School", Description: "First day", GenreText: ""},
	}
}

func ids(records []domain.Record) []int {
	out := make([]int, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestText(t *testing.T) {
	tests := []struct {
		name string
		term string
		want []int
	}{
		{"author", "ken", []int{2}},
		{"title case insensitive", "RAMEN", []int{1}},
		{"description", "lantern", []int{4}},
		{"hashtag substring", "food", []int{1, 2}},
		{"genre", "culture", []int{1}},
		{"no match", "volcano", []int{}},
		{"blank clears", "   ", []int{1, 2, 4, 5}},
		{"empty clears", "", []int{1, 2, 4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(testRecords(), Text(tt.term))
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestHashtag(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		want []int
	}{
		{"exact with marker", "#food", []int{1}},
		{"exact without marker", "food", []int{1}},
		{"case insensitive", "#FOODIE", []int{2}},
		{"full-width marker in data", "matsuri", []int{4}},
		{"full-width marker in target", "＃summer", []int{4}},
		{"no partial match", "#foo", []int{}},
		{"blank clears", "#", []int{1, 2, 4, 5}},
		{"only one marker stripped", "##food", []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(testRecords(), Hashtag(tt.tag))
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestHashtag_FoodVsFoodie(t *testing.T) {
	q := Hashtag("#food")
	assert.True(t, q.Match(domain.Record{HashtagText: "#food #travel"}))
	assert.False(t, q.Match(domain.Record{HashtagText: "#foodie"}))
}

func TestHashtag_DoubledMarkerInData(t *testing.T) {
	rec := domain.Record{HashtagText: "##food"}
	assert.False(t, Hashtag("food").Match(rec))
	assert.True(t, Hashtag("##food").Match(rec))
}

func TestApply_Idempotent(t *testing.T) {
	records := testRecords()
	q := Text("o")

	first := Apply(records, q)
	second := Apply(records, q)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("re-applying the same query changed the subset (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(testRecords(), records); diff != "" {
		t.Errorf("Apply mutated its input (-want +got):\n%s", diff)
	}
}

func TestApply_ReturnsNewSlice(t *testing.T) {
	records := testRecords()
	out := Apply(records, All())
	require.Len(t, out, len(records))

	out[0].Author = "changed"
	assert.Equal(t, "Aiko", records[0].Author)
}

func TestQuery_ModeReplaces(t *testing.T) {
	records := testRecords()
	subset := Apply(records, Hashtag("food"))
	assert.Equal(t, []int{1}, ids(subset))

	// A new query starts from the canonical set, not the previous subset.
	subset = Apply(records, Text("harbor"))
	assert.Equal(t, []int{2}, ids(subset))
}

func TestQuery_ZeroValueMatchesAll(t *testing.T) {
	var q Query
	assert.True(t, q.IsAll())
	assert.Len(t, Apply(testRecords(), q), 4)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "4 memories", All().Describe(4))
	assert.Equal(t, "1 memory", All().Describe(1))
	assert.Equal(t, `2 memories matching "food"`, Text("food").Describe(2))
	assert.Equal(t, "0 memories tagged #food", Hashtag("#food").Describe(0))
}
