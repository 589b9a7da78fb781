package query

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"

	"github.com/HerbHall/lankaportal/pkg/content"
)

func dest(id, en, si string, cat content.Category, loc string) content.Destination {
	return content.Destination{
		ID:       id,
		Name:     content.LocalizedText{content.LangEN: en, content.LangSI: si},
		Category: cat,
		Location: loc,
	}
}

func ids[R content.Record](records []R) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.RecordID())
	}
	return out
}

func twoDestinations() []content.Destination {
	return []content.Destination{
		dest("sigiriya", "Sigiriya Lion Rock", "සීගිරිය", content.CategoryAncient, "Matale"),
		dest("ella", "Ella Nine Arch Bridge", "ඇල්ල නව ආරුක්කු පාලම", content.CategoryMountains, "Badulla"),
	}
}

// nameContains is the substring property written without MatchText: EN
// case-insensitive, SI exact after NFC.
func nameContains(name content.LocalizedText, s string) bool {
	return strings.Contains(strings.ToLower(name.Get(content.LangEN)), strings.ToLower(s)) ||
		strings.Contains(norm.NFC.String(name.Get(content.LangSI)), norm.NFC.String(s))
}

func embeddedDestinations(t *testing.T) []content.Destination {
	t.Helper()
	d, err := content.NewLibrary().Destinations()
	require.NoError(t, err)
	return d
}

func TestExecute_ConcreteScenario(t *testing.T) {
	records := twoDestinations()

	got := Execute(records, Build[content.Destination](Spec{Category: content.CategoryAncient, Location: All}))
	assert.Equal(t, []string{"sigiriya"}, ids(got))

	got = Execute(records, Build[content.Destination](Spec{Category: content.CategoryAll, Location: All, SearchText: "ella"}))
	assert.Equal(t, []string{"ella"}, ids(got))

	got = Execute(records, Build[content.Destination](Spec{Category: content.CategoryBeach, Location: All}))
	assert.Empty(t, got)
	assert.Equal(t, 0, Paginate(got, 6, 1).TotalPages)
}

func TestBuild_Clauses(t *testing.T) {
	records := twoDestinations()

	tests := []struct {
		name string
		spec Spec
		want []string
	}{
		{"zero spec matches all", Spec{}, []string{"sigiriya", "ella"}},
		{"explicit all", Spec{Category: content.CategoryAll, Location: All}, []string{"sigiriya", "ella"}},
		{"location", Spec{Location: "Badulla"}, []string{"ella"}},
		{"category and location disagree", Spec{Category: content.CategoryAncient, Location: "Badulla"}, []string{}},
		{"unknown category", Spec{Category: "volcano"}, []string{}},
		{"unknown location", Spec{Location: "Atlantis"}, []string{}},
		{"search upper case", Spec{SearchText: "LION"}, []string{"sigiriya"}},
		{"search padded", Spec{SearchText: "  rock "}, []string{}},
		{"search with inner space", Spec{SearchText: "lion rock"}, []string{"sigiriya"}},
		{"search sinhala", Spec{SearchText: "ඇල්ල"}, []string{"ella"}},
		{"search no match", Spec{SearchText: "zzz"}, []string{}},
		{"whitespace search is literal", Spec{SearchText: "   "}, []string{}},
		{"single space matches spaced names", Spec{SearchText: " "}, []string{"sigiriya", "ella"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Execute(records, Build[content.Destination](tt.spec))
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestMatchText(t *testing.T) {
	name := content.LocalizedText{content.LangEN: "Temple of the Sacred Tooth Relic", content.LangSI: "ශ්‍රී දළදා මාළිගාව"}

	assert.True(t, MatchText(name, ""))
	assert.True(t, MatchText(name, "sacred tooth"))
	assert.True(t, MatchText(name, "TEMPLE"))
	assert.True(t, MatchText(name, "දළදා"))
	assert.False(t, MatchText(name, "ගාල්ල"))
	assert.False(t, MatchText(name, "sacred  tooth"))
	assert.False(t, MatchText(name, " temple"))
	assert.False(t, MatchText(name, "\t"))
	assert.True(t, MatchText(name, "relic"))
	assert.False(t, MatchText(name, "relic "))
}

func TestExecute_Soundness(t *testing.T) {
	records := embeddedDestinations(t)
	info, _ := content.LookupCollection(content.CollectionDestinations)

	locations := append(Locations(records), All, "Nowhere")
	categories := append([]content.Category{content.CategoryAll, "unknown"}, info.Categories...)
	searches := []string{"", "park", "BEACH", "ශ්‍රී", "a", " rock", "  park ", " "}

	for _, c := range categories {
		for _, loc := range locations {
			for _, s := range searches {
				spec := Spec{Category: c, Location: loc, SearchText: s}
				for _, r := range Execute(records, Build[content.Destination](spec)) {
					if c != content.CategoryAll {
						assert.Equal(t, c, r.Category, "spec %+v", spec)
					}
					if loc != All {
						assert.Equal(t, loc, r.Location, "spec %+v", spec)
					}
					assert.True(t, nameContains(r.Name, s), "spec %+v returned %s", spec, r.ID)
				}
			}
		}
	}
}

func TestExecute_PreservesOrderAndInput(t *testing.T) {
	records := embeddedDestinations(t)
	before := ids(records)

	first := Execute(records, Build[content.Destination](Spec{SearchText: "a"}))
	second := Execute(records, Build[content.Destination](Spec{SearchText: "a"}))

	assert.Equal(t, ids(first), ids(second), "execute must be idempotent")
	assert.Equal(t, before, ids(records), "input must not be reordered")

	// Result follows store order.
	pos := make(map[string]int, len(records))
	for i, r := range records {
		pos[r.ID] = i
	}
	for i := 1; i < len(first); i++ {
		assert.Less(t, pos[first[i-1].ID], pos[first[i].ID])
	}
}

func TestCountByCategory(t *testing.T) {
	records := embeddedDestinations(t)
	info, _ := content.LookupCollection(content.CollectionDestinations)

	for _, loc := range []string{All, "Matale", "Galle", "Nowhere"} {
		for _, s := range []string{"", "national", "a"} {
			counts := CountByCategory(records, info.Categories, loc, s)

			want := len(Execute(records, Build[content.Destination](Spec{Location: loc, SearchText: s})))
			assert.Equal(t, want, counts[content.CategoryAll], "all count loc=%s q=%s", loc, s)

			sum := 0
			for _, c := range info.Categories {
				n := len(Execute(records, Build[content.Destination](Spec{Category: c, Location: loc, SearchText: s})))
				assert.Equal(t, n, counts[c], "category %s loc=%s q=%s", c, loc, s)
				sum += counts[c]
			}
			assert.Equal(t, counts[content.CategoryAll], sum, "exclusive categories must sum to all")
		}
	}
}

func TestCountByCategory_UsesLocationFilter(t *testing.T) {
	records := embeddedDestinations(t)
	info, _ := content.LookupCollection(content.CollectionDestinations)

	counts := CountByCategory(records, info.Categories, "Galle", "")
	assert.Equal(t, 2, counts[content.CategoryAll])
	assert.Equal(t, 1, counts[content.CategoryAncient])
	assert.Equal(t, 1, counts[content.CategoryBeach])
	assert.Equal(t, 0, counts[content.CategoryWildlife])
}

func TestPaginate_CoversSequenceWithoutOverlap(t *testing.T) {
	records := embeddedDestinations(t)

	for n := 0; n <= len(records); n++ {
		for _, size := range []int{1, 4, 6, 7, 50} {
			t.Run(fmt.Sprintf("n=%d/size=%d", n, size), func(t *testing.T) {
				seq := records[:n]
				first := Paginate(seq, size, 1)
				wantPages := (n + size - 1) / size
				require.Equal(t, wantPages, first.TotalPages)

				seen := map[string]bool{}
				total := 0
				for p := 1; p <= first.TotalPages; p++ {
					page := Paginate(seq, size, p)
					for _, r := range page.Items {
						assert.False(t, seen[r.ID], "record %s on more than one page", r.ID)
						seen[r.ID] = true
					}
					total += len(page.Items)
				}
				assert.Equal(t, n, total)
			})
		}
	}
}

func TestPaginate_OutOfRange(t *testing.T) {
	records := twoDestinations()

	tests := []struct {
		name       string
		size, page int
		wantPages  int
	}{
		{"page zero", 1, 0, 2},
		{"negative page", 1, -3, 2},
		{"past end", 1, 3, 2},
		{"zero size", 0, 1, 0},
		{"negative size", -2, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(records, tt.size, tt.page)
			assert.NotNil(t, p.Items)
			assert.Empty(t, p.Items)
			assert.Equal(t, tt.wantPages, p.TotalPages)
		})
	}
}

func TestPaginate_Slices(t *testing.T) {
	records := embeddedDestinations(t)
	p := Paginate(records, 6, 3)
	assert.Equal(t, ids(records[12:18]), ids(p.Items))
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, len(records), p.Total)
}

func TestSuggest(t *testing.T) {
	records := embeddedDestinations(t)

	assert.Empty(t, Suggest(records, "", 5))
	assert.Empty(t, Suggest(records, "s", 5))
	assert.Empty(t, Suggest(records, "si", 0))

	got := Suggest(records, "si", 5)
	assert.LessOrEqual(t, len(got), 5)
	assert.NotEmpty(t, got)
	for _, r := range got {
		assert.True(t, nameContains(r.Name, "si"), "%s does not match", r.ID)
	}

	// First N matches in store order win.
	all := Execute(records, Build[content.Destination](Spec{SearchText: "si"}))
	assert.Equal(t, ids(all[:len(got)]), ids(got))
}

func TestSuggest_KeepsWhitespace(t *testing.T) {
	records := twoDestinations()
	assert.Equal(t, []string{"sigiriya"}, ids(Suggest(records, " r", 5)))
	assert.Equal(t, []string{"sigiriya"}, ids(Suggest(records, " rock", 5)))
	assert.Empty(t, Suggest(records, " rock ", 5))
	assert.Empty(t, Suggest(records, "  ", 5))
}

func TestSuggest_SinhalaTwoRunes(t *testing.T) {
	records := twoDestinations()
	got := Suggest(records, "සී", 5)
	assert.Equal(t, []string{"sigiriya"}, ids(got))
}

func TestSuggest_Truncates(t *testing.T) {
	records := embeddedDestinations(t)
	got := Suggest(records, "an", 2)
	assert.Len(t, got, 2)
}

func TestSuggestions_StopsEarly(t *testing.T) {
	records := embeddedDestinations(t)
	n := 0
	for range Suggestions(records, "an", 10) {
		n++
		if n == 1 {
			break
		}
	}
	assert.Equal(t, 1, n)
}

func TestRelated(t *testing.T) {
	records := embeddedDestinations(t)
	var sigiriya content.Destination
	for _, r := range records {
		if r.ID == "sigiriya" {
			sigiriya = r
		}
	}

	got := Related(records, sigiriya, DefaultRelatedLimit)
	assert.Len(t, got, 3)
	for _, r := range got {
		assert.NotEqual(t, "sigiriya", r.ID)
		assert.True(t, r.Category == sigiriya.Category || r.Location == sigiriya.Location)
	}
	assert.Empty(t, Related(records, sigiriya, 0))
}

func TestLocations(t *testing.T) {
	records := []content.Destination{
		dest("a", "A", "අ", content.CategoryBeach, "Galle"),
		dest("b", "B", "ආ", content.CategoryBeach, "Matara"),
		dest("c", "C", "ඇ", content.CategoryBeach, "Galle"),
		dest("d", "D", "ඈ", content.CategoryBeach, ""),
	}
	assert.Equal(t, []string{"Galle", "Matara"}, Locations(records))
}

func TestState_ResetsPageOnFilterChange(t *testing.T) {
	s := NewState(0).WithPage(3)
	require.Equal(t, 3, s.Page)
	require.Equal(t, DefaultPageSize, s.PageSize)

	assert.Equal(t, 1, s.WithCategory(content.CategoryBeach).Page)
	assert.Equal(t, 1, s.WithLocation("Galle").Page)
	assert.Equal(t, 1, s.WithSearch("fort").Page)

	// Re-selecting the active value is not a change.
	assert.Equal(t, 3, s.WithCategory(content.CategoryAll).Page)
	assert.Equal(t, 3, s.WithCategory("").Page)
	assert.Equal(t, 3, s.WithLocation(All).Page)
	assert.Equal(t, 3, s.WithSearch("").Page)
	assert.Equal(t, 1, s.WithPage(-4).Page)
}

func TestRun_FilterChangeFromDeepPage(t *testing.T) {
	// Ten pages of two records each, two of which are beaches.
	var records []content.Destination
	for i := 0; i < 20; i++ {
		cat := content.CategoryAncient
		if i == 4 || i == 17 {
			cat = content.CategoryBeach
		}
		records = append(records, dest(fmt.Sprintf("d%d", i), fmt.Sprintf("Place %d", i), "ස්ථානය", cat, "Galle"))
	}

	s := NewState(2).WithPage(3)
	page := Run(records, s)
	require.Equal(t, 10, page.TotalPages)
	require.Equal(t, 3, page.Page)

	page = Run(records, s.WithCategory(content.CategoryBeach))
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, []string{"d4", "d17"}, ids(page.Items))
}

func TestRun_PastLastPageIsEmpty(t *testing.T) {
	records := twoDestinations()
	s := State{Spec: Spec{Category: content.CategoryAll, Location: All}, Page: 5, PageSize: 1}
	page := Run(records, s)
	assert.Equal(t, 5, page.Page)
	assert.Equal(t, 2, page.TotalPages)
	assert.Empty(t, page.Items)

	direct := Paginate(Execute(records, Build[content.Destination](s.Spec)), 1, 5)
	assert.Equal(t, direct, page)
}
