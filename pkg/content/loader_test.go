package content

import (
	"strings"
	"testing"
)

func TestLibrary_EmbeddedLoads(t *testing.T) {
	lib := NewLibrary()
	if err := lib.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	for _, info := range Collections {
		records, err := lib.Records(info.Name)
		if err != nil {
			t.Fatalf("Records(%s) error = %v", info.Name, err)
		}
		if len(records) == 0 {
			t.Errorf("collection %s is empty", info.Name)
		}
	}
}

func TestLibrary_DestinationsOrderAndShape(t *testing.T) {
	lib := NewLibrary()
	dests, err := lib.Destinations()
	if err != nil {
		t.Fatalf("Destinations() error = %v", err)
	}
	if dests[0].ID != "sigiriya" {
		t.Errorf("first destination = %q, want sigiriya", dests[0].ID)
	}
	if dests[0].Name.Get(LangEN) != "Sigiriya Lion Rock" {
		t.Errorf("sigiriya EN name = %q", dests[0].Name.Get(LangEN))
	}
	if dests[0].Location != "Matale" {
		t.Errorf("sigiriya location = %q, want Matale", dests[0].Location)
	}
}

func TestLibrary_ReturnsCopies(t *testing.T) {
	lib := NewLibrary()
	first, err := lib.Foods()
	if err != nil {
		t.Fatalf("Foods() error = %v", err)
	}
	first[0].ID = "mutated"

	second, _ := lib.Foods()
	if second[0].ID == "mutated" {
		t.Error("mutating a returned slice changed the store")
	}
}

func TestLibrary_ReturnsDeepCopies(t *testing.T) {
	lib := NewLibrary()
	dests, err := lib.Destinations()
	if err != nil {
		t.Fatalf("Destinations() error = %v", err)
	}
	want := dests[0].Name.Get(LangEN)
	dests[0].Name[LangEN] = "mutated"
	dests[0].Description[LangSI] = "mutated"
	if len(dests[0].Tips) > 0 {
		dests[0].Tips[0] = "mutated"
	}

	recs, err := lib.Records(CollectionDestinations)
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if got := recs[0].RecordName().Get(LangEN); got != want {
		t.Errorf("store name = %q after mutating a typed copy, want %q", got, want)
	}
	recs[0].RecordName()[LangEN] = "mutated again"

	again, _ := lib.Destinations()
	if got := again[0].Name.Get(LangEN); got != want {
		t.Errorf("store name = %q after mutating a record copy, want %q", got, want)
	}
	if again[0].Description.Get(LangSI) == "mutated" {
		t.Error("description map is shared with the store")
	}
	if len(again[0].Tips) > 0 && again[0].Tips[0] == "mutated" {
		t.Error("tips slice is shared with the store")
	}
}

func TestLibrary_UnknownCollection(t *testing.T) {
	lib := NewLibrary()
	if _, err := lib.Records("spaceships"); err == nil {
		t.Error("expected error for unknown collection")
	}
}

func TestLibrary_InvalidContent(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "bad yaml",
			yaml:    "destinations: [",
			wantErr: "parse yaml",
		},
		{
			name: "duplicate id",
			yaml: `
destinations:
  - {id: a, name: {EN: A, SI: අ}, category: beach}
  - {id: a, name: {EN: B, SI: ආ}, category: beach}
`,
			wantErr: "duplicate id",
		},
		{
			name: "missing sinhala name",
			yaml: `
foods:
  - {id: a, name: {EN: A}, category: main}
`,
			wantErr: "EN and SI",
		},
		{
			name: "category outside set",
			yaml: `
festivals:
  - {id: a, name: {EN: A, SI: අ}, category: beach}
`,
			wantErr: "not in",
		},
		{
			name: "all is not a stored category",
			yaml: `
music:
  - {id: a, name: {EN: A, SI: අ}, category: all}
`,
			wantErr: "not in",
		},
		{
			name: "empty id",
			yaml: `
phrases:
  - {name: {EN: A, SI: අ}, category: greeting}
`,
			wantErr: "empty id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := NewLibraryFromBytes([]byte(tt.yaml))
			err := lib.Load()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
			// Every accessor reports the same failure.
			if _, err := lib.Destinations(); err == nil {
				t.Error("Destinations() should fail after a bad load")
			}
		})
	}
}

func TestLocalizedText_Complete(t *testing.T) {
	if !(LocalizedText{LangEN: "a", LangSI: "අ"}).Complete() {
		t.Error("both entries present should be complete")
	}
	if (LocalizedText{LangEN: "a", LangSI: ""}).Complete() {
		t.Error("empty SI entry should not be complete")
	}
}

func TestLookupCollection(t *testing.T) {
	info, ok := LookupCollection(CollectionDestinations)
	if !ok {
		t.Fatal("destinations not found")
	}
	if !info.HasLocation {
		t.Error("destinations should have locations")
	}
	if !info.HasCategory(CategoryBeach) {
		t.Error("beach should be a destination category")
	}
	if info.HasCategory(CategoryAll) {
		t.Error("all must not be a stored category")
	}
	if _, ok := LookupCollection("nope"); ok {
		t.Error("unexpected collection")
	}
}
