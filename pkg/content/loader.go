package content

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var contentRawData []byte

// contentFile is the top-level structure of the embedded YAML.
type contentFile struct {
	Destinations []Destination `yaml:"destinations"`
	Foods        []Food        `yaml:"foods"`
	Festivals    []Festival    `yaml:"festivals"`
	Hiking       []HikingSpot  `yaml:"hiking"`
	Map          []MapNode     `yaml:"map"`
	Phrases      []Phrase      `yaml:"phrases"`
	Music        []Song        `yaml:"music"`
}

// Library provides lazy-loaded, read-only access to every Record Store.
// Nothing is mutated after the first successful parse.
type Library struct {
	raw  []byte
	once sync.Once
	data contentFile
	err  error
}

// NewLibrary creates a Library over the embedded content that will parse the
// YAML on first access.
func NewLibrary() *Library {
	return &Library{raw: contentRawData}
}

// NewLibraryFromBytes creates a Library over caller-supplied YAML.
func NewLibraryFromBytes(raw []byte) *Library {
	return &Library{raw: raw}
}

// Load forces the parse and returns any parse or validation error.
func (l *Library) Load() error {
	l.once.Do(l.load)
	return l.err
}

// Destinations returns a deep copy of all destinations in store order.
func (l *Library) Destinations() ([]Destination, error) {
	if err := l.Load(); err != nil {
		return nil, err
	}
	return cloneSlice(l.data.Destinations), nil
}

// Foods returns a deep copy of all foods in store order.
func (l *Library) Foods() ([]Food, error) {
	if err := l.Load(); err != nil {
		return nil, err
	}
	return cloneSlice(l.data.Foods), nil
}

// Festivals returns a deep copy of all festivals in store order.
func (l *Library) Festivals() ([]Festival, error) {
	if err := l.Load(); err != nil {
		return nil, err
	}
	return cloneSlice(l.data.Festivals), nil
}

// Hiking returns a deep copy of all hiking spots in store order.
func (l *Library) Hiking() ([]HikingSpot, error) {
	if err := l.Load(); err != nil {
		return nil, err
	}
	return cloneSlice(l.data.Hiking), nil
}

// MapNodes returns a deep copy of all map nodes in store order.
func (l *Library) MapNodes() ([]MapNode, error) {
	if err := l.Load(); err != nil {
		return nil, err
	}
	return cloneSlice(l.data.Map), nil
}

// Phrases returns a deep copy of all phrases in store order.
func (l *Library) Phrases() ([]Phrase, error) {
	if err := l.Load(); err != nil {
		return nil, err
	}
	return cloneSlice(l.data.Phrases), nil
}

// Music returns a deep copy of all songs in store order.
func (l *Library) Music() ([]Song, error) {
	if err := l.Load(); err != nil {
		return nil, err
	}
	return cloneSlice(l.data.Music), nil
}

// Records returns deep copies of the named collection as generic records
// in store order.
func (l *Library) Records(name CollectionName) ([]Record, error) {
	if err := l.Load(); err != nil {
		return nil, err
	}
	switch name {
	case CollectionDestinations:
		return cloneRecords(l.data.Destinations), nil
	case CollectionFoods:
		return cloneRecords(l.data.Foods), nil
	case CollectionFestivals:
		return cloneRecords(l.data.Festivals), nil
	case CollectionHiking:
		return cloneRecords(l.data.Hiking), nil
	case CollectionMap:
		return cloneRecords(l.data.Map), nil
	case CollectionPhrases:
		return cloneRecords(l.data.Phrases), nil
	case CollectionMusic:
		return cloneRecords(l.data.Music), nil
	}
	return nil, fmt.Errorf("content: unknown collection %q", name)
}

// load parses and validates the YAML data.
func (l *Library) load() {
	var f contentFile
	if err := yaml.Unmarshal(l.raw, &f); err != nil {
		l.err = fmt.Errorf("content: parse yaml: %w", err)
		return
	}

	checks := []struct {
		name    CollectionName
		records []Record
	}{
		{CollectionDestinations, asRecords(f.Destinations)},
		{CollectionFoods, asRecords(f.Foods)},
		{CollectionFestivals, asRecords(f.Festivals)},
		{CollectionHiking, asRecords(f.Hiking)},
		{CollectionMap, asRecords(f.Map)},
		{CollectionPhrases, asRecords(f.Phrases)},
		{CollectionMusic, asRecords(f.Music)},
	}
	for _, c := range checks {
		info, _ := LookupCollection(c.name)
		if err := Validate(info, c.records); err != nil {
			l.err = err
			return
		}
	}
	l.data = f
}

// Validate checks the store invariants for one collection: unique ids,
// complete bilingual names and categories drawn from the fixed set.
func Validate(info CollectionInfo, records []Record) error {
	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		id := r.RecordID()
		if id == "" {
			return fmt.Errorf("content: %s[%d]: empty id", info.Name, i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("content: %s: duplicate id %q", info.Name, id)
		}
		seen[id] = struct{}{}

		if !r.RecordName().Complete() {
			return fmt.Errorf("content: %s/%s: name must have EN and SI text", info.Name, id)
		}
		if !info.HasCategory(r.RecordCategory()) {
			return fmt.Errorf("content: %s/%s: category %q not in %v", info.Name, id, r.RecordCategory(), info.Categories)
		}
	}
	return nil
}

func asRecords[R Record](in []R) []Record {
	out := make([]Record, len(in))
	for i := range in {
		out[i] = in[i]
	}
	return out
}
