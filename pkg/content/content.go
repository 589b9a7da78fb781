// Package content defines the static travel content records served by
// LankaPortal and the embedded store they are loaded from.
package content

// Lang is a display language tag.
type Lang string

// Supported display languages.
const (
	LangEN Lang = "EN"
	LangSI Lang = "SI"
)

// Langs lists every supported language in display order.
var Langs = []Lang{LangEN, LangSI}

// LocalizedText maps a language tag to a display string.
type LocalizedText map[Lang]string

// Get returns the text for lang, or an empty string.
func (t LocalizedText) Get(lang Lang) string {
	return t[lang]
}

// Complete reports whether every supported language has a non-empty entry.
func (t LocalizedText) Complete() bool {
	for _, l := range Langs {
		if t[l] == "" {
			return false
		}
	}
	return true
}

// Category is a record classification. Each collection has its own closed set.
type Category string

// CategoryAll is the query-time sentinel matching every category. It is never
// stored on a record.
const CategoryAll Category = "all"

// Record is the capability the query engine needs from a content entry.
type Record interface {
	RecordID() string
	RecordName() LocalizedText
	RecordCategory() Category
	// RecordLocation returns the region label, or "" for record types
	// without one.
	RecordLocation() string
}

// Destination categories.
const (
	CategoryAncient   Category = "ancient"
	CategoryBeach     Category = "beach"
	CategoryWildlife  Category = "wildlife"
	CategoryMountains Category = "mountains"
)

// Destination is a place to visit.
type Destination struct {
	ID          string        `yaml:"id" json:"id"`
	Name        LocalizedText `yaml:"name" json:"name"`
	Category    Category      `yaml:"category" json:"category"`
	Location    string        `yaml:"location" json:"location"`
	Image       string        `yaml:"image" json:"image,omitempty"`
	Description LocalizedText `yaml:"description" json:"description,omitempty"`
	Tips        []string      `yaml:"tips" json:"tips,omitempty"`
	BestTime    string        `yaml:"best_time" json:"best_time,omitempty"`
	EntryFeeUSD float64       `yaml:"entry_fee_usd" json:"entry_fee_usd"`
}

func (d Destination) RecordID() string          { return d.ID }
func (d Destination) RecordName() LocalizedText { return d.Name }
func (d Destination) RecordCategory() Category  { return d.Category }
func (d Destination) RecordLocation() string    { return d.Location }

// Food categories.
const (
	CategoryMain    Category = "main"
	CategorySnack   Category = "snack"
	CategoryDessert Category = "dessert"
	CategoryDrink   Category = "drink"
)

// Food is a local dish or drink.
type Food struct {
	ID          string        `yaml:"id" json:"id"`
	Name        LocalizedText `yaml:"name" json:"name"`
	Category    Category      `yaml:"category" json:"category"`
	Image       string        `yaml:"image" json:"image,omitempty"`
	Description LocalizedText `yaml:"description" json:"description,omitempty"`
	Spice       int           `yaml:"spice" json:"spice"`
	Vegetarian  bool          `yaml:"vegetarian" json:"vegetarian"`
}

func (f Food) RecordID() string          { return f.ID }
func (f Food) RecordName() LocalizedText { return f.Name }
func (f Food) RecordCategory() Category  { return f.Category }
func (f Food) RecordLocation() string    { return "" }

// Festival categories.
const (
	CategoryReligious Category = "religious"
	CategoryCultural  Category = "cultural"
	CategoryNational  Category = "national"
	CategorySeasonal  Category = "seasonal"
)

// Festival is a recurring celebration.
type Festival struct {
	ID          string        `yaml:"id" json:"id"`
	Name        LocalizedText `yaml:"name" json:"name"`
	Category    Category      `yaml:"category" json:"category"`
	Month       string        `yaml:"month" json:"month"`
	Image       string        `yaml:"image" json:"image,omitempty"`
	Description LocalizedText `yaml:"description" json:"description,omitempty"`
}

func (f Festival) RecordID() string          { return f.ID }
func (f Festival) RecordName() LocalizedText { return f.Name }
func (f Festival) RecordCategory() Category  { return f.Category }
func (f Festival) RecordLocation() string    { return "" }

// Hiking difficulty categories.
const (
	CategoryEasy        Category = "easy"
	CategoryModerate    Category = "moderate"
	CategoryChallenging Category = "challenging"
)

// HikingSpot is a trail or climb.
type HikingSpot struct {
	ID          string        `yaml:"id" json:"id"`
	Name        LocalizedText `yaml:"name" json:"name"`
	Category    Category      `yaml:"category" json:"category"`
	Location    string        `yaml:"location" json:"location"`
	DistanceKM  float64       `yaml:"distance_km" json:"distance_km"`
	Duration    string        `yaml:"duration" json:"duration"`
	Description LocalizedText `yaml:"description" json:"description,omitempty"`
}

func (h HikingSpot) RecordID() string          { return h.ID }
func (h HikingSpot) RecordName() LocalizedText { return h.Name }
func (h HikingSpot) RecordCategory() Category  { return h.Category }
func (h HikingSpot) RecordLocation() string    { return h.Location }

// Map node categories.
const (
	CategoryHeritage Category = "heritage"
	CategoryNature   Category = "nature"
	CategoryCoastal  Category = "coastal"
	CategoryCity     Category = "city"
)

// MapNode is a point on the interactive island map. Location holds the province.
type MapNode struct {
	ID       string        `yaml:"id" json:"id"`
	Name     LocalizedText `yaml:"name" json:"name"`
	Category Category      `yaml:"category" json:"category"`
	Location string        `yaml:"location" json:"location"`
	Lat      float64       `yaml:"lat" json:"lat"`
	Lng      float64       `yaml:"lng" json:"lng"`
	Summary  LocalizedText `yaml:"summary" json:"summary,omitempty"`
}

func (m MapNode) RecordID() string          { return m.ID }
func (m MapNode) RecordName() LocalizedText { return m.Name }
func (m MapNode) RecordCategory() Category  { return m.Category }
func (m MapNode) RecordLocation() string    { return m.Location }

// Phrase categories.
const (
	CategoryGreeting  Category = "greeting"
	CategoryDining    Category = "dining"
	CategoryTravel    Category = "travel"
	CategoryEmergency Category = "emergency"
)

// Phrase is a useful Sinhala phrase. Name.EN is the meaning, Name.SI the
// phrase in Sinhala script.
type Phrase struct {
	ID            string        `yaml:"id" json:"id"`
	Name          LocalizedText `yaml:"name" json:"name"`
	Category      Category      `yaml:"category" json:"category"`
	Romanized     string        `yaml:"romanized" json:"romanized"`
	Pronunciation string        `yaml:"pronunciation" json:"pronunciation,omitempty"`
}

func (p Phrase) RecordID() string          { return p.ID }
func (p Phrase) RecordName() LocalizedText { return p.Name }
func (p Phrase) RecordCategory() Category  { return p.Category }
func (p Phrase) RecordLocation() string    { return "" }

// Music categories.
const (
	CategoryTraditional Category = "traditional"
	CategoryBaila       Category = "baila"
	CategoryClassical   Category = "classical"
	CategoryModern      Category = "modern"
)

// Song is a piece from the music section.
type Song struct {
	ID          string        `yaml:"id" json:"id"`
	Name        LocalizedText `yaml:"name" json:"name"`
	Category    Category      `yaml:"category" json:"category"`
	Artist      string        `yaml:"artist" json:"artist,omitempty"`
	Description LocalizedText `yaml:"description" json:"description,omitempty"`
}

func (s Song) RecordID() string          { return s.ID }
func (s Song) RecordName() LocalizedText { return s.Name }
func (s Song) RecordCategory() Category  { return s.Category }
func (s Song) RecordLocation() string    { return "" }
