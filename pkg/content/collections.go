package content

// CollectionName identifies one Record Store.
type CollectionName string

// Known collections.
const (
	CollectionDestinations CollectionName = "destinations"
	CollectionFoods        CollectionName = "foods"
	CollectionFestivals    CollectionName = "festivals"
	CollectionHiking       CollectionName = "hiking"
	CollectionMap          CollectionName = "map"
	CollectionPhrases      CollectionName = "phrases"
	CollectionMusic        CollectionName = "music"
)

// CollectionInfo describes a collection and its fixed category set.
type CollectionInfo struct {
	Name        CollectionName `json:"name"`
	Categories  []Category     `json:"categories"`
	HasLocation bool           `json:"has_location"`
}

// Collections lists every collection in menu order.
var Collections = []CollectionInfo{
	{
		Name:        CollectionDestinations,
		Categories:  []Category{CategoryAncient, CategoryBeach, CategoryWildlife, CategoryMountains},
		HasLocation: true,
	},
	{
		Name:       CollectionFoods,
		Categories: []Category{CategoryMain, CategorySnack, CategoryDessert, CategoryDrink},
	},
	{
		Name:       CollectionFestivals,
		Categories: []Category{CategoryReligious, CategoryCultural, CategoryNational, CategorySeasonal},
	},
	{
		Name:        CollectionHiking,
		Categories:  []Category{CategoryEasy, CategoryModerate, CategoryChallenging},
		HasLocation: true,
	},
	{
		Name:        CollectionMap,
		Categories:  []Category{CategoryHeritage, CategoryNature, CategoryCoastal, CategoryCity},
		HasLocation: true,
	},
	{
		Name:       CollectionPhrases,
		Categories: []Category{CategoryGreeting, CategoryDining, CategoryTravel, CategoryEmergency},
	},
	{
		Name:       CollectionMusic,
		Categories: []Category{CategoryTraditional, CategoryBaila, CategoryClassical, CategoryModern},
	},
}

// LookupCollection returns the info for name.
func LookupCollection(name CollectionName) (CollectionInfo, bool) {
	for i := range Collections {
		if Collections[i].Name == name {
			return Collections[i], true
		}
	}
	return CollectionInfo{}, false
}

// HasCategory reports whether c belongs to the collection's category set.
func (ci CollectionInfo) HasCategory(c Category) bool {
	for _, cat := range ci.Categories {
		if cat == c {
			return true
		}
	}
	return false
}
