package testutil

import (
	"fmt"
	"sync/atomic"

	"github.com/HerbHall/lankaportal/pkg/content"
)

var fixtureSeq atomic.Int64

// NewDestination returns a beach destination in Galle with a unique id and
// bilingual name. Override fields with the With* options.
func NewDestination(opts ...func(*content.Destination)) content.Destination {
	n := fixtureSeq.Add(1)
	d := content.Destination{
		ID:       fmt.Sprintf("dest-%d", n),
		Name:     content.LocalizedText{content.LangEN: fmt.Sprintf("Test Beach %d", n), content.LangSI: fmt.Sprintf("පරීක්ෂණ වෙරළ %d", n)},
		Category: content.CategoryBeach,
		Location: "Galle",
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// WithID sets the destination id.
func WithID(id string) func(*content.Destination) {
	return func(d *content.Destination) { d.ID = id }
}

// WithName sets both localized names.
func WithName(en, si string) func(*content.Destination) {
	return func(d *content.Destination) {
		d.Name = content.LocalizedText{content.LangEN: en, content.LangSI: si}
	}
}

// WithCategory sets the destination category.
func WithCategory(c content.Category) func(*content.Destination) {
	return func(d *content.Destination) { d.Category = c }
}

// WithLocation sets the destination region.
func WithLocation(loc string) func(*content.Destination) {
	return func(d *content.Destination) { d.Location = loc }
}

// Destinations builds n default destinations.
func Destinations(n int, opts ...func(*content.Destination)) []content.Destination {
	out := make([]content.Destination, 0, n)
	for range n {
		out = append(out, NewDestination(opts...))
	}
	return out
}
