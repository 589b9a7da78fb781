package content

import (
	"maps"
	"slices"
)

// Clone returns an independent copy of t.
func (t LocalizedText) Clone() LocalizedText { return maps.Clone(t) }

// cloner is implemented by every record type so the Library can hand out
// deep copies that share no maps or slices with the store.
type cloner[R any] interface {
	Record
	clone() R
}

func (d Destination) clone() Destination {
	d.Name, d.Description = d.Name.Clone(), d.Description.Clone()
	d.Tips = slices.Clone(d.Tips)
	return d
}

func (f Food) clone() Food {
	f.Name, f.Description = f.Name.Clone(), f.Description.Clone()
	return f
}

func (f Festival) clone() Festival {
	f.Name, f.Description = f.Name.Clone(), f.Description.Clone()
	return f
}

func (h HikingSpot) clone() HikingSpot {
	h.Name, h.Description = h.Name.Clone(), h.Description.Clone()
	return h
}

func (m MapNode) clone() MapNode {
	m.Name, m.Summary = m.Name.Clone(), m.Summary.Clone()
	return m
}

func (p Phrase) clone() Phrase {
	p.Name = p.Name.Clone()
	return p
}

func (s Song) clone() Song {
	s.Name, s.Description = s.Name.Clone(), s.Description.Clone()
	return s
}

func cloneSlice[R cloner[R]](in []R) []R {
	out := make([]R, len(in))
	for i := range in {
		out[i] = in[i].clone()
	}
	return out
}

func cloneRecords[R cloner[R]](in []R) []Record {
	out := make([]Record, len(in))
	for i := range in {
		out[i] = in[i].clone()
	}
	return out
}
