// Package partition routes entity writes and reads to physical storage
// partitions. Accommodations are range-partitioned on their feed number with
// a catch-all default; localized content is list-partitioned on language with
// no default, so an unmapped language is a hard failure. Both behaviours are
// deliberate and must stay asymmetric.
package partition

import (
	"fmt"
	"sort"

	"staylist/internal/domain"
)

// ID names one physical partition. It maps 1:1 to a table name.
type ID string

// Bin is a half-open feed interval [From, To) routed to Target.
type Bin struct {
	From, To int
	Target   ID
}

// RangePolicy buckets an integer key into ordered, non-overlapping bins.
// Any key outside every bin, including negative values, resolves to the
// default partition; resolution is total and never errors.
type RangePolicy struct {
	bins []Bin
	def  ID
}

func NewRangePolicy(bins []Bin, def ID) (RangePolicy, error) {
	if def == "" {
		return RangePolicy{}, fmt.Errorf("partition: range policy requires a default partition")
	}
	sorted := make([]Bin, len(bins))
	copy(sorted, bins)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].From < sorted[j].From })
	for i, b := range sorted {
		if b.To <= b.From {
			return RangePolicy{}, fmt.Errorf("partition: empty bin [%d,%d)", b.From, b.To)
		}
		if b.Target == "" {
			return RangePolicy{}, fmt.Errorf("partition: bin [%d,%d) has no target", b.From, b.To)
		}
		if i > 0 && b.From < sorted[i-1].To {
			return RangePolicy{}, fmt.Errorf("partition: bins [%d,%d) and [%d,%d) overlap",
				sorted[i-1].From, sorted[i-1].To, b.From, b.To)
		}
	}
	return RangePolicy{bins: sorted, def: def}, nil
}

func (p RangePolicy) Resolve(key int) ID {
	i := sort.Search(len(p.bins), func(i int) bool { return key < p.bins[i].To })
	if i < len(p.bins) && key >= p.bins[i].From {
		return p.bins[i].Target
	}
	return p.def
}

// Partitions returns every target, default last.
func (p RangePolicy) Partitions() []ID {
	out := make([]ID, 0, len(p.bins)+1)
	for _, b := range p.bins {
		out = append(out, b.Target)
	}
	return append(out, p.def)
}

// ListPolicy matches a string key against an explicit enumerated mapping.
// There is no catch-all: an unmapped key fails with
// domain.UnsupportedPartitionError rather than landing somewhere silently.
type ListPolicy struct {
	mapping map[string]ID
}

func NewListPolicy(mapping map[string]ID) (ListPolicy, error) {
	if len(mapping) == 0 {
		return ListPolicy{}, fmt.Errorf("partition: list policy requires at least one mapping")
	}
	m := make(map[string]ID, len(mapping))
	for k, v := range mapping {
		if v == "" {
			return ListPolicy{}, fmt.Errorf("partition: key %q has no target", k)
		}
		m[k] = v
	}
	return ListPolicy{mapping: m}, nil
}

func (p ListPolicy) Resolve(key string) (ID, error) {
	id, ok := p.mapping[key]
	if !ok {
		return "", &domain.UnsupportedPartitionError{Key: key}
	}
	return id, nil
}

// Keys returns the mapped keys in sorted order.
func (p ListPolicy) Keys() []string {
	out := make([]string, 0, len(p.mapping))
	for k := range p.mapping {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Partitions returns every target ordered by key, for deterministic fan-out.
func (p ListPolicy) Partitions() []ID {
	keys := p.Keys()
	out := make([]ID, 0, len(keys))
	for _, k := range keys {
		out = append(out, p.mapping[k])
	}
	return out
}
