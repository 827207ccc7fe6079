// Package sitemap renders the location tree as the nested sitemap document:
// countries at the top level, states beneath them, cities as slug paths of
// the form country/state/city. Everything is sorted alphabetically by title.
package sitemap

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"staylist/internal/domain"
)

// Entry is one node of the document. Keys are location titles mapped to
// slugs; the optional "locations" key carries the children.
type Entry map[string]any

func Build(ctx context.Context, repo domain.LocationRepository) ([]Entry, error) {
	countries, err := repo.ListByType(ctx, domain.LocationCountry)
	if err != nil {
		return nil, err
	}
	sort.Slice(countries, func(i, j int) bool {
		return strings.ToLower(countries[i].Title) < strings.ToLower(countries[j].Title)
	})

	doc := make([]Entry, 0, len(countries))
	for _, country := range countries {
		countrySlug := Slugify(country.Title)

		states, err := repo.ChildrenOf(ctx, country.ID)
		if err != nil {
			return nil, err
		}
		locations := make([]Entry, 0, len(states))
		for _, state := range states {
			stateSlug := Slugify(state.Title)
			entry := Entry{state.Title: stateSlug}

			if state.Type == domain.LocationState {
				cities, err := repo.ChildrenOf(ctx, state.ID)
				if err != nil {
					return nil, err
				}
				cityEntries := make([]Entry, 0, len(cities))
				for _, city := range cities {
					cityEntries = append(cityEntries, Entry{
						city.Title: countrySlug + "/" + stateSlug + "/" + Slugify(city.Title),
					})
				}
				if len(cityEntries) > 0 {
					entry["locations"] = cityEntries
				}
			}
			locations = append(locations, entry)
		}

		doc = append(doc, Entry{
			country.Title: countrySlug,
			"locations":   locations,
		})
	}
	return doc, nil
}

// Slugify lowercases and replaces runs of non-alphanumerics with single
// hyphens, trimming any at the edges.
func Slugify(s string) string {
	var b strings.Builder
	prevHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			prevHyphen = false
		default:
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
