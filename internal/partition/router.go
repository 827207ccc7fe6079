package partition

// Router bundles the two partition policies. It is built once at startup from
// static configuration and treated as immutable afterwards.
type Router struct {
	feeds     RangePolicy
	languages ListPolicy
}

func NewRouter(feeds RangePolicy, languages ListPolicy) *Router {
	return &Router{feeds: feeds, languages: languages}
}

// AccommodationPartition resolves the partition holding a given feed.
// Total: every integer resolves, out-of-range feeds go to the default.
func (r *Router) AccommodationPartition(feed int) ID {
	return r.feeds.Resolve(feed)
}

// LanguagePartition resolves the partition for a language code. Unmapped
// codes return domain.UnsupportedPartitionError.
func (r *Router) LanguagePartition(lang string) (ID, error) {
	return r.languages.Resolve(lang)
}

func (r *Router) AccommodationPartitions() []ID { return r.feeds.Partitions() }
func (r *Router) LanguagePartitions() []ID      { return r.languages.Partitions() }
func (r *Router) Languages() []string           { return r.languages.Keys() }

// Default returns the production topology: three declared feed ranges plus a
// catch-all, and one partition per supported language.
func Default() *Router {
	feeds, err := NewRangePolicy([]Bin{
		{From: 0, To: 1000, Target: "accommodations_feed_0_1000"},
		{From: 1000, To: 5000, Target: "accommodations_feed_1000_5000"},
		{From: 5000, To: 10000, Target: "accommodations_feed_5000_10000"},
	}, "accommodations_feed_default")
	if err != nil {
		panic(err)
	}
	languages, err := NewListPolicy(map[string]ID{
		"en": "localized_accommodations_en",
		"ar": "localized_accommodations_ar",
		"fr": "localized_accommodations_fr",
		"de": "localized_accommodations_de",
	})
	if err != nil {
		panic(err)
	}
	return NewRouter(feeds, languages)
}
