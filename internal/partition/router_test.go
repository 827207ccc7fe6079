package partition_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staylist/internal/domain"
	"staylist/internal/partition"
)

func TestRangePolicy_TotalCoverage(t *testing.T) {
	p, err := partition.NewRangePolicy([]partition.Bin{
		{From: 0, To: 1000, Target: "feed_0_1000"},
		{From: 1000, To: 5000, Target: "feed_1000_5000"},
		{From: 5000, To: 10000, Target: "feed_5000_10000"},
	}, "feed_default")
	require.NoError(t, err)

	cases := map[int]partition.ID{
		0:          "feed_0_1000",
		999:        "feed_0_1000",
		1000:       "feed_1000_5000",
		4999:       "feed_1000_5000",
		5000:       "feed_5000_10000",
		9999:       "feed_5000_10000",
		10000:      "feed_default",
		-1:         "feed_default",
		-1 << 30:   "feed_default",
		1 << 30:    "feed_default",
		2147483647: "feed_default",
	}
	for feed, want := range cases {
		assert.Equal(t, want, p.Resolve(feed), "feed %d", feed)
	}
}

func TestRangePolicy_ResolveIsDeterministic(t *testing.T) {
	p, err := partition.NewRangePolicy([]partition.Bin{
		{From: 0, To: 10, Target: "a"},
		{From: 10, To: 20, Target: "b"},
	}, "def")
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		assert.Equal(t, partition.ID("a"), p.Resolve(5))
	}
}

func TestRangePolicy_RejectsOverlap(t *testing.T) {
	_, err := partition.NewRangePolicy([]partition.Bin{
		{From: 0, To: 1000, Target: "a"},
		{From: 500, To: 2000, Target: "b"},
	}, "def")
	assert.Error(t, err)
}

func TestRangePolicy_RejectsEmptyBinAndMissingDefault(t *testing.T) {
	_, err := partition.NewRangePolicy([]partition.Bin{{From: 5, To: 5, Target: "a"}}, "def")
	assert.Error(t, err)

	_, err = partition.NewRangePolicy([]partition.Bin{{From: 0, To: 10, Target: "a"}}, "")
	assert.Error(t, err)
}

func TestRangePolicy_AcceptsUnsortedBins(t *testing.T) {
	p, err := partition.NewRangePolicy([]partition.Bin{
		{From: 1000, To: 5000, Target: "b"},
		{From: 0, To: 1000, Target: "a"},
	}, "def")
	require.NoError(t, err)
	assert.Equal(t, partition.ID("a"), p.Resolve(1))
	assert.Equal(t, partition.ID("b"), p.Resolve(1000))
}

func TestListPolicy_ExactMatchNoDefault(t *testing.T) {
	p, err := partition.NewListPolicy(map[string]partition.ID{
		"en": "loc_en",
		"fr": "loc_fr",
	})
	require.NoError(t, err)

	id, err := p.Resolve("en")
	require.NoError(t, err)
	assert.Equal(t, partition.ID("loc_en"), id)

	_, err = p.Resolve("zz")
	var upe *domain.UnsupportedPartitionError
	require.True(t, errors.As(err, &upe), "want UnsupportedPartitionError, got %v", err)
	assert.Equal(t, "zz", upe.Key)
}

func TestListPolicy_DeterministicFanOutOrder(t *testing.T) {
	p, err := partition.NewListPolicy(map[string]partition.ID{
		"fr": "loc_fr",
		"ar": "loc_ar",
		"en": "loc_en",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ar", "en", "fr"}, p.Keys())
	assert.Equal(t, []partition.ID{"loc_ar", "loc_en", "loc_fr"}, p.Partitions())
}

func TestDefaultRouter(t *testing.T) {
	r := partition.Default()

	assert.Equal(t, partition.ID("accommodations_feed_0_1000"), r.AccommodationPartition(42))
	assert.Equal(t, partition.ID("accommodations_feed_default"), r.AccommodationPartition(-7))
	assert.Equal(t, partition.ID("accommodations_feed_default"), r.AccommodationPartition(123456))

	id, err := r.LanguagePartition("en")
	require.NoError(t, err)
	assert.Equal(t, partition.ID("localized_accommodations_en"), id)

	_, err = r.LanguagePartition("zz")
	var upe *domain.UnsupportedPartitionError
	assert.True(t, errors.As(err, &upe))

	assert.Len(t, r.AccommodationPartitions(), 4)
	assert.Equal(t, []string{"ar", "de", "en", "fr"}, r.Languages())
}
