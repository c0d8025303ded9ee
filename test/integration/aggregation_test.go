package integration

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnykmshr/goagg/pkg/aggregate"
	"github.com/vnykmshr/goagg/pkg/aggregate/collector"
)

type trip struct {
	state string
	miles int64
}

func sampleTrips() []trip {
	return []trip{
		{"NY", 2300}, {"TX", 2500}, {"VA", 5600}, {"FL", 6700}, {"CA", 5400},
	}
}

// manyTrips produces a deterministic workload cycling through a handful of
// states with varying mileage.
func manyTrips(n int) []trip {
	states := []string{"NY", "TX", "VA", "FL", "CA", "WA", "OR"}
	trips := make([]trip, n)
	for i := range trips {
		trips[i] = trip{
			state: states[i%len(states)],
			miles: int64((i%23 + 1) * 100),
		}
	}
	return trips
}

func byState() aggregate.Classifier[trip, string] {
	return aggregate.Key(func(t trip) string { return t.state })
}

func tripMiles() collector.Collector[trip, int64, int64] {
	return collector.Summing(func(t trip) int64 { return t.miles })
}

// TestTripMilesWalkthrough runs the full grouping and partitioning flow on
// one fixed dataset, checking exact totals and key order end to end.
func TestTripMilesWalkthrough(t *testing.T) {
	trips := sampleTrips()

	totals, err := aggregate.GroupBy(trips, byState(), tripMiles())
	require.NoError(t, err)

	assert.Equal(t, []string{"NY", "TX", "VA", "FL", "CA"}, totals.Keys())
	assert.Equal(t, map[string]int64{
		"NY": 2300, "TX": 2500, "VA": 5600, "FL": 6700, "CA": 5400,
	}, totals.Map())

	longTrip := aggregate.Match(func(t trip) bool { return t.miles > 4000 })
	parts, err := aggregate.Partition(trips, longTrip, tripMiles())
	require.NoError(t, err)

	assert.Equal(t, []bool{false, true}, parts.Keys())

	short, ok := parts.Get(false)
	require.True(t, ok)
	assert.Equal(t, int64(4800), short)

	long, ok := parts.Get(true)
	require.True(t, ok)
	assert.Equal(t, int64(17700), long)
}

// TestPartitionTotality verifies that both partition sides exist no matter
// how lopsided or empty the input is.
func TestPartitionTotality(t *testing.T) {
	longTrip := aggregate.Match(func(t trip) bool { return t.miles > 4000 })

	t.Run("one-sided input", func(t *testing.T) {
		shortOnly := []trip{{"NY", 100}, {"TX", 200}}

		parts, err := aggregate.Partition(shortOnly, longTrip, collector.Counting[trip]())
		require.NoError(t, err)

		assert.Equal(t, []bool{false, true}, parts.Keys())

		long, ok := parts.Get(true)
		require.True(t, ok)
		assert.Equal(t, int64(0), long)
	})

	t.Run("empty input", func(t *testing.T) {
		parts, err := aggregate.Partition(nil, longTrip, collector.Counting[trip]())
		require.NoError(t, err)

		assert.Equal(t, []bool{false, true}, parts.Keys())
		assert.Equal(t, map[bool]int64{false: 0, true: 0}, parts.Map())
	})
}

// TestGroupCountConservation checks that grouping neither loses nor invents
// elements: per-group counts always add up to the input size.
func TestGroupCountConservation(t *testing.T) {
	trips := manyTrips(500)

	counts, err := aggregate.GroupBy(trips, byState(), collector.Counting[trip]())
	require.NoError(t, err)

	var total int64
	for _, c := range counts.Map() {
		total += c
	}
	assert.Equal(t, int64(500), total)
}

// TestCountMatchesCollectedLength checks counting against collecting: the
// count for every key equals the length of that key's collected sequence.
func TestCountMatchesCollectedLength(t *testing.T) {
	trips := manyTrips(300)

	counts, err := aggregate.GroupBy(trips, byState(), collector.Counting[trip]())
	require.NoError(t, err)

	groups, err := aggregate.GroupElements(trips, byState())
	require.NoError(t, err)

	assert.Equal(t, groups.Keys(), counts.Keys())
	for state, members := range groups.All() {
		count, ok := counts.Get(state)
		require.True(t, ok, "state %s missing from counts", state)
		assert.Equal(t, int64(len(members)), count, "state %s", state)
	}
}

// TestSequentialParallelEquivalence verifies that sharded aggregation gives
// byte-for-byte the same result as a sequential pass, key order included.
func TestSequentialParallelEquivalence(t *testing.T) {
	trips := manyTrips(1000)

	seq, err := aggregate.GroupBy(trips, byState(), tripMiles())
	require.NoError(t, err)

	for _, shards := range []int{2, 4, 8, 16} {
		par, err := aggregate.GroupByParallel(trips, byState(), tripMiles(), shards)
		require.NoError(t, err, "shards=%d", shards)

		assert.Equal(t, seq.Keys(), par.Keys(), "shards=%d", shards)
		assert.Equal(t, seq.Map(), par.Map(), "shards=%d", shards)
	}
}

// TestFailFastLeavesNoResult checks that a mid-input failure surfaces the
// offending index and returns no partial groups.
func TestFailFastLeavesNoResult(t *testing.T) {
	boom := errors.New("corrupt record")
	classify := aggregate.Classifier[trip, string](func(tr trip) (string, error) {
		if tr.miles < 0 {
			return "", boom
		}
		return tr.state, nil
	})

	trips := []trip{{"NY", 100}, {"TX", -1}, {"VA", 200}}

	res, err := aggregate.GroupBy(trips, classify, collector.Counting[trip]())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var cerr *aggregate.ClassificationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, 1, cerr.Index)

	assert.Equal(t, 0, res.Len())
}

// TestCompositionPipeline chains mapping, filtering, and finisher adapters
// through a grouping pass.
func TestCompositionPipeline(t *testing.T) {
	trips := sampleTrips()

	t.Run("mapping into sequences", func(t *testing.T) {
		milesPerState, err := aggregate.GroupBy(trips, byState(),
			collector.Mapping(func(tr trip) int64 { return tr.miles }, collector.ToSlice[int64]()))
		require.NoError(t, err)

		ny, ok := milesPerState.Get("NY")
		require.True(t, ok)
		assert.Equal(t, []int64{2300}, ny)
	})

	t.Run("filtering before counting", func(t *testing.T) {
		longTripsPerState, err := aggregate.GroupBy(trips, byState(),
			collector.Filtering(func(tr trip) bool { return tr.miles > 4000 }, collector.Counting[trip]()))
		require.NoError(t, err)

		assert.Equal(t, map[string]int64{
			"NY": 0, "TX": 0, "VA": 1, "FL": 1, "CA": 1,
		}, longTripsPerState.Map())
	})

	t.Run("formatting with a finisher", func(t *testing.T) {
		formatted, err := aggregate.GroupBy(trips, byState(),
			collector.AndThen(tripMiles(), func(total int64) (string, error) {
				return fmt.Sprintf("%d miles", total), nil
			}))
		require.NoError(t, err)

		ny, ok := formatted.Get("NY")
		require.True(t, ok)
		assert.Equal(t, "2300 miles", ny)
	})
}
