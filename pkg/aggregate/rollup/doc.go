/*
Package rollup aggregates streams of elements into periodic windows.

A Rollup buffers offered elements and, on every tick of its interval or
cron schedule, drains the buffer and reduces it with a grouping
aggregation. Each emitted Window carries its time bounds, the element
count, and the per-key results in first-seen key order.

# Basic Usage

	r, err := rollup.New(rollup.Config[Trip, string, int64, int64]{
		Classify:   aggregate.Key(func(t Trip) string { return t.State }),
		Downstream: collector.Summing(func(t Trip) int64 { return t.Miles }),
		Interval:   time.Minute,
		OnWindow: func(w rollup.Window[string, int64]) {
			log.Printf("window %v..%v: %v", w.Start, w.End, w.Groups)
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	if err := r.Start(); err != nil {
		log.Fatal(err)
	}
	defer r.Stop()

	r.Offer(ctx, Trip{State: "NY", Miles: 2300})

# Scheduling

Windows are cut on a fixed Interval or on a cron Schedule with a seconds
field, such as "0 * * * * *" for the top of every minute. With neither
configured the rollup is manual: elements accumulate until Flush.

Flush emits a window on demand regardless of the schedule, and Stop
emits one final window when elements remain buffered.

# Overflow

The buffer holds at most BufferSize elements between windows. When it is
full, Offer applies the configured OverflowPolicy: block until a window
drains the buffer (the context bounds the wait), drop the new element,
evict the oldest, or fail with ErrCapacityExceeded. TryOffer never
blocks; where Offer would wait it returns ErrCapacityExceeded instead,
while the drop policies still apply.

# Failure

A window whose aggregation fails is not emitted. Its elements are
discarded, the error goes to OnError, and subsequent windows proceed
normally.

# Metrics

NewWithMetrics records window counts, element throughput, drops, buffer
usage, and flush latency under the given rollup name. Metrics can also
be toggled at runtime through EnableMetrics and DisableMetrics.
*/
package rollup
