package main

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

const (
	defaultRPS     = 10.0
	logTimeFormat  = "2006-01-02T15:04:05.000000Z"
	windowDuration = 5 * time.Minute

	// minRecordFields is the shortest line the forwarder accepts; malformed lines stay below it.
	minRecordFields = 12
)

type generatorOptions struct {
	Count          int
	Start          time.Time
	LoadBalancer   loadBalancer
	MalformedRatio float64
}

func (o generatorOptions) validate() error {
	if o.Count < 0 {
		return fmt.Errorf("count must be non-negative: %d", o.Count)
	}
	if o.MalformedRatio < 0 || o.MalformedRatio > 1 {
		return fmt.Errorf("malformed ratio must be within [0, 1]: %.2f", o.MalformedRatio)
	}
	return nil
}

// generateEntries spreads Count entries evenly over one delivery window starting at Start.
// Roughly MalformedRatio of them are cut short so the forwarder rejects them.
func generateEntries(opts generatorOptions, rng *rand.Rand) []albLogEntry {
	var step time.Duration
	if opts.Count > 1 {
		step = windowDuration / time.Duration(opts.Count-1)
	}

	entries := make([]albLogEntry, 0, opts.Count)
	for i := range opts.Count {
		entry := albLogEntry{
			Timestamp:    opts.Start.Add(step * time.Duration(i)),
			LoadBalancer: opts.LoadBalancer,
			Request:      newRequestProfile(rng, opts.LoadBalancer),
		}
		if opts.MalformedRatio > 0 && rng.Float64() < opts.MalformedRatio {
			entry.TruncateAt = 1 + rng.Intn(minRecordFields-1)
		}
		entries = append(entries, entry)
	}

	return entries
}

func resolveEntryCount(count int, rps float64) (int, error) {
	if count > 0 {
		return count, nil
	}
	if rps <= 0 {
		return 0, errors.New("rps must be positive when count is not specified")
	}

	derived := int(math.Round(rps * windowDuration.Seconds()))
	if derived <= 0 {
		return 0, fmt.Errorf("derived entry count must be positive (rps=%.2f)", rps)
	}
	return derived, nil
}
