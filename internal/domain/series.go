package domain

import "sync"

// CandleSeries holds an OHLC series keyed by bucket-start time, strictly
// increasing for committed entries. The last entry is the in-progress bucket
// and is refined in place until a later bucket supersedes it.
type CandleSeries struct {
	mu      sync.RWMutex
	bound   int
	candles []Candle
}

// NewCandleSeries creates a series holding at most bound candles.
func NewCandleSeries(bound int) *CandleSeries {
	if bound <= 0 {
		bound = 500
	}
	return &CandleSeries{
		bound:   bound,
		candles: make([]Candle, 0, bound),
	}
}

// Merge applies one incoming candle:
//   - Time equal to the last entry replaces it (in-progress bucket refined)
//   - Time greater than the last entry appends a new bucket
//   - Time less than the last entry is dropped (out-of-order or duplicate)
//
// Returns true if the series changed.
func (s *CandleSeries) Merge(c Candle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.candles)
	if n == 0 {
		s.candles = append(s.candles, c)
		return true
	}

	last := s.candles[n-1].Time
	switch {
	case c.Time == last:
		s.candles[n-1] = c
	case c.Time > last:
		s.candles = append(s.candles, c)
		if len(s.candles) > s.bound {
			s.candles = s.candles[len(s.candles)-s.bound:]
		}
	default:
		return false
	}
	return true
}

// Reset replaces the series with a bulk-loaded history. Entries that are not
// strictly increasing in time are dropped, so the committed-portion invariant
// holds regardless of what the query endpoint returned.
func (s *CandleSeries) Reset(candles []Candle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.candles = s.candles[:0]
	for _, c := range candles {
		if n := len(s.candles); n > 0 && c.Time <= s.candles[n-1].Time {
			continue
		}
		s.candles = append(s.candles, c)
	}
	if len(s.candles) > s.bound {
		s.candles = s.candles[len(s.candles)-s.bound:]
	}
}

// Len returns the current number of candles.
func (s *CandleSeries) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.candles)
}

// Last returns the in-progress bucket, if any.
func (s *CandleSeries) Last() (Candle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.candles) == 0 {
		return Candle{}, false
	}
	return s.candles[len(s.candles)-1], true
}

// Snapshot returns a copy of the series, oldest first.
func (s *CandleSeries) Snapshot() []Candle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Candle, len(s.candles))
	copy(out, s.candles)
	return out
}
