package main

import (
	"math/rand"
	"time"
)

// Quote is the value the demo server publishes.
type Quote struct {
	Symbol string `json:"symbol"`
	Bid    int64  `json:"bid"`
	Ask    int64  `json:"ask"`
	Seq    uint64 `json:"seq"`
	At     int64  `json:"at"`
}

// next moves the quote by a small random step, keeping the spread positive.
func (q Quote) next(now time.Time) Quote {
	mid := (q.Bid+q.Ask)/2 + rand.Int63n(5) - 2
	spread := 1 + rand.Int63n(3)
	return Quote{
		Symbol: q.Symbol,
		Bid:    mid - spread,
		Ask:    mid + spread,
		Seq:    q.Seq + 1,
		At:     now.UnixNano(),
	}
}
