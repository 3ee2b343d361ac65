package engine

import (
	"sync/atomic"

	"github.com/rs/zerolog"

	. "github.com/sabre-chess/sabre/pkg/common"
)

const (
	boundLower = 1 << iota
	boundUpper
)

const boundExact = boundLower | boundUpper

// transEntry packs a search result into 16 bytes. The gate field serializes
// access to a single slot; the table itself is never locked as a whole.
type transEntry struct {
	gate     int32
	key32    uint32
	moveDate uint32
	score    int16
	depth    int8
	bound    uint8
}

func (entry *transEntry) Move() Move {
	return Move(entry.moveDate & 0x1fffff)
}

func (entry *transEntry) Date() uint16 {
	return uint16(entry.moveDate >> 21)
}

func (entry *transEntry) SetMoveAndDate(move Move, date uint16) {
	entry.moveDate = uint32(move) + uint32(date)<<21
}

type transTable struct {
	megabytes int
	entries   []transEntry
	date      uint16
	mask      uint32
	reads     atomic.Int64
	hits      atomic.Int64
}

func roundPowerOfTwo(size int) int {
	var x = 1
	for x<<1 <= size {
		x <<= 1
	}
	return x
}

func newTransTable(megabytes int) *transTable {
	var size = roundPowerOfTwo(1024 * 1024 * megabytes / 16)
	return &transTable{
		megabytes: megabytes,
		entries:   make([]transEntry, size),
		mask:      uint32(size - 1),
	}
}

func (tt *transTable) Size() int {
	return tt.megabytes
}

// IncDate ages the table between searches. Entries from earlier dates become
// preferred eviction targets without being scanned or cleared.
func (tt *transTable) IncDate() {
	tt.date = (tt.date + 1) & 0x7ff
}

func (tt *transTable) Clear() {
	tt.date = 0
	tt.reads.Store(0)
	tt.hits.Store(0)
	for i := range tt.entries {
		tt.entries[i] = transEntry{}
	}
}

func (tt *transTable) Read(key uint64) (depth, score, bound int, move Move, ok bool) {
	tt.reads.Add(1)
	var entry = &tt.entries[uint32(key)&tt.mask]
	if atomic.CompareAndSwapInt32(&entry.gate, 0, 1) {
		if entry.key32 == uint32(key>>32) {
			entry.SetMoveAndDate(entry.Move(), tt.date)
			score = int(entry.score)
			move = entry.Move()
			depth = int(entry.depth)
			bound = int(entry.bound)
			ok = true
		}
		atomic.StoreInt32(&entry.gate, 0)
	}
	if ok {
		tt.hits.Add(1)
	}
	return
}

// Update applies the replacement policy: for the same position a deeper or
// exact result wins; a colliding position wins over stale dates or shallower
// results. A contested slot is skipped, never waited on.
func (tt *transTable) Update(key uint64, depth, score, bound int, move Move) {
	var entry = &tt.entries[uint32(key)&tt.mask]
	if atomic.CompareAndSwapInt32(&entry.gate, 0, 1) {
		var replace bool
		if entry.key32 == uint32(key>>32) {
			replace = depth >= int(entry.depth)-3 || bound == boundExact
		} else {
			replace = entry.Date() != tt.date ||
				depth >= int(entry.depth)
		}
		if replace {
			entry.key32 = uint32(key >> 32)
			entry.score = int16(score)
			entry.depth = int8(depth)
			entry.bound = uint8(bound)
			entry.SetMoveAndDate(move, tt.date)
		}
		atomic.StoreInt32(&entry.gate, 0)
	}
}

// Utilization samples the table and reports the fraction of slots holding
// an entry from the current search date.
func (tt *transTable) Utilization() float64 {
	var sample = min(len(tt.entries), 1000)
	if sample == 0 {
		return 0
	}
	var used = 0
	for i := 0; i < sample; i++ {
		var entry = &tt.entries[i]
		if entry.bound != 0 && entry.Date() == tt.date {
			used++
		}
	}
	return float64(used) / float64(sample)
}

func (tt *transTable) LogStats(logger zerolog.Logger) {
	var reads = tt.reads.Load()
	var hits = tt.hits.Load()
	var hitRate float64
	if reads > 0 {
		hitRate = float64(hits) / float64(reads)
	}
	logger.Debug().
		Int("size_mb", tt.megabytes).
		Int64("reads", reads).
		Int64("hits", hits).
		Float64("hit_rate", hitRate).
		Float64("utilization", tt.Utilization()).
		Msg("transposition table stats")
}
