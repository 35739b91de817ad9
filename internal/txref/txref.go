package txref

import (
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// DefaultPrefix starts every reference unless the generator is configured otherwise.
const DefaultPrefix = "TXN_"

// Generator builds transaction references of the form <prefix><unix-millis>_<phone digits>.
//
// The millisecond component is strictly increasing for a given Generator, so
// two references minted in the same millisecond still differ. Uniqueness
// across processes is best effort.
type Generator struct {
	prefix string
	now    func() time.Time
	last   atomic.Int64
}

func NewGenerator(prefix string) *Generator {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Generator{prefix: prefix, now: time.Now}
}

// WithClock replaces the time source; used by tests.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// New returns a fresh reference for a payer's phone number.
func (g *Generator) New(phone string) string {
	ms := g.nextMillis()

	var sb strings.Builder
	sb.Grow(len(g.prefix) + 14 + len(phone))
	sb.WriteString(g.prefix)
	sb.WriteString(strconv.FormatInt(ms, 10))
	sb.WriteByte('_')
	sb.WriteString(Digits(phone))
	return sb.String()
}

func (g *Generator) nextMillis() int64 {
	ms := g.now().UnixMilli()
	for {
		last := g.last.Load()
		next := ms
		if next <= last {
			next = last + 1
		}
		if g.last.CompareAndSwap(last, next) {
			return next
		}
	}
}

// Digits drops every non-digit character, e.g. "+234 (801) 234-5678" → "2348012345678".
func Digits(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}
