package demo

import (
	"math"
	"strconv"
	"time"

	"github.com/angelmondragon/opspulse-backend/internal/analytics/types"
)

const (
	lcgModulus    = 2147483647
	lcgMultiplier = 16807
)

// lcg is a Park-Miller minimal standard generator. Identical seeds yield
// identical sequences on every platform.
type lcg struct {
	state int64
}

func newLCG(seed int64) *lcg {
	state := seed % lcgModulus
	if state <= 0 {
		state += lcgModulus - 1
	}
	return &lcg{state: state}
}

// next returns a value in [0, 1).
func (g *lcg) next() float64 {
	g.state = (g.state * lcgMultiplier) % lcgModulus
	return float64(g.state-1) / float64(lcgModulus-1)
}

func pick(g *lcg, list []string) string {
	return list[int(math.Floor(g.next()*float64(len(list))))]
}

// daySeed is the calendar day as YYYYMMDD.
func daySeed(t time.Time) int64 {
	n, _ := strconv.ParseInt(t.UTC().Format("20060102"), 10, 64)
	return n
}

func dayKey(t time.Time) string {
	return t.UTC().Format(types.DateLayout)
}

func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
