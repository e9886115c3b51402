package analytics

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"time"

	"github.com/angelmondragon/opspulse-backend/internal/analytics/types"
)

const (
	defaultPrimaryChannel = "Website"
	fallbackStoreCount    = 10
	activeWithin          = 7 * 24 * time.Hour
	summaryWindow         = 30 * 24 * time.Hour
)

// SummarizeClients rolls activity rows up per store, in order of first
// appearance.
func SummarizeClients(rows []types.ActivityEvent, now time.Time) []types.ClientSummary {
	type group struct {
		name string
		rows []types.ActivityEvent
		last time.Time
	}
	var order []*group
	byName := map[string]*group{}
	for _, row := range rows {
		name := clientName(row)
		g, ok := byName[name]
		if !ok {
			g = &group{name: name}
			byName[name] = g
			order = append(order, g)
		}
		g.rows = append(g.rows, row)
		if row.Timestamp.After(g.last) {
			g.last = row.Timestamp
		}
	}

	cutoff := now.Add(-summaryWindow)
	out := make([]types.ClientSummary, 0, len(order))
	for _, g := range order {
		sort.SliceStable(g.rows, func(i, j int) bool { return g.rows[i].Timestamp.After(g.rows[j].Timestamp) })

		var recent []types.ActivityEvent
		completed := 0
		for _, row := range g.rows {
			if row.Timestamp.IsZero() || row.Timestamp.Before(cutoff) {
				continue
			}
			recent = append(recent, row)
			if strings.EqualFold(string(row.Status), string(types.StatusCompleted)) {
				completed++
			}
		}

		channelRows := recent
		if len(channelRows) == 0 {
			channelRows = g.rows
		}

		summary := types.ClientSummary{
			ID:             g.name,
			Name:           g.name,
			PrimaryChannel: primaryChannel(channelRows),
			ActiveStatus:   "Inactive",
			Events30d:      len(recent),
			Completed30d:   completed,
			Pending30d:     len(recent) - completed,
		}
		if !g.last.IsZero() {
			last := g.last.UTC()
			summary.LastActivity = &last
			if now.Sub(last) <= activeWithin {
				summary.ActiveStatus = "Active"
			}
		}
		out = append(out, summary)
	}
	return out
}

func clientName(row types.ActivityEvent) string {
	if store := strings.TrimSpace(row.Store); store != "" {
		return store
	}
	return storeNameFromID(row.ID)
}

// storeNameFromID buckets an id onto one of ten stable placeholder names.
func storeNameFromID(id string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return fmt.Sprintf("Store %c", 'A'+rune(h.Sum32()%fallbackStoreCount))
}

// primaryChannel picks the most frequent channel; the first one seen wins ties.
func primaryChannel(rows []types.ActivityEvent) string {
	counts := map[string]int{}
	var seen []string
	for _, row := range rows {
		ch := strings.TrimSpace(row.Channel)
		if ch == "" {
			continue
		}
		if counts[ch] == 0 {
			seen = append(seen, ch)
		}
		counts[ch]++
	}
	best, bestCount := "", 0
	for _, ch := range seen {
		if counts[ch] > bestCount {
			best, bestCount = ch, counts[ch]
		}
	}
	if best == "" {
		return defaultPrimaryChannel
	}
	return best
}
