package copilot

import (
	"fmt"
	"slices"
	"strings"

	"github.com/angelmondragon/opspulse-backend/internal/analytics/types"
	"github.com/angelmondragon/opspulse-backend/internal/anomalies"
)

const (
	confidenceWithModel    = 0.42
	confidenceWithoutModel = 0.34
	confidenceFloor        = 0.25
	confidenceCeiling      = 0.65
	elevatedPendingRatio   = 0.25
	weekDipThreshold       = -0.03
	maxFallbackDataPoints  = 12
	placeholderRate        = "—"
)

// SynthesisInput is everything the fallback reasons over.
type SynthesisInput struct {
	Context        DataContext
	Anomalies      []types.Anomaly
	Activity       ActivityStats
	ModelEnabled   bool
	PromptVersion  string
	FallbackReason string
}

// Synthesize builds a schema-valid response from fixed templates without
// any external call.
func Synthesize(in SynthesisInput) Response {
	wow := in.Context.Summary.WeekOverWeek
	total := len(in.Anomalies)
	down, up := anomalies.CountByDirection(in.Anomalies)
	pendingRatio := in.Activity.PendingRatio()
	elevated := pendingRatio != nil && *pendingRatio > elevatedPendingRatio

	confidence := confidenceWithoutModel
	if in.ModelEnabled {
		confidence = confidenceWithModel
	}
	if total > 0 {
		confidence += 0.06
	}
	if in.Activity.Total30d > 0 {
		confidence += 0.05
	}
	if elevated {
		confidence += 0.04
	}
	confidence = min(confidenceCeiling, max(confidenceFloor, confidence))

	mode := ModeDemo
	if in.ModelEnabled {
		mode = ModeLive
	}
	reason := in.FallbackReason
	if reason == "" {
		reason = ReasonNone
	}

	return Response{
		Answer: Answer{
			Summary:            fallbackSummary(in, wow, total, down, up),
			KeyDrivers:         fallbackDrivers(in, wow, total, down, up, elevated),
			RecommendedActions: fallbackActions(wow, down, elevated),
			Confidence:         confidence,
			UsedDataPoints:     pickUsedDataPoints(append([]string{activityPoint(in.Activity)}, in.Context.DataPoints...), maxFallbackDataPoints),
		},
		Meta: Meta{Mode: mode, FallbackReason: reason, PromptVersion: in.PromptVersion},
	}
}

func fallbackSummary(in SynthesisInput, wow float64, total, down, up int) string {
	var parts []string
	if !in.ModelEnabled {
		parts = append(parts, "Demo Copilot mode (no OpenAI key).")
	}
	parts = append(parts, fmt.Sprintf("Week-over-week revenue is %s%%.", fixed(wow*100, 1)))
	noun := "anomalies"
	if total == 1 {
		noun = "anomaly"
	}
	parts = append(parts, fmt.Sprintf("Detected %d %s (%d down, %d up).", total, noun, down, up))
	if in.Activity.Total30d > 0 {
		parts = append(parts, fmt.Sprintf("Activity shows %s%% completed and %d pending items over the last 30 days.",
			rateText(in.Activity.CompletionRate, 0), in.Activity.Pending30d))
	} else {
		parts = append(parts, "Activity status ratios are unavailable for this run.")
	}
	return strings.Join(parts[:min(3, len(parts))], " ")
}

func fallbackDrivers(in SynthesisInput, wow float64, total, down, up int, elevated bool) []string {
	drivers := []string{
		fmt.Sprintf("Week-over-week change: %s%% (last 7 days vs previous 7).", fixed(wow*100, 1)),
		fmt.Sprintf("Anomalies flagged: %d total (down: %d, up: %d).", total, down, up),
	}
	if len(in.Anomalies) > 0 {
		top := in.Anomalies[0]
		drivers = append(drivers, fmt.Sprintf("Top anomaly: %s z=%s (%s).", top.Date, fixed(top.Z, 2), top.Direction))
	}
	if in.Activity.Total30d > 0 {
		drivers = append(drivers, fmt.Sprintf("Activity completion (30d): %d completed / %d pending.",
			in.Activity.Completed30d, in.Activity.Pending30d))
	}
	if elevated {
		drivers = append(drivers, "Pending activity volume is elevated, increasing operational risk.")
	}
	if len(drivers) < MinKeyDrivers {
		drivers = append(drivers, "Forecast and anomaly signals were used to generate recommendations.")
	}
	if len(drivers) < MinKeyDrivers {
		drivers = append(drivers, "Activity status ratios were incorporated when available.")
	}
	return drivers[:min(MaxKeyDrivers, len(drivers))]
}

func fallbackActions(wow float64, down int, elevated bool) []Action {
	var actions []Action
	if wow < weekDipThreshold || down > 0 {
		actions = append(actions, Action{
			Action:   "Audit channel health and menu availability on key partners",
			Reason:   "Negative anomalies and a revenue dip often correlate with outages, hours/menu drift, or fulfillment constraints on delivery platforms.",
			Priority: PriorityHigh,
		})
	}
	if elevated {
		actions = append(actions, Action{
			Action:   "Clear the highest-impact pending operational items",
			Reason:   "A high pending ratio suggests backlog in refunds, hours updates, promos, or partner tasks that can suppress demand and SLA performance.",
			Priority: PriorityHigh,
		})
	}
	actions = append(actions,
		Action{
			Action:   "Review anomaly dates against promos, staffing, and partner incidents",
			Reason:   "Use anomaly timestamps to triage what changed and validate whether the underlying driver is known and repeatable.",
			Priority: PriorityMedium,
		},
		Action{
			Action:   "Set a daily check for order flow and cancellation rate",
			Reason:   "A lightweight daily check catches revenue-impacting issues (pricing, outages, SLA drift) before they become multi-day dips.",
			Priority: PriorityMedium,
		},
	)
	if len(actions) < MinActions {
		actions = append(actions, Action{
			Action:   "Confirm staffing and catering capacity aligns with demand signals",
			Reason:   "Even without a staffing system, aligning shifts and prep plans with forecast direction reduces SLA misses and missed revenue.",
			Priority: PriorityMedium,
		})
	}
	return actions[:min(MaxActions, len(actions))]
}

func activityPoint(s ActivityStats) string {
	return fmt.Sprintf("Activity (30d): total %d, completed %d, pending %d, completion_rate %s%%",
		s.Total30d, s.Completed30d, s.Pending30d, rateText(s.CompletionRate, 1))
}

func rateText(rate *float64, digits int) string {
	if rate == nil {
		return placeholderRate
	}
	return fixed(*rate*100, digits)
}

// pickUsedDataPoints keeps the first limit non-empty points. The prompt version
// marker always survives: it is appended when there is room, otherwise it
// replaces the last kept entry. Never returns an empty list.
func pickUsedDataPoints(points []string, limit int) []string {
	var nonEmpty []string
	marker := ""
	for _, p := range points {
		if p == "" {
			continue
		}
		nonEmpty = append(nonEmpty, p)
		if marker == "" && strings.HasPrefix(p, promptVersionMarker) {
			marker = p
		}
	}

	selected := append([]string(nil), nonEmpty[:min(len(nonEmpty), limit)]...)
	if marker != "" && !slices.Contains(selected, marker) {
		if len(selected) < limit {
			selected = append(selected, marker)
		} else if len(selected) > 0 {
			selected[len(selected)-1] = marker
		}
	}
	if len(selected) == 0 {
		return []string{promptMarker("v1")}
	}
	return selected
}
