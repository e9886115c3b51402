package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/opspulse-backend/pkg/logger"
)

// Result is the outcome of one case.
type Result struct {
	ID            string          `json:"id"`
	PromptVersion string          `json:"prompt_version"`
	Query         string          `json:"query"`
	SchemaPass    bool            `json:"schema_pass"`
	Error         *string         `json:"error"`
	LatencyMs     int64           `json:"latency_ms"`
	Scores        Scores          `json:"scores"`
	Output        json.RawMessage `json:"output"`
}

// Summary aggregates a run.
type Summary struct {
	RunID                   string  `json:"run_id"`
	RanAt                   string  `json:"ran_at"`
	BaseURL                 string  `json:"base_url"`
	CaseCount               int     `json:"case_count"`
	SchemaPassRate          float64 `json:"schema_pass_rate"`
	AvgActionability        float64 `json:"avg_actionability"`
	AvgSpecificity          float64 `json:"avg_specificity"`
	AvgHallucinationPenalty float64 `json:"avg_hallucination_penalty"`
}

// Report is what latest.json holds.
type Report struct {
	Summary Summary  `json:"summary"`
	Results []Result `json:"results"`
}

// AllPassed reports whether every case met the schema.
func (r Report) AllPassed() bool {
	for _, res := range r.Results {
		if !res.SchemaPass {
			return false
		}
	}
	return true
}

// Runner replays cases one at a time with a pause between them so the
// server's per-IP window is respected.
type Runner struct {
	client *Client
	pause  time.Duration
	logg   *logger.Logger
	now    func() time.Time
	sleep  func(context.Context, time.Duration) error
}

type RunnerOption func(*Runner)

func WithPause(d time.Duration) RunnerOption {
	return func(r *Runner) { r.pause = d }
}

func WithLogger(logg *logger.Logger) RunnerOption {
	return func(r *Runner) { r.logg = logg }
}

func WithRunnerClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

func WithRunnerSleep(fn func(context.Context, time.Duration) error) RunnerOption {
	return func(r *Runner) {
		if fn != nil {
			r.sleep = fn
		}
	}
}

func NewRunner(client *Client, opts ...RunnerOption) *Runner {
	r := &Runner{client: client, pause: DefaultBackoff, now: time.Now, sleep: Sleep}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Run evaluates every case. Transport failures become failed results rather
// than aborting the run; only a cancelled ctx stops it early.
func (r *Runner) Run(ctx context.Context, cases []Case) (Report, error) {
	results := make([]Result, 0, len(cases))
	for i, tc := range cases {
		res := r.runCase(ctx, tc)
		results = append(results, res)
		if r.logg != nil {
			r.logg.InfoFields(ctx, "eval.case", map[string]any{
				"case_id":     res.ID,
				"schema_pass": res.SchemaPass,
				"latency_ms":  res.LatencyMs,
			})
		}
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		if i < len(cases)-1 && r.pause > 0 {
			if err := r.sleep(ctx, r.pause); err != nil {
				return Report{}, err
			}
		}
	}
	return Report{Summary: r.summarize(results), Results: results}, nil
}

func (r *Runner) runCase(ctx context.Context, tc Case) Result {
	started := r.now()
	res := Result{ID: tc.ID, PromptVersion: tc.PromptVersion, Query: tc.Query}
	finish := func() Result {
		res.LatencyMs = r.now().Sub(started).Milliseconds()
		return res
	}

	reply, err := r.client.Ask(ctx, tc)
	if err != nil {
		res.Error = strPtr(err.Error())
		res.Output = json.RawMessage("null")
		return finish()
	}
	res.Output = outputOf(reply.Body)

	if !reply.OK() {
		res.Error = strPtr(errorOf(reply))
		return finish()
	}

	answer, err := CheckSchema(reply.Body)
	if err != nil {
		res.Error = strPtr(err.Error())
		return finish()
	}
	res.SchemaPass = true
	res.Scores = Score(*answer)
	return finish()
}

func (r *Runner) summarize(results []Result) Summary {
	s := Summary{
		RunID:     uuid.NewString(),
		RanAt:     r.now().UTC().Format(time.RFC3339Nano),
		BaseURL:   r.client.BaseURL(),
		CaseCount: len(results),
	}
	if len(results) == 0 {
		return s
	}
	var passed int
	for _, res := range results {
		if res.SchemaPass {
			passed++
		}
		s.AvgActionability += res.Scores.Actionability
		s.AvgSpecificity += res.Scores.SpecificityToData
		s.AvgHallucinationPenalty += res.Scores.HallucinationPenalty
	}
	n := float64(len(results))
	s.SchemaPassRate = float64(passed) / n
	s.AvgActionability /= n
	s.AvgSpecificity /= n
	s.AvgHallucinationPenalty /= n
	return s
}

// outputOf keeps the body verbatim when it is JSON and an empty object otherwise.
func outputOf(body []byte) json.RawMessage {
	if json.Valid(body) && len(body) > 0 {
		return json.RawMessage(body)
	}
	return json.RawMessage("{}")
}

// errorOf prefers the server's error message over the bare status.
func errorOf(reply Reply) string {
	var env struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(reply.Body, &env) == nil && len(env.Error) > 0 {
		var obj struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(env.Error, &obj) == nil && obj.Message != "" {
			return obj.Message
		}
		var s string
		if json.Unmarshal(env.Error, &s) == nil && s != "" {
			return s
		}
	}
	return fmt.Sprintf("HTTP %d", reply.Status)
}

func strPtr(s string) *string {
	return &s
}
