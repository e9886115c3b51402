package eval

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	jsonReportName     = "latest.json"
	markdownReportName = "latest.md"
)

// WriteReport stores latest.json and latest.md under dir and returns their paths.
func WriteReport(dir string, report Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create results dir: %w", err)
	}

	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	jsonPath := filepath.Join(dir, jsonReportName)
	if err := os.WriteFile(jsonPath, raw, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", jsonPath, err)
	}

	mdPath := filepath.Join(dir, markdownReportName)
	if err := os.WriteFile(mdPath, []byte(Markdown(report)), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", mdPath, err)
	}
	return []string{jsonPath, mdPath}, nil
}

// Markdown renders the human-readable report.
func Markdown(report Report) string {
	s := report.Summary
	var b strings.Builder

	b.WriteString("# Copilot Eval Results\n\n")
	fmt.Fprintf(&b, "Run at: %s\n", s.RanAt)
	fmt.Fprintf(&b, "Run ID: %s\n", s.RunID)
	fmt.Fprintf(&b, "Base URL: %s\n", s.BaseURL)
	fmt.Fprintf(&b, "Cases: %d\n\n", s.CaseCount)

	b.WriteString("## Score Summary\n\n")
	fmt.Fprintf(&b, "- Schema pass rate: %.1f%%\n", s.SchemaPassRate*100)
	fmt.Fprintf(&b, "- Avg actionability: %.2f\n", s.AvgActionability)
	fmt.Fprintf(&b, "- Avg specificity: %.2f\n", s.AvgSpecificity)
	fmt.Fprintf(&b, "- Avg hallucination penalty: %.2f\n\n", s.AvgHallucinationPenalty)

	b.WriteString("## Per-Case\n\n")
	b.WriteString("| id | version | schema | actionability | specificity | hallucination |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- |\n")
	var failures []Result
	for _, res := range report.Results {
		schema := "pass"
		if !res.SchemaPass {
			schema = "fail"
			failures = append(failures, res)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			res.ID, res.PromptVersion, schema,
			num(res.Scores.Actionability), num(res.Scores.SpecificityToData), num(res.Scores.HallucinationPenalty))
	}

	if len(failures) > 0 {
		b.WriteString("\n## Failures\n\n")
		for _, res := range failures {
			msg := schemaErrorText
			if res.Error != nil && *res.Error != "" {
				msg = *res.Error
			}
			fmt.Fprintf(&b, "- %s: %s\n", res.ID, msg)
		}
	}
	return b.String()
}

// num prints whole scores without a decimal point.
func num(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.1f", v), "0"), ".")
}
