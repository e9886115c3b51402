package copilot

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed prompts/*.yaml
var promptFS embed.FS

// StrictInstruction is appended on the single retry after a schema failure.
const StrictInstruction = "Return ONLY valid JSON that matches the schema exactly. Do not add keys. Ensure key_drivers and recommended_actions have the required item counts."

// PromptTemplate is one versioned system prompt.
type PromptTemplate struct {
	Version   string   `yaml:"version"`
	Role      string   `yaml:"role"`
	Objective string   `yaml:"objective"`
	Rules     []string `yaml:"rules"`
	Output    struct {
		Format  string `yaml:"format"`
		Summary string `yaml:"summary"`
	} `yaml:"output"`
	Style string `yaml:"style"`
}

// System renders the template as the system message.
func (p PromptTemplate) System() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("You are the %s.\n\n", p.Role))
	sb.WriteString(strings.TrimSpace(p.Objective))
	sb.WriteString("\n\nRULES:\n")
	for _, rule := range p.Rules {
		sb.WriteString("- " + rule + "\n")
	}
	sb.WriteString("\nOUTPUT:\n")
	sb.WriteString("- " + p.Output.Format + "\n")
	if p.Output.Summary != "" {
		sb.WriteString("- summary: " + p.Output.Summary + "\n")
	}
	if p.Style != "" {
		sb.WriteString("\nSTYLE: " + p.Style + "\n")
	}
	return sb.String()
}

// Prompts holds the loaded templates by version.
type Prompts struct {
	byVersion map[string]PromptTemplate
}

// LoadPrompts parses every embedded template.
func LoadPrompts() (*Prompts, error) {
	entries, err := promptFS.ReadDir("prompts")
	if err != nil {
		return nil, fmt.Errorf("read prompt templates: %w", err)
	}
	out := &Prompts{byVersion: map[string]PromptTemplate{}}
	for _, entry := range entries {
		raw, err := promptFS.ReadFile("prompts/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		var tmpl PromptTemplate
		if err := yaml.Unmarshal(raw, &tmpl); err != nil {
			return nil, fmt.Errorf("parse %s: %w", entry.Name(), err)
		}
		if tmpl.Version == "" || tmpl.Role == "" {
			return nil, fmt.Errorf("prompt template %s: version and role are required", entry.Name())
		}
		out.byVersion[tmpl.Version] = tmpl
	}
	if _, ok := out.byVersion["v1"]; !ok {
		return nil, fmt.Errorf("prompt template v1 missing")
	}
	return out, nil
}

// Get returns the template for version, falling back to v1.
func (p *Prompts) Get(version string) PromptTemplate {
	if tmpl, ok := p.byVersion[version]; ok {
		return tmpl
	}
	return p.byVersion["v1"]
}

// UserMessage lists the question and the data points the model may cite.
func UserMessage(query string, dataPoints []string) string {
	var sb strings.Builder
	sb.WriteString("USER_QUESTION:\n")
	sb.WriteString(query)
	sb.WriteString("\n\nAVAILABLE_DATA_POINTS (cite these verbatim in used_data_points):\n")
	for i, p := range dataPoints {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("- " + p)
	}
	return sb.String()
}

// SystemWithStrict appends the retry instruction to a system prompt.
func SystemWithStrict(system, extra string) string {
	if extra == "" {
		return system
	}
	return system + "\n\nSTRICT MODE:\n" + extra
}
