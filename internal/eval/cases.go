// Package eval replays a fixed set of copilot questions against a running
// server and scores the answers.
package eval

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Case is one line of the JSONL case file.
type Case struct {
	ID            string `json:"id" validate:"required"`
	Query         string `json:"query" validate:"required"`
	PromptVersion string `json:"prompt_version"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadCases reads a JSONL case file. Blank lines are skipped.
func LoadCases(path string) ([]Case, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cases: %w", err)
	}
	defer f.Close()
	return ReadCases(f)
}

func ReadCases(r io.Reader) ([]Case, error) {
	var out []Case
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var c Case
		if err := json.Unmarshal([]byte(text), &c); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := validate.Struct(c); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read cases: %w", err)
	}
	return out, nil
}
