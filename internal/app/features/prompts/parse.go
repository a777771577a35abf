// internal/app/features/prompts/parse.go
package prompts

import (
	"encoding/json"
	"strings"
)

// ParseCompletion extracts up to count prompts from the model's output.
// The happy path is a JSON array of strings; models that ignore the
// format instruction usually return a bulleted or numbered list, which
// the line-split fallback handles.
func ParseCompletion(raw string, count int) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if prompts := parseJSONArray(raw, count); len(prompts) > 0 {
		return prompts
	}
	return parseLines(raw, count)
}

func parseJSONArray(raw string, count int) []string {
	// Models often wrap the array in a markdown code fence.
	if idx := strings.Index(raw, "["); idx >= 0 {
		if end := strings.LastIndex(raw, "]"); end > idx {
			raw = raw[idx : end+1]
		}
	}

	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}

	var prompts []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		prompts = append(prompts, item)
		if len(prompts) == count {
			break
		}
	}
	return prompts
}

func parseLines(raw string, count int) []string {
	var prompts []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = stripBullet(line)
		if line == "" {
			continue
		}
		prompts = append(prompts, line)
		if len(prompts) == count {
			break
		}
	}
	return prompts
}

// stripBullet removes leading list markers: "-", "*", "•", "1.", "2)".
func stripBullet(line string) string {
	line = strings.TrimLeft(line, "-*• \t")

	// Numbered markers: digits followed by "." or ")".
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && i < len(line) && (line[i] == '.' || line[i] == ')') {
		line = line[i+1:]
	}

	line = strings.TrimSpace(line)
	// Unwrap surrounding quotes left over from near-JSON output.
	line = strings.Trim(line, `"`)
	return strings.TrimSpace(line)
}
