package ai

import "strings"

// ExtractJSON returns the payload that should be fed to a JSON decoder.
// Models often wrap their JSON in a markdown code fence, sometimes after a
// prose preamble; the first fenced block found anywhere in the text wins.
// Without a fence the input is returned trimmed.
func ExtractJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	start := strings.Index(raw, "```json")
	offset := len("```json")
	if start == -1 {
		start = strings.Index(raw, "```")
		offset = len("```")
	}
	if start == -1 {
		return strings.TrimSpace(strings.Trim(raw, "`"))
	}

	payload := raw[start+offset:]
	if end := strings.Index(payload, "```"); end != -1 {
		payload = payload[:end]
	}

	return strings.TrimSpace(payload)
}
