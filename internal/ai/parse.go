package ai

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// StripFences removes incidental markdown code-fence markers the model
// sometimes wraps its JSON output in.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToLower(s), "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// UnmarshalLenient unmarshals data into v. On a syntax error it repairs
// the JSON first and retries once.
func UnmarshalLenient(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	if _, ok := err.(*json.SyntaxError); ok {
		fixed, repairErr := jsonrepair.JSONRepair(string(data))
		if repairErr != nil {
			return err
		}
		return json.Unmarshal([]byte(fixed), v)
	}
	return err
}

// ParseJSON strips code fences from a model reply and leniently
// unmarshals the remainder into out.
func ParseJSON(text string, out any) error {
	return UnmarshalLenient([]byte(StripFences(text)), out)
}

// ExtractObject returns the first top-level JSON object embedded in s,
// or an empty string when s contains none.
func ExtractObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}
