package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// MalformedResponseError reports model output that could not be decoded into the expected structure.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed llm response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

var codeFence = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// ExtractJSON strips code fences and surrounding prose and returns the outermost JSON object.
func ExtractJSON(raw string) (string, bool) {
	text := strings.TrimSpace(raw)
	if m := codeFence.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// stripTrailingCommas drops commas that directly precede a closing brace or
// bracket. Commas inside string literals are left alone.
func stripTrailingCommas(obj string) string {
	var b strings.Builder
	b.Grow(len(obj))

	inString, escaped := false, false
	for i := 0; i < len(obj); i++ {
		c := obj[i]
		switch {
		case inString:
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
		case c == '"':
			inString = true
		case c == ',':
			j := i + 1
			for j < len(obj) && strings.IndexByte(" \t\r\n", obj[j]) >= 0 {
				j++
			}
			if j < len(obj) && (obj[j] == '}' || obj[j] == ']') {
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// ParseJSON decodes the JSON object embedded in a model response into v.
func ParseJSON(raw string, v interface{}) error {
	obj, ok := ExtractJSON(raw)
	if !ok {
		return &MalformedResponseError{Raw: raw, Err: fmt.Errorf("no json object found")}
	}
	err := json.Unmarshal([]byte(obj), v)
	if err == nil {
		return nil
	}
	// models often leave a trailing comma; only repair when the text is not valid as sent
	if repaired := stripTrailingCommas(obj); repaired != obj {
		if json.Unmarshal([]byte(repaired), v) == nil {
			return nil
		}
	}
	return &MalformedResponseError{Raw: raw, Err: err}
}
