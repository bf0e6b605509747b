package extraction

import (
	"encoding/json"
	"fmt"
	"strings"
)

// repairs are literal rewrites for known model mistakes, applied to the
// located JSON span before parsing.
var repairs = []struct {
	old string
	new string
}{
	{`"postaL_code"`, `"postal_code"`},
	{`"postalCode"`, `"postal_code"`},
	{`"ext or null"`, `null`},
	{`"null"`, `null`},
}

// ParseJSON locates the first {...} span in an LLM response, repairs
// known malformed-output patterns, and unmarshals it into T. It handles
// common LLM quirks like surrounding markdown or extra prose.
func ParseJSON[T any](response string) (T, error) {
	var zero T

	start := strings.IndexByte(response, '{')
	end := strings.LastIndexByte(response, '}')
	if start == -1 || end == -1 || start >= end {
		return zero, fmt.Errorf("no JSON object found in response")
	}
	jsonStr := response[start : end+1]

	for _, r := range repairs {
		jsonStr = strings.ReplaceAll(jsonStr, r.old, r.new)
	}

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return result, nil
}
