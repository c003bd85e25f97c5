package inference

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ErrNoJSON is returned when a reply contains no object or array.
var ErrNoJSON = errors.New("no structured block in reply")

// ExtractJSON returns the first balanced {...} or [...] region of s. Brackets
// inside string literals are ignored. When the region never closes (a truncated
// reply) the remainder of s from the opening bracket is returned so that repair
// can still be attempted.
func ExtractJSON(s string) (string, bool) {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return "", false
	}

	var (
		stack    []byte
		inString bool
		escaped  bool
	)
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != ch {
				// mismatched closer; let repair deal with what we have so far
				return s[start : i+1], true
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return s[start : i+1], true
			}
		}
	}
	return s[start:], true
}

// Decode extracts the first structured block of reply and unmarshals it into v.
// Syntax errors are retried once after jsonrepair.
func Decode(reply string, v any) error {
	block, ok := ExtractJSON(reply)
	if !ok {
		return ErrNoJSON
	}
	err := json.Unmarshal([]byte(block), v)
	if err == nil {
		return nil
	}
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return err
	}
	fixed, rerr := jsonrepair.JSONRepair(block)
	if rerr != nil {
		return errors.Join(err, rerr)
	}
	return json.Unmarshal([]byte(fixed), v)
}
