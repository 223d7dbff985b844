package telegram

import (
	"errors"
	"strings"
	"unicode"
)

var errUnclosedQuote = errors.New("unclosed quote")

// splitArgs splits a command's argument string on whitespace. Double quotes
// group words, so `Meeting` and `"Team sync"` are both one argument.
func splitArgs(s string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		hasArg  bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			hasArg = true
		case unicode.IsSpace(r) && !inQuote:
			if hasArg {
				args = append(args, cur.String())
				cur.Reset()
				hasArg = false
			}
		default:
			cur.WriteRune(r)
			hasArg = true
		}
	}
	if inQuote {
		return nil, errUnclosedQuote
	}
	if hasArg {
		args = append(args, cur.String())
	}
	return args, nil
}
