package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/ghscan/internal/core/domain"
)

// parseVars turns repeated --var key=value flags into variables.
// Values that parse as integers, floats, booleans or null are typed;
// everything else is a string. Quote a value ("10") to force a string.
func parseVars(pairs []string) (domain.Variables, error) {
	vars := make(domain.Variables, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: --var %q is not key=value", domain.ErrInvalidInput, pair)
		}
		vars[key] = parseValue(raw)
	}
	return vars, nil
}

func parseValue(raw string) any {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		return unquoted
	}
	return raw
}
