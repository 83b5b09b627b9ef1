package transform

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse reads the compact string form of a transform:
//
//	substring($VAR, startChar=1, endChar=-1)
//	replace($VAR, replace=regex, by=text)
//	convert($VAR, toCase=camelCase)
//
// Arguments other than the source are key=value pairs and may appear in any
// order.
func Parse(expr string) (Trans, error) {
	open := strings.IndexByte(expr, '(')
	if open < 0 || !strings.HasSuffix(expr, ")") {
		return nil, fmt.Errorf("%w: %q", ErrParse, expr)
	}

	op := strings.TrimSpace(expr[:open])
	body := expr[open+1 : len(expr)-1]

	parts := strings.Split(body, ",")
	source := strings.TrimSpace(parts[0])

	args := map[string]string{}

	for _, part := range parts[1:] {
		key, value, found := strings.Cut(part, "=")
		if !found {
			return nil, fmt.Errorf("%w: argument %q in %q", ErrParse, part, expr)
		}

		args[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	switch op {
	case "substring":
		start, err := optionalInt(args, "startChar")
		if err != nil {
			return nil, err
		}

		end, err := optionalInt(args, "endChar")
		if err != nil {
			return nil, err
		}

		return NewSubstring(source, start, end)
	case "replace":
		return NewReplace(source, args["replace"], args["by"])
	case "convert":
		return NewConvert(source, args["toCase"])
	default:
		return nil, fmt.Errorf("%w: unknown operation %q", ErrParse, op)
	}
}

func optionalInt(args map[string]string, key string) (*int, error) {
	raw, ok := args[key]
	if !ok {
		return nil, nil
	}

	val, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s=%q", ErrParse, key, raw)
	}

	return &val, nil
}
