package task

import (
	"fmt"
	"sort"
	"strconv"
)

// Args are the named parameters bound to one invocation
type Args map[string]interface{}

// Names returns the argument names in sorted order
func (a Args) Names() []string {
	names := make([]string, 0, len(a))
	for k := range a {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Int returns the named argument as an int
func (a Args) Int(name string) (int, error) {
	v, ok := a[name]
	if !ok {
		return 0, fmt.Errorf("missing argument %q", name)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case int32:
		return int(n), nil
	case float64:
		return int(n), nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("argument %q: %w", name, err)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("argument %q is %T, not an int", name, v)
	}
}

// Text returns the named argument formatted as a string
func (a Args) Text(name string) (string, error) {
	v, ok := a[name]
	if !ok {
		return "", fmt.Errorf("missing argument %q", name)
	}
	return Format(v), nil
}

// Bool returns the named argument as a bool
func (a Args) Bool(name string) (bool, error) {
	v, ok := a[name]
	if !ok {
		return false, fmt.Errorf("missing argument %q", name)
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return false, fmt.Errorf("argument %q: %w", name, err)
		}
		return parsed, nil
	default:
		return false, fmt.Errorf("argument %q is %T, not a bool", name, v)
	}
}

// Format renders an argument value the way it is passed to a container
func Format(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
