package core

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"
)

// EnumName returns names[v], or kind(v) for values without a name.
func EnumName[T ~int](names map[T]string, v T, kind string) string {
	if n, ok := names[v]; ok {
		return n
	}

	return fmt.Sprintf("%s(%d)", kind, int(v))
}

// EnumNames returns the names in ascending order of their values.
func EnumNames[T ~int](names map[T]string) []string {
	keys := slices.Sorted(maps.Keys(names))

	out := make([]string, len(keys))
	for i, v := range keys {
		out[i] = names[v]
	}

	return out
}

// ParseEnum looks s up in names, ignoring case and surrounding space. Values
// are tried in ascending order, so the first of duplicate names wins.
func ParseEnum[T ~int](names map[T]string, s, what string) (T, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, v := range slices.Sorted(maps.Keys(names)) {
		if names[v] == s {
			return v, nil
		}
	}

	return 0, fmt.Errorf("%w: unknown %s %q (want one of %s)", ErrInvalidArgument, what, s, strings.Join(EnumNames(names), ", "))
}

// Field is one line of an option listing.
type Field struct {
	Name  string
	Value any
}

// FormatFields renders fields as an aligned two-column listing.
func FormatFields(fields []Field) string {
	var sb strings.Builder

	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	for _, f := range fields {
		fmt.Fprintf(tw, "%s\t: %v\n", f.Name, f.Value)
	}

	_ = tw.Flush()

	return sb.String()
}
