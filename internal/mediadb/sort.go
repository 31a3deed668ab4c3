package mediadb

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// Sort selects the ordering of entity listings.
type Sort int

const (
	SortCode Sort = iota
	SortName
	// SortColor orders gels by red, green, then blue. Image kinds reject it.
	SortColor
)

func (s Sort) String() string {
	switch s {
	case SortName:
		return "name"
	case SortColor:
		return "color"
	default:
		return "code"
	}
}

// ParseSort accepts "code", "name" or "color". Empty means code.
func ParseSort(value string) (Sort, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "code":
		return SortCode, nil
	case "name":
		return SortName, nil
	case "color", "colour":
		return SortColor, nil
	default:
		return SortCode, fmt.Errorf("unknown sort %q (want code, name or color)", value)
	}
}

func (s Sort) orderBy() string {
	switch s {
	case SortName:
		return "name ASC"
	case SortColor:
		return "red ASC, green ASC, blue ASC"
	default:
		return "code ASC"
	}
}

type folded[T any] struct {
	key  string
	item T
}

// sortFolded stably reorders items by the case-folded key.
func sortFolded[T any](items []T, key func(T) string) {
	caser := cases.Fold()
	keyed := make([]folded[T], len(items))
	for i, item := range items {
		keyed[i] = folded[T]{key: caser.String(key(item)), item: item}
	}
	slices.SortStableFunc(keyed, func(a, b folded[T]) int {
		return strings.Compare(a.key, b.key)
	})
	for i := range keyed {
		items[i] = keyed[i].item
	}
}
