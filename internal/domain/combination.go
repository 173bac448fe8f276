package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCombination is wrapped by every error returned from
// CombinationIndex.
var ErrInvalidCombination = errors.New("invalid variant combination")

const combinationSeparator = "/"

// ParseCombinationTitle splits "Red / S /" into ["Red", "S"]. Components are
// trimmed and empty ones dropped, so a trailing separator is harmless.
func ParseCombinationTitle(title string) []string {
	parts := strings.Split(title, combinationSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinCombinationTitle is the inverse of ParseCombinationTitle.
func JoinCombinationTitle(tags []string) string {
	return strings.Join(tags, combinationSeparator)
}

// CombinationIndex resolves price titles to ProductVariant ids of a single
// product.
type CombinationIndex struct {
	byTag map[string][]string
}

// NewCombinationIndex indexes variants by their value. A value listed twice
// under the same category is rejected. The same value under two categories
// is accepted; only price titles that reference it fail to resolve.
func NewCombinationIndex(variants []ProductVariant) (*CombinationIndex, error) {
	idx := &CombinationIndex{byTag: make(map[string][]string, len(variants))}
	seen := make(map[[2]string]struct{}, len(variants))
	for _, v := range variants {
		key := [2]string{v.VariantID, v.VariantTitle}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: tag %q listed twice for the same option", ErrInvalidCombination, v.VariantTitle)
		}
		seen[key] = struct{}{}
		idx.byTag[v.VariantTitle] = append(idx.byTag[v.VariantTitle], v.ID)
	}
	return idx, nil
}

// Resolve maps each component of title, in order, to a ProductVariant id.
func (idx *CombinationIndex) Resolve(title string) ([]string, error) {
	tags := ParseCombinationTitle(title)
	switch {
	case len(tags) == 0:
		return nil, fmt.Errorf("%w: price title %q names no variant", ErrInvalidCombination, title)
	case len(tags) > MaxCombinationAxes:
		return nil, fmt.Errorf("%w: price title %q combines %d variants, at most %d allowed",
			ErrInvalidCombination, title, len(tags), MaxCombinationAxes)
	}

	ids := make([]string, len(tags))
	for i, tag := range tags {
		switch matches := idx.byTag[tag]; len(matches) {
		case 0:
			return nil, fmt.Errorf("%w: price title %q references unknown tag %q", ErrInvalidCombination, title, tag)
		case 1:
			ids[i] = matches[0]
		default:
			return nil, fmt.Errorf("%w: price title %q references tag %q, which is listed under %d options",
				ErrInvalidCombination, title, tag, len(matches))
		}
	}
	return ids, nil
}
