package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleVariants() []ProductVariant {
	return []ProductVariant{
		{ID: "pv-red", VariantTitle: "Red", VariantID: "color"},
		{ID: "pv-blue", VariantTitle: "Blue", VariantID: "color"},
		{ID: "pv-s", VariantTitle: "S", VariantID: "size"},
		{ID: "pv-m", VariantTitle: "M", VariantID: "size"},
		{ID: "pv-slim", VariantTitle: "Slim", VariantID: "style"},
	}
}

func TestParseCombinationTitle(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Red/S/", []string{"Red", "S"}},
		{"Red/S", []string{"Red", "S"}},
		{" Red / S / Slim ", []string{"Red", "S", "Slim"}},
		{"Red//S", []string{"Red", "S"}},
		{"/", []string{}},
		{"", []string{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseCombinationTitle(tt.in), tt.in)
	}
}

func TestJoinCombinationTitle(t *testing.T) {
	assert.Equal(t, "Red/S", JoinCombinationTitle([]string{"Red", "S"}))
	assert.Equal(t, "", JoinCombinationTitle(nil))
}

func TestCombinationIndex_ResolvePositional(t *testing.T) {
	idx, err := NewCombinationIndex(sampleVariants())
	require.NoError(t, err)

	ids, err := idx.Resolve("Red/S/")
	require.NoError(t, err)
	assert.Equal(t, []string{"pv-red", "pv-s"}, ids)

	ids, err = idx.Resolve("M/Blue/Slim")
	require.NoError(t, err)
	assert.Equal(t, []string{"pv-m", "pv-blue", "pv-slim"}, ids)

	ids, err = idx.Resolve("Blue")
	require.NoError(t, err)
	assert.Equal(t, []string{"pv-blue"}, ids)
}

func TestCombinationIndex_ResolveErrors(t *testing.T) {
	idx, err := NewCombinationIndex(sampleVariants())
	require.NoError(t, err)

	for _, title := range []string{"Green/S", "", "//", "Red/S/Slim/Blue"} {
		_, err := idx.Resolve(title)
		assert.ErrorIs(t, err, ErrInvalidCombination, title)
	}
}

func TestNewCombinationIndex_DuplicateTagInOneOption(t *testing.T) {
	_, err := NewCombinationIndex([]ProductVariant{
		{ID: "a", VariantTitle: "Red", VariantID: "color"},
		{ID: "b", VariantTitle: "Red", VariantID: "color"},
	})
	require.ErrorIs(t, err, ErrInvalidCombination)
	assert.Contains(t, err.Error(), "twice")
}

func TestCombinationIndex_SharedTagAcrossOptions(t *testing.T) {
	idx, err := NewCombinationIndex([]ProductVariant{
		{ID: "a", VariantTitle: "Red", VariantID: "color"},
		{ID: "b", VariantTitle: "Red", VariantID: "style"},
		{ID: "c", VariantTitle: "S", VariantID: "size"},
	})
	require.NoError(t, err)

	ids, err := idx.Resolve("S")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, ids)

	_, err = idx.Resolve("Red/S")
	require.ErrorIs(t, err, ErrInvalidCombination)
	assert.Contains(t, err.Error(), "listed under 2 options")
}

func TestProductVariantPrice_Title(t *testing.T) {
	p := ProductVariantPrice{VariantTitles: []string{"Red", "S"}}
	assert.Equal(t, "Red/S", p.Title())
}
