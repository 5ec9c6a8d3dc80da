package rubric

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneric_CoversAllDimensions(t *testing.T) {
	g := Generic()
	require.Len(t, g.Assertions, len(DimensionOrder))

	byDim := g.ByDimension()
	for _, dim := range DimensionOrder {
		assert.Len(t, byDim[dim], 1, "dimension %s", dim)
	}

	assert.Equal(t, "A1", g.Assertions[0].ID)
	assert.Equal(t, "E1", g.Assertions[len(g.Assertions)-1].ID)
}

func TestMaxPossible_DerivedFromWeights(t *testing.T) {
	// All five dimensions present: (1.0 + 1.0 + 0.5 + 0.5 + 2.0) * 5 = 25.
	g := Generic()
	assert.InDelta(t, 25.0, g.MaxPossible(), 1e-9)

	// Only two dimensions present: (1.0 + 2.0) * 5 = 15.
	partial := &Rubric{
		Name: "partial",
		Assertions: []Assertion{
			{ID: "A1", Dimension: DimAccuracy, Text: "q"},
			{ID: "A2", Dimension: DimAccuracy, Text: "q"},
			{ID: "E1", Dimension: DimExceptional, Text: "q"},
		},
	}
	assert.InDelta(t, 15.0, partial.MaxPossible(), 1e-9)
}

func TestAssertionID(t *testing.T) {
	assert.Equal(t, "A1", AssertionID(DimAccuracy, 1))
	assert.Equal(t, "C2", AssertionID(DimCompleteness, 2))
	assert.Equal(t, "R3", AssertionID(DimRelevance, 3))
	assert.Equal(t, "U1", AssertionID(DimUsefulness, 1))
	assert.Equal(t, "E5", AssertionID(DimExceptional, 5))
}

func TestStore_Lookup(t *testing.T) {
	watercolor := &Rubric{
		Name: "Watercolor",
		Assertions: []Assertion{
			{ID: "A1", Dimension: DimAccuracy, Text: "Are brush strokes visible?"},
		},
	}
	store := NewStore(watercolor)

	r, ok := store.Lookup("watercolor")
	assert.True(t, ok)
	assert.Equal(t, "Watercolor", r.Name)

	r, ok = store.Lookup("WATERCOLOR")
	assert.True(t, ok, "lookup is case-insensitive")
	assert.Equal(t, "Watercolor", r.Name)

	r, ok = store.Lookup("unknown-style")
	assert.False(t, ok)
	require.NotNil(t, r)
	assert.Equal(t, "generic", r.Name, "missing styles fall back to generic")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	content := `style: cyberpunk
assertions:
  - dimension: accuracy
    text: Does the image show neon lighting?
  - dimension: accuracy
    text: Is the color palette dominated by purples and teals?
  - dimension: exceptional
    text: Does the scene feel like a coherent futuristic city?
`
	path := filepath.Join(dir, "cyberpunk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	r, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "cyberpunk", r.Name)
	require.Len(t, r.Assertions, 3)
	assert.Equal(t, "A1", r.Assertions[0].ID)
	assert.Equal(t, "A2", r.Assertions[1].ID)
	assert.Equal(t, "E1", r.Assertions[2].ID)
}

func TestLoadFile_RejectsUnknownDimension(t *testing.T) {
	dir := t.TempDir()
	content := `style: bad
assertions:
  - dimension: vibes
    text: Is it good?
`
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown dimension")
}

func TestLoadDir_MissingDirectoryIsEmpty(t *testing.T) {
	store, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, store.Names())

	r, ok := store.Lookup("anything")
	assert.False(t, ok)
	assert.Equal(t, "generic", r.Name)
}
