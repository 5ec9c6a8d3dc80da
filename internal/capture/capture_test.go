package capture

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `{
  "pairs": [
    {"original": "cat.png", "styled": "cat_watercolor.png", "style": "watercolor"},
    {"original": "cat.png", "styled": "cat_cyberpunk.png", "style": "cyberpunk"}
  ]
}`)

	pairs, err := LoadManifest(path, Options{ImageRoot: "/images"})
	require.NoError(t, err)
	require.Len(t, pairs, 2)

	assert.Equal(t, filepath.Join("/images", "cat.png"), pairs[0].OriginalImage)
	assert.Equal(t, filepath.Join("/images", "cat_watercolor.png"), pairs[0].StyledImage)
	assert.Equal(t, "watercolor", pairs[0].Style)
}

func TestLoadManifest_StyleFilter(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `{
  "pairs": [
    {"original": "a.png", "styled": "a_w.png", "style": "Watercolor"},
    {"original": "a.png", "styled": "a_c.png", "style": "cyberpunk"}
  ]
}`)

	pairs, err := LoadManifest(path, Options{Styles: []string{"watercolor"}})
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "Watercolor", pairs[0].Style, "filter is case-insensitive but style casing is preserved")
}

func TestLoadManifest_IncompletePairFailsWholeLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `{
  "pairs": [
    {"original": "a.png", "styled": "a_w.png", "style": "watercolor"},
    {"original": "b.png", "styled": "", "style": "watercolor"}
  ]
}`)

	_, err := LoadManifest(path, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pair 1")
}

func TestLoadManifest_EmptyManifest(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `{"pairs": []}`)

	_, err := LoadManifest(path, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no pairs")
}

func TestLoadManifest_NoStyleMatch(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `{
  "pairs": [{"original": "a.png", "styled": "b.png", "style": "sketch"}]
}`)

	_, err := LoadManifest(path, Options{Styles: []string{"watercolor"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no pairs match")
}

func TestLoadManifest_RequestedStyleAbsentFromManifest(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `{
  "pairs": [{"original": "a.png", "styled": "a_w.png", "style": "watercolor"}]
}`)

	// Asking for a style the manifest never mentions must fail the load,
	// not quietly shrink the benchmark to the styles that do exist.
	_, err := LoadManifest(path, Options{Styles: []string{"watercolor", "cyberpunk"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no pairs for requested style")
	assert.Contains(t, err.Error(), "cyberpunk")
}

func TestLoadManifest_VerifyFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), []byte("fake"), 0644))

	path := writeManifest(t, dir, `{
  "pairs": [{"original": "a.png", "styled": "missing.png", "style": "sketch"}]
}`)

	_, err := LoadManifest(path, Options{ImageRoot: dir, VerifyFiles: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing image")
}

func TestMediaType(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{path: "a.png", want: "image/png"},
		{path: "a.JPG", want: "image/jpeg"},
		{path: "a.jpeg", want: "image/jpeg"},
		{path: "a.webp", want: "image/webp"},
		{path: "a.gif", want: "image/gif"},
		{path: "a.bmp", wantErr: true},
		{path: "noext", wantErr: true},
	}
	for _, tt := range tests {
		got, err := MediaType(tt.path)
		if tt.wantErr {
			assert.Error(t, err, tt.path)
			continue
		}
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
}
