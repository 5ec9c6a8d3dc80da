// Package capture loads the image-pair manifest that tells a run which
// original/styled pairs to grade.
package capture

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/restylelab/stylebench/internal/models"
)

// manifestEntry is the on-disk shape of one pair.
type manifestEntry struct {
	Original string `json:"original"`
	Styled   string `json:"styled"`
	Style    string `json:"style"`
}

// manifestFile is the on-disk manifest document.
type manifestFile struct {
	Pairs []manifestEntry `json:"pairs"`
}

// Options filters and resolves manifest entries.
type Options struct {
	// ImageRoot is prepended to relative image paths.
	ImageRoot string
	// Styles restricts the capture to the named styles. Empty means all.
	Styles []string
	// VerifyFiles requires each referenced image to exist on disk.
	VerifyFiles bool
}

// LoadManifest reads and validates the pair manifest. Every entry must
// name both images and a style; an empty field anywhere fails the whole
// load because a partial capture would silently shrink the benchmark.
func LoadManifest(path string, opts Options) ([]models.CapturedPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var mf manifestFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	if len(mf.Pairs) == 0 {
		return nil, fmt.Errorf("manifest %s contains no pairs", path)
	}

	wanted := map[string]bool{}
	for _, s := range opts.Styles {
		wanted[strings.ToLower(s)] = true
	}
	matched := map[string]bool{}

	var pairs []models.CapturedPair
	for i, entry := range mf.Pairs {
		if entry.Original == "" || entry.Styled == "" || entry.Style == "" {
			return nil, fmt.Errorf("manifest %s: pair %d is missing original, styled, or style", path, i)
		}

		if len(wanted) > 0 && !wanted[strings.ToLower(entry.Style)] {
			continue
		}
		matched[strings.ToLower(entry.Style)] = true

		pair := models.CapturedPair{
			OriginalImage: resolve(opts.ImageRoot, entry.Original),
			StyledImage:   resolve(opts.ImageRoot, entry.Styled),
			Style:         entry.Style,
		}

		if opts.VerifyFiles {
			for _, img := range []string{pair.OriginalImage, pair.StyledImage} {
				if _, err := os.Stat(img); err != nil {
					return nil, fmt.Errorf("manifest %s: pair %d references missing image %s", path, i, img)
				}
			}
		}

		pairs = append(pairs, pair)
	}

	if len(pairs) == 0 {
		return nil, fmt.Errorf("manifest %s: no pairs match the requested styles", path)
	}

	// Every requested style must be represented. A style quietly absent
	// from the manifest would shrink the benchmark without anyone noticing.
	var missing []string
	for _, s := range opts.Styles {
		if !matched[strings.ToLower(s)] {
			missing = append(missing, s)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("manifest %s has no pairs for requested style(s): %s",
			path, strings.Join(missing, ", "))
	}

	return pairs, nil
}

func resolve(root, path string) string {
	if root == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// ReadImage loads an image file and reports its media type from the file
// extension. Judges send the bytes to their backends as-is.
func ReadImage(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}

	mediaType, err := MediaType(path)
	if err != nil {
		return nil, "", err
	}
	return data, mediaType, nil
}

// MediaType maps a file extension to its MIME type. Only formats the
// judge backends accept are supported.
func MediaType(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png", nil
	case ".jpg", ".jpeg":
		return "image/jpeg", nil
	case ".webp":
		return "image/webp", nil
	case ".gif":
		return "image/gif", nil
	default:
		return "", fmt.Errorf("unsupported image format %q", filepath.Ext(path))
	}
}
