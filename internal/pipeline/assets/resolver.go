// Package assets locates certificate images on disk.
//
// Deployments place branding files in different directories and under
// slightly different names, so each logical asset maps to an ordered list of
// filename aliases searched across an ordered list of directories. The first
// hit wins.
package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Logical asset names used by the certificate templates.
const (
	AssetMDCANLogo          = "mdcan-logo"
	AssetCoalCityLogo       = "coalcity-logo"
	AssetPresidentSignature = "president-signature"
	AssetChairmanSignature  = "chairman-signature"
)

// aliases maps each logical asset to candidate filenames, in priority order.
var aliases = map[string][]string{
	AssetMDCANLogo: {
		"mdcan-logo.png",
		"mdcan_logo.jpeg",
		"logo-mdcan.jpeg",
	},
	AssetCoalCityLogo: {
		"coalcity-logo.png",
		"coal_city_logo.png",
	},
	AssetPresidentSignature: {
		"president-signature.png",
		"president-signature-placeholder.jpg",
		"president-signature.jpg",
	},
	AssetChairmanSignature: {
		"chairman-signature.png",
		"chairman-signature-placeholder.png",
		"Dr. Augustine Duru.jpg",
	},
}

// Asset is a resolved certificate image.
type Asset struct {
	Name string // logical name
	Path string // absolute filesystem path
	MIME string
}

// FileURI returns the asset path as a file:// URI for the PDF converter.
func (a Asset) FileURI() string {
	return "file://" + filepath.ToSlash(a.Path)
}

// NotFoundError reports that no alias of a logical asset exists in any
// search directory. Rendering continues without the image.
type NotFoundError struct {
	Name string
	Dirs []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("asset %q not found in %s", e.Name, strings.Join(e.Dirs, ", "))
}

// Resolver searches an ordered list of directories for certificate assets.
type Resolver struct {
	searchDirs []string
}

// NewResolver builds a resolver over the given directories. Relative
// directories are made absolute against the working directory so the
// converter sees stable file URIs. Missing directories are kept in the list;
// they simply never match.
func NewResolver(searchDirs []string) (*Resolver, error) {
	if len(searchDirs) == 0 {
		return nil, fmt.Errorf("at least one search directory is required")
	}

	abs := make([]string, 0, len(searchDirs))
	for _, dir := range searchDirs {
		a, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("resolve search dir %q: %w", dir, err)
		}
		abs = append(abs, a)
	}
	return &Resolver{searchDirs: abs}, nil
}

// Resolve finds the first existing alias of the named asset. Directories are
// searched in order and every alias is tried within one directory before
// moving to the next, so any filename in an earlier directory beats any
// filename in a later one.
func (r *Resolver) Resolve(name string) (Asset, error) {
	names, ok := aliases[name]
	if !ok {
		// Unknown logical names fall back to a literal filename lookup.
		names = []string{name}
	}

	for _, dir := range r.searchDirs {
		for _, candidate := range names {
			path := filepath.Join(dir, candidate)
			info, err := os.Stat(path)
			if err != nil || info.IsDir() {
				continue
			}
			return Asset{Name: name, Path: path, MIME: mimeByExtension(path)}, nil
		}
	}

	return Asset{}, &NotFoundError{Name: name, Dirs: r.searchDirs}
}

// ResolveAll resolves every known logical asset. Missing assets are simply
// absent from the result; the caller renders without them.
func (r *Resolver) ResolveAll() map[string]Asset {
	out := make(map[string]Asset, len(aliases))
	for name := range aliases {
		if asset, err := r.Resolve(name); err == nil {
			out[name] = asset
		}
	}
	return out
}

func mimeByExtension(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}
