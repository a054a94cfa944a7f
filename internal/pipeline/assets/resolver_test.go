package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("img"), 0o644))
	return path
}

func TestResolver_FirstAliasWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mdcan-logo.png")
	writeFile(t, dir, "mdcan_logo.jpeg")

	r, err := NewResolver([]string{dir})
	require.NoError(t, err)

	asset, err := r.Resolve(AssetMDCANLogo)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mdcan-logo.png"), asset.Path)
	assert.Equal(t, "image/png", asset.MIME)
}

func TestResolver_DirectoryOrderBeatsAliasPriority(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()

	// Lower-priority alias in the first directory, higher-priority alias in
	// the second. The earlier directory must win: a deliberately placed
	// placeholder there overrides a canonical filename further down the list.
	expected := writeFile(t, first, "president-signature-placeholder.jpg")
	writeFile(t, second, "president-signature.png")

	r, err := NewResolver([]string{first, second})
	require.NoError(t, err)

	asset, err := r.Resolve(AssetPresidentSignature)
	require.NoError(t, err)
	assert.Equal(t, expected, asset.Path)
}

func TestResolver_AliasOrderBreaksTiesWithinDirectory(t *testing.T) {
	dir := t.TempDir()
	expected := writeFile(t, dir, "president-signature.png")
	writeFile(t, dir, "president-signature-placeholder.jpg")

	r, err := NewResolver([]string{dir})
	require.NoError(t, err)

	asset, err := r.Resolve(AssetPresidentSignature)
	require.NoError(t, err)
	assert.Equal(t, expected, asset.Path)
}

func TestResolver_DirectoryOrderBreaksTies(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	expected := writeFile(t, first, "coalcity-logo.png")
	writeFile(t, second, "coalcity-logo.png")

	r, err := NewResolver([]string{first, second})
	require.NoError(t, err)

	asset, err := r.Resolve(AssetCoalCityLogo)
	require.NoError(t, err)
	assert.Equal(t, expected, asset.Path)
}

func TestResolver_NotFound(t *testing.T) {
	r, err := NewResolver([]string{t.TempDir()})
	require.NoError(t, err)

	_, err = r.Resolve(AssetChairmanSignature)
	require.Error(t, err)

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, AssetChairmanSignature, nf.Name)
}

func TestResolver_LiteralFilenameFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "banner.jpeg")

	r, err := NewResolver([]string{dir})
	require.NoError(t, err)

	asset, err := r.Resolve("banner.jpeg")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", asset.MIME)
}

func TestResolver_ResolveAllSkipsMissing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mdcan-logo.png")
	writeFile(t, dir, "chairman-signature.png")

	r, err := NewResolver([]string{dir})
	require.NoError(t, err)

	all := r.ResolveAll()
	assert.Contains(t, all, AssetMDCANLogo)
	assert.Contains(t, all, AssetChairmanSignature)
	assert.NotContains(t, all, AssetPresidentSignature)
}

func TestResolver_IgnoresDirectoriesNamedLikeAssets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "coalcity-logo.png"), 0o755))

	r, err := NewResolver([]string{dir})
	require.NoError(t, err)

	_, err = r.Resolve(AssetCoalCityLogo)
	assert.Error(t, err)
}

func TestNewResolver_RequiresDirs(t *testing.T) {
	_, err := NewResolver(nil)
	assert.Error(t, err)
}
