package atlas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func newLibrary(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Zones", "parcelles.geojson"), `{"type":"FeatureCollection","features":[]}`)
	writeFile(t, filepath.Join(root, "Zones", "limites.json"), `{"type":"Feature","geometry":null,"properties":{}}`)
	writeFile(t, filepath.Join(root, "Zones", "notes.txt"), `ignored`)
	writeFile(t, filepath.Join(root, "Eau", "rivieres.geojson"), `{"type":"GeometryCollection","geometries":[]}`)
	writeFile(t, filepath.Join(root, "Vide", "readme.md"), `no layers here`)
	writeFile(t, filepath.Join(root, "racine.geojson"), `{"type":"FeatureCollection","features":[]}`)
	writeFile(t, filepath.Join(root, "Zones", "nested", "deep.geojson"), `{"type":"FeatureCollection","features":[]}`)
	return root
}

func TestListLayerGroups(t *testing.T) {
	root := newLibrary(t)

	groups, err := ListLayerGroups(root)
	require.NoError(t, err)
	assert.Equal(t, []LayerGroup{
		{GroupName: "Eau", Files: []string{"rivieres.geojson"}},
		{GroupName: "Zones", Files: []string{"limites.json", "parcelles.geojson"}},
	}, groups)
}

func TestListLayerGroupsMissingRoot(t *testing.T) {
	groups, err := ListLayerGroups(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestResolveLayerPath(t *testing.T) {
	root := newLibrary(t)

	full, err := ResolveLayerPath(root, "Zones/parcelles.geojson")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "Zones", "parcelles.geojson"), full)

	for _, rel := range []string{"../../etc/passwd", "../outside.geojson", "Zones/../../x.json", "/etc/passwd.json"} {
		_, err := ResolveLayerPath(root, rel)
		assert.ErrorIs(t, err, ErrInvalidPath, "path %q", rel)
	}

	_, err = ResolveLayerPath(root, "x.txt")
	assert.ErrorIs(t, err, ErrInvalidExtension)
}

func TestResolveLayerPathSiblingPrefix(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "geo")
	writeFile(t, filepath.Join(parent, "geo2", "a.geojson"), `{"type":"Feature"}`)

	_, err := ResolveLayerPath(root, "../geo2/a.geojson")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestReadGeoJSON(t *testing.T) {
	root := newLibrary(t)
	writeFile(t, filepath.Join(root, "Bad", "point.geojson"), `{"type":"Point","coordinates":[1,2]}`)
	writeFile(t, filepath.Join(root, "Bad", "array.json"), `[1,2,3]`)
	writeFile(t, filepath.Join(root, "Bad", "broken.geojson"), `{"type":`)
	writeFile(t, filepath.Join(root, "x.txt"), `{"type":"FeatureCollection","features":[]}`)

	data, err := ReadGeoJSON(root, "Zones/parcelles.geojson")
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(data))

	_, err = ReadGeoJSON(root, "Zones/absent.geojson")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = ReadGeoJSON(root, "Bad/point.geojson")
	assert.ErrorIs(t, err, ErrInvalidGeoJSON)

	_, err = ReadGeoJSON(root, "Bad/array.json")
	assert.ErrorIs(t, err, ErrInvalidGeoJSON)

	_, err = ReadGeoJSON(root, "Bad/broken.geojson")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidGeoJSON)

	_, err = ReadGeoJSON(root, "x.txt")
	assert.ErrorIs(t, err, ErrInvalidExtension)

	_, err = ReadGeoJSON(root, "../../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestListLayerGroupsSkipsDirectoriesNamedLikeLayers(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Zones", "parcelles.geojson"), `{"type":"FeatureCollection","features":[]}`)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Zones", "archive.geojson"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Vide", "ancien.json"), 0o755))

	groups, err := ListLayerGroups(root)
	require.NoError(t, err)
	assert.Equal(t, []LayerGroup{{GroupName: "Zones", Files: []string{"parcelles.geojson"}}}, groups)
}
