package sidebar

import (
	"testing"

	"github.com/b1naryth1ef/atlas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var groups = []atlas.LayerGroup{
	{GroupName: "Zones", Files: []string{"parcelles.geojson", "limites.json"}},
	{GroupName: "Eau", Files: []string{"rivieres.geojson"}},
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "parcelles", Label("parcelles.geojson"))
	assert.Equal(t, "limites", Label("limites.json"))
	assert.Equal(t, "readme", Label("readme"))
}

func TestToggleLayer(t *testing.T) {
	s := NewState(nil)

	assert.True(t, s.ToggleLayer("Zones", "parcelles.geojson"))
	assert.True(t, s.IsActive("Zones/parcelles.geojson"))

	assert.False(t, s.ToggleLayer("Zones", "parcelles.geojson"))
	assert.Empty(t, s.Active())
}

func TestGroupCheckStates(t *testing.T) {
	s := NewState(nil)
	tree := Build(groups, s)
	assert.Equal(t, Unchecked, tree.Groups[0].Check)

	s.ToggleLayer("Zones", "limites.json")
	tree = Build(groups, s)
	assert.Equal(t, Indeterminate, tree.Groups[0].Check)
	assert.Equal(t, Unchecked, tree.Groups[1].Check)

	s.ToggleLayer("Zones", "parcelles.geojson")
	tree = Build(groups, s)
	assert.Equal(t, Checked, tree.Groups[0].Check)
}

func TestToggleGroup(t *testing.T) {
	s := NewState(nil)
	s.ToggleLayer("Zones", "limites.json")

	s.ToggleGroup(groups[0])
	assert.Equal(t, []string{"Zones/limites.json", "Zones/parcelles.geojson"}, s.Active())

	s.ToggleGroup(groups[0])
	assert.Empty(t, s.Active())
}

func TestColors(t *testing.T) {
	s := NewState(atlas.Palette{"#111111", "#222222"})
	assert.Equal(t, atlas.DefaultLayerColor, s.Color("Zones/parcelles.geojson"))

	s.ToggleLayer("Zones", "parcelles.geojson")
	s.ToggleLayer("Eau", "rivieres.geojson")
	assert.Equal(t, "#111111", s.Color("Zones/parcelles.geojson"))
	assert.Equal(t, "#222222", s.Color("Eau/rivieres.geojson"))

	// hiding and showing again keeps the color
	s.ToggleLayer("Zones", "parcelles.geojson")
	s.ToggleLayer("Zones", "parcelles.geojson")
	assert.Equal(t, "#111111", s.Color("Zones/parcelles.geojson"))

	s.SetColor("Eau/rivieres.geojson", "#ff0000")
	tree := Build(groups, s)
	assert.Equal(t, "#ff0000", tree.Groups[1].Entries[0].Color)
}

func TestBuildWithoutState(t *testing.T) {
	tree := Build(groups, nil)
	require.Len(t, tree.Groups, 2)
	assert.Equal(t, Group{
		Name:  "Eau",
		Count: 1,
		Check: Unchecked,
		Entries: []Entry{
			{ID: "Eau/rivieres.geojson", File: "rivieres.geojson", Label: "rivieres", Color: atlas.DefaultLayerColor},
		},
	}, tree.Groups[1])
}

func TestFilter(t *testing.T) {
	s := NewState(nil)
	s.ToggleLayer("Zones", "parcelles.geojson")
	tree := Build(groups, s)

	byGroup := tree.Filter("eau")
	require.Len(t, byGroup.Groups, 1)
	assert.Equal(t, "Eau", byGroup.Groups[0].Name)

	byFile := tree.Filter("PARC")
	require.Len(t, byFile.Groups, 1)
	assert.Equal(t, 1, byFile.Groups[0].Count)
	assert.Equal(t, Checked, byFile.Groups[0].Check)

	assert.Empty(t, tree.Filter("nothing").Groups)
	assert.Equal(t, tree, tree.Filter("  "))
}
