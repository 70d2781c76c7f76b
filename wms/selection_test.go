package wms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var loaded = []LayerOption{
	{Name: "a", Title: "A"},
	{Name: "b", Title: "b"},
	{Name: "c", Title: "C"},
}

func TestSelectionToggle(t *testing.T) {
	var s Selection
	assert.False(t, s.Has("a"))

	s.Toggle("a")
	assert.True(t, s.Has("a"))
	assert.Equal(t, 1, s.Len())

	s.Toggle("a")
	assert.False(t, s.Has("a"))
	assert.Equal(t, 0, s.Len())
}

func TestSelectionSelectAllNone(t *testing.T) {
	var s Selection
	s.Toggle("zz")

	s.SelectAll(loaded)
	assert.Equal(t, []string{"a", "b", "c"}, s.Names())

	s.SelectNone()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Names())
}

func TestSelectionConfirm(t *testing.T) {
	var s Selection
	s.Toggle("c")
	s.Toggle("a")

	got := s.Confirm("  https://maps.example.org/wms ", loaded)
	assert.Equal(t, []ActiveLayer{
		{ID: "https://maps.example.org/wms::a", URL: "https://maps.example.org/wms", LayerName: "a", Title: "A"},
		{ID: "https://maps.example.org/wms::c", URL: "https://maps.example.org/wms", LayerName: "c", Title: "C"},
	}, got)

	for _, layer := range got {
		assert.Equal(t, layer.URL+"::"+layer.LayerName, layer.ID)
	}
}

func TestSelectionConfirmDuplicateNames(t *testing.T) {
	options := []LayerOption{{Name: "x", Title: "one"}, {Name: "x", Title: "two"}}

	var s Selection
	s.SelectAll(options)
	assert.Equal(t, 1, s.Len())

	confirmed := s.Confirm("https://h/wms", options)
	assert.Len(t, confirmed, 2)

	var active ActiveLayers
	assert.Equal(t, 1, active.Add(confirmed...))
	assert.Equal(t, "one", active.List()[0].Title)
}
