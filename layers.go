package atlas

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrInvalidPath      = errors.New("path escapes the layer root")
	ErrInvalidExtension = errors.New("not a geojson file")
	ErrNotFound         = errors.New("layer file not found")
	ErrInvalidGeoJSON   = errors.New("invalid geojson type")
)

var layerExtensions = []string{".geojson", ".json"}

var geoJSONRootTypes = map[string]bool{
	"FeatureCollection":  true,
	"Feature":            true,
	"GeometryCollection": true,
}

// LayerGroup is one sub-directory of the layer root and the GeoJSON files it holds.
type LayerGroup struct {
	GroupName string   `json:"groupName"`
	Files     []string `json:"files"`
}

func IsLayerFile(name string) bool {
	for _, ext := range layerExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// ListLayerGroups reads root one level deep. A missing root yields no groups.
func ListLayerGroups(root string) ([]LayerGroup, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(root)
	if errors.Is(err, os.ErrNotExist) {
		return []LayerGroup{}, nil
	}
	if err != nil {
		return nil, err
	}

	groups := []LayerGroup{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		files, err := os.ReadDir(filepath.Join(root, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read group %s: %w", entry.Name(), err)
		}

		group := LayerGroup{GroupName: entry.Name(), Files: []string{}}
		for _, file := range files {
			if file.IsDir() || !IsLayerFile(file.Name()) {
				continue
			}
			group.Files = append(group.Files, file.Name())
		}

		if len(group.Files) > 0 {
			groups = append(groups, group)
		}
	}

	return groups, nil
}

// ResolveLayerPath maps a client supplied path onto the layer root.
func ResolveLayerPath(root, rel string) (string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}

	full := rel
	if !filepath.IsAbs(full) {
		full = filepath.Join(root, rel)
	}
	full = filepath.Clean(full)

	inside, err := filepath.Rel(root, full)
	if err != nil || inside == ".." || strings.HasPrefix(inside, ".."+string(filepath.Separator)) {
		return "", ErrInvalidPath
	}

	if !IsLayerFile(full) {
		return "", ErrInvalidExtension
	}

	return full, nil
}

// ReadGeoJSON returns the raw contents of a layer file after checking that it
// is a GeoJSON object of a supported root type.
func ReadGeoJSON(root, rel string) (json.RawMessage, error) {
	data, _, err := readGeoJSON(root, rel)
	return data, err
}

// readGeoJSON is ReadGeoJSON that also reports the root type.
func readGeoJSON(root, rel string) (json.RawMessage, string, error) {
	full, err := ResolveLayerPath(root, rel)
	if err != nil {
		return nil, "", err
	}

	data, err := os.ReadFile(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}

	if !json.Valid(data) {
		return nil, "", fmt.Errorf("parse %s: malformed json", rel)
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil || !geoJSONRootTypes[head.Type] {
		return nil, "", ErrInvalidGeoJSON
	}

	return json.RawMessage(data), head.Type, nil
}
