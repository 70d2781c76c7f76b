package wms

// LayerOption is a selectable layer of a WMS service.
type LayerOption struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// ExtractLayers flattens the layer tree in pre-order. Nameless nodes are
// containers: they are skipped but their children are still visited. The
// title falls back to the name. Duplicate names are kept.
func ExtractLayers(root *Layer) []LayerOption {
	result := []LayerOption{}
	extractLayers(root, &result)
	return result
}

func extractLayers(layer *Layer, result *[]LayerOption) {
	if layer == nil {
		return
	}

	if layer.Name != "" {
		title := layer.Title
		if title == "" {
			title = layer.Name
		}
		*result = append(*result, LayerOption{Name: layer.Name, Title: title})
	}

	for _, sub := range layer.Layers {
		extractLayers(sub, result)
	}
}

// ExtractCapabilities is ExtractLayers over a parsed document, tolerating nil.
func ExtractCapabilities(caps *Capabilities) []LayerOption {
	if caps == nil {
		return []LayerOption{}
	}
	return ExtractLayers(caps.Root)
}
