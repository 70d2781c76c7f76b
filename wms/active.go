package wms

import (
	"strings"
	"sync"
)

// ActiveLayer is a WMS layer shown on the map.
type ActiveLayer struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	LayerName string `json:"layerName"`
	Title     string `json:"title"`
}

func ActiveLayerID(url, layerName string) string {
	return url + "::" + layerName
}

func NewActiveLayer(url string, opt LayerOption) ActiveLayer {
	url = strings.TrimSpace(url)
	return ActiveLayer{
		ID:        ActiveLayerID(url, opt.Name),
		URL:       url,
		LayerName: opt.Name,
		Title:     opt.Title,
	}
}

// ActiveLayers is the ordered list of active WMS layers, keyed by ID.
type ActiveLayers struct {
	mu     sync.Mutex
	layers []ActiveLayer
}

// Add appends layers whose ID is not already present and reports how many
// were added.
func (a *ActiveLayers) Add(layers ...ActiveLayer) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	added := 0
	for _, layer := range layers {
		if a.indexOf(layer.ID) >= 0 {
			continue
		}
		a.layers = append(a.layers, layer)
		added++
	}
	return added
}

func (a *ActiveLayers) Remove(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx := a.indexOf(id)
	if idx < 0 {
		return false
	}
	a.layers = append(a.layers[:idx], a.layers[idx+1:]...)
	return true
}

func (a *ActiveLayers) List() []ActiveLayer {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]ActiveLayer, len(a.layers))
	copy(out, a.layers)
	return out
}

func (a *ActiveLayers) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.layers)
}

func (a *ActiveLayers) indexOf(id string) int {
	for i, layer := range a.layers {
		if layer.ID == id {
			return i
		}
	}
	return -1
}
