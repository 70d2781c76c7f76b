package wms

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/clbanning/mxj/v2"
	"golang.org/x/net/html/charset"
)

func init() {
	dec := xml.NewDecoder(nil)
	dec.Strict = false
	dec.CharsetReader = charset.NewReaderLabel
	mxj.CustomDecoder = dec
}

// Root element names of WMS 1.3.0 and 1.1.x capabilities documents.
var capabilitiesRoots = []string{"WMS_Capabilities", "WMT_MS_Capabilities"}

type Service struct {
	Name     string `json:"name,omitempty"`
	Title    string `json:"title,omitempty"`
	Abstract string `json:"abstract,omitempty"`
}

type Style struct {
	Name  string `json:"name"`
	Title string `json:"title,omitempty"`
}

// Layer is one node of the capabilities layer tree. An empty Name or Title
// means the element was absent.
type Layer struct {
	Name      string   `json:"name,omitempty"`
	Title     string   `json:"title,omitempty"`
	Abstract  string   `json:"abstract,omitempty"`
	Queryable bool     `json:"queryable,omitempty"`
	CRS       []string `json:"crs,omitempty"`
	Styles    []Style  `json:"styles,omitempty"`
	Layers    []*Layer `json:"layers,omitempty"`
}

type Capabilities struct {
	Version       string   `json:"version,omitempty"`
	Service       Service  `json:"service"`
	GetMapURL     string   `json:"getMapUrl,omitempty"`
	GetMapFormats []string `json:"getMapFormats,omitempty"`
	Root          *Layer   `json:"root,omitempty"`
}

// ParseCapabilities decodes a GetCapabilities response. Documents that are
// well formed XML but not capabilities documents yield a Capabilities with a
// nil Root.
func ParseCapabilities(data []byte) (*Capabilities, error) {
	doc, err := mxj.NewMapXml(data)
	if err != nil {
		return nil, fmt.Errorf("parse capabilities: %w", err)
	}

	caps := &Capabilities{}

	var root map[string]any
	for _, key := range capabilitiesRoots {
		if m, ok := doc[key].(map[string]any); ok {
			root = m
			break
		}
	}
	if root == nil {
		return caps, nil
	}

	caps.Version = attr(root, "version")
	if svc := first(root, "Service"); svc != nil {
		caps.Service = Service{
			Name:     text(svc["Name"]),
			Title:    text(svc["Title"]),
			Abstract: text(svc["Abstract"]),
		}
	}

	capability := first(root, "Capability")
	if capability == nil {
		return caps, nil
	}

	if getMap := first(first(capability, "Request"), "GetMap"); getMap != nil {
		for _, f := range children(getMap, "Format") {
			caps.GetMapFormats = append(caps.GetMapFormats, text(f))
		}
		get := first(first(first(getMap, "DCPType"), "HTTP"), "Get")
		caps.GetMapURL = attr(first(get, "OnlineResource"), "href")
	}

	layers := children(capability, "Layer")
	switch len(layers) {
	case 0:
	case 1:
		caps.Root = parseLayer(layers[0])
	default:
		caps.Root = &Layer{}
		for _, l := range layers {
			if m, ok := l.(map[string]any); ok {
				caps.Root.Layers = append(caps.Root.Layers, parseLayer(m))
			}
		}
	}

	return caps, nil
}

func parseLayer(v any) *Layer {
	m, ok := v.(map[string]any)
	if !ok {
		// <Layer>text</Layer> or <Layer/>: a node with no fields.
		return &Layer{}
	}

	layer := &Layer{
		Name:      text(m["Name"]),
		Title:     text(m["Title"]),
		Abstract:  text(m["Abstract"]),
		Queryable: attr(m, "queryable") == "1" || attr(m, "queryable") == "true",
	}

	for _, key := range []string{"CRS", "SRS"} {
		for _, c := range children(m, key) {
			layer.CRS = append(layer.CRS, strings.Fields(text(c))...)
		}
	}

	for _, s := range children(m, "Style") {
		sm, ok := s.(map[string]any)
		if !ok {
			continue
		}
		layer.Styles = append(layer.Styles, Style{Name: text(sm["Name"]), Title: text(sm["Title"])})
	}

	for _, sub := range children(m, "Layer") {
		layer.Layers = append(layer.Layers, parseLayer(sub))
	}

	return layer
}

// children normalizes mxj's single-value-or-list representation.
func children(m map[string]any, key string) []any {
	if m == nil {
		return nil
	}
	switch v := m[key].(type) {
	case nil:
		return nil
	case []any:
		return v
	default:
		return []any{v}
	}
}

func first(m map[string]any, key string) map[string]any {
	for _, c := range children(m, key) {
		if cm, ok := c.(map[string]any); ok {
			return cm
		}
	}
	return nil
}

func attr(m map[string]any, name string) string {
	if m == nil {
		return ""
	}
	return text(m["-"+name])
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		return text(t["#text"])
	case []any:
		if len(t) > 0 {
			return text(t[0])
		}
	case nil:
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
	return ""
}
