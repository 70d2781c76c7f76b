package web

import (
	"github.com/b1naryth1ef/atlas"
)

type FrontendData struct {
	DefaultColor string        `json:"defaultColor"`
	Palette      []string      `json:"palette"`
	BackendURL   string        `json:"backendUrl"`
	Services     []ServiceData `json:"wmsServices"`
}

type ServiceData struct {
	Name   string   `json:"name"`
	Title  string   `json:"title"`
	URL    string   `json:"url"`
	Layers []string `json:"layers"`
}

func NewFrontendData(config *atlas.Config, palette atlas.Palette) FrontendData {
	data := FrontendData{
		DefaultColor: atlas.DefaultLayerColor,
		Palette:      palette,
		BackendURL:   config.Backend.URL,
		Services:     []ServiceData{},
	}
	if data.Palette == nil {
		data.Palette = []string{}
	}

	for _, svc := range config.Services {
		title := svc.Title
		if title == "" {
			title = svc.Name
		}
		layers := svc.Layers
		if layers == nil {
			layers = []string{}
		}
		data.Services = append(data.Services, ServiceData{
			Name:   svc.Name,
			Title:  title,
			URL:    svc.URL,
			Layers: layers,
		})
	}
	return data
}
