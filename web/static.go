package web

import (
	"embed"
	"encoding/json"
	"html/template"
	"io"
)

//go:embed index.html
var indexHTML string

//go:embed js/*
var staticContent embed.FS

var indexTemplate = template.Must(template.New("index.html").Parse(indexHTML))

func GetStaticContent() embed.FS {
	return staticContent
}

// WriteIndex renders the index page with data embedded as JSON.
func WriteIndex(w io.Writer, data FrontendData) error {
	dataSerialized, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return indexTemplate.Execute(w, string(dataSerialized))
}
