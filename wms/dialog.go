package wms

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// User facing messages of the add-service dialog.
const (
	MsgMissingURL  = "Veuillez saisir une URL de service WMS."
	MsgNoLayers    = "Aucune couche trouvée dans ce service WMS."
	MsgUnreachable = "Impossible de charger les capacités WMS. Vérifiez l'URL et la disponibilité du service."
)

var (
	ErrLoadInProgress = errors.New("capabilities load already in progress")
	ErrStaleResponse  = errors.New("dialog changed while loading capabilities")
)

type LayerFetcher interface {
	Layers(ctx context.Context, serviceURL string) ([]LayerOption, error)
}

type DialogState struct {
	URL      string        `json:"url"`
	Loading  bool          `json:"loading"`
	Error    string        `json:"error,omitempty"`
	Layers   []LayerOption `json:"layers"`
	Selected []string      `json:"selected"`
}

// Dialog drives loading a service's layers and choosing which to add.
type Dialog struct {
	mu         sync.Mutex
	url        string
	loading    bool
	errMsg     string
	options    []LayerOption
	selection  Selection
	generation uint64
}

func (d *Dialog) SetURL(url string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.url = url
}

// Load fetches the layers of the current URL. The returned error is the
// fetch failure, if any; the user facing message is in State().Error.
func (d *Dialog) Load(ctx context.Context, fetcher LayerFetcher) error {
	d.mu.Lock()
	url := strings.TrimSpace(d.url)
	if url == "" {
		d.errMsg = MsgMissingURL
		d.mu.Unlock()
		return nil
	}
	if d.loading {
		d.mu.Unlock()
		return ErrLoadInProgress
	}
	d.loading = true
	d.errMsg = ""
	d.options = nil
	d.selection.SelectNone()
	d.generation++
	gen := d.generation
	d.mu.Unlock()

	options, err := fetcher.Layers(ctx, url)

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.generation {
		return ErrStaleResponse
	}
	d.loading = false

	switch {
	case err != nil:
		d.errMsg = MsgUnreachable
		return err
	case len(options) == 0:
		d.errMsg = MsgNoLayers
	default:
		d.options = options
	}
	return nil
}

func (d *Dialog) Toggle(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selection.Toggle(name)
}

func (d *Dialog) SelectAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selection.SelectAll(d.options)
}

func (d *Dialog) SelectNone() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selection.SelectNone()
}

// Confirm returns the selected layers as active layers of the current URL.
func (d *Dialog) Confirm() []ActiveLayer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.selection.Confirm(d.url, d.options)
}

// Close resets the dialog. A load still in flight is discarded when it returns.
func (d *Dialog) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.url = ""
	d.loading = false
	d.errMsg = ""
	d.options = nil
	d.selection.SelectNone()
	d.generation++
}

func (d *Dialog) State() DialogState {
	d.mu.Lock()
	defer d.mu.Unlock()

	layers := make([]LayerOption, len(d.options))
	copy(layers, d.options)
	return DialogState{
		URL:      d.url,
		Loading:  d.loading,
		Error:    d.errMsg,
		Layers:   layers,
		Selected: d.selection.Names(),
	}
}
