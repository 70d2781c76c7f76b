package wms

import (
	"sort"

	"github.com/samber/lo"
)

// Selection is the set of checked layer names. The zero value is empty and
// ready to use. It is not safe for concurrent use on its own.
type Selection struct {
	names map[string]struct{}
}

func (s *Selection) Has(name string) bool {
	_, ok := s.names[name]
	return ok
}

func (s *Selection) Toggle(name string) {
	if s.names == nil {
		s.names = map[string]struct{}{}
	}
	if _, ok := s.names[name]; ok {
		delete(s.names, name)
		return
	}
	s.names[name] = struct{}{}
}

// SelectAll replaces the selection with every loaded layer name.
func (s *Selection) SelectAll(options []LayerOption) {
	s.names = make(map[string]struct{}, len(options))
	for _, opt := range options {
		s.names[opt.Name] = struct{}{}
	}
}

func (s *Selection) SelectNone() {
	s.names = map[string]struct{}{}
}

func (s *Selection) Len() int {
	return len(s.names)
}

// Names returns the selected names in sorted order.
func (s *Selection) Names() []string {
	names := lo.Keys(s.names)
	sort.Strings(names)
	return names
}

// Confirm maps the loaded options that are selected, in load order, into
// active layers of the service at url.
func (s *Selection) Confirm(url string, options []LayerOption) []ActiveLayer {
	selected := lo.Filter(options, func(opt LayerOption, _ int) bool {
		return s.Has(opt.Name)
	})
	return lo.Map(selected, func(opt LayerOption, _ int) ActiveLayer {
		return NewActiveLayer(url, opt)
	})
}
