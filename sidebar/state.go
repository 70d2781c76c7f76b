package sidebar

import (
	"sync"

	"github.com/b1naryth1ef/atlas"
	"github.com/samber/lo"
)

// LayerID identifies a local layer file inside its group.
func LayerID(group, file string) string {
	return group + "/" + file
}

// State tracks which local layers are shown and their colors.
type State struct {
	mu       sync.Mutex
	palette  atlas.Palette
	assigned int
	active   []string
	colors   map[string]string
}

func NewState(palette atlas.Palette) *State {
	return &State{
		palette: palette,
		colors:  map[string]string{},
	}
}

func (s *State) IsActive(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Contains(s.active, id)
}

// Active returns the active layer ids in activation order.
func (s *State) Active() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.active))
	copy(out, s.active)
	return out
}

// Activate marks the ids active, in order, skipping ones already active.
func (s *State) Activate(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.activate(id)
	}
}

func (s *State) ToggleLayer(group, file string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := LayerID(group, file)
	if lo.Contains(s.active, id) {
		s.active = lo.Without(s.active, id)
		return false
	}
	s.activate(id)
	return true
}

// ToggleGroup hides every file of the group when all of them are shown and
// shows the missing ones otherwise.
func (s *State) ToggleGroup(group atlas.LayerGroup) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := lo.Map(group.Files, func(file string, _ int) string {
		return LayerID(group.GroupName, file)
	})
	if len(ids) > 0 && lo.Every(s.active, ids) {
		s.active = lo.Without(s.active, ids...)
		return
	}
	for _, id := range ids {
		s.activate(id)
	}
}

func (s *State) SetColor(id, color string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.colors[id] = color
}

// Color returns the explicit color of id, or the default layer color.
func (s *State) Color(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.color(id)
}

func (s *State) color(id string) string {
	if c, ok := s.colors[id]; ok {
		return c
	}
	return atlas.DefaultLayerColor
}

// activate assigns the next palette color on first activation. Colors stick
// to a layer across hide/show.
func (s *State) activate(id string) {
	if lo.Contains(s.active, id) {
		return
	}
	s.active = append(s.active, id)
	if _, ok := s.colors[id]; !ok && len(s.palette) > 0 {
		s.colors[id] = s.palette.At(s.assigned)
		s.assigned++
	}
}
