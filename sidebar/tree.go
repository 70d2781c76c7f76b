package sidebar

import (
	"strings"

	"github.com/b1naryth1ef/atlas"
	"github.com/samber/lo"
)

type CheckState string

const (
	Unchecked     CheckState = "unchecked"
	Checked       CheckState = "checked"
	Indeterminate CheckState = "indeterminate"
)

type Entry struct {
	ID     string `json:"id"`
	File   string `json:"file"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
	Color  string `json:"color"`
}

type Group struct {
	Name    string     `json:"groupName"`
	Count   int        `json:"count"`
	Check   CheckState `json:"check"`
	Entries []Entry    `json:"entries"`
}

type Tree struct {
	Groups []Group `json:"groups"`
}

// Label is the file name shown in the sidebar.
func Label(file string) string {
	for _, ext := range []string{".geojson", ".json"} {
		if strings.HasSuffix(file, ext) {
			return strings.TrimSuffix(file, ext)
		}
	}
	return file
}

func GroupCheckState(entries []Entry) CheckState {
	active := lo.CountBy(entries, func(e Entry) bool { return e.Active })
	switch {
	case active == 0:
		return Unchecked
	case active == len(entries):
		return Checked
	default:
		return Indeterminate
	}
}

// Build lays out the groups with their activation state. A nil state
// means nothing is active.
func Build(groups []atlas.LayerGroup, state *State) Tree {
	if state == nil {
		state = NewState(nil)
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	tree := Tree{Groups: make([]Group, 0, len(groups))}
	for _, g := range groups {
		group := Group{
			Name:    g.GroupName,
			Count:   len(g.Files),
			Entries: make([]Entry, 0, len(g.Files)),
		}
		for _, file := range g.Files {
			id := LayerID(g.GroupName, file)
			group.Entries = append(group.Entries, Entry{
				ID:     id,
				File:   file,
				Label:  Label(file),
				Active: lo.Contains(state.active, id),
				Color:  state.color(id),
			})
		}
		group.Check = GroupCheckState(group.Entries)
		tree.Groups = append(tree.Groups, group)
	}
	return tree
}

// Filter keeps groups whose name matches query with all their files, and
// otherwise only the matching files. Matching is a case-insensitive
// substring test; group check states are recomputed over what remains.
func (t Tree) Filter(query string) Tree {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return t
	}

	out := Tree{Groups: []Group{}}
	for _, g := range t.Groups {
		if strings.Contains(strings.ToLower(g.Name), query) {
			out.Groups = append(out.Groups, g)
			continue
		}

		entries := lo.Filter(g.Entries, func(e Entry, _ int) bool {
			return strings.Contains(strings.ToLower(e.Label), query)
		})
		if len(entries) == 0 {
			continue
		}

		g.Entries = entries
		g.Count = len(entries)
		g.Check = GroupCheckState(entries)
		out.Groups = append(out.Groups, g)
	}
	return out
}
