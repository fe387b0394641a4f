package state

import (
	"slices"
	"sort"

	"github.com/jwebster45206/haunted-mansion/pkg/npc"
	"github.com/jwebster45206/haunted-mansion/pkg/world"
)

// LocationState is the mutable, per-session part of a location: its boolean
// flags and its current item set. Catalog fields are never duplicated here.
type LocationState struct {
	State map[string]bool `json:"state"`
	Items []string        `json:"items"`
}

func (ls *LocationState) Flag(key string) bool {
	return ls.State[key]
}

func (ls *LocationState) SetFlag(key string, value bool) {
	ls.State[key] = value
}

func (ls *LocationState) HasItem(itemID string) bool {
	return slices.Contains(ls.Items, itemID)
}

// AddItem appends an item, keeping discovery/drop order. Duplicates are ignored.
func (ls *LocationState) AddItem(itemID string) {
	if !slices.Contains(ls.Items, itemID) {
		ls.Items = append(ls.Items, itemID)
	}
}

func (ls *LocationState) RemoveItem(itemID string) bool {
	idx := slices.Index(ls.Items, itemID)
	if idx < 0 {
		return false
	}
	ls.Items = slices.Delete(ls.Items, idx, idx+1)
	return true
}

// World is one session's mutable copy of the catalog's initial state:
// location flags and item sets, plus the live NPCs.
type World struct {
	Locations map[string]*LocationState
	NPCs      map[string]*npc.NPC

	// npcOrder mirrors the catalog tie-break order.
	npcOrder []string
}

// NewWorld copies the catalog's initial state into a fresh session world.
func NewWorld(catalog *world.Catalog) *World {
	w := &World{
		Locations: make(map[string]*LocationState, len(catalog.Locations)),
		NPCs:      make(map[string]*npc.NPC, len(catalog.NPCs)),
		npcOrder:  slices.Clone(catalog.NPCOrder),
	}
	for id, def := range catalog.Locations {
		ls := &LocationState{
			State: make(map[string]bool, len(def.InitialState)),
			Items: slices.Clone(def.InitialItems),
		}
		for k, v := range def.InitialState {
			ls.State[k] = v
		}
		w.Locations[id] = ls
	}
	for id, def := range catalog.NPCs {
		w.NPCs[id] = npc.FromDef(def)
	}
	return w
}

// Location returns the mutable state for a location id, or nil.
func (w *World) Location(id string) *LocationState {
	return w.Locations[id]
}

// NPCsAt returns live NPCs at the location in catalog order.
func (w *World) NPCsAt(locationID string) []*npc.NPC {
	var out []*npc.NPC
	for _, id := range w.npcOrder {
		if n := w.NPCs[id]; n != nil && n.Location == locationID {
			out = append(out, n)
		}
	}
	return out
}

// LocationIDs returns all location ids in sorted order, for deterministic
// rendering and serialization.
func (w *World) LocationIDs() []string {
	ids := make([]string, 0, len(w.Locations))
	for id := range w.Locations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
