package state

import (
	"slices"
	"time"

	"github.com/jwebster45206/haunted-mansion/pkg/npc"
)

// SaveVersion is written into every save document.
const SaveVersion = "1.0"

// NPCSave is the persisted dialogue state of one NPC.
type NPCSave struct {
	Location     string         `json:"location"`
	PuzzleSolved bool           `json:"puzzle_solved"`
	Greeted      bool           `json:"greeted"`
	RiddleGiven  bool           `json:"riddle_given"`
	History      []npc.Exchange `json:"conversation_history,omitempty"`
}

// Save is the serialization contract for a world/session snapshot.
type Save struct {
	Version   string                    `json:"version"`
	Timestamp time.Time                 `json:"timestamp"`
	Player    *Player                   `json:"player,omitempty"`
	Locations map[string]*LocationState `json:"locations"`
	NPCs      map[string]*NPCSave       `json:"npcs,omitempty"`
}

// BuildSave snapshots a world and an optional player into a save document.
func BuildSave(w *World, p *Player) *Save {
	s := &Save{
		Version:   SaveVersion,
		Timestamp: time.Now().UTC(),
		Player:    p,
		Locations: make(map[string]*LocationState, len(w.Locations)),
		NPCs:      make(map[string]*NPCSave, len(w.NPCs)),
	}
	for id, ls := range w.Locations {
		cp := &LocationState{
			State: make(map[string]bool, len(ls.State)),
			Items: slices.Clone(ls.Items),
		}
		for k, v := range ls.State {
			cp.State[k] = v
		}
		s.Locations[id] = cp
	}
	for id, n := range w.NPCs {
		s.NPCs[id] = &NPCSave{
			Location:     n.Location,
			PuzzleSolved: n.PuzzleSolved,
			Greeted:      n.Greeted,
			RiddleGiven:  n.RiddleGiven,
			History:      slices.Clone(n.History),
		}
	}
	return s
}

// Apply restores a save into a world built from the same catalog. Entries
// referencing unknown location or NPC ids are skipped rather than failing
// the whole load.
func (s *Save) Apply(w *World) {
	for id, saved := range s.Locations {
		ls := w.Locations[id]
		if ls == nil {
			continue
		}
		if saved.State != nil {
			ls.State = saved.State
		}
		if saved.Items != nil {
			ls.Items = saved.Items
		}
	}
	for id, saved := range s.NPCs {
		n := w.NPCs[id]
		if n == nil {
			continue
		}
		if saved.Location != "" {
			n.Location = saved.Location
		}
		n.PuzzleSolved = saved.PuzzleSolved
		n.Greeted = saved.Greeted
		n.RiddleGiven = saved.RiddleGiven
		n.History = saved.History
	}
}
