package world

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// NPCDef is the immutable catalog definition of an NPC. Live dialogue state
// (greeted, riddle given, puzzle solved, history) lives in npc.NPC.
type NPCDef struct {
	ID          string `json:"-"`
	Name        string `json:"name"`
	Personality string `json:"personality"`
	Role        string `json:"role"`
	Location    string `json:"location"`
	GuardsItem  string `json:"guards_item,omitempty"`
	Greeting    string `json:"greeting"`

	// GrantFlag is an optional location state flag set when the NPC releases
	// its guarded item. Used only by the presentation layer.
	GrantFlag string `json:"grant_flag,omitempty"`
}

// Catalog is the process-wide, read-only definition of the game world.
// It is shared by all sessions; sessions copy the mutable parts into
// their own state.World.
type Catalog struct {
	Locations map[string]*LocationDef
	Items     map[string]*Item
	Objects   map[string]*StationaryObject
	NPCs      map[string]*NPCDef

	// NPCOrder fixes the tie-break when several NPCs share a location.
	NPCOrder []string
}

type itemsFile struct {
	MobileItems       map[string]*Item             `json:"mobile_items"`
	StationaryObjects map[string]*StationaryObject `json:"stationary_objects"`
}

// Load reads locations.json, items.json and npcs.json from dataDir and
// validates every cross-reference. npcs.json is optional; the game runs
// without NPCs when it is absent.
func Load(dataDir string) (*Catalog, error) {
	c := &Catalog{
		Locations: make(map[string]*LocationDef),
		Items:     make(map[string]*Item),
		Objects:   make(map[string]*StationaryObject),
		NPCs:      make(map[string]*NPCDef),
	}

	if err := readJSON(filepath.Join(dataDir, "locations.json"), &c.Locations); err != nil {
		return nil, fmt.Errorf("failed to load locations: %w", err)
	}
	for id, loc := range c.Locations {
		loc.ID = id
	}

	var items itemsFile
	if err := readJSON(filepath.Join(dataDir, "items.json"), &items); err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	c.Items = items.MobileItems
	c.Objects = items.StationaryObjects
	for id, item := range c.Items {
		item.ID = id
	}
	for id, obj := range c.Objects {
		obj.ID = id
	}

	err := readJSON(filepath.Join(dataDir, "npcs.json"), &c.NPCs)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load npcs: %w", err)
		}
		c.NPCs = make(map[string]*NPCDef)
	}
	for id, def := range c.NPCs {
		def.ID = id
		c.NPCOrder = append(c.NPCOrder, id)
	}
	sort.Strings(c.NPCOrder)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return nil
}

// Validate checks that every id referenced anywhere in the catalog resolves.
// A catalog that fails validation must not be served.
func (c *Catalog) Validate() error {
	var errs []string
	for id, loc := range c.Locations {
		for dir, target := range loc.Exits {
			if _, ok := c.Locations[target]; !ok {
				errs = append(errs, fmt.Sprintf("location %q: exit %s -> unknown location %q", id, dir, target))
			}
		}
		for dir := range loc.ConditionalExits {
			if _, ok := loc.Exits[dir]; !ok {
				errs = append(errs, fmt.Sprintf("location %q: conditional exit %s has no matching exit", id, dir))
			}
		}
		for _, itemID := range loc.InitialItems {
			if _, ok := c.Items[itemID]; !ok {
				errs = append(errs, fmt.Sprintf("location %q: unknown item %q", id, itemID))
			}
		}
		for _, objID := range loc.StationaryObjects {
			if _, ok := c.Objects[objID]; !ok {
				errs = append(errs, fmt.Sprintf("location %q: unknown stationary object %q", id, objID))
			}
		}
		if loc.IsExit && loc.UnlockKey == "" {
			errs = append(errs, fmt.Sprintf("location %q: is_exit requires unlock_key", id))
		}
	}
	for id, obj := range c.Objects {
		if obj.RequiredItem != "" {
			if _, ok := c.Items[obj.RequiredItem]; !ok {
				errs = append(errs, fmt.Sprintf("object %q: unknown required item %q", id, obj.RequiredItem))
			}
		}
		if obj.StateChange != nil {
			if _, ok := c.Locations[obj.StateChange.Location]; !ok {
				errs = append(errs, fmt.Sprintf("object %q: state change targets unknown location %q", id, obj.StateChange.Location))
			}
		}
	}
	for id, def := range c.NPCs {
		if _, ok := c.Locations[def.Location]; !ok {
			errs = append(errs, fmt.Sprintf("npc %q: unknown location %q", id, def.Location))
		}
		if def.GuardsItem != "" {
			if _, ok := c.Items[def.GuardsItem]; !ok {
				errs = append(errs, fmt.Sprintf("npc %q: unknown guarded item %q", id, def.GuardsItem))
			}
		}
	}
	starts := 0
	for _, loc := range c.Locations {
		if loc.IsStart {
			starts++
		}
	}
	if starts != 1 {
		errs = append(errs, fmt.Sprintf("exactly one location must set is_start, found %d", starts))
	}
	if len(errs) > 0 {
		return fmt.Errorf("catalog validation failed:\n%s", joinLines(errs))
	}
	return nil
}

// StartLocation returns the location new players spawn in.
func (c *Catalog) StartLocation() *LocationDef {
	for _, loc := range c.Locations {
		if loc.IsStart {
			return loc
		}
	}
	return nil
}

// ExitLocation returns the location the player escapes from, or nil if the
// catalog does not define one.
func (c *Catalog) ExitLocation() *LocationDef {
	ids := make([]string, 0, len(c.Locations))
	for id := range c.Locations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if c.Locations[id].IsExit {
			return c.Locations[id]
		}
	}
	return nil
}

// NPCsAt returns the ids of NPC definitions placed at the location,
// in catalog order.
func (c *Catalog) NPCsAt(locationID string) []string {
	var ids []string
	for _, id := range c.NPCOrder {
		if c.NPCs[id].Location == locationID {
			ids = append(ids, id)
		}
	}
	return ids
}

func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += "  - " + l
	}
	return out
}
