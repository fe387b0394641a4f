package engine

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/haunted-mansion/pkg/state"
	"github.com/jwebster45206/haunted-mansion/pkg/world"
)

func (e *Engine) cmdLook(sc *SessionContext, _ string) *Result {
	def, ls := e.location(sc)
	if def == nil {
		return fail("You are nowhere.")
	}
	return ok(e.describe(sc, def, ls))
}

// describe renders a location: description, visible items, fixtures, exits,
// NPCs and other players. A dark location replaces all of it with the pitch
// black message.
func (e *Engine) describe(sc *SessionContext, def *world.LocationDef, ls *state.LocationState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n%s\n", def.Name, strings.Repeat("=", len(def.Name)))

	if isDark(def, ls) {
		b.WriteString("It's pitch black. You can't see anything. You might want to light a candle.\n")
		return b.String()
	}

	b.WriteString(def.Description)
	b.WriteString("\n")

	if len(ls.Items) > 0 {
		b.WriteString("\nYou can see:\n")
		for _, itemID := range ls.Items {
			fmt.Fprintf(&b, "  - %s\n", world.DisplayName(itemID))
		}
	}

	if len(def.StationaryObjects) > 0 {
		b.WriteString("\nYou notice:\n")
		for _, objID := range def.StationaryObjects {
			fmt.Fprintf(&b, "  - %s\n", world.DisplayName(objID))
		}
	}

	if exits := e.visibleExits(def, ls); len(exits) > 0 {
		fmt.Fprintf(&b, "\nExits: %s\n", strings.Join(exits, ", "))
	}

	if npcs := sc.World.NPCsAt(def.ID); len(npcs) > 0 {
		b.WriteString("\nPresent:\n")
		for _, n := range npcs {
			b.WriteString("  - " + n.Name)
			if n.GuardsItem != "" && !n.PuzzleSolved {
				b.WriteString(" (guarding something...)")
			}
			b.WriteString("\n")
		}
	}

	if len(sc.OthersHere) > 0 {
		fmt.Fprintf(&b, "\nOther adventurers here: %s\n", strings.Join(sc.OthersHere, ", "))
	}

	return b.String()
}

// visibleExits lists exit directions in a fixed compass order so repeated
// looks render identically. Conditional exits appear only once their reveal
// flag is set.
func (e *Engine) visibleExits(def *world.LocationDef, ls *state.LocationState) []string {
	var out []string
	for _, dir := range []string{"north", "south", "east", "west", "up", "down"} {
		if _, exists := def.Exits[dir]; !exists {
			continue
		}
		if flag, conditional := def.ConditionalExits[dir]; conditional && !ls.Flag(flag) {
			continue
		}
		out = append(out, dir)
	}
	// Any non-compass directions come last.
	for dir := range def.Exits {
		switch dir {
		case "north", "south", "east", "west", "up", "down":
			continue
		}
		if flag, conditional := def.ConditionalExits[dir]; conditional && !ls.Flag(flag) {
			continue
		}
		out = append(out, dir)
	}
	return out
}

func (e *Engine) cmdGo(sc *SessionContext, arg string) *Result {
	if arg == "" {
		return fail("Go where? Specify a direction.")
	}
	def, ls := e.location(sc)
	if def == nil {
		return fail("You are nowhere.")
	}
	if isDark(def, ls) {
		return fail("It's too dark to see where you're going. You need light.")
	}

	direction := strings.ToLower(arg)
	target, exists := def.Exits[direction]
	if !exists {
		return fail(fmt.Sprintf("You can't go %s from here.", direction))
	}
	if flag, conditional := def.ConditionalExits[direction]; conditional && !ls.Flag(flag) {
		return fail(fmt.Sprintf("You don't see a way %s from here.", direction))
	}

	oldLocation := sc.Player.CurrentLocation
	sc.Player.MoveTo(target)
	newDef, newLS := e.location(sc)

	return &Result{
		Success:          true,
		Message:          e.describe(sc, newDef, newLS),
		Broadcast:        true,
		BroadcastMessage: fmt.Sprintf("%s went %s.", sc.PlayerName, direction),
		LocationChanged:  true,
		OldLocation:      oldLocation,
		NewLocation:      target,
	}
}

func (e *Engine) cmdTake(sc *SessionContext, arg string) *Result {
	if arg == "" {
		return fail("Take what?")
	}
	def, ls := e.location(sc)
	if def == nil {
		return fail("You are nowhere.")
	}
	itemID := world.NormalizeID(arg)

	// Items in a dark room are invisible to every verb, even when present.
	if isDark(def, ls) {
		return fail("It's too dark to see anything. You fumble around but can't find what you're looking for.")
	}

	if !ls.HasItem(itemID) {
		return fail(fmt.Sprintf("There's no %s here.", arg))
	}
	item := e.catalog.Items[itemID]
	if item == nil || !item.CanTake {
		return fail(fmt.Sprintf("You can't take the %s.", arg))
	}
	if sc.Player.InventoryFull() {
		return fail("You're carrying too much. Drop something first.")
	}

	// The move is atomic under the session lock: the item is never in both
	// containers and never in neither.
	ls.RemoveItem(itemID)
	sc.Player.AddItem(itemID)

	return &Result{
		Success:          true,
		Message:          fmt.Sprintf("You take the %s.", item.Name),
		Broadcast:        true,
		BroadcastMessage: fmt.Sprintf("%s took the %s.", sc.PlayerName, item.Name),
		LocationID:       def.ID,
	}
}

func (e *Engine) cmdDrop(sc *SessionContext, arg string) *Result {
	if arg == "" {
		return fail("Drop what?")
	}
	def, ls := e.location(sc)
	if def == nil {
		return fail("You are nowhere.")
	}
	itemID := world.NormalizeID(arg)

	if !sc.Player.HasItem(itemID) {
		return fail(fmt.Sprintf("You're not carrying a %s.", arg))
	}
	item := e.catalog.Items[itemID]
	if item == nil {
		return fail(fmt.Sprintf("Unknown item: %s.", arg))
	}

	sc.Player.RemoveItem(itemID)
	ls.AddItem(itemID)

	return &Result{
		Success:          true,
		Message:          fmt.Sprintf("You drop the %s.", item.Name),
		Broadcast:        true,
		BroadcastMessage: fmt.Sprintf("%s dropped the %s.", sc.PlayerName, item.Name),
		LocationID:       def.ID,
	}
}

func (e *Engine) cmdInventory(sc *SessionContext, _ string) *Result {
	if len(sc.Player.Inventory) == 0 {
		return ok("You're not carrying anything.")
	}
	var b strings.Builder
	b.WriteString("You are carrying:")
	for _, itemID := range sc.Player.Inventory {
		if item := e.catalog.Items[itemID]; item != nil {
			b.WriteString("\n  - " + item.Name)
		}
	}
	return ok(b.String())
}

func (e *Engine) cmdUse(sc *SessionContext, arg string) *Result {
	if arg == "" {
		return fail("Use what?")
	}
	def, ls := e.location(sc)
	if def == nil {
		return fail("You are nowhere.")
	}
	itemID := world.NormalizeID(arg)

	if !sc.Player.HasItem(itemID) {
		return fail(fmt.Sprintf("You don't have a %s.", arg))
	}
	item := e.catalog.Items[itemID]
	if item == nil {
		return fail(fmt.Sprintf("Unknown item: %s.", arg))
	}

	// A light source in a dark room turns the lights on. Lighting is a
	// one-way transition for the rest of the session.
	if item.LightSource && def.Dark && !ls.Flag(world.StateLightsOn) {
		ls.SetFlag(world.StateLightsOn, true)
		return &Result{
			Success:          true,
			Message:          fmt.Sprintf("You light the %s. The warm glow fills the %s, revealing what the darkness was hiding!", item.Name, def.Name),
			Broadcast:        true,
			BroadcastMessage: fmt.Sprintf("%s lit a %s. The %s is now illuminated!", sc.PlayerName, item.Name, def.Name),
			LocationID:       def.ID,
		}
	}

	// First matching object in catalog-declared order wins. Puzzle design
	// may depend on this ordering; do not change the tie-break.
	for _, objID := range def.StationaryObjects {
		obj := e.catalog.Objects[objID]
		if obj == nil || obj.RequiredItem != itemID {
			continue
		}

		res := &Result{
			Success:          true,
			Message:          obj.SuccessMessage,
			Broadcast:        true,
			BroadcastMessage: fmt.Sprintf("%s used the %s!", sc.PlayerName, item.Name),
			LocationID:       def.ID,
		}

		// The target location may differ from the acting room, e.g. the
		// library bookshelf revealing the basement passage.
		if change := obj.StateChange; change != nil {
			if targetLS := sc.World.Location(change.Location); targetLS != nil {
				targetLS.SetFlag(change.StateKey, change.NewValue)
				if e.unlocksExit(change) {
					res.GameWon = true
					res.Message += "\n\nThe front door swings open! The path to freedom lies before you..."
				}
			}
		}
		return res
	}

	return fail(fmt.Sprintf("You can't use the %s here.", item.Name))
}

// unlocksExit reports whether a state change unlocks the designated exit
// location, which is the win condition.
func (e *Engine) unlocksExit(change *world.StateChange) bool {
	target := e.catalog.Locations[change.Location]
	return target != nil && target.IsExit && change.StateKey == target.UnlockKey && change.NewValue
}

func (e *Engine) cmdExamine(sc *SessionContext, arg string) *Result {
	if arg == "" {
		return fail("Examine what?")
	}
	def, ls := e.location(sc)
	if def == nil {
		return fail("You are nowhere.")
	}
	targetID := world.NormalizeID(arg)

	// Inventory first, then location items, then fixtures.
	if sc.Player.HasItem(targetID) {
		if item := e.catalog.Items[targetID]; item != nil {
			return ok(item.Description)
		}
	}
	if !isDark(def, ls) && ls.HasItem(targetID) {
		if item := e.catalog.Items[targetID]; item != nil {
			return ok(item.Description)
		}
	}
	for _, objID := range def.StationaryObjects {
		if objID == targetID {
			if obj := e.catalog.Objects[objID]; obj != nil {
				return ok(obj.Description)
			}
		}
	}
	return fail(fmt.Sprintf("You don't see a %s here.", arg))
}

func (e *Engine) cmdHelp(_ *SessionContext, _ string) *Result {
	return ok(helpText)
}

func (e *Engine) cmdExitMansion(sc *SessionContext, _ string) *Result {
	def, ls := e.location(sc)
	if def == nil {
		return fail("You are nowhere.")
	}
	if def.IsExit && ls.Flag(def.UnlockKey) {
		return &Result{
			Success: true,
			Message: "You step through the doorway into the cool night air. Freedom at last!",
			GameWon: true,
		}
	}
	return fail("You can't leave yet.")
}

func (e *Engine) cmdQuit(_ *SessionContext, _ string) *Result {
	return &Result{
		Success:  true,
		Message:  "Game saved. Goodbye!",
		GameOver: true,
	}
}

const helpText = `
Available Commands:
  look (l)           - Look around the current location
  go <direction>     - Move in a direction (north, south, east, west, up, down)
  take <item>        - Pick up an item
  drop <item>        - Drop an item from your inventory
  inventory (i)      - Show what you're carrying
  use <item>         - Use an item
  examine <target>   - Examine an item or object closely
  talk <message>     - Chat with NPCs (e.g., 'talk hello' or 'talk I need help')
  exit_mansion       - Leave the mansion, if the way is open
  help (h, ?)        - Show this help message
  quit (q, exit)     - Save and quit the game

Tips:
  - Explore all locations thoroughly
  - Have conversations with NPCs - they guard important items!
  - Earn their trust through dialogue to get what they guard
  - Try using items in different locations
  - Examine objects carefully for clues
`
