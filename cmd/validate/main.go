// Command validate checks a world data directory for consistency before it
// is served: JSON well-formedness, cross-references, reachability and the
// win path.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/jwebster45206/haunted-mansion/pkg/world"
)

func main() {
	dataDir := "./data"
	if len(os.Args) > 1 {
		dataDir = os.Args[1]
	}

	fmt.Printf("Validating %s...\n", dataDir)

	catalog, err := world.Load(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	var warnings []string
	warnings = append(warnings, checkReachability(catalog)...)
	warnings = append(warnings, checkWinPath(catalog)...)

	fmt.Printf("  %d locations, %d items, %d objects, %d NPCs\n",
		len(catalog.Locations), len(catalog.Items), len(catalog.Objects), len(catalog.NPCs))

	if len(warnings) > 0 {
		for _, w := range warnings {
			fmt.Printf("  warning: %s\n", w)
		}
	}
	fmt.Println("World data is valid!")
}

// checkReachability walks exits from the start location and reports rooms no
// player can ever enter.
func checkReachability(c *world.Catalog) []string {
	start := c.StartLocation()
	seen := map[string]bool{start.ID: true}
	queue := []string{start.ID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, target := range c.Locations[id].Exits {
			if !seen[target] {
				seen[target] = true
				queue = append(queue, target)
			}
		}
	}

	var warnings []string
	ids := make([]string, 0, len(c.Locations))
	for id := range c.Locations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if !seen[id] {
			warnings = append(warnings, fmt.Sprintf("location %q is unreachable from the start", id))
		}
	}
	return warnings
}

// checkWinPath verifies something in the world can actually set the exit
// location's unlock flag.
func checkWinPath(c *world.Catalog) []string {
	exit := c.ExitLocation()
	if exit == nil {
		return []string{"no location sets is_exit; the game cannot be won"}
	}
	for _, obj := range c.Objects {
		if obj.StateChange != nil &&
			obj.StateChange.Location == exit.ID &&
			obj.StateChange.StateKey == exit.UnlockKey &&
			obj.StateChange.NewValue {
			return nil
		}
	}
	return []string{fmt.Sprintf("no object unlocks exit %q via %q; the game cannot be won", exit.ID, exit.UnlockKey)}
}
