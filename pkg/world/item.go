package world

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Item is a mobile item that can be picked up and carried.
// Catalog items are immutable after load.
type Item struct {
	ID          string   `json:"-"` // key in the catalog map
	Name        string   `json:"name"`
	Description string   `json:"description"`
	CanTake     bool     `json:"can_take"`
	LightSource bool     `json:"light_source,omitempty"` // using it in a dark location turns the lights on
	UseTargets  []string `json:"use_targets,omitempty"`  // object ids this item can be used on
}

// CanUseOn reports whether the item is declared usable on the target object.
func (i *Item) CanUseOn(target string) bool {
	return slices.Contains(i.UseTargets, target)
}

// StateChange is the effect of successfully using an item on a stationary
// object. The target location may differ from the room the object is in.
type StateChange struct {
	Location string `json:"location"`
	StateKey string `json:"state_key"`
	NewValue bool   `json:"new_value"`
}

// StationaryObject is a fixture that stays in its location. Players interact
// with it via use and examine.
type StationaryObject struct {
	ID                 string       `json:"-"`
	Name               string       `json:"name"`
	Description        string       `json:"description"`
	InteractionMessage string       `json:"interaction_message"`
	SuccessMessage     string       `json:"success_message"`
	RequiredItem       string       `json:"required_item,omitempty"`
	StateChange        *StateChange `json:"state_change,omitempty"`
}

var titleCaser = cases.Title(language.AmericanEnglish)

// DisplayName renders an id like "rusty_key" as "Rusty Key".
func DisplayName(id string) string {
	return titleCaser.String(strings.ReplaceAll(id, "_", " "))
}

// NormalizeID maps user-typed names to catalog ids: lower-case with
// underscores for spaces ("Rusty Key" -> "rusty_key").
func NormalizeID(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}
