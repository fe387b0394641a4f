package state

import "slices"

// MaxInventory is the number of items a player can carry.
const MaxInventory = 10

// Player is one player's position and inventory within a session.
type Player struct {
	CurrentLocation string   `json:"location"`
	Inventory       []string `json:"inventory"`
	MaxInventory    int      `json:"max_inventory"`
}

func NewPlayer(startLocation string) *Player {
	return &Player{
		CurrentLocation: startLocation,
		Inventory:       make([]string, 0, MaxInventory),
		MaxInventory:    MaxInventory,
	}
}

// AddItem appends an item to the inventory. Duplicates are ignored and a
// full inventory rejects the item.
func (p *Player) AddItem(itemID string) bool {
	if len(p.Inventory) >= p.MaxInventory {
		return false
	}
	if !slices.Contains(p.Inventory, itemID) {
		p.Inventory = append(p.Inventory, itemID)
	}
	return true
}

// RemoveItem removes an item from the inventory, preserving order of the rest.
func (p *Player) RemoveItem(itemID string) bool {
	idx := slices.Index(p.Inventory, itemID)
	if idx < 0 {
		return false
	}
	p.Inventory = slices.Delete(p.Inventory, idx, idx+1)
	return true
}

func (p *Player) HasItem(itemID string) bool {
	return slices.Contains(p.Inventory, itemID)
}

func (p *Player) InventoryFull() bool {
	return len(p.Inventory) >= p.MaxInventory
}

func (p *Player) MoveTo(locationID string) {
	p.CurrentLocation = locationID
}
