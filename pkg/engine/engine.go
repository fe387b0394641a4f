// Package engine parses player commands and applies them to session state.
// The engine itself takes no locks; in multiplayer the session coordinator
// wraps Execute in its critical section, and talk uses the three-phase
// protocol in talk.go so the dialogue call happens outside the lock.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jwebster45206/haunted-mansion/pkg/npc"
	"github.com/jwebster45206/haunted-mansion/pkg/state"
	"github.com/jwebster45206/haunted-mansion/pkg/world"
)

// Verb is a canonical command verb after alias folding.
type Verb string

const (
	VerbLook        Verb = "look"
	VerbGo          Verb = "go"
	VerbTake        Verb = "take"
	VerbDrop        Verb = "drop"
	VerbInventory   Verb = "inventory"
	VerbUse         Verb = "use"
	VerbExamine     Verb = "examine"
	VerbTalk        Verb = "talk"
	VerbHelp        Verb = "help"
	VerbExitMansion Verb = "exit_mansion"
	VerbQuit        Verb = "quit"
	VerbNone        Verb = ""
)

var aliases = map[string]Verb{
	"look": VerbLook, "l": VerbLook,
	"go": VerbGo, "move": VerbGo,
	"take": VerbTake, "get": VerbTake, "grab": VerbTake,
	"drop": VerbDrop,
	"inventory": VerbInventory, "i": VerbInventory,
	"use":     VerbUse,
	"examine": VerbExamine, "x": VerbExamine,
	"talk": VerbTalk, "speak": VerbTalk, "say": VerbTalk,
	"help": VerbHelp, "h": VerbHelp, "?": VerbHelp,
	"exit_mansion": VerbExitMansion,
	"quit":         VerbQuit, "exit": VerbQuit, "q": VerbQuit,
}

// Parse splits a raw command line into a canonical verb and its argument.
// The argument keeps the original word order, joined by single spaces.
// An unrecognized first token returns VerbNone with the token as argument.
func Parse(raw string) (Verb, string) {
	fields := strings.Fields(strings.ToLower(raw))
	if len(fields) == 0 {
		return VerbNone, ""
	}
	verb, ok := aliases[fields[0]]
	if !ok {
		return VerbNone, fields[0]
	}
	return verb, strings.Join(fields[1:], " ")
}

// Mutates reports whether the verb can change world or player state, and
// therefore needs the session's exclusive lock and a persistence write.
func (v Verb) Mutates() bool {
	switch v {
	case VerbGo, VerbTake, VerbDrop, VerbUse, VerbTalk:
		return true
	}
	return false
}

// SessionContext carries the per-player view the engine operates on. The
// caller owns locking; everything here may be mutated by Execute.
type SessionContext struct {
	World      *state.World
	Player     *state.Player
	PlayerName string

	// OthersHere lists names of other players in the same room, rendered
	// by look in multiplayer sessions.
	OthersHere []string
}

// DefaultDialogueTimeout bounds the blocking call to the dialogue
// collaborator. On expiry the engine degrades to the local fallback policy.
const DefaultDialogueTimeout = 30 * time.Second

// Engine executes commands against session state. One engine is shared by
// all sessions; it holds only immutable catalog data and collaborators.
type Engine struct {
	catalog         *world.Catalog
	dialogue        npc.DialogueService
	dialogueTimeout time.Duration
	logger          *slog.Logger

	handlers map[Verb]func(*SessionContext, string) *Result
}

func New(catalog *world.Catalog, dialogue npc.DialogueService, logger *slog.Logger) *Engine {
	e := &Engine{
		catalog:         catalog,
		dialogue:        dialogue,
		dialogueTimeout: DefaultDialogueTimeout,
		logger:          logger,
	}
	e.handlers = map[Verb]func(*SessionContext, string) *Result{
		VerbLook:        e.cmdLook,
		VerbGo:          e.cmdGo,
		VerbTake:        e.cmdTake,
		VerbDrop:        e.cmdDrop,
		VerbInventory:   e.cmdInventory,
		VerbUse:         e.cmdUse,
		VerbExamine:     e.cmdExamine,
		VerbHelp:        e.cmdHelp,
		VerbExitMansion: e.cmdExitMansion,
		VerbQuit:        e.cmdQuit,
	}
	return e
}

// Catalog exposes the immutable world definitions.
func (e *Engine) Catalog() *world.Catalog {
	return e.catalog
}

// Execute runs one command to completion and returns a structured result.
// User input errors never surface as Go errors; they become failure results
// so a bad command can never take down a session.
func (e *Engine) Execute(ctx context.Context, sc *SessionContext, raw string) *Result {
	verb, arg := Parse(raw)
	if verb == VerbTalk {
		return e.executeTalk(ctx, sc, arg)
	}
	handler, found := e.handlers[verb]
	if !found {
		return fail(fmt.Sprintf("I don't understand '%s'. Type 'help' for a list of commands.", arg))
	}
	return handler(sc, arg)
}

// executeTalk runs the three talk phases back to back for callers that do
// their own locking around the whole command (single-player mode).
func (e *Engine) executeTalk(ctx context.Context, sc *SessionContext, arg string) *Result {
	req, res := e.PrepareTalk(sc, arg)
	if res != nil {
		return res
	}
	reply := e.CallDialogue(ctx, req)
	return e.ApplyTalk(sc, req, reply)
}

// location returns the catalog definition and mutable state for the
// player's current location.
func (e *Engine) location(sc *SessionContext) (*world.LocationDef, *state.LocationState) {
	def := e.catalog.Locations[sc.Player.CurrentLocation]
	if def == nil {
		return nil, nil
	}
	return def, sc.World.Location(def.ID)
}

// isDark reports whether the location currently hides its contents.
func isDark(def *world.LocationDef, ls *state.LocationState) bool {
	return def.Dark && !ls.Flag(world.StateLightsOn)
}
