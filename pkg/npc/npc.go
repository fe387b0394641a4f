// Package npc holds the per-NPC dialogue state machine and the boundary to
// the external dialogue collaborator. The engine never parses grant markers
// out of prose; implementations of DialogueService return a tagged Reply.
package npc

import (
	"context"
	"fmt"
	"strings"

	"github.com/jwebster45206/haunted-mansion/pkg/world"
)

// Stage selects the prompt framing sent to the dialogue collaborator.
type Stage string

const (
	// StageGuarding is the active puzzle: the NPC still guards its item.
	StageGuarding Stage = "guarding"
	// StageResolved is used after the puzzle is solved; the NPC acts as a
	// proud mentor and the puzzle context is no longer sent.
	StageResolved Stage = "resolved"
	// StageAmbient is for NPCs that guard nothing.
	StageAmbient Stage = "ambient"
)

// Exchange is one (player utterance, npc utterance) pair.
type Exchange struct {
	Player string `json:"player"`
	NPC    string `json:"npc"`
}

// PromptContext is the read-only world context forwarded to the collaborator.
type PromptContext struct {
	Name            string
	Personality     string
	Role            string
	Location        string
	GuardsItem      string
	PlayerInventory []string
	PlayerLocation  string
}

// Reply is the tagged result from the dialogue collaborator. GrantItem is
// true when the generated text carried the grant token; the token itself is
// stripped before the text reaches the player.
type Reply struct {
	Text      string
	GrantItem bool
}

// DialogueService is the external text-generation collaborator.
type DialogueService interface {
	GenerateReply(ctx context.Context, pc PromptContext, stage Stage, history []Exchange, playerMessage string) (*Reply, error)
}

// HistoryWindow is how many recent exchanges are forwarded for context.
const HistoryWindow = 5

// fallbackGrantAfter is the number of recorded exchanges after which the
// local fallback policy releases the guarded item unconditionally.
const fallbackGrantAfter = 2

// NPC is the live dialogue state of one NPC within a session.
type NPC struct {
	ID          string `json:"-"`
	Name        string `json:"name"`
	Personality string `json:"personality"`
	Role        string `json:"role"`
	Location    string `json:"location"`
	GuardsItem  string `json:"guards_item,omitempty"`
	Greeting    string `json:"greeting"`
	GrantFlag   string `json:"grant_flag,omitempty"`

	PuzzleSolved bool       `json:"puzzle_solved"`
	Greeted      bool       `json:"greeted"`
	RiddleGiven  bool       `json:"riddle_given"`
	History      []Exchange `json:"conversation_history,omitempty"`
}

// FromDef clones a catalog definition into a fresh live NPC.
func FromDef(def *world.NPCDef) *NPC {
	return &NPC{
		ID:          def.ID,
		Name:        def.Name,
		Personality: def.Personality,
		Role:        def.Role,
		Location:    def.Location,
		GuardsItem:  def.GuardsItem,
		Greeting:    def.Greeting,
		GrantFlag:   def.GrantFlag,
	}
}

// Stage reports the prompt stage for the NPC's current state.
func (n *NPC) Stage() Stage {
	switch {
	case n.GuardsItem == "":
		return StageAmbient
	case n.PuzzleSolved:
		return StageResolved
	default:
		return StageGuarding
	}
}

// PromptHistory returns the bounded recent window forwarded to the
// collaborator. Full history is retained on the NPC itself.
func (n *NPC) PromptHistory() []Exchange {
	if len(n.History) <= HistoryWindow {
		return n.History
	}
	return n.History[len(n.History)-HistoryWindow:]
}

// Record appends one exchange to the conversation history.
func (n *NPC) Record(playerMsg, npcMsg string) {
	n.History = append(n.History, Exchange{Player: playerMsg, NPC: npcMsg})
}

// GreetIfFirst handles the first contact: the reply is the NPC's fixed
// greeting line, never generated text. Returns the greeting and true when
// this call was the first contact.
func (n *NPC) GreetIfFirst(playerMsg string) (string, bool) {
	if n.Greeted {
		return "", false
	}
	n.Greeted = true
	n.Record(playerMsg, n.Greeting)
	return n.Greeting, true
}

// Apply records the collaborator's reply and advances the state machine.
// It returns true when the guarded item is released by this reply. The
// grant transition is idempotent-guarded: once solved, no further grant is
// possible even if the collaborator repeats the token.
func (n *NPC) Apply(playerMsg string, reply *Reply) bool {
	granted := false
	if reply.GrantItem && n.GuardsItem != "" && !n.PuzzleSolved {
		n.PuzzleSolved = true
		granted = true
	}
	if !n.RiddleGiven && !n.PuzzleSolved && strings.Contains(reply.Text, "?") {
		n.RiddleGiven = true
	}
	n.Record(playerMsg, reply.Text)
	return granted
}

// Fallback is the deterministic local policy used when the dialogue
// collaborator is unavailable, errors, or returns empty text. It guarantees
// forward progress: a guarded item is always released after two exchanges.
func (n *NPC) Fallback() *Reply {
	switch n.Stage() {
	case StageGuarding:
		if len(n.History) >= fallbackGrantAfter {
			return &Reply{
				Text:      fmt.Sprintf("You have proven yourself through our conversation. Take the %s.", world.DisplayName(n.GuardsItem)),
				GrantItem: true,
			}
		}
		return &Reply{Text: "Speak with me, and I may yet share what I guard... What brings you to these halls?"}
	case StageResolved:
		return &Reply{Text: fmt.Sprintf("You have already proven yourself worthy. The %s is yours.", world.DisplayName(n.GuardsItem))}
	default:
		return &Reply{Text: fmt.Sprintf("I am %s. I have seen many souls wander these halls...", n.Name)}
	}
}
