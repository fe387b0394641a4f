// Package services implements the dialogue backends behind npc.DialogueService.
// Each backend builds the same staged system prompt, calls its provider, and
// converts the raw text into a tagged npc.Reply by detecting and stripping the
// grant token. The engine never sees the token.
package services

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/haunted-mansion/pkg/npc"
	"github.com/jwebster45206/haunted-mansion/pkg/textfilter"
	"github.com/jwebster45206/haunted-mansion/pkg/world"
)

// GrantToken is the exact phrase a backend model includes in its response
// when it decides to release a guarded item. It is stripped before the text
// reaches the player.
const GrantToken = "[GIVE_ITEM]"

// BuildSystemPrompt renders the staged system prompt for one NPC turn.
func BuildSystemPrompt(pc npc.PromptContext, stage npc.Stage) string {
	var b strings.Builder

	inventory := "empty"
	if len(pc.PlayerInventory) > 0 {
		names := make([]string, len(pc.PlayerInventory))
		for i, id := range pc.PlayerInventory {
			names[i] = world.DisplayName(id)
		}
		inventory = strings.Join(names, ", ")
	}

	fmt.Fprintf(&b, "You are %s, %s\n\n", pc.Name, pc.Personality)
	fmt.Fprintf(&b, "YOUR ROLE: %s\n\n", pc.Role)
	b.WriteString("SETTING: You are in a haunted mansion. A player is trying to escape.\n\n")
	fmt.Fprintf(&b, "YOUR LOCATION: %s\n\n", world.DisplayName(pc.Location))
	b.WriteString("CURRENT GAME STATE:\n")
	fmt.Fprintf(&b, "- Player inventory: %s\n", inventory)
	fmt.Fprintf(&b, "- Player location: %s\n", world.DisplayName(pc.PlayerLocation))

	switch stage {
	case npc.StageGuarding:
		fmt.Fprintf(&b, `
IMPORTANT: You are guarding the %s. The player needs this item to progress.

Have a NATURAL CONVERSATION with them. Don't just give them a single puzzle and demand an answer.
Instead:
- Engage in dialogue about the mansion, your past, their quest
- Challenge them with questions, riddles, or philosophical discussions
- React to what they say
- After 2-3 meaningful exchanges where they prove themselves, decide they've earned your trust and give them the item

When you decide they've earned it, include the EXACT phrase "%s" somewhere in your response.
Only use this phrase ONCE, when you truly feel they've proven themselves.
`, world.DisplayName(pc.GuardsItem), GrantToken)
	case npc.StageResolved:
		fmt.Fprintf(&b, `
IMPORTANT: The player already solved your puzzle! You gave them the %s.
Be proud of them. Offer advice about using the item or other parts of the mansion.
`, world.DisplayName(pc.GuardsItem))
	default:
		b.WriteString(`
You don't guard any items, but you have knowledge about the mansion.
Be helpful in a cryptic way. Give hints and atmosphere.
`)
	}

	b.WriteString(`
RULES:
- Stay in character at ALL times
- Keep responses to 2-4 sentences (brief but atmospheric)
- Be spooky, mysterious, or eccentric depending on your personality
- Don't break the fourth wall
- Don't mention being an AI

Respond naturally to the player's message.`)

	return b.String()
}

// renderHistory formats the recent exchanges as a transcript block appended
// to single-prompt providers.
func renderHistory(history []npc.Exchange) string {
	if len(history) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\nPREVIOUS CONVERSATION:\n")
	for _, ex := range history {
		fmt.Fprintf(&b, "Player: %s\nYou: %s\n", ex.Player, ex.NPC)
	}
	return b.String()
}

var sanitizer = textfilter.NewSanitizer()

// parseReply converts raw generated text into a tagged Reply, stripping the
// grant token and sanitizing the prose. Empty text (after stripping) yields
// nil so callers fall back to the local policy.
func parseReply(text string) *npc.Reply {
	granted := strings.Contains(text, GrantToken)
	text = strings.ReplaceAll(text, GrantToken, "")
	text = sanitizer.Clean(text)
	if text == "" {
		return nil
	}
	return &npc.Reply{Text: text, GrantItem: granted}
}
