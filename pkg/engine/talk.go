package engine

import (
	"context"
	"fmt"

	"github.com/jwebster45206/haunted-mansion/pkg/npc"
	"github.com/jwebster45206/haunted-mansion/pkg/world"
)

// TalkRequest is the snapshot taken under the session lock before the
// blocking dialogue call. It carries everything the collaborator needs so
// the lock is not held across network latency.
type TalkRequest struct {
	NPCID   string
	Message string
	Prompt  npc.PromptContext
	Stage   npc.Stage
	History []npc.Exchange
}

// PrepareTalk is phase one of talk, run under the session lock. It resolves
// the target NPC and handles the cases that need no dialogue call: missing
// message, empty room, and first contact (the fixed greeting). A non-nil
// Result means the command is already complete.
func (e *Engine) PrepareTalk(sc *SessionContext, message string) (*TalkRequest, *Result) {
	if message == "" {
		return nil, fail("Say what?")
	}
	def, _ := e.location(sc)
	if def == nil {
		return nil, fail("You are nowhere.")
	}

	npcs := sc.World.NPCsAt(def.ID)
	if len(npcs) == 0 {
		return nil, fail("There's no one here to talk to.")
	}
	// First NPC in catalog order takes the conversation.
	target := npcs[0]

	if greeting, first := target.GreetIfFirst(message); first {
		return nil, ok(renderSpeech(target.Name, greeting))
	}

	inventory := make([]string, 0, len(sc.Player.Inventory))
	for _, itemID := range sc.Player.Inventory {
		if item := e.catalog.Items[itemID]; item != nil {
			inventory = append(inventory, item.Name)
		}
	}

	return &TalkRequest{
		NPCID:   target.ID,
		Message: message,
		Prompt: npc.PromptContext{
			Name:            target.Name,
			Personality:     target.Personality,
			Role:            target.Role,
			Location:        def.Name,
			GuardsItem:      target.GuardsItem,
			PlayerInventory: inventory,
			PlayerLocation:  def.Name,
		},
		Stage:   target.Stage(),
		History: target.PromptHistory(),
	}, nil
}

// CallDialogue is phase two, run outside any lock. It returns nil when the
// collaborator fails, times out, or produces empty text; ApplyTalk then
// falls back to the deterministic local policy.
func (e *Engine) CallDialogue(ctx context.Context, req *TalkRequest) *npc.Reply {
	if e.dialogue == nil {
		return nil
	}
	callCtx, cancel := context.WithTimeout(ctx, e.dialogueTimeout)
	defer cancel()

	reply, err := e.dialogue.GenerateReply(callCtx, req.Prompt, req.Stage, req.History, req.Message)
	if err != nil {
		e.logger.Warn("dialogue collaborator failed, using fallback",
			"npc", req.NPCID, "error", err)
		return nil
	}
	if reply == nil || reply.Text == "" {
		e.logger.Warn("dialogue collaborator returned empty reply, using fallback",
			"npc", req.NPCID)
		return nil
	}
	return reply
}

// ApplyTalk is phase three, run under the session lock again. NPC state is
// re-read here: if another player solved the puzzle while the lock was
// released, the grant guard in Apply drops the duplicate release.
func (e *Engine) ApplyTalk(sc *SessionContext, req *TalkRequest, reply *npc.Reply) *Result {
	target := sc.World.NPCs[req.NPCID]
	if target == nil {
		return fail("There's no one here to talk to.")
	}
	if reply == nil {
		reply = target.Fallback()
	}

	granted := target.Apply(req.Message, reply)
	message := renderSpeech(target.Name, reply.Text)

	if granted {
		// The item is released into the NPC's location, not the player's
		// inventory. The player still has to take it.
		if ls := sc.World.Location(target.Location); ls != nil {
			ls.AddItem(target.GuardsItem)
			if target.GrantFlag != "" {
				ls.SetFlag(target.GrantFlag, true)
			}
		}
		itemName := world.DisplayName(target.GuardsItem)
		if item := e.catalog.Items[target.GuardsItem]; item != nil {
			itemName = item.Name
		}
		message += fmt.Sprintf("\n%s has given you the %s!", target.Name, itemName)
		message += fmt.Sprintf("\n(Use 'take %s' to pick it up)", world.NormalizeID(itemName))

		return &Result{
			Success:          true,
			Message:          message,
			Broadcast:        true,
			BroadcastMessage: fmt.Sprintf("%s has released the %s!", target.Name, itemName),
			LocationID:       target.Location,
		}
	}

	return ok(message)
}

func renderSpeech(name, text string) string {
	return fmt.Sprintf("\n%s says:\n%q", name, text)
}
