package npc

import (
	"strings"
	"testing"

	"github.com/jwebster45206/haunted-mansion/pkg/world"
)

func guardingNPC() *NPC {
	return FromDef(&world.NPCDef{
		ID:          "ghost_librarian",
		Name:        "Edgar",
		Personality: "a melancholy ghost",
		Role:        "keeper of the library",
		Location:    "library",
		GuardsItem:  "ancient_amulet",
		Greeting:    "Ahh, a visitor...",
	})
}

func TestStage_Progression(t *testing.T) {
	n := guardingNPC()
	if n.Stage() != StageGuarding {
		t.Errorf("fresh guardian stage = %q", n.Stage())
	}

	n.Apply("please", &Reply{Text: "Very well.", GrantItem: true})
	if n.Stage() != StageResolved {
		t.Errorf("post-grant stage = %q", n.Stage())
	}

	ambient := FromDef(&world.NPCDef{ID: "butler", Name: "The Butler", Location: "hallway"})
	if ambient.Stage() != StageAmbient {
		t.Errorf("unguarded stage = %q", ambient.Stage())
	}
}

func TestStage_NeverRegresses(t *testing.T) {
	n := guardingNPC()
	n.Apply("please", &Reply{Text: "Take it.", GrantItem: true})

	// Nothing after the grant can move the NPC back to guarding.
	n.Apply("another?", &Reply{Text: "No.", GrantItem: false})
	n.Apply("really?", &Reply{Text: "I said no.", GrantItem: true})
	if n.Stage() != StageResolved {
		t.Errorf("stage regressed to %q", n.Stage())
	}
}

func TestApply_GrantIsIdempotent(t *testing.T) {
	n := guardingNPC()
	if !n.Apply("please", &Reply{Text: "Yours.", GrantItem: true}) {
		t.Fatal("first grant should report granted")
	}
	if n.Apply("again", &Reply{Text: "Yours again?", GrantItem: true}) {
		t.Error("second grant token must be dropped")
	}
}

func TestApply_RiddleDetection(t *testing.T) {
	n := guardingNPC()
	n.Apply("hello", &Reply{Text: "Welcome to my library."})
	if n.RiddleGiven {
		t.Error("plain statement marked as riddle")
	}
	n.Apply("go on", &Reply{Text: "What has keys but opens no locks?"})
	if !n.RiddleGiven {
		t.Error("question not marked as riddle")
	}
}

func TestGreetIfFirst(t *testing.T) {
	n := guardingNPC()
	greeting, first := n.GreetIfFirst("hello")
	if !first || greeting != "Ahh, a visitor..." {
		t.Errorf("got (%q, %v)", greeting, first)
	}
	if _, again := n.GreetIfFirst("hello again"); again {
		t.Error("second contact should not greet")
	}
	if len(n.History) != 1 {
		t.Errorf("history length %d after greeting", len(n.History))
	}
}

func TestPromptHistory_Window(t *testing.T) {
	n := guardingNPC()
	for i := 0; i < HistoryWindow+3; i++ {
		n.Record("ping", "pong")
	}
	window := n.PromptHistory()
	if len(window) != HistoryWindow {
		t.Errorf("window length %d, want %d", len(window), HistoryWindow)
	}
	if len(n.History) != HistoryWindow+3 {
		t.Errorf("full history truncated to %d", len(n.History))
	}
}

func TestFallback_GuardingGrantsAfterTwoExchanges(t *testing.T) {
	n := guardingNPC()

	reply := n.Fallback()
	if reply.GrantItem {
		t.Error("fallback granted before any exchanges")
	}

	n.Record("hello", "...")
	reply = n.Fallback()
	if reply.GrantItem {
		t.Error("fallback granted after one exchange")
	}

	n.Record("tell me more", "...")
	reply = n.Fallback()
	if !reply.GrantItem {
		t.Error("fallback must grant after two exchanges")
	}
	if !strings.Contains(reply.Text, "Ancient Amulet") {
		t.Errorf("grant text missing item name: %q", reply.Text)
	}
}

func TestFallback_ResolvedAndAmbient(t *testing.T) {
	n := guardingNPC()
	n.PuzzleSolved = true
	if reply := n.Fallback(); reply.GrantItem {
		t.Error("resolved fallback must not grant again")
	}

	ambient := FromDef(&world.NPCDef{ID: "butler", Name: "The Butler", Location: "hallway"})
	reply := ambient.Fallback()
	if reply.GrantItem {
		t.Error("ambient fallback must not grant")
	}
	if !strings.Contains(reply.Text, "The Butler") {
		t.Errorf("ambient fallback should speak in character: %q", reply.Text)
	}
}
