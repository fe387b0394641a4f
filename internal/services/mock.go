package services

import (
	"context"
	"sync"

	"github.com/jwebster45206/haunted-mansion/pkg/npc"
)

// MockDialogueService is a mock implementation of npc.DialogueService for
// testing and local development without an API key.
type MockDialogueService struct {
	GenerateReplyFunc func(ctx context.Context, pc npc.PromptContext, stage npc.Stage, history []npc.Exchange, playerMessage string) (*npc.Reply, error)

	// Track calls for testing
	GenerateReplyCalls []GenerateReplyCall

	mu sync.Mutex // protects fields above
}

type GenerateReplyCall struct {
	Context       npc.PromptContext
	Stage         npc.Stage
	History       []npc.Exchange
	PlayerMessage string
}

var _ npc.DialogueService = (*MockDialogueService)(nil)

func NewMockDialogueService() *MockDialogueService {
	return &MockDialogueService{
		GenerateReplyCalls: make([]GenerateReplyCall, 0),
	}
}

// GenerateReply records the call and delegates to GenerateReplyFunc when set.
// The default behavior returns nil so the caller uses the local fallback
// policy, which is also what a real provider outage looks like.
func (m *MockDialogueService) GenerateReply(ctx context.Context, pc npc.PromptContext, stage npc.Stage, history []npc.Exchange, playerMessage string) (*npc.Reply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GenerateReplyCalls = append(m.GenerateReplyCalls, GenerateReplyCall{
		Context:       pc,
		Stage:         stage,
		History:       append([]npc.Exchange(nil), history...),
		PlayerMessage: playerMessage,
	})

	if m.GenerateReplyFunc != nil {
		return m.GenerateReplyFunc(ctx, pc, stage, history, playerMessage)
	}
	return nil, nil
}

// CallCount returns how many replies were requested.
func (m *MockDialogueService) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.GenerateReplyCalls)
}
