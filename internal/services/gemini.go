package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/jwebster45206/haunted-mansion/pkg/npc"
)

const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiService implements npc.DialogueService for Google Gemini.
type GeminiService struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *slog.Logger
}

var _ npc.DialogueService = (*GeminiService)(nil)

func NewGeminiService(ctx context.Context, apiKey string, modelName string, logger *slog.Logger) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	return &GeminiService{
		client: client,
		model:  client.GenerativeModel(modelName),
		logger: logger,
	}, nil
}

func (g *GeminiService) Close() error {
	return g.client.Close()
}

// GenerateReply sends the whole turn as a single prompt: system prompt, then
// the transcript of recent exchanges, then the player's message.
func (g *GeminiService) GenerateReply(ctx context.Context, pc npc.PromptContext, stage npc.Stage, history []npc.Exchange, playerMessage string) (*npc.Reply, error) {
	var b strings.Builder
	b.WriteString(BuildSystemPrompt(pc, stage))
	b.WriteString(renderHistory(history))
	fmt.Fprintf(&b, "\n\nPlayer says: %q\n\nYour response:", playerMessage)

	resp, err := g.model.GenerateContent(ctx, genai.Text(b.String()))
	if err != nil {
		return nil, fmt.Errorf("gemini generation failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("gemini returned unexpected part type %T", resp.Candidates[0].Content.Parts[0])
	}

	return parseReply(string(text)), nil
}
