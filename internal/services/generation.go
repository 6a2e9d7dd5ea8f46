package services

import (
	"context"
	"strings"
	"time"

	"github.com/yungbote/slangify-backend/internal/clients/openai"
	"github.com/yungbote/slangify-backend/internal/platform/logger"
)

const nothingToTranslateReply = "There's nothing to translate yet. Send me some text or a clearer image and I'll slang it up."

// GenerationResult always carries a usable token cost. TokensUsed is never
// below 1 so that every exchange, including failed ones, is accounted.
type GenerationResult struct {
	Text         string
	Persona      string
	BackendModel string
	InputTokens  int
	OutputTokens int
	TokensUsed   int
	Success      bool
	ErrorMessage string
}

// GenerationService invokes the generation backend with a resolved persona.
// It reports failure through the result rather than an error: the pipeline
// recovers from a failed generation instead of aborting the exchange.
type GenerationService interface {
	Generate(ctx context.Context, personaTier string, input string) *GenerationResult
}

type generationService struct {
	log     *logger.Logger
	ai      openai.Client
	timeout time.Duration
}

func NewGenerationService(log *logger.Logger, ai openai.Client, timeout time.Duration) GenerationService {
	serviceLog := log.With("service", "GenerationService")
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &generationService{log: serviceLog, ai: ai, timeout: timeout}
}

func (gs *generationService) Generate(ctx context.Context, personaTier string, input string) *GenerationResult {
	persona := LookupPersona(personaTier)
	result := &GenerationResult{Persona: persona.Name, TokensUsed: 1}
	if gs.ai != nil {
		result.BackendModel = gs.ai.Model()
	}

	// Empty input never reaches the network: the canned reply costs the
	// minimum instead of a full backend round trip.
	if strings.TrimSpace(input) == "" {
		result.Text = nothingToTranslateReply
		result.Success = true
		return result
	}

	if gs.ai == nil {
		result.ErrorMessage = "generation backend not configured"
		return result
	}

	genCtx, cancel := context.WithTimeout(ctx, gs.timeout)
	defer cancel()

	out, err := gs.ai.GenerateText(genCtx, persona.SystemPrompt, input)
	if err != nil {
		gs.log.Warn("Generation backend failed", "persona", persona.Name, "error", err)
		result.ErrorMessage = err.Error()
		return result
	}

	result.Text = strings.TrimSpace(out.Text)
	result.InputTokens = out.InputTokens
	result.OutputTokens = out.OutputTokens
	result.TokensUsed = out.TotalTokens
	if result.TokensUsed < 1 {
		result.TokensUsed = 1
	}
	result.Success = result.Text != ""
	if !result.Success {
		result.ErrorMessage = "generation backend returned empty text"
	}
	return result
}
