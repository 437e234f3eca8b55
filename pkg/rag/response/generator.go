package response

import (
	"context"

	"askalma-be/internal/pkg/logger"
	"askalma-be/internal/pkg/serverutils"

	"askalma-be/pkg/llm"
)

// Generator wraps the LLM call for answer generation.
type Generator struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
	temperature float64
}

func NewGenerator(llmProvider llm.LLMProvider, log logger.ILogger) *Generator {
	return &Generator{
		llmProvider: llmProvider,
		logger:      log,
		// Low temperature keeps advisory answers close to the context.
		temperature: 0.2,
	}
}

// Model returns the provider:model identifier recorded with each answer.
func (g *Generator) Model() string {
	return g.llmProvider.Model()
}

// Generate runs the assembled prompt through the LLM. Failures come back as
// transient dependency errors; the caller decides on the fallback answer.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	answer, err := g.llmProvider.Chat(ctx,
		[]llm.Message{{Role: "user", Content: prompt}},
		llm.WithTemperature(g.temperature),
	)
	if err != nil {
		g.logger.Error("generator", "LLM generation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return "", serverutils.NewTransientDependencyError("answer generation failed", err)
	}
	return answer, nil
}
