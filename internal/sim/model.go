package sim

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// Output is the structured verdict requested from the model.
type Output struct {
	Decision  string `json:"decision"`
	Reasoning string `json:"reasoning"`
}

// DecisionModel produces a purchase verdict for one prompt pair. Satisfied
// by GenkitModel; tests substitute a fake.
type DecisionModel interface {
	Decide(ctx context.Context, system, prompt string) (Output, error)
}

// GenkitModel adapts a genkit-registered chat model to DecisionModel using
// structured output.
type GenkitModel struct {
	g           *genkit.Genkit
	modelName   string
	temperature float64
}

// NewGenkitModel creates a model adapter. modelName is the fully qualified
// genkit name, e.g. "openai/gpt-4o-mini".
func NewGenkitModel(g *genkit.Genkit, modelName string, temperature float64) *GenkitModel {
	return &GenkitModel{g: g, modelName: modelName, temperature: temperature}
}

func (m *GenkitModel) Decide(ctx context.Context, system, prompt string) (Output, error) {
	resp, err := genkit.Generate(ctx, m.g,
		ai.WithModelName(m.modelName),
		ai.WithSystem(system),
		ai.WithPrompt(prompt),
		ai.WithConfig(map[string]any{"temperature": m.temperature}),
		ai.WithOutputType(Output{}),
	)
	if err != nil {
		return Output{}, fmt.Errorf("generating decision: %w", err)
	}

	var out Output
	if err := resp.Output(&out); err != nil {
		return Output{}, fmt.Errorf("parsing model output: %w", err)
	}
	return out, nil
}
