// Package llm implements the AI functions: week program generation,
// feedback analysis and a connection check against the configured model.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

var (
	ErrNotConfigured = errors.New("no language model configured")
	ErrInvalidReply  = errors.New("language model returned an unusable reply")
)

const slotTimeout = 2 * time.Minute

// Generator runs prompts against a language model. The number of calls in
// flight is bounded by a fixed pool of slots.
type Generator struct {
	model     llms.Model
	modelName string
	slots     chan struct{}
}

// New creates a generator backed by OpenAI. Without an API key the generator
// is returned disabled and every call fails with ErrNotConfigured.
func New(apiKey, modelName string, concurrent int) (*Generator, error) {
	if apiKey == "" {
		return NewWithModel(nil, modelName, concurrent), nil
	}
	model, err := openai.New(
		openai.WithModel(modelName),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}
	return NewWithModel(model, modelName, concurrent), nil
}

// NewWithModel wraps an existing model
func NewWithModel(model llms.Model, modelName string, concurrent int) *Generator {
	if concurrent < 1 {
		concurrent = 1
	}
	slots := make(chan struct{}, concurrent)
	for i := 0; i < concurrent; i++ {
		slots <- struct{}{}
	}
	return &Generator{model: model, modelName: modelName, slots: slots}
}

// Enabled reports whether a model is configured
func (g *Generator) Enabled() bool {
	return g != nil && g.model != nil
}

// ModelName returns the configured model name
func (g *Generator) ModelName() string {
	return g.modelName
}

func (g *Generator) acquire(ctx context.Context) error {
	select {
	case <-g.slots:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(slotTimeout):
		return fmt.Errorf("timeout waiting for a language model slot")
	}
}

func (g *Generator) release() {
	g.slots <- struct{}{}
}

// complete sends a single prompt and returns the trimmed reply
func (g *Generator) complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	if !g.Enabled() {
		return "", ErrNotConfigured
	}
	if err := g.acquire(ctx); err != nil {
		return "", err
	}
	defer g.release()

	completion, err := llms.GenerateFromSinglePrompt(ctx, g.model, prompt, llms.WithTemperature(temperature))
	if err != nil {
		log.Printf("[ERROR] language model call failed: %v", err)
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	return strings.TrimSpace(completion), nil
}

// completeJSON sends a prompt that asks for a JSON object and decodes the reply into out
func (g *Generator) completeJSON(ctx context.Context, prompt string, temperature float64, out interface{}) error {
	reply, err := g.complete(ctx, prompt, temperature)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(extractJSON(reply)), out); err != nil {
		log.Printf("[ERROR] could not decode model reply: %v", err)
		return fmt.Errorf("%w: %v", ErrInvalidReply, err)
	}
	return nil
}

// extractJSON strips markdown fences and any chatter around the outermost object
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "{") {
		return text
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}

// schemaFor reflects the JSON schema of T with all definitions inlined
func schemaFor[T any]() (string, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	data, err := json.MarshalIndent(reflector.Reflect(v), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode schema for %T: %w", v, err)
	}
	return string(data), nil
}

// mustSchema is schemaFor for package-level schemas of static types
func mustSchema[T any]() string {
	schema, err := schemaFor[T]()
	if err != nil {
		panic(err)
	}
	return schema
}

// ConnectionResult is the outcome of a connection check
type ConnectionResult struct {
	Model     string `json:"model"`
	Reply     string `json:"reply"`
	LatencyMS int64  `json:"latency_ms"`
}

// TestConnection sends a tiny prompt to check the API key and model
func (g *Generator) TestConnection(ctx context.Context) (*ConnectionResult, error) {
	start := time.Now()
	reply, err := g.complete(ctx, "Antwoord met precies één woord: hallo", 0)
	if err != nil {
		return nil, err
	}
	return &ConnectionResult{
		Model:     g.modelName,
		Reply:     reply,
		LatencyMS: time.Since(start).Milliseconds(),
	}, nil
}
