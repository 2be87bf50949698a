package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tmc/langchaingo/llms"

	"maitje/internal/models"
)

// fakeModel replies with a fixed text and records the prompts it receives
type fakeModel struct {
	reply string
	err   error
	delay time.Duration

	mu       sync.Mutex
	prompts  []string
	inFlight int32
	maxSeen  int32
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	n := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		seen := atomic.LoadInt32(&f.maxSeen)
		if n <= seen || atomic.CompareAndSwapInt32(&f.maxSeen, seen, n) {
			break
		}
	}

	var text strings.Builder
	for _, m := range messages {
		for _, part := range m.Parts {
			if tc, ok := part.(llms.TextContent); ok {
				text.WriteString(tc.Text)
			}
		}
	}
	f.mu.Lock()
	f.prompts = append(f.prompts, text.String())
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

const programReply = "```json\n" + `{
  "theme": "Dieren",
  "days": [
    {"title": "Maandag", "exercises": [
      {"title": "Tellen", "category": "math", "instructions": "Reken uit", "questions": [
        {"question": "3 + 4 = ?", "answer": "7"}
      ]}
    ]}
  ]
}` + "\n```"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"chatter", "Hier is het programma: {\"a\":1} Veel plezier!", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.input); got != tt.want {
				t.Errorf("extractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateWeekProgram(t *testing.T) {
	model := &fakeModel{reply: programReply}
	g := NewWithModel(model, "test-model", 2)

	program, err := g.GenerateWeekProgram(context.Background(), "", models.GenerationSettings{Level: 3, Theme: "Dieren"})
	if err != nil {
		t.Fatalf("GenerateWeekProgram() error = %v", err)
	}
	if len(program.Days) != 1 || program.Days[0].Day != 1 {
		t.Errorf("days = %+v", program.Days)
	}
	if q := program.Days[0].Exercises[0].Questions[0]; q.Answer != "7" {
		t.Errorf("question = %+v", q)
	}

	prompt := model.prompts[0]
	for _, want := range []string{"leerkracht", "groep 5", "Dieren", `"days"`} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt does not contain %q", want)
		}
	}
}

func TestGenerateWeekProgramRejectsBadReplies(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"not json", "Sorry, dat kan ik niet."},
		{"unknown category", `{"days":[{"exercises":[{"title":"x","category":"drawing"}]}]}`},
		{"too many days", `{"days":[{},{},{},{},{},{}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithModel(&fakeModel{reply: tt.reply}, "test-model", 1)
			_, err := g.GenerateWeekProgram(context.Background(), "prompt", models.GenerationSettings{Level: 1})
			if !errors.Is(err, ErrInvalidReply) {
				t.Errorf("error = %v, want ErrInvalidReply", err)
			}
		})
	}
}

func TestAnalyzeFeedback(t *testing.T) {
	model := &fakeModel{reply: `{"analysis":"Vragen zijn te makkelijk.","suggested_prompt":"Maak moeilijkere vragen."}`}
	g := NewWithModel(model, "test-model", 1)

	program := models.ProgramContent{Days: []models.ProgramDay{{Exercises: []models.ProgramExercise{{
		Category:  models.CategoryMath,
		Questions: []models.ProgramQuestion{{Question: "1 + 1 = ?", Answer: "2"}},
	}}}}}
	feedback := []models.QuestionFeedback{{Difficulty: "too_easy", Comment: "veel te simpel"}}

	analysis, err := g.AnalyzeFeedback(context.Background(), "oude prompt", program, feedback)
	if err != nil {
		t.Fatalf("AnalyzeFeedback() error = %v", err)
	}
	if analysis.SuggestedPrompt != "Maak moeilijkere vragen." {
		t.Errorf("analysis = %+v", analysis)
	}

	prompt := model.prompts[0]
	for _, want := range []string{"oude prompt", "1 + 1 = ?", "moeilijkheid=too_easy", "veel te simpel"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt does not contain %q", want)
		}
	}
}

func TestDisabledGenerator(t *testing.T) {
	g, err := New("", "gpt-4o-mini", 3)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if g.Enabled() {
		t.Error("generator without key should be disabled")
	}
	if _, err := g.TestConnection(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("error = %v, want ErrNotConfigured", err)
	}
}

func TestTestConnection(t *testing.T) {
	g := NewWithModel(&fakeModel{reply: " hallo "}, "test-model", 1)
	result, err := g.TestConnection(context.Background())
	if err != nil {
		t.Fatalf("TestConnection() error = %v", err)
	}
	if result.Reply != "hallo" || result.Model != "test-model" {
		t.Errorf("result = %+v", result)
	}

	failing := NewWithModel(&fakeModel{err: errors.New("401 unauthorized")}, "test-model", 1)
	if _, err := failing.TestConnection(context.Background()); err == nil {
		t.Error("expected error from failing model")
	}
}

func TestConcurrentCallsAreBounded(t *testing.T) {
	model := &fakeModel{reply: "ok", delay: 20 * time.Millisecond}
	g := NewWithModel(model, "test-model", 2)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := g.TestConnection(context.Background()); err != nil {
				t.Errorf("TestConnection() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if max := atomic.LoadInt32(&model.maxSeen); max > 2 {
		t.Errorf("saw %d concurrent calls, want at most 2", max)
	}
}

func TestAcquireRespectsContext(t *testing.T) {
	g := NewWithModel(&fakeModel{reply: "ok"}, "test-model", 1)
	<-g.slots // occupy the only slot

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := g.TestConnection(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestSchemas(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		fields []string
	}{
		{"program", programSchema, []string{`"days"`, `"question"`}},
		{"analysis", analysisSchema, []string{`"analysis"`, `"suggested_prompt"`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !json.Valid([]byte(tt.schema)) {
				t.Fatalf("schema is not valid JSON: %s", tt.schema)
			}
			for _, f := range tt.fields {
				if !strings.Contains(tt.schema, f) {
					t.Errorf("schema lacks %s", f)
				}
			}
		})
	}
}
