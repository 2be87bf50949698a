package content

import (
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"maitje/internal/models"
)

func TestSchoolLevel(t *testing.T) {
	tests := []struct {
		level int
		want  string
	}{
		{1, "groep 3"},
		{4, "groep 6"},
		{6, "groep 8"},
		{0, ""},
		{7, ""},
	}
	for _, tt := range tests {
		if got := SchoolLevel(tt.level); got != tt.want {
			t.Errorf("SchoolLevel(%d) = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func evalMath(t *testing.T, prompt string) (op string, a, b int) {
	t.Helper()
	parts := strings.Fields(prompt)
	if len(parts) != 5 {
		t.Fatalf("unexpected prompt %q", prompt)
	}
	a, _ = strconv.Atoi(parts[0])
	b, _ = strconv.Atoi(parts[2])
	return parts[1], a, b
}

func TestMathQuestions(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	for level := MinLevel; level <= MaxLevel; level++ {
		questions := MathQuestions(r, level, 50)
		if len(questions) != 50 {
			t.Fatalf("level %d: got %d questions", level, len(questions))
		}
		for _, q := range questions {
			op, a, b := evalMath(t, q.Prompt)
			answer, err := strconv.Atoi(q.Answer)
			if err != nil {
				t.Fatalf("answer %q is not a number", q.Answer)
			}
			var want int
			switch op {
			case "+":
				want = a + b
			case "-":
				want = a - b
			case "x":
				if level < 3 {
					t.Errorf("level %d should not have multiplication", level)
				}
				want = a * b
			case ":":
				if level < 5 {
					t.Errorf("level %d should not have division", level)
				}
				if b == 0 || a%b != 0 {
					t.Errorf("division %q has a remainder", q.Prompt)
					continue
				}
				want = a / b
			}
			if answer != want {
				t.Errorf("%q: answer %d, want %d", q.Prompt, answer, want)
			}
			if answer < 0 {
				t.Errorf("%q: negative answer", q.Prompt)
			}
		}
	}
}

func TestReadingQuestions(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	questions := ReadingQuestions(r, 3, 0)
	if len(questions) == 0 {
		t.Fatal("expected questions")
	}
	for _, q := range questions {
		if !q.IsMultipleChoice() {
			t.Errorf("reading question %q should be multiple choice", q.Prompt)
		}
		idx, err := strconv.Atoi(q.Answer)
		if err != nil || idx < 0 || idx >= len(q.Options) {
			t.Errorf("answer %q out of range for %d options", q.Answer, len(q.Options))
		}
		if q.Passage == "" {
			t.Error("expected passage text")
		}
	}
}

func TestEnglishQuestionsDistinct(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	questions := EnglishQuestions(r, 1, 100)
	if len(questions) != len(Vocabulary(1)) {
		t.Fatalf("got %d questions, want capped at %d", len(questions), len(Vocabulary(1)))
	}
	seen := make(map[string]bool)
	for _, q := range questions {
		if seen[q.Prompt] {
			t.Errorf("duplicate question %q", q.Prompt)
		}
		seen[q.Prompt] = true
	}
}

func TestQuestionsRejectsInvalidInput(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	if _, err := Questions(r, models.CategoryMath, 0, 5); err == nil {
		t.Error("expected error for level 0")
	}
	if _, err := Questions(r, "drawing", 2, 5); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestEncouragement(t *testing.T) {
	if Encouragement(10, 10) == Encouragement(1, 10) {
		t.Error("perfect and poor scores should differ")
	}
	if Encouragement(0, 0) == "" {
		t.Error("expected a message for an empty session")
	}
}

func TestHelpersAreCopies(t *testing.T) {
	h := Helpers()
	h[0].Name = "changed"
	if Helpers()[0].Name == "changed" {
		t.Error("Helpers should return a copy")
	}
	if len(FAQ()) == 0 {
		t.Error("expected FAQ entries")
	}
}
