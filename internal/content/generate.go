package content

import (
	"fmt"
	"math/rand"
	"strconv"

	"maitje/internal/models"
)

// mathRange is the largest operand used for addition and subtraction per level
var mathRange = map[int]int{1: 10, 2: 20, 3: 50, 4: 100, 5: 500, 6: 1000}

// tableRange is the largest factor used for multiplication and division
var tableRange = map[int]int{3: 5, 4: 10, 5: 10, 6: 12}

// MathQuestions generates count arithmetic questions for the level.
// Levels 1-2 practise addition and subtraction, 3-4 add multiplication and
// 5-6 add division without remainder.
func MathQuestions(r *rand.Rand, level, count int) []models.Question {
	ops := []byte{'+', '-'}
	if level >= 3 {
		ops = append(ops, 'x')
	}
	if level >= 5 {
		ops = append(ops, ':')
	}

	max := mathRange[level]
	questions := make([]models.Question, 0, count)
	for i := 0; i < count; i++ {
		var a, b, answer int
		op := ops[r.Intn(len(ops))]
		switch op {
		case '+':
			a = r.Intn(max + 1)
			b = r.Intn(max - a + 1)
			answer = a + b
		case '-':
			a = r.Intn(max + 1)
			b = r.Intn(a + 1)
			answer = a - b
		case 'x':
			t := tableRange[level]
			a = r.Intn(t) + 1
			b = r.Intn(t) + 1
			answer = a * b
		case ':':
			t := tableRange[level]
			b = r.Intn(t) + 1
			answer = r.Intn(t) + 1
			a = b * answer
		}
		questions = append(questions, models.Question{
			Prompt: fmt.Sprintf("%d %c %d = ?", a, op, b),
			Answer: strconv.Itoa(answer),
		})
	}
	return questions
}

// ReadingQuestions picks a passage for the level and returns its questions.
// Each question carries the passage text so the session is self-contained.
func ReadingQuestions(r *rand.Rand, level, count int) []models.Question {
	list := Passages(level)
	p := list[r.Intn(len(list))]

	questions := make([]models.Question, 0, len(p.Questions))
	for i, q := range p.Questions {
		if count > 0 && i >= count {
			break
		}
		questions = append(questions, models.Question{
			Prompt:  q.Question,
			Passage: p.Title + "\n\n" + p.Text,
			Options: q.Options,
			Answer:  strconv.Itoa(q.Answer),
		})
	}
	return questions
}

// EnglishQuestions picks count distinct words from the level's vocabulary
func EnglishQuestions(r *rand.Rand, level, count int) []models.Question {
	words := Vocabulary(level)
	if count > len(words) {
		count = len(words)
	}

	questions := make([]models.Question, 0, count)
	for _, i := range r.Perm(len(words))[:count] {
		w := words[i]
		questions = append(questions, models.Question{
			Prompt: fmt.Sprintf("Wat is '%s' in het Engels?", w.Dutch),
			Answer: w.English,
		})
	}
	return questions
}

// Questions dispatches generation by category
func Questions(r *rand.Rand, category models.ExerciseCategory, level, count int) ([]models.Question, error) {
	if !ValidLevel(level) {
		return nil, fmt.Errorf("invalid level %d", level)
	}
	switch category {
	case models.CategoryMath:
		return MathQuestions(r, level, count), nil
	case models.CategoryReading:
		return ReadingQuestions(r, level, count), nil
	case models.CategoryEnglish:
		return EnglishQuestions(r, level, count), nil
	}
	return nil, fmt.Errorf("unknown category %q", category)
}
