package llm

import (
	"context"
	"fmt"
	"log"
	"strings"

	"maitje/internal/content"
	"maitje/internal/models"
)

var programSchema = mustSchema[models.ProgramContent]()

// DefaultPrompt is used when a developer has no active prompt version
const DefaultPrompt = `Je bent een ervaren leerkracht in het Nederlandse basisonderwijs.
Maak een weekprogramma van vijf schooldagen (maandag tot en met vrijdag) voor een kind.
Elke dag bevat oefeningen rekenen, begrijpend lezen en Engelse woordjes.
Gebruik korte zinnen, vrolijke voorbeelden en sluit aan bij het thema.
Houd de moeilijkheid passend bij het niveau: niet te makkelijk, niet te moeilijk.
Bij meerkeuzevragen is het antwoord de index (vanaf 0) van de juiste optie.`

const (
	defaultExercisesPerDay      = 3
	defaultQuestionsPerExercise = 5
)

// normalizeSettings fills in defaults for unset counts
func normalizeSettings(s models.GenerationSettings) models.GenerationSettings {
	if s.ExercisesPerDay <= 0 {
		s.ExercisesPerDay = defaultExercisesPerDay
	}
	if s.QuestionsPerExercise <= 0 {
		s.QuestionsPerExercise = defaultQuestionsPerExercise
	}
	if s.Theme == "" {
		s.Theme = "vrij thema"
	}
	return s
}

// BuildProgramPrompt combines the prompt text, the generation settings and
// the schema the reply must follow
func BuildProgramPrompt(prompt string, settings models.GenerationSettings) string {
	if strings.TrimSpace(prompt) == "" {
		prompt = DefaultPrompt
	}
	settings = normalizeSettings(settings)

	var b strings.Builder
	b.WriteString(strings.TrimSpace(prompt))
	b.WriteString("\n\nInstellingen:\n")
	fmt.Fprintf(&b, "- Niveau: %d (%s)\n", settings.Level, content.SchoolLevel(settings.Level))
	fmt.Fprintf(&b, "- Thema: %s\n", settings.Theme)
	if settings.Week > 0 {
		fmt.Fprintf(&b, "- Week: %d van %d\n", settings.Week, settings.Year)
	}
	fmt.Fprintf(&b, "- Oefeningen per dag: %d\n", settings.ExercisesPerDay)
	fmt.Fprintf(&b, "- Vragen per oefening: %d\n", settings.QuestionsPerExercise)
	b.WriteString("\nAntwoord uitsluitend met een JSON-object volgens dit schema, zonder uitleg:\n")
	b.WriteString(programSchema)
	return b.String()
}

// GenerateWeekProgram asks the model for a week program
func (g *Generator) GenerateWeekProgram(ctx context.Context, prompt string, settings models.GenerationSettings) (*models.ProgramContent, error) {
	var program models.ProgramContent
	if err := g.completeJSON(ctx, BuildProgramPrompt(prompt, settings), 0.7, &program); err != nil {
		return nil, err
	}

	if program.Theme == "" {
		program.Theme = settings.Theme
	}
	for i := range program.Days {
		if program.Days[i].Day == 0 {
			program.Days[i].Day = i + 1
		}
	}
	if err := program.Validate(false); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReply, err)
	}

	log.Printf("[INFO] generated week program with %d days for level %d", len(program.Days), settings.Level)
	return &program, nil
}
