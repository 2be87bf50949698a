package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"maitje/internal/models"
)

var analysisSchema = mustSchema[models.FeedbackAnalysis]()

const analysisPrompt = `Je helpt een ontwikkelaar een prompt te verbeteren die weekprogramma's
voor basisschoolkinderen genereert. Hieronder staan de gebruikte prompt, het
gegenereerde programma en de beoordelingen per vraag.

Vat samen wat goed en wat minder goed ging en stel een verbeterde versie van de
prompt voor. Schrijf in het Nederlands.`

// BuildAnalysisPrompt describes the prompt, program and ratings for analysis
func BuildAnalysisPrompt(prompt string, program models.ProgramContent, feedback []models.QuestionFeedback) string {
	var b strings.Builder
	b.WriteString(analysisPrompt)
	b.WriteString("\n\n## Prompt\n")
	b.WriteString(strings.TrimSpace(prompt))

	b.WriteString("\n\n## Programma\n")
	if data, err := json.Marshal(program); err == nil {
		b.Write(data)
	}

	b.WriteString("\n\n## Beoordelingen\n")
	for _, f := range feedback {
		fmt.Fprintf(&b, "- dag %d, oefening %d, vraag %d", f.DayIndex+1, f.ExerciseIndex+1, f.QuestionIndex+1)
		if q := questionText(program, f); q != "" {
			fmt.Fprintf(&b, " (%q)", q)
		}
		b.WriteString(":")
		if f.Thumbs != "" {
			fmt.Fprintf(&b, " duim=%s", f.Thumbs)
		}
		if f.Difficulty != "" {
			fmt.Fprintf(&b, " moeilijkheid=%s", f.Difficulty)
		}
		if f.Clarity != "" {
			fmt.Fprintf(&b, " duidelijkheid=%s", f.Clarity)
		}
		if f.Comment != "" {
			fmt.Fprintf(&b, " opmerking=%q", f.Comment)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nAntwoord uitsluitend met een JSON-object volgens dit schema:\n")
	b.WriteString(analysisSchema)
	return b.String()
}

func questionText(program models.ProgramContent, f models.QuestionFeedback) string {
	if !program.HasQuestion(f.DayIndex, f.ExerciseIndex, f.QuestionIndex) {
		return ""
	}
	return program.Days[f.DayIndex].Exercises[f.ExerciseIndex].Questions[f.QuestionIndex].Question
}

// AnalyzeFeedback asks the model to review rated questions and propose a better prompt
func (g *Generator) AnalyzeFeedback(ctx context.Context, prompt string, program models.ProgramContent, feedback []models.QuestionFeedback) (*models.FeedbackAnalysis, error) {
	var analysis models.FeedbackAnalysis
	if err := g.completeJSON(ctx, BuildAnalysisPrompt(prompt, program, feedback), 0.3, &analysis); err != nil {
		return nil, err
	}
	if strings.TrimSpace(analysis.Analysis) == "" {
		return nil, fmt.Errorf("%w: empty analysis", ErrInvalidReply)
	}
	return &analysis, nil
}
