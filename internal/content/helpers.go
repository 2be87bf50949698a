package content

// Helper is an assistant persona shown to the child for tips and encouragement
type Helper struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
}

var helpers = []Helper{
	{ID: "maai", Name: "Maai", Emoji: "🤖", Description: "Een vrolijke robot die je stap voor stap helpt met rekenen."},
	{ID: "olivia", Name: "Uil Olivia", Emoji: "🦉", Description: "Een slimme uil die van lezen houdt en je helpt met moeilijke woorden."},
	{ID: "dex", Name: "Draak Dex", Emoji: "🐉", Description: "Een stoere draak die Engels spreekt en je nieuwe woorden leert."},
	{ID: "fien", Name: "Vos Fien", Emoji: "🦊", Description: "Een snelle vos die je aanmoedigt als het even tegenzit."},
}

// Helpers returns all helper personas
func Helpers() []Helper {
	out := make([]Helper, len(helpers))
	copy(out, helpers)
	return out
}

// HelperFor picks the helper that fits an exercise category
func HelperFor(category string) Helper {
	switch category {
	case "reading":
		return helpers[1]
	case "english":
		return helpers[2]
	case "math":
		return helpers[0]
	}
	return helpers[3]
}

var encouragements = []string{
	"Goed bezig, ga zo door!",
	"Knap gedaan!",
	"Fouten maken mag, daar leer je van.",
	"Je bent er bijna!",
	"Wauw, wat ben jij slim!",
}

// Encouragement returns a message for the given correct/total ratio
func Encouragement(correct, total int) string {
	if total == 0 {
		return encouragements[0]
	}
	switch ratio := float64(correct) / float64(total); {
	case ratio == 1:
		return encouragements[4]
	case ratio >= 0.8:
		return encouragements[1]
	case ratio >= 0.5:
		return encouragements[3]
	default:
		return encouragements[2]
	}
}
