package content

// FAQEntry is one question on the parent help page
type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

var faq = []FAQEntry{
	{
		Question: "Voor welke leeftijd is mAItje bedoeld?",
		Answer:   "mAItje is gemaakt voor kinderen van 6 tot en met 12 jaar, van groep 3 tot en met groep 8.",
	},
	{
		Question: "Hoe worden de oefeningen gemaakt?",
		Answer:   "Rekensommen worden automatisch gemaakt op het niveau van je kind. Leesteksten en woordenlijsten zijn met de hand geschreven. Weekprogramma's worden met behulp van AI samengesteld en door ons gecontroleerd.",
	},
	{
		Question: "Kan ik meerdere kinderen toevoegen?",
		Answer:   "Ja. Je kunt zoveel kinderen toevoegen als je wilt en één kind als hoofdprofiel instellen.",
	},
	{
		Question: "Kan een tweede ouder meekijken?",
		Answer:   "Ja. Via 'Ouder uitnodigen' stuur je een koppelcode. De andere ouder voert die code in en ziet daarna dezelfde voortgang.",
	},
	{
		Question: "Wat gebeurt er met de gegevens van mijn kind?",
		Answer:   "We bewaren alleen de naam, het niveau en de oefenresultaten. Er worden geen gegevens gedeeld met adverteerders.",
	},
}

// FAQ returns the FAQ entries
func FAQ() []FAQEntry {
	out := make([]FAQEntry, len(faq))
	copy(out, faq)
	return out
}
