package content

// VocabWord is a Dutch word with its English translation
type VocabWord struct {
	Dutch   string `json:"dutch"`
	English string `json:"english"`
}

var vocabulary = [3][]VocabWord{
	{
		{"hond", "dog"}, {"kat", "cat"}, {"huis", "house"}, {"boom", "tree"},
		{"rood", "red"}, {"blauw", "blue"}, {"appel", "apple"}, {"bal", "ball"},
		{"vis", "fish"}, {"zon", "sun"}, {"boek", "book"}, {"melk", "milk"},
		{"een", "one"}, {"twee", "two"}, {"drie", "three"}, {"moeder", "mother"},
	},
	{
		{"school", "school"}, {"vriend", "friend"}, {"fiets", "bike"}, {"water", "water"},
		{"raam", "window"}, {"deur", "door"}, {"tafel", "table"}, {"stoel", "chair"},
		{"vogel", "bird"}, {"paard", "horse"}, {"groen", "green"}, {"geel", "yellow"},
		{"maandag", "monday"}, {"zomer", "summer"}, {"winter", "winter"}, {"brood", "bread"},
	},
	{
		{"gebouw", "building"}, {"wolk", "cloud"}, {"ziekenhuis", "hospital"}, {"bibliotheek", "library"},
		{"vlinder", "butterfly"}, {"aardbei", "strawberry"}, {"bliksem", "lightning"}, {"woestijn", "desert"},
		{"eiland", "island"}, {"verjaardag", "birthday"}, {"wetenschap", "science"}, {"geschiedenis", "history"},
		{"dapper", "brave"}, {"moeilijk", "difficult"}, {"belangrijk", "important"}, {"vandaag", "today"},
	},
}

// Vocabulary returns the word list for a level
func Vocabulary(level int) []VocabWord {
	return vocabulary[tier(level)]
}
