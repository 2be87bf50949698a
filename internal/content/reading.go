package content

// ReadingQuestion is a multiple choice question about a passage
type ReadingQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   int      `json:"answer"`
}

// ReadingPassage is a short Dutch text with questions
type ReadingPassage struct {
	Title     string            `json:"title"`
	Text      string            `json:"text"`
	Questions []ReadingQuestion `json:"questions"`
}

var passages = [3][]ReadingPassage{
	{
		{
			Title: "Bas en de bal",
			Text:  "Bas heeft een rode bal. Hij speelt in de tuin. De bal rolt naar de buren. Tante Mies geeft de bal terug. Bas zegt: dank u wel!",
			Questions: []ReadingQuestion{
				{Question: "Welke kleur heeft de bal?", Options: []string{"blauw", "rood", "geel"}, Answer: 1},
				{Question: "Waar speelt Bas?", Options: []string{"in de tuin", "op school", "in het bos"}, Answer: 0},
				{Question: "Wie geeft de bal terug?", Options: []string{"mama", "de juf", "tante Mies"}, Answer: 2},
			},
		},
		{
			Title: "De kat op het dak",
			Text:  "Poes Mimi zit op het dak. Ze durft niet naar beneden. Papa pakt de ladder. Hij tilt Mimi op. Nu is Mimi weer blij.",
			Questions: []ReadingQuestion{
				{Question: "Waar zit Mimi?", Options: []string{"op het dak", "in de boom", "onder de tafel"}, Answer: 0},
				{Question: "Wat pakt papa?", Options: []string{"een stoel", "de ladder", "een touw"}, Answer: 1},
				{Question: "Hoe voelt Mimi zich aan het eind?", Options: []string{"boos", "bang", "blij"}, Answer: 2},
			},
		},
	},
	{
		{
			Title: "Het schoolreisje",
			Text:  "Groep vijf gaat op schoolreisje naar de dierentuin. De bus vertrekt om half negen. Lotte wil graag de olifanten zien. Bij het apenhuis eten ze hun boterhammen. Om drie uur rijden ze moe maar tevreden terug naar school.",
			Questions: []ReadingQuestion{
				{Question: "Waar gaat groep vijf naartoe?", Options: []string{"het strand", "de dierentuin", "een museum"}, Answer: 1},
				{Question: "Hoe laat vertrekt de bus?", Options: []string{"half negen", "negen uur", "drie uur"}, Answer: 0},
				{Question: "Waar eten ze hun boterhammen?", Options: []string{"bij de olifanten", "in de bus", "bij het apenhuis"}, Answer: 2},
			},
		},
		{
			Title: "De moestuin",
			Text:  "Opa heeft een moestuin achter zijn huis. Samen met Noor zaait hij wortels en bonen. Elke dag geeft Noor de plantjes water. Na zes weken kunnen ze de eerste bonen plukken. Oma kookt er een lekkere soep van.",
			Questions: []ReadingQuestion{
				{Question: "Wat zaaien opa en Noor?", Options: []string{"wortels en bonen", "tomaten en sla", "bloemen"}, Answer: 0},
				{Question: "Wat doet Noor elke dag?", Options: []string{"onkruid wieden", "water geven", "plukken"}, Answer: 1},
				{Question: "Wat maakt oma van de bonen?", Options: []string{"taart", "salade", "soep"}, Answer: 2},
			},
		},
	},
	{
		{
			Title: "De Afsluitdijk",
			Text:  "De Afsluitdijk werd in 1932 voltooid en scheidt de Waddenzee van het IJsselmeer. Voor de bouw was de Zuiderzee een gevaarlijke binnenzee die vaak overstromingen veroorzaakte. Door de dijk werd het water zoet en kon men later nieuwe polders aanleggen. Tegenwoordig wordt de dijk versterkt omdat de zeespiegel stijgt.",
			Questions: []ReadingQuestion{
				{Question: "Wanneer werd de Afsluitdijk voltooid?", Options: []string{"1953", "1932", "1900"}, Answer: 1},
				{Question: "Wat gebeurde er met het water achter de dijk?", Options: []string{"het werd zoet", "het werd zouter", "het verdween"}, Answer: 0},
				{Question: "Waarom wordt de dijk nu versterkt?", Options: []string{"er komen meer auto's", "hij is te smal", "de zeespiegel stijgt"}, Answer: 2},
			},
		},
		{
			Title: "Vleermuizen",
			Text:  "Vleermuizen zijn de enige zoogdieren die echt kunnen vliegen. Ze jagen 's nachts op insecten en gebruiken daarbij echolocatie: ze maken hoge geluiden en luisteren naar de echo. Zo weten ze precies waar hun prooi is, zelfs in het donker. In de winter houden de meeste vleermuizen in Nederland een winterslaap.",
			Questions: []ReadingQuestion{
				{Question: "Wat eten vleermuizen vooral?", Options: []string{"fruit", "insecten", "vissen"}, Answer: 1},
				{Question: "Hoe vinden vleermuizen hun prooi in het donker?", Options: []string{"met echolocatie", "met hun neus", "met maanlicht"}, Answer: 0},
				{Question: "Wat doen de meeste vleermuizen in de winter?", Options: []string{"ze trekken naar het zuiden", "ze jagen overdag", "ze houden een winterslaap"}, Answer: 2},
			},
		},
	},
}

// Passages returns the reading passages for a level
func Passages(level int) []ReadingPassage {
	return passages[tier(level)]
}
