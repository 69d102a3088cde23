package scitech

import "strings"

var fallbackTopics = []Topic{
	{
		ID:           "states-of-matter",
		Title:        "מצבי צבירה",
		Description:  "מוצק, נוזל וגז: איך החומר משנה את צורתו כשמחממים או מקררים אותו.",
		Icon:         "🧊",
		VisualPrompt: "Ice cube melting into water and evaporating into steam",
	},
	{
		ID:           "solar-system",
		Title:        "מערכת השמש",
		Description:  "השמש, כוכבי הלכת והירח, ומה גורם ליום, ללילה ולעונות השנה.",
		Icon:         "🪐",
		VisualPrompt: "The solar system with the sun and planets",
	},
	{
		ID:           "electric-circuits",
		Title:        "מעגלים חשמליים",
		Description:  "סוללה, חוטים ונורה: איך זורם זרם חשמלי ומה סוגר מעגל.",
		Icon:         "💡",
		VisualPrompt: "A simple electric circuit with a battery and a light bulb",
	},
	{
		ID:           "living-cell",
		Title:        "התא החי",
		Description:  "אבן הבניין של כל היצורים החיים ומה קורה בתוכו.",
		Icon:         "🔬",
		VisualPrompt: "A microscope on a lab table next to a diagram of a cell",
	},
}

// FallbackTopics returns the static topic list shown when generation fails
func FallbackTopics() []Topic {
	out := make([]Topic, len(fallbackTopics))
	copy(out, fallbackTopics)
	return out
}

// FilterTopics keeps the topics whose title or description contains term,
// ignoring case. An empty term keeps everything.
func FilterTopics(topics []Topic, term string) []Topic {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return topics
	}

	var out []Topic
	for _, t := range topics {
		if strings.Contains(strings.ToLower(t.Title), term) || strings.Contains(strings.ToLower(t.Description), term) {
			out = append(out, t)
		}
	}
	return out
}

// FindTopic returns the topic with the given id
func FindTopic(topics []Topic, id string) (Topic, bool) {
	for _, t := range topics {
		if t.ID == id {
			return t, true
		}
	}
	return Topic{}, false
}
