package scitech

import (
	"errors"
	"strings"
	"testing"
)

func TestCheckTopicsNormalizesIDs(t *testing.T) {
	topics := CheckTopics([]Topic{
		{ID: "Solar System!", Title: " מערכת השמש ", Description: "כוכבי לכת"},
		{ID: "מצבי-צבירה", Title: "מצבי צבירה", VisualPrompt: "Ice melting into water"},
		{ID: "solar-system", Title: "השמש", Icon: "☀️"},
		{ID: "x", Title: "  "},
	})

	if len(topics) != 3 {
		t.Fatalf("want 3 topics, got %d: %+v", len(topics), topics)
	}
	wantIDs := []string{"solar-system", "ice-melting-into-water", "solar-system-2"}
	for i, want := range wantIDs {
		if topics[i].ID != want {
			t.Fatalf("topic %d id: want=%q got=%q", i, want, topics[i].ID)
		}
	}
	if topics[0].Title != "מערכת השמש" {
		t.Fatalf("title not trimmed: %q", topics[0].Title)
	}
	if topics[0].Icon != defaultTopicIcon {
		t.Fatalf("missing icon not filled: %q", topics[0].Icon)
	}
	if topics[2].Icon != "☀️" {
		t.Fatalf("icon overwritten: %q", topics[2].Icon)
	}
}

func TestCheckTopicsGeneratesIDWhenNothingIsASCII(t *testing.T) {
	topics := CheckTopics([]Topic{{ID: "חשמל", Title: "חשמל"}})
	if len(topics) != 1 {
		t.Fatalf("want 1 topic, got %d", len(topics))
	}
	if !strings.HasPrefix(topics[0].ID, "topic-") || len(topics[0].ID) != len("topic-")+8 {
		t.Fatalf("unexpected generated id %q", topics[0].ID)
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Solar System":            "solar-system",
		"  --Electric  Circuits":  "electric-circuits",
		"H2O & CO2!":              "h2o-co2",
		"כוכבים":                  "",
		strings.Repeat("ab ", 40): strings.TrimRight(strings.Repeat("ab-", 16), "-"),
	}
	for in, want := range cases {
		if got := slugify(in); got != want {
			t.Fatalf("slugify(%q): want=%q got=%q", in, want, got)
		}
	}
}

func TestCheckContentRejectsMissingIntroduction(t *testing.T) {
	if _, err := CheckContent(nil); !errors.Is(err, ErrInvalidContent) {
		t.Fatalf("nil content: expected ErrInvalidContent, got %v", err)
	}
	if _, err := CheckContent(&ContentData{Introduction: "  "}); !errors.Is(err, ErrInvalidContent) {
		t.Fatalf("blank introduction: expected ErrInvalidContent, got %v", err)
	}
}

func TestCheckContentRejectsMissingDemonstration(t *testing.T) {
	raw := &ContentData{Introduction: "השמש היא כוכב.", Demonstration: Demonstration{Title: " ", VisualPrompt: "sun"}}
	if _, err := CheckContent(raw); !errors.Is(err, ErrInvalidContent) {
		t.Fatalf("empty demonstration: expected ErrInvalidContent, got %v", err)
	}

	content, err := CheckContent(&ContentData{Introduction: "השמש היא כוכב.", Demonstration: Demonstration{Description: "מדליקים פנס"}})
	if err != nil {
		t.Fatalf("CheckContent: %v", err)
	}
	if content.Demonstration.VisualPrompt != "מדליקים פנס" {
		t.Fatalf("visual prompt should fall back to the description, got %q", content.Demonstration.VisualPrompt)
	}
}

func TestCheckContentCleansLesson(t *testing.T) {
	raw := &ContentData{
		TopicTitle:     " מערכת השמש ",
		Introduction:   "השמש היא כוכב.",
		Demonstration:  Demonstration{Title: "Planet model", Description: "בונים דגם"},
		YoutubeQueries: []string{"solar system for kids", " ", "planets song"},
		Quiz: []QuizQuestion{
			{Question: "מה במרכז מערכת השמש?", Options: []string{"הירח", "", "השמש"}, CorrectIndex: 2},
			{Question: "מה  במרכז מערכת השמש?", Options: []string{"השמש", "כדור הארץ"}, CorrectIndex: 0},
			{Question: "", Options: []string{"א", "ב"}, CorrectIndex: 0},
			{Question: "שאלה עם אינדקס שגוי", Options: []string{"א", "ב"}, CorrectIndex: 2},
			{Question: "שאלה שהתשובה שלה ריקה", Options: []string{"א", " "}, CorrectIndex: 1},
			{Question: "שאלה עם אפשרות אחת", Options: []string{"א", ""}, CorrectIndex: 0},
			{Question: "כמה כוכבי לכת יש?", Options: []string{"8", "9"}, CorrectIndex: 0},
		},
	}

	content, err := CheckContent(raw)
	if err != nil {
		t.Fatalf("CheckContent: %v", err)
	}
	if content.TopicTitle != "מערכת השמש" {
		t.Fatalf("topic title not trimmed: %q", content.TopicTitle)
	}
	if content.Demonstration.VisualPrompt != "Planet model" {
		t.Fatalf("visual prompt should fall back to the title, got %q", content.Demonstration.VisualPrompt)
	}
	if len(content.YoutubeQueries) != 2 {
		t.Fatalf("want 2 queries, got %v", content.YoutubeQueries)
	}
	if len(content.Quiz) != 2 {
		t.Fatalf("want 2 questions, got %d: %+v", len(content.Quiz), content.Quiz)
	}

	first := content.Quiz[0]
	if len(first.Options) != 2 || first.CorrectIndex != 1 || first.Options[first.CorrectIndex] != "השמש" {
		t.Fatalf("correct index not remapped: %+v", first)
	}
	if content.Quiz[1].Question != "כמה כוכבי לכת יש?" {
		t.Fatalf("unexpected second question %q", content.Quiz[1].Question)
	}
	if len(raw.Quiz) != 7 {
		t.Fatalf("input was modified")
	}
}
