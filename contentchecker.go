package scitech

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidContent is returned when generated content cannot be rendered
var ErrInvalidContent = errors.New("invalid content")

const (
	defaultTopicIcon = "🧪"
	maxSlugLen       = 48
)

// CheckTopics cleans a generated topic list so every entry can be rendered and
// addressed by a unique URL-safe id
func CheckTopics(topics []Topic) []Topic {
	out := make([]Topic, 0, len(topics))
	seen := make(map[string]bool, len(topics))

	for _, t := range topics {
		t.Title = strings.TrimSpace(t.Title)
		t.Description = strings.TrimSpace(t.Description)
		t.Icon = strings.TrimSpace(t.Icon)
		t.VisualPrompt = strings.TrimSpace(t.VisualPrompt)
		if t.Title == "" {
			continue
		}

		id := slugify(t.ID)
		if id == "" {
			id = slugify(t.VisualPrompt)
		}
		if id == "" {
			id = "topic-" + uuid.NewString()[:8]
		}
		base := id
		for n := 2; seen[id]; n++ {
			id = fmt.Sprintf("%s-%d", base, n)
		}
		seen[id] = true
		t.ID = id

		if t.Icon == "" {
			t.Icon = defaultTopicIcon
		}
		out = append(out, t)
	}
	return out
}

// CheckContent cleans generated lesson content. Quiz questions that cannot be
// answered are dropped; content without an introduction or a demonstration
// is rejected.
func CheckContent(content *ContentData) (*ContentData, error) {
	if content == nil {
		return nil, fmt.Errorf("%w: empty response", ErrInvalidContent)
	}

	c := *content
	c.TopicTitle = strings.TrimSpace(c.TopicTitle)
	c.Introduction = strings.TrimSpace(c.Introduction)
	if c.Introduction == "" {
		return nil, fmt.Errorf("%w: missing introduction", ErrInvalidContent)
	}

	c.Demonstration.Title = strings.TrimSpace(c.Demonstration.Title)
	c.Demonstration.Description = strings.TrimSpace(c.Demonstration.Description)
	c.Demonstration.VisualPrompt = strings.TrimSpace(c.Demonstration.VisualPrompt)
	if c.Demonstration.Title == "" && c.Demonstration.Description == "" {
		return nil, fmt.Errorf("%w: missing demonstration", ErrInvalidContent)
	}
	if c.Demonstration.VisualPrompt == "" {
		c.Demonstration.VisualPrompt = c.Demonstration.Title
	}
	if c.Demonstration.VisualPrompt == "" {
		c.Demonstration.VisualPrompt = c.Demonstration.Description
	}

	queries := make([]string, 0, len(c.YoutubeQueries))
	for _, q := range c.YoutubeQueries {
		if q = strings.TrimSpace(q); q != "" {
			queries = append(queries, q)
		}
	}
	c.YoutubeQueries = queries

	quiz := make([]QuizQuestion, 0, len(c.Quiz))
	asked := make(map[string]bool, len(c.Quiz))
	for _, q := range c.Quiz {
		checked, ok := checkQuestion(q)
		if !ok {
			continue
		}
		// the model sometimes repeats a question with reworded options
		key := strings.Join(strings.Fields(strings.ToLower(checked.Question)), " ")
		if asked[key] {
			continue
		}
		asked[key] = true
		quiz = append(quiz, checked)
	}
	c.Quiz = quiz

	return &c, nil
}

// checkQuestion trims a question and drops empty options, keeping the correct
// index pointing at the same option
func checkQuestion(q QuizQuestion) (QuizQuestion, bool) {
	q.Question = strings.TrimSpace(q.Question)
	q.Explanation = strings.TrimSpace(q.Explanation)
	if q.Question == "" || q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return q, false
	}

	options := make([]string, 0, len(q.Options))
	correct := -1
	for i, o := range q.Options {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if i == q.CorrectIndex {
			correct = len(options)
		}
		options = append(options, o)
	}
	if correct < 0 || len(options) < 2 {
		return q, false
	}

	q.Options = options
	q.CorrectIndex = correct
	return q, true
}

func slugify(s string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			dash = false
		case sb.Len() > 0 && !dash:
			sb.WriteByte('-')
			dash = true
		}
	}
	slug := sb.String()
	if len(slug) > maxSlugLen {
		slug = slug[:maxSlugLen]
	}
	return strings.TrimRight(slug, "-")
}
