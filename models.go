package scitech

import "time"

// GradeLevel is a school-year grouping used to scope topic generation
type GradeLevel struct {
	ID        string `json:"id" yaml:"id"`
	Label     string `json:"label" yaml:"label"`
	Color     string `json:"color" yaml:"color"`           // grade button styling
	CardTheme string `json:"card_theme" yaml:"card_theme"` // topic card styling
}

// Topic is a single subject card shown on the topic explorer
type Topic struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Icon         string `json:"icon,omitempty"`
	VisualPrompt string `json:"visualPrompt,omitempty"` // English prompt for image generation
}

// QuizQuestion is one multiple choice question of a lesson quiz
type QuizQuestion struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"` // 0-based
	Explanation  string   `json:"explanation"`
}

// Demonstration describes a simple experiment or a real-world phenomenon
type Demonstration struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	VisualPrompt string `json:"visualPrompt"`
}

// ContentData is the generated body of a lesson for one topic
type ContentData struct {
	TopicTitle     string         `json:"topicTitle"`
	Introduction   string         `json:"introduction"`
	Demonstration  Demonstration  `json:"demonstration"`
	YoutubeQueries []string       `json:"youtubeQueries"`
	Quiz           []QuizQuestion `json:"quiz"`
}

// QuizResult is a finished quiz, kept for history
type QuizResult struct {
	ID         string    `json:"id"`
	GradeID    string    `json:"grade_id"`
	TopicID    string    `json:"topic_id"`
	TopicTitle string    `json:"topic_title"`
	Score      int       `json:"score"`
	MaxScore   int       `json:"max_score"`
	CreatedAt  time.Time `json:"created_at"`
}
