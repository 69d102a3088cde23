package scitech

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	youtubeQueriesPerLesson = 3
	questionsPerLesson      = 5
)

// LessonMaker generates the learning unit of a topic
type LessonMaker struct {
	client ChatCompleter
	model  string
	log    *zap.SugaredLogger
}

// NewLessonMaker creates a lesson maker; client may be nil when no key is configured
func NewLessonMaker(client ChatCompleter, model string, log *zap.SugaredLogger) *LessonMaker {
	return &LessonMaker{
		client: client,
		model:  model,
		log:    log.With("service", "LessonMaker"),
	}
}

// GenerateContent asks the model for the introduction, demonstration, video
// queries and quiz of a topic
func (lm *LessonMaker) GenerateContent(ctx context.Context, grade GradeLevel, topic Topic, logger *LLMLogger) (*ContentData, error) {
	lm.log.Debugw("generating content", "grade", grade.ID, "topic", topic.ID)

	var content ContentData
	err := callTool(ctx, lm.client, lm.model, "LessonMaker",
		"You are an experienced science teacher writing learning units in Hebrew for Israeli students.",
		lm.buildPrompt(grade, topic),
		toolSpec{
			Name:        "submit_lesson",
			Description: "Submit the learning unit for the topic",
			Parameters:  contentSchema(),
		},
		logger, &content)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content for %s/%s: %w", grade.ID, topic.ID, err)
	}

	lm.log.Debugw("generated content", "grade", grade.ID, "topic", topic.ID, "questions", len(content.Quiz))
	return &content, nil
}

func (lm *LessonMaker) buildPrompt(grade GradeLevel, topic Topic) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Create a comprehensive learning unit for the topic \"%s\" for students in %s.\n", topic.Title, grade.Label))
	if topic.Description != "" {
		sb.WriteString(fmt.Sprintf("Topic description: %s\n", topic.Description))
	}
	sb.WriteString("The content must be in Hebrew.\n\n")
	sb.WriteString(fmt.Sprintf("Include an introduction, a demonstration idea, %d youtube search queries, and a %d-question quiz.\n\n", youtubeQueriesPerLesson, questionsPerLesson))
	sb.WriteString("Requirements:\n")
	sb.WriteString("- The introduction is a scientific explanation suited to the grade level (about 150 words)\n")
	sb.WriteString("- The demonstration is a simple experiment or a real-world phenomenon the student can observe\n")
	sb.WriteString("- Visual prompts are short English descriptions for image generation\n")
	sb.WriteString("- Each quiz question has 4 options and exactly one correct answer\n")
	sb.WriteString("- correctIndex is the 0-based index of the correct option\n")
	sb.WriteString("- Each explanation says why the answer is correct\n")
	sb.WriteString("- Use the submit_lesson tool to return the unit\n")

	return sb.String()
}

func contentSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"topicTitle":   stringProp(""),
			"introduction": stringProp("A comprehensive scientific explanation suitable for the specific grade level (approx 150 words)."),
			"demonstration": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"title":        stringProp(""),
					"description":  stringProp("Instructions on how to perform a simple experiment or a description of a real-world phenomenon."),
					"visualPrompt": stringProp("A short English prompt to generate a placeholder image for this demo."),
				},
				"required": []string{"title", "description", "visualPrompt"},
			},
			"youtubeQueries": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": fmt.Sprintf("%d specific search queries in Hebrew to find educational videos on YouTube about this topic.", youtubeQueriesPerLesson),
			},
			"quiz": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"question": stringProp(""),
						"options": map[string]interface{}{
							"type":  "array",
							"items": map[string]interface{}{"type": "string"},
						},
						"correctIndex": map[string]interface{}{
							"type":        "integer",
							"description": "0-based index of the correct option",
						},
						"explanation": stringProp(""),
					},
					"required": []string{"question", "options", "correctIndex", "explanation"},
				},
				"description": fmt.Sprintf("%d multiple choice questions.", questionsPerLesson),
			},
		},
		"required": []string{"topicTitle", "introduction", "demonstration", "youtubeQueries", "quiz"},
	}
}
