package scitech

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const topicsPerGrade = 8

// TopicMaker generates the topic list of a grade
type TopicMaker struct {
	client ChatCompleter
	model  string
	log    *zap.SugaredLogger
}

// NewTopicMaker creates a topic maker; client may be nil when no key is configured
func NewTopicMaker(client ChatCompleter, model string, log *zap.SugaredLogger) *TopicMaker {
	return &TopicMaker{
		client: client,
		model:  model,
		log:    log.With("service", "TopicMaker"),
	}
}

// GenerateTopics asks the model for the key science and technology topics of a grade
func (tm *TopicMaker) GenerateTopics(ctx context.Context, grade GradeLevel, logger *LLMLogger) ([]Topic, error) {
	tm.log.Debugw("generating topics", "grade", grade.ID, "count", topicsPerGrade)

	var toolArgs struct {
		Topics []Topic `json:"topics"`
	}
	err := callTool(ctx, tm.client, tm.model, "TopicMaker",
		"You are a curriculum expert for science and technology education in Israel. Write all student-facing text in Hebrew.",
		tm.buildPrompt(grade),
		toolSpec{
			Name:        "submit_topics",
			Description: "Submit the topic list for the grade",
			Parameters:  topicListSchema(),
		},
		logger, &toolArgs)
	if err != nil {
		return nil, fmt.Errorf("failed to generate topics for %s: %w", grade.ID, err)
	}

	tm.log.Debugw("generated topics", "grade", grade.ID, "count", len(toolArgs.Topics))
	return toolArgs.Topics, nil
}

func (tm *TopicMaker) buildPrompt(grade GradeLevel) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Generate a list of %d key Science and Technology topics for %s according to the Israeli Ministry of Education curriculum.\n", topicsPerGrade, grade.Label))
	sb.WriteString("Focus on core scientific concepts.\n\n")
	sb.WriteString("Requirements:\n")
	sb.WriteString("- Titles and descriptions must be in Hebrew\n")
	sb.WriteString("- Each description is one or two sentences a student of this grade understands\n")
	sb.WriteString("- id is a short unique latin slug\n")
	sb.WriteString("- icon is a single emoji representing the topic\n")
	sb.WriteString("- visualPrompt is a concise English visual description for image generation (e.g. 'A microscope on a lab table')\n")
	sb.WriteString("- Use the submit_topics tool to return the list\n")

	return sb.String()
}

func topicListSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"topics": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"id":           stringProp(""),
						"title":        stringProp(""),
						"description":  stringProp(""),
						"icon":         stringProp("A simple emoji representing the topic"),
						"visualPrompt": stringProp("A concise English visual description of the topic for image generation"),
					},
					"required": []string{"id", "title", "description", "icon", "visualPrompt"},
				},
			},
		},
		"required": []string{"topics"},
	}
}
