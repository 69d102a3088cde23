package scitech

import (
	"context"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// fakeChat answers every request with a call to the requested tool
type fakeChat struct {
	mu       sync.Mutex
	args     map[string]string // tool name -> arguments
	err      error
	release  chan struct{} // when set, calls block until it is closed
	calls    map[string]int
	requests []openai.ChatCompletionRequest
}

func newFakeChat(args map[string]string) *fakeChat {
	return &fakeChat{args: args, calls: make(map[string]int)}
}

func (f *fakeChat) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	name := req.Tools[0].Function.Name

	f.mu.Lock()
	f.calls[name]++
	f.requests = append(f.requests, req)
	release := f.release
	f.mu.Unlock()

	if release != nil {
		<-release
	}
	if err := ctx.Err(); err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}

	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Role: openai.ChatMessageRoleAssistant,
				ToolCalls: []openai.ToolCall{{
					Type:     openai.ToolTypeFunction,
					Function: openai.FunctionCall{Name: name, Arguments: f.args[name]},
				}},
			},
		}},
	}, nil
}

func (f *fakeChat) callCount(tool string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[tool]
}

// memCache is an in-memory Cache
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.ttls[key] = ttl
	return nil
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

func (c *memCache) ttl(key string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttls[key]
}

type recordedResults struct {
	mu      sync.Mutex
	results []QuizResult
}

func (r *recordedResults) CreateQuizResult(_ context.Context, result *QuizResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, *result)
	return nil
}

const testTopicsArgs = `{"topics": [
	{"id": "solar-system", "title": "מערכת השמש", "description": "כוכבי לכת", "icon": "🪐", "visualPrompt": "planets"},
	{"id": "Electric Circuits", "title": "מעגלים חשמליים", "description": "סוללה ונורה", "visualPrompt": "battery and bulb"},
	{"id": "empty", "title": " "}
]}`

const testContentArgs = `{
	"introduction": "השמש היא כוכב שסביבו נעים כוכבי הלכת.",
	"demonstration": {"title": "דגם של מערכת השמש", "description": "בונים דגם מכדורים", "visualPrompt": "model of the solar system"},
	"youtubeQueries": ["מערכת השמש לילדים", "solar system"],
	"quiz": [
		{"question": "מה נמצא במרכז מערכת השמש?", "options": ["הירח", "השמש", "כדור הארץ", "מאדים"], "correctIndex": 1, "explanation": "השמש במרכז."},
		{"question": "כמה כוכבי לכת יש?", "options": ["7", "8", "9", "10"], "correctIndex": 1, "explanation": "שמונה."}
	]
}`
