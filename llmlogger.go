package scitech

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// GenerationRequest identifies one generation run for the transcript
type GenerationRequest struct {
	ID    string
	Kind  string // "topics" or "content"
	Grade GradeLevel
	Topic *Topic
}

// LLMLogger writes the prompts and responses of one generation run to a file
type LLMLogger struct {
	file      *os.File
	mu        sync.Mutex
	requestID string
}

// NewLLMLogger creates a transcript file under dir. A nil logger with a nil
// error is returned when dir is empty; every method is safe on a nil logger.
func NewLLMLogger(dir string, req GenerationRequest) (*LLMLogger, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s-%s.log", req.Kind, req.ID))
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	logger := &LLMLogger{
		file:      file,
		requestID: req.ID,
	}

	logger.Logf("=== %s generation ===\n", req.Kind)
	logger.Logf("Request ID: %s\n", req.ID)
	logger.Logf("Grade: %s (%s)\n", req.Grade.Label, req.Grade.ID)
	if req.Topic != nil {
		logger.Logf("Topic: %s (%s)\n", req.Topic.Title, req.Topic.ID)
	}
	logger.Logf("Started: %s\n", time.Now().Format(time.RFC3339))
	logger.Logf("========================\n\n")

	return logger, nil
}

// Logf writes a timestamped entry
func (ll *LLMLogger) Logf(format string, args ...interface{}) {
	if ll == nil {
		return
	}
	ll.mu.Lock()
	defer ll.mu.Unlock()
	ll.writef(format, args...)
}

func (ll *LLMLogger) writef(format string, args ...interface{}) {
	if ll.file == nil {
		return
	}
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(ll.file, "[%s] %s", timestamp, fmt.Sprintf(format, args...))
	ll.file.Sync()
}

// LogLLMRequest logs a prompt
func (ll *LLMLogger) LogLLMRequest(module, prompt string) {
	ll.Logf("=== LLM REQUEST (%s) ===\n", module)
	ll.Logf("Prompt:\n%s\n", prompt)
	ll.Logf("=====================\n\n")
}

// LogLLMResponse logs the raw tool-call arguments
func (ll *LLMLogger) LogLLMResponse(module, response string) {
	ll.Logf("=== LLM RESPONSE (%s) ===\n", module)
	ll.Logf("Response:\n%s\n", response)
	ll.Logf("======================\n\n")
}

// LogOutcome logs how the checked result turned out
func (ll *LLMLogger) LogOutcome(outcome string) {
	ll.Logf("Outcome: %s\n", outcome)
}

// Close finishes the transcript
func (ll *LLMLogger) Close() error {
	if ll == nil {
		return nil
	}
	ll.mu.Lock()
	defer ll.mu.Unlock()

	if ll.file == nil {
		return nil
	}
	ll.writef("=== Generation Complete ===\n")
	ll.writef("Completed: %s\n", time.Now().Format(time.RFC3339))
	err := ll.file.Close()
	ll.file = nil
	return err
}
