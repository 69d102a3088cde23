package scitech

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	defaultGenerateTimeout = 2 * time.Minute
	fallbackTTL            = 5 * time.Minute
)

// ResultRecorder stores finished quizzes
type ResultRecorder interface {
	CreateQuizResult(ctx context.Context, result *QuizResult) error
}

// LibraryConfig wires a Library. Only Client may be nil, in which case every
// generation fails and the fallbacks are served.
type LibraryConfig struct {
	Client          ChatCompleter
	Model           string
	Cache           Cache
	Results         ResultRecorder
	CacheTTL        time.Duration
	GenerateTimeout time.Duration
	LLMLogDir       string
}

// Library serves topics and lesson content: from the cache when possible,
// otherwise generated, checked and cached. Generation failures degrade to the
// fallback topic list or to no content.
type Library struct {
	topics    *TopicMaker
	lessons   *LessonMaker
	cache     Cache
	results   ResultRecorder
	ttl       time.Duration
	timeout   time.Duration
	llmLogDir string
	group     singleflight.Group
	log       *zap.SugaredLogger
}

// NewLibrary creates a library
func NewLibrary(cfg LibraryConfig, log *zap.SugaredLogger) *Library {
	timeout := cfg.GenerateTimeout
	if timeout <= 0 {
		timeout = defaultGenerateTimeout
	}
	return &Library{
		topics:    NewTopicMaker(cfg.Client, cfg.Model, log),
		lessons:   NewLessonMaker(cfg.Client, cfg.Model, log),
		cache:     cfg.Cache,
		results:   cfg.Results,
		ttl:       cfg.CacheTTL,
		timeout:   timeout,
		llmLogDir: cfg.LLMLogDir,
		log:       log.With("service", "Library"),
	}
}

// Topics returns the topic list of a grade, or the fallback list when it
// cannot be generated. After a failure the fallback list is served for
// fallbackTTL before generation is tried again.
func (l *Library) Topics(ctx context.Context, grade GradeLevel) []Topic {
	var topics []Topic
	if l.fromCache(ctx, topicsKey(grade), &topics) && len(topics) > 0 {
		return topics
	}
	var degraded bool
	if l.fromCache(ctx, fallbackKey(grade), &degraded) && degraded {
		return FallbackTopics()
	}

	topics, err := l.sharedTopics(ctx, grade)
	if err != nil {
		l.log.Warnw("serving fallback topics", "grade", grade.ID, "error", err)
		l.toCache(ctx, fallbackKey(grade), true, fallbackTTL)
		return FallbackTopics()
	}
	return topics
}

// LoadTopics returns the cached or generated topic list of a grade and
// reports generation failures instead of falling back
func (l *Library) LoadTopics(ctx context.Context, grade GradeLevel) ([]Topic, error) {
	var topics []Topic
	if l.fromCache(ctx, topicsKey(grade), &topics) && len(topics) > 0 {
		return topics, nil
	}
	return l.sharedTopics(ctx, grade)
}

func (l *Library) sharedTopics(ctx context.Context, grade GradeLevel) ([]Topic, error) {
	v, err, shared := l.group.Do(topicsKey(grade), func() (interface{}, error) {
		return l.generateTopics(ctx, grade)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		l.log.Debugw("shared topic generation", "grade", grade.ID)
	}
	return v.([]Topic), nil
}

// Topic finds one topic of a grade. Fallback ids stay valid after generation
// recovers so a lesson opened from the fallback list keeps working.
func (l *Library) Topic(ctx context.Context, grade GradeLevel, id string) (Topic, bool) {
	if topic, ok := FindTopic(l.Topics(ctx, grade), id); ok {
		return topic, true
	}
	return FindTopic(FallbackTopics(), id)
}

// Content returns the lesson of a topic, or nil when it cannot be generated
func (l *Library) Content(ctx context.Context, grade GradeLevel, topic Topic) *ContentData {
	key := contentKey(grade, topic.ID)

	var content ContentData
	if l.fromCache(ctx, key, &content) {
		return &content
	}

	v, err, _ := l.group.Do(key, func() (interface{}, error) {
		return l.generateContent(ctx, grade, topic)
	})
	if err != nil {
		l.log.Warnw("no content", "grade", grade.ID, "topic", topic.ID, "error", err)
		return nil
	}
	return v.(*ContentData)
}

// RecordResult stores a finished quiz when a recorder is configured
func (l *Library) RecordResult(ctx context.Context, result *QuizResult) error {
	if l.results == nil {
		return nil
	}
	return l.results.CreateQuizResult(ctx, result)
}

func (l *Library) generateTopics(ctx context.Context, grade GradeLevel) ([]Topic, error) {
	// shared by every waiting request, so it must outlive the first one
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
	defer cancel()

	req := GenerationRequest{ID: uuid.NewString(), Kind: "topics", Grade: grade}
	logger := l.newLLMLogger(req)
	defer logger.Close()

	raw, err := l.topics.GenerateTopics(ctx, grade, logger)
	if err != nil {
		return nil, err
	}
	topics := CheckTopics(raw)
	logger.LogOutcome(fmt.Sprintf("%d of %d topics usable", len(topics), len(raw)))
	if len(topics) == 0 {
		return nil, errors.New("no usable topics in response")
	}

	l.toCache(ctx, topicsKey(grade), topics, l.ttl)
	l.log.Infow("generated topics", "grade", grade.ID, "count", len(topics), "request_id", req.ID)
	return topics, nil
}

func (l *Library) generateContent(ctx context.Context, grade GradeLevel, topic Topic) (*ContentData, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
	defer cancel()

	req := GenerationRequest{ID: uuid.NewString(), Kind: "content", Grade: grade, Topic: &topic}
	logger := l.newLLMLogger(req)
	defer logger.Close()

	raw, err := l.lessons.GenerateContent(ctx, grade, topic, logger)
	if err != nil {
		return nil, err
	}
	content, err := CheckContent(raw)
	if err != nil {
		logger.LogOutcome(err.Error())
		return nil, err
	}
	if content.TopicTitle == "" {
		content.TopicTitle = topic.Title
	}
	logger.LogOutcome(fmt.Sprintf("%d of %d questions usable", len(content.Quiz), len(raw.Quiz)))

	l.toCache(ctx, contentKey(grade, topic.ID), content, l.ttl)
	l.log.Infow("generated content", "grade", grade.ID, "topic", topic.ID, "questions", len(content.Quiz), "request_id", req.ID)
	return content, nil
}

func (l *Library) newLLMLogger(req GenerationRequest) *LLMLogger {
	logger, err := NewLLMLogger(l.llmLogDir, req)
	if err != nil {
		// continue without a transcript rather than failing
		l.log.Warnw("failed to create llm logger", "request_id", req.ID, "error", err)
		return nil
	}
	return logger
}

func (l *Library) fromCache(ctx context.Context, key string, out interface{}) bool {
	if l.cache == nil {
		return false
	}
	data, ok, err := l.cache.Get(ctx, key)
	if err != nil {
		l.log.Warnw("cache get failed", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		l.log.Warnw("dropping unreadable cache entry", "key", key, "error", err)
		return false
	}
	return true
}

func (l *Library) toCache(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if l.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		l.log.Warnw("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := l.cache.Set(ctx, key, data, ttl); err != nil {
		l.log.Warnw("cache set failed", "key", key, "error", err)
	}
}
