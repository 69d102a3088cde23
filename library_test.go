package scitech

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

var testGrade = GradeLevel{ID: "5", Label: "כיתה ה'"}

func newTestLibrary(client ChatCompleter, cache Cache) *Library {
	return NewLibrary(LibraryConfig{
		Client:   client,
		Model:    "test-model",
		Cache:    cache,
		CacheTTL: time.Hour,
	}, zap.NewNop().Sugar())
}

func TestLibraryTopicsGeneratesChecksAndCaches(t *testing.T) {
	chat := newFakeChat(map[string]string{"submit_topics": testTopicsArgs})
	cache := newMemCache()
	lib := newTestLibrary(chat, cache)

	topics := lib.Topics(context.Background(), testGrade)
	if len(topics) != 2 {
		t.Fatalf("want 2 usable topics, got %d: %+v", len(topics), topics)
	}
	if topics[1].ID != "electric-circuits" {
		t.Fatalf("id not normalized: %q", topics[1].ID)
	}
	if topics[1].Icon != defaultTopicIcon {
		t.Fatalf("icon not filled: %q", topics[1].Icon)
	}
	if !cache.has("topics:5") {
		t.Fatalf("topics not cached")
	}
	if cache.ttls["topics:5"] != time.Hour {
		t.Fatalf("ttl: want=1h got=%v", cache.ttls["topics:5"])
	}

	again := lib.Topics(context.Background(), testGrade)
	if len(again) != 2 || again[0].ID != "solar-system" {
		t.Fatalf("cached topics differ: %+v", again)
	}
	if n := chat.callCount("submit_topics"); n != 1 {
		t.Fatalf("want 1 generation, got %d", n)
	}
}

func TestLibraryTopicsFallback(t *testing.T) {
	cases := map[string]ChatCompleter{
		"no client":     nil,
		"request error": &fakeChat{err: errors.New("connection refused"), calls: map[string]int{}},
		"bad json":      newFakeChat(map[string]string{"submit_topics": `{"topics": [`}),
		"no topics":     newFakeChat(map[string]string{"submit_topics": `{"topics": []}`}),
	}

	for name, client := range cases {
		cache := newMemCache()
		lib := newTestLibrary(client, cache)

		topics := lib.Topics(context.Background(), testGrade)
		if len(topics) != len(FallbackTopics()) || topics[0].ID != FallbackTopics()[0].ID {
			t.Fatalf("%s: expected fallback topics, got %+v", name, topics)
		}
		if cache.has("topics:5") {
			t.Fatalf("%s: fallback topics must not be cached", name)
		}
		if !cache.has("topics-fallback:5") || cache.ttl("topics-fallback:5") != fallbackTTL {
			t.Fatalf("%s: fallback marker not cached for %v", name, fallbackTTL)
		}
	}
}

func TestLibraryTopicsFallbackIsNotRegeneratedPerRequest(t *testing.T) {
	chat := &fakeChat{err: errors.New("connection refused"), calls: map[string]int{}}
	lib := newTestLibrary(chat, newMemCache())

	for i := 0; i < 3; i++ {
		if topics := lib.Topics(context.Background(), testGrade); len(topics) != len(FallbackTopics()) {
			t.Fatalf("request %d: expected fallback topics, got %+v", i, topics)
		}
	}
	if got := chat.callCount("submit_topics"); got != 1 {
		t.Fatalf("generation attempts: want=1 got=%d", got)
	}
}

func TestLibraryLoadTopics(t *testing.T) {
	failing := newTestLibrary(&fakeChat{err: errors.New("connection refused"), calls: map[string]int{}}, newMemCache())
	if topics, err := failing.LoadTopics(context.Background(), testGrade); err == nil {
		t.Fatalf("expected error instead of fallback, got %+v", topics)
	}

	cache := newMemCache()
	lib := newTestLibrary(newFakeChat(map[string]string{"submit_topics": testTopicsArgs}), cache)
	topics, err := lib.LoadTopics(context.Background(), testGrade)
	if err != nil {
		t.Fatalf("LoadTopics: %v", err)
	}
	if len(topics) != 2 || !cache.has("topics:5") {
		t.Fatalf("topics=%+v cached=%v", topics, cache.has("topics:5"))
	}
}

func TestLibraryTopic(t *testing.T) {
	lib := newTestLibrary(newFakeChat(map[string]string{"submit_topics": testTopicsArgs}), newMemCache())

	topic, ok := lib.Topic(context.Background(), testGrade, "electric-circuits")
	if !ok || topic.Description != "סוללה ונורה" {
		t.Fatalf("Topic: ok=%v topic=%+v", ok, topic)
	}
	// a lesson opened from the fallback list keeps working once generation recovers
	topic, ok = lib.Topic(context.Background(), testGrade, "states-of-matter")
	if !ok || topic.ID != "states-of-matter" {
		t.Fatalf("fallback topic: ok=%v topic=%+v", ok, topic)
	}
	if _, ok := lib.Topic(context.Background(), testGrade, "no-such-topic"); ok {
		t.Fatalf("unknown topic must not be found")
	}
}

func TestLibraryContentGeneratesAndCaches(t *testing.T) {
	chat := newFakeChat(map[string]string{"submit_lesson": testContentArgs})
	cache := newMemCache()
	lib := newTestLibrary(chat, cache)
	topic := Topic{ID: "solar-system", Title: "מערכת השמש"}

	content := lib.Content(context.Background(), testGrade, topic)
	if content == nil {
		t.Fatalf("expected content")
	}
	if content.TopicTitle != "מערכת השמש" {
		t.Fatalf("missing topic title not filled from topic: %q", content.TopicTitle)
	}
	if len(content.Quiz) != 2 || content.Quiz[0].CorrectIndex != 1 {
		t.Fatalf("unexpected quiz %+v", content.Quiz)
	}
	if !cache.has("content:5:solar-system") {
		t.Fatalf("content not cached")
	}

	if again := lib.Content(context.Background(), testGrade, topic); again == nil || again.Introduction != content.Introduction {
		t.Fatalf("cached content differs: %+v", again)
	}
	if n := chat.callCount("submit_lesson"); n != 1 {
		t.Fatalf("want 1 generation, got %d", n)
	}
}

func TestLibraryContentFailureReturnsNil(t *testing.T) {
	cases := map[string]ChatCompleter{
		"no client":          nil,
		"request error":      &fakeChat{err: errors.New("quota exceeded"), calls: map[string]int{}},
		"missing intro":      newFakeChat(map[string]string{"submit_lesson": `{"introduction": "", "quiz": []}`}),
		"malformed response": newFakeChat(map[string]string{"submit_lesson": `not json`}),
	}

	for name, client := range cases {
		cache := newMemCache()
		lib := newTestLibrary(client, cache)
		if content := lib.Content(context.Background(), testGrade, Topic{ID: "x", Title: "X"}); content != nil {
			t.Fatalf("%s: expected nil content, got %+v", name, content)
		}
		if cache.has("content:5:x") {
			t.Fatalf("%s: failed content must not be cached", name)
		}
	}
}

func TestLibraryContentSurvivesCancelledRequest(t *testing.T) {
	lib := newTestLibrary(newFakeChat(map[string]string{"submit_lesson": testContentArgs}), newMemCache())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if content := lib.Content(ctx, testGrade, Topic{ID: "solar-system", Title: "מערכת השמש"}); content == nil {
		t.Fatalf("generation must not depend on the requester's context")
	}
}

func TestLibrarySharesConcurrentGeneration(t *testing.T) {
	chat := newFakeChat(map[string]string{"submit_topics": testTopicsArgs})
	chat.release = make(chan struct{})
	lib := newTestLibrary(chat, newMemCache())

	var wg sync.WaitGroup
	results := make([][]Topic, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = lib.Topics(context.Background(), testGrade)
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(chat.release)
	wg.Wait()

	if n := chat.callCount("submit_topics"); n != 1 {
		t.Fatalf("want 1 shared generation, got %d", n)
	}
	for i, topics := range results {
		if len(topics) != 2 {
			t.Fatalf("request %d: want 2 topics, got %d", i, len(topics))
		}
	}
}

func TestLibraryWritesTranscripts(t *testing.T) {
	dir := t.TempDir()
	lib := NewLibrary(LibraryConfig{
		Client:    newFakeChat(map[string]string{"submit_topics": testTopicsArgs}),
		Model:     "test-model",
		LLMLogDir: dir,
	}, zap.NewNop().Sugar())

	lib.Topics(context.Background(), testGrade)

	files, err := filepath.Glob(filepath.Join(dir, "topics-*.log"))
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("want 1 transcript, got %v", files)
	}
}

func TestLibraryRecordResult(t *testing.T) {
	lib := newTestLibrary(nil, nil)
	if err := lib.RecordResult(context.Background(), &QuizResult{Score: 10}); err != nil {
		t.Fatalf("RecordResult without recorder: %v", err)
	}

	recorder := &recordedResults{}
	lib = NewLibrary(LibraryConfig{Results: recorder}, zap.NewNop().Sugar())
	if err := lib.RecordResult(context.Background(), &QuizResult{GradeID: "5", Score: 30, MaxScore: 50}); err != nil {
		t.Fatalf("RecordResult: %v", err)
	}
	if len(recorder.results) != 1 || recorder.results[0].Score != 30 {
		t.Fatalf("unexpected recorded results %+v", recorder.results)
	}
}
