package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"scitech"

	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		gradeList   = flag.String("grades", "", "Comma separated grade ids (default: all grades)")
		withContent = flag.Bool("content", false, "Also generate the lesson of every topic")
		concurrency = flag.Int("concurrency", 3, "Generations running at once")
		dbPath      = flag.String("db", "", "Database path (default: DB_PATH or ./scitech.db)")
		apiKey      = flag.String("api-key", "", "AI API key (or set AI_API_KEY / GEMINI_API_KEY env var)")
		verbose     = flag.Bool("verbose", false, "Enable verbose output")
	)

	flag.Parse()

	cfg := scitech.LoadConfig()
	if *apiKey != "" {
		cfg.AIAPIKey = *apiKey
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if cfg.AIAPIKey == "" {
		log.Fatal("AI API key is required. Use -api-key flag or set AI_API_KEY environment variable.")
	}

	logger, err := scitech.NewLogger(cfg.LogMode, *verbose)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	grades, err := selectGrades(*gradeList)
	if err != nil {
		log.Fatalf("Invalid grades: %v", err)
	}

	db, err := scitech.OpenDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.CloseDB()

	if err := db.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	removed, err := db.DeleteExpired(ctx)
	if err != nil {
		log.Fatalf("Failed to delete expired entries: %v", err)
	}
	fmt.Printf("🧹 Removed %d expired cache entries\n", removed)

	var cache scitech.Cache = db
	if cfg.RedisURL != "" {
		redisCache, err := scitech.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warnw("redis unavailable, warming sqlite", "error", err)
		} else {
			defer redisCache.Close()
			cache = redisCache
		}
	}

	library := scitech.NewLibrary(scitech.LibraryConfig{
		Client:    scitech.NewChatClient(cfg),
		Model:     cfg.AIModel,
		Cache:     cache,
		CacheTTL:  cfg.CacheTTL,
		LLMLogDir: cfg.LLMLogDir,
	}, logger)

	stats := warm(ctx, library, grades, *withContent, *concurrency)

	fmt.Printf("🎉 Warmed %d of %d grades: %d topics, %d lessons (%d lessons missing)\n",
		int64(len(grades))-stats.failedGrades.Load(), len(grades), stats.topics.Load(), stats.lessons.Load(), stats.missing.Load())
	if stats.failed() {
		os.Exit(1)
	}
}

type warmStats struct {
	topics       atomic.Int64
	lessons      atomic.Int64
	missing      atomic.Int64
	failedGrades atomic.Int64
}

func (s *warmStats) failed() bool {
	return s.missing.Load() > 0 || s.failedGrades.Load() > 0
}

// warm fills the cache for every grade, and optionally every lesson, with at
// most concurrency generations in flight
func warm(ctx context.Context, library *scitech.Library, grades []scitech.GradeLevel, withContent bool, concurrency int) *warmStats {
	if concurrency < 1 {
		concurrency = 1
	}
	stats := &warmStats{}

	var g errgroup.Group
	g.SetLimit(concurrency)

	for _, grade := range grades {
		topics, err := library.LoadTopics(ctx, grade)
		if err != nil {
			stats.failedGrades.Add(1)
			fmt.Printf("❌ %s: no topics: %v\n", grade.Label, err)
			continue
		}
		stats.topics.Add(int64(len(topics)))
		fmt.Printf("📚 %s: %d topics\n", grade.Label, len(topics))

		if !withContent {
			continue
		}
		for _, topic := range topics {
			grade, topic := grade, topic
			g.Go(func() error {
				if library.Content(ctx, grade, topic) == nil {
					stats.missing.Add(1)
					fmt.Printf("❌ %s / %s: no content\n", grade.Label, topic.Title)
					return nil
				}
				stats.lessons.Add(1)
				fmt.Printf("✅ %s / %s\n", grade.Label, topic.Title)
				return nil
			})
		}
	}

	g.Wait()
	return stats
}

func selectGrades(list string) ([]scitech.GradeLevel, error) {
	if strings.TrimSpace(list) == "" {
		return scitech.Grades(), nil
	}

	var grades []scitech.GradeLevel
	for _, id := range strings.Split(list, ",") {
		grade, err := scitech.GradeByID(strings.TrimSpace(id))
		if err != nil {
			return nil, err
		}
		grades = append(grades, grade)
	}
	return grades, nil
}
