package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"scitech"
)

func main() {
	var (
		gradeID    = flag.String("grade", "", "Grade id, 3 to 12 (required)")
		topicID    = flag.String("topic", "", "Topic id; without it the grade's topics are listed")
		outputFile = flag.String("output", "", "Output file for JSON (default: stdout)")
		apiKey     = flag.String("api-key", "", "AI API key (or set AI_API_KEY / GEMINI_API_KEY env var)")
		dbPath     = flag.String("db", "", "Database used as cache (default: DB_PATH or ./scitech.db)")
		playMode   = flag.Bool("play", false, "Play the topic's quiz interactively")
		verbose    = flag.Bool("verbose", false, "Enable verbose debugging output")
	)

	flag.Parse()

	if *gradeID == "" {
		log.Fatal("Grade is required. Use -grade flag.")
	}
	grade, err := scitech.GradeByID(*gradeID)
	if err != nil {
		log.Fatalf("Invalid grade: %v", err)
	}
	if *playMode && *topicID == "" {
		log.Fatal("-play needs a topic. Use -topic flag.")
	}

	cfg := scitech.LoadConfig()
	if *apiKey != "" {
		cfg.AIAPIKey = *apiKey
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	logger, err := scitech.NewLogger(cfg.LogMode, *verbose)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	if cfg.AIAPIKey == "" {
		logger.Warnw("no AI API key configured; only fallback topics are available")
	}

	db, err := scitech.OpenDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.CloseDB()

	if err := db.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	library := scitech.NewLibrary(scitech.LibraryConfig{
		Client:    scitech.NewChatClient(cfg),
		Model:     cfg.AIModel,
		Cache:     db,
		Results:   db,
		CacheTTL:  cfg.CacheTTL,
		LLMLogDir: cfg.LLMLogDir,
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if *topicID == "" {
		writeOutput(*outputFile, library.Topics(ctx, grade))
		return
	}

	topic, ok := library.Topic(ctx, grade, *topicID)
	if !ok {
		log.Fatalf("Unknown topic %q for %s", *topicID, grade.Label)
	}

	content := library.Content(ctx, grade, topic)
	if content == nil {
		log.Fatalf("No content found for %s", topic.Title)
	}

	if *playMode {
		score, maxScore := playQuiz(os.Stdin, os.Stdout, topic, content)
		result := &scitech.QuizResult{
			GradeID:    grade.ID,
			TopicID:    topic.ID,
			TopicTitle: topic.Title,
			Score:      score,
			MaxScore:   maxScore,
		}
		if err := library.RecordResult(ctx, result); err != nil {
			logger.Warnw("failed to record quiz result", "error", err)
		}
		return
	}

	writeOutput(*outputFile, content)
}

func writeOutput(path string, v interface{}) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal output: %v", err)
	}

	if path == "" {
		fmt.Println(string(output))
		return
	}
	if err := os.WriteFile(path, output, 0644); err != nil {
		log.Fatalf("Failed to write output file: %v", err)
	}
	log.Printf("Saved to: %s", path)
}

// playQuiz runs the lesson's quiz on a terminal and returns the final score
func playQuiz(in io.Reader, out io.Writer, topic scitech.Topic, content *scitech.ContentData) (int, int) {
	quiz, err := scitech.NewQuiz(content.Quiz)
	if err != nil {
		fmt.Fprintln(out, "אין שאלות לחידון בנושא זה.")
		return 0, 0
	}

	fmt.Fprintf(out, "🎯 %s %s\n\n", topic.Icon, content.TopicTitle)
	scanner := bufio.NewScanner(in)

	for !quiz.Finished() {
		n, total := quiz.Progress()
		q := quiz.Current()
		fmt.Fprintf(out, "שאלה %d מתוך %d:\n%s\n\n", n, total, q.Question)
		for i, option := range q.Options {
			fmt.Fprintf(out, "  %d) %s\n", i+1, option)
		}
		fmt.Fprintln(out)

		for !quiz.Answered() {
			fmt.Fprintf(out, "התשובה שלך (1-%d): ", len(q.Options))
			if !scanner.Scan() {
				fmt.Fprintln(out)
				return quiz.Score(), quiz.MaxScore()
			}
			choice, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
			if err != nil {
				continue
			}
			correct, err := quiz.Select(choice - 1)
			if err != nil {
				continue
			}
			if correct {
				fmt.Fprintf(out, "✅ נכון! +%d נקודות\n", scitech.PointsPerCorrect)
			} else {
				fmt.Fprintf(out, "❌ לא נכון. התשובה הנכונה: %s\n", q.Options[q.CorrectIndex])
			}
		}

		if q.Explanation != "" {
			fmt.Fprintf(out, "💡 הסבר: %s\n", q.Explanation)
		}
		fmt.Fprintln(out, strings.Repeat("─", 50))

		if _, _, err := quiz.Next(); err != nil {
			break
		}
	}

	fmt.Fprintf(out, "\n🏆 כל הכבוד! צברת %d נקודות בחידון זה (מתוך %d).\n", quiz.Score(), quiz.MaxScore())
	return quiz.Score(), quiz.MaxScore()
}
