package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/example/lingobot/internal/ai"
	"github.com/example/lingobot/internal/bot"
	"github.com/example/lingobot/internal/database"
	"github.com/example/lingobot/internal/excel"
	"github.com/example/lingobot/internal/memory"
	"github.com/example/lingobot/internal/profile"
	"github.com/example/lingobot/internal/progression"
	"github.com/example/lingobot/internal/quiz"
	"github.com/example/lingobot/internal/scheduler"
	"github.com/example/lingobot/internal/stats"
	"github.com/example/lingobot/internal/streak"
)

func main() {
	importFile := flag.String("import", "", "import starter vocabulary from an .xlsx or .csv file and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if err := database.Connect(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	docs := database.NewDocumentStore()

	if *importFile != "" {
		runImport(docs, *importFile)
		return
	}

	memStore := memory.NewStore(docs)
	streaks := streak.NewStore(docs)
	progress := progression.NewStore(docs)
	profiles := profile.New(docs, memStore)
	quizzes := quiz.NewStore(docs)
	statsService := stats.NewService(docs, memStore, quizzes, streaks, progress)

	var turns *memory.TurnEngine
	var generator *quiz.Generator
	var evaluator *quiz.Evaluator
	aiEnabled := false
	if client, err := ai.New(); err != nil {
		log.Printf("Warning: completion service disabled: %v", err)
	} else {
		aiEnabled = true
		turns = memory.NewTurnEngine(memStore, streaks, client)
		generator = quiz.NewGenerator(profiles, quizzes, client)
		evaluator = quiz.NewEvaluator(quizzes, progress, client)
	}

	b, err := bot.New(bot.Deps{
		Turns:     turns,
		Generator: generator,
		Evaluator: evaluator,
		Quizzes:   quizzes,
		Streaks:   streaks,
		Stats:     statsService,
		AIEnabled: aiEnabled,
	})
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	sched := scheduler.New(streaks, b)
	if os.Getenv("ENABLE_SCHEDULER") != "false" {
		sched.Start()
		defer sched.Stop()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v", sig)
		b.Stop()
	}()

	log.Println("Bot started. Press Ctrl+C to stop.")
	if err := b.Start(); err != nil {
		log.Fatalf("Bot error: %v", err)
	}
	log.Println("Bot stopped successfully")
}

func runImport(docs *database.DocumentStore, path string) {
	result, err := excel.ImportWords(docs, excel.DefaultImportConfig(path))
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	log.Printf("Import done: %d processed, %d added, %d skipped", result.TotalProcessed, result.Added, result.Skipped)
	for _, importErr := range result.Errors {
		log.Printf("  %s", importErr)
	}
}
