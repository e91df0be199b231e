package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"chat-memory/ai"
	"chat-memory/repositories"
	"chat-memory/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, drives the line loop, and centralizes
// error reporting, so every defer (database cleanup included) executes
// before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Databases (BadgerDB for history, sqlite for union sets)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("history database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	groupDB, err := gorm.Open(sqlite.Open(config.GroupDBPath), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("group database opening failed: %w", err)
	}

	// 3. Repositories & services
	historyRepository := repositories.NewHistoryRepository(db, log, config.LimitMessages)
	groupRepository, err := repositories.NewGroupRepository(groupDB, log)
	if err != nil {
		return err
	}
	if err = historyRepository.PruneExpired(config.MemoryRetention); err != nil {
		return err
	}

	memoryService, err := services.NewMemoryService(log, groupRepository, historyRepository)
	if err != nil {
		return err
	}

	assistant, err := ai.NewOpenAIAssistant(ai.Config{
		APIKey:      config.OpenAIAPIKey,
		BaseURL:     config.OpenAIBaseURL,
		Model:       config.OpenAIModel,
		MaxTokens:   config.OpenAIMaxTokens,
		Temperature: config.OpenAITemperature,
	}, log)
	if err != nil {
		return fmt.Errorf("assistant setup failed: %w", err)
	}

	router := services.NewRouter(log, memoryService, assistant, config.MemoryRetention)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Line loop: "<user>: <message>" per line on stdin, reply on stdout.
	// The surrounding chat transport pipes through this interface.
	log.Info("Ready for input", "retention", config.MemoryRetention)
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info("Shutting down gracefully...")
			return nil
		case line, ok := <-lines:
			if !ok {
				log.Info("Input closed, stopping")
				return nil
			}
			sender, text, found := strings.Cut(line, ":")
			if !found || strings.TrimSpace(sender) == "" {
				color.Yellow.Println("Expected input format: <user>: <message>")
				continue
			}
			reply := router.HandleLine(ctx, strings.TrimSpace(sender), strings.TrimSpace(text))
			color.Cyan.Println(reply)
		}
	}
}
