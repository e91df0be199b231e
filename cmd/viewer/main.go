package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"chat-memory/repositories"
)

type Config struct {
	GroupDBPath string `env:"GROUP_DB_PATH,required=true"`
	LogLevel    string `env:"LOG_LEVEL,default=WARN"`
}

// Read-only view of the current memory groups, independent of the bot
// process: sqlite allows a second reader on the same file.
func main() {
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	db, err := gorm.Open(sqlite.Open(config.GroupDBPath), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to open group database: %v", err)
	}

	repository, err := repositories.NewGroupRepository(db, logs.GetLoggerFromString(config.LogLevel))
	if err != nil {
		log.Fatalf("Failed to init group repository: %v", err)
	}

	groups, err := repository.Load()
	if err != nil {
		log.Fatalf("Failed to load groups: %v", err)
	}

	snapshots := groups.Groups()
	if len(snapshots) == 0 {
		color.Yellow.Println("No joined users: everyone is solo.")
		return
	}

	for _, g := range snapshots {
		header := color.New(color.BgBlack, color.FgGreen).Render(g.Representative)
		fmt.Printf("%s  [%d members, modified %s]\n  %s\n",
			header,
			len(g.Members),
			g.LastModified.Format("2006-01-02 15:04:05"),
			strings.Join(g.Members, ", "),
		)
	}
}
