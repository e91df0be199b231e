package main

import "time"

type Config struct {
	BadgerFilepath  string        `env:"BADGER_FILEPATH,required=true"`
	GroupDBPath     string        `env:"GROUP_DB_PATH,required=true"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO"`
	LimitMessages   *int          `env:"LIMIT_MESSAGES"`
	MemoryRetention time.Duration `env:"MEMORY_RETENTION,default=10m"`

	OpenAIAPIKey      string  `env:"OPENAI_API_KEY,required=true"`
	OpenAIBaseURL     string  `env:"OPENAI_BASE_URL"`
	OpenAIModel       string  `env:"OPENAI_MODEL,default=gpt-4o-mini"`
	OpenAIMaxTokens   int     `env:"OPENAI_MAX_TOKENS,default=500"`
	OpenAITemperature float32 `env:"OPENAI_TEMPERATURE,default=0.7"`
}
