package main

import (
	stdLog "log"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"github.com/okiim/libris/internal/app"
	"github.com/okiim/libris/internal/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		stdLog.Println("no .env file, relying on environment")
	}
	cfg := config.NewConfig(
		config.WithLogLevel(zapcore.InfoLevel),
		config.WithWriteTimeout(time.Minute),
	)

	if err := app.Run(cfg); err != nil {
		stdLog.Fatal("app run ", err)
	}
}
