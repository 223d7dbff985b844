package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/ykvlv/freecron-bot/internal/app"
	"github.com/ykvlv/freecron-bot/internal/config"
	"github.com/ykvlv/freecron-bot/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		exitEarly("config", err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		exitEarly("logger", err)
	}
	// Sync fails on stderr for some terminals; nothing useful to do about it.
	defer func() { _ = log.Sync() }()

	bot, err := app.New(cfg, log)
	if err != nil {
		log.Fatal("freecron-bot init failed", zap.Error(err))
	}

	if err := bot.Run(context.Background()); err != nil {
		log.Fatal("freecron-bot stopped with error", zap.Error(err))
	}
}

// exitEarly reports a startup failure that happens before the logger exists.
func exitEarly(stage string, err error) {
	_, _ = os.Stderr.WriteString("freecron-bot: " + stage + ": " + err.Error() + "\n")
	os.Exit(2)
}
