package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/kelsied/gptgames-bot/bot"

	log "github.com/sirupsen/logrus"
)

func main() {
	b, err := bot.NewBot()
	if err != nil {
		log.Fatal(err)
	}

	if err := b.Start(); err != nil {
		log.Fatal(err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info("Shutting down...")
	b.Close()
}
