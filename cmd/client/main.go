package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"sacred_computing/internal/service/app"
)

func main() {
	host := "localhost:9090"
	if len(os.Args) > 1 {
		host = os.Args[1]
	}

	if host == "-h" || host == "--help" {
		log.Fatal("Usage: client [host:port]")
	}

	a := app.NewApp(host)
	go func() {
		done := make(chan os.Signal, 1)
		signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
		<-done
		a.Stop()
	}()

	a.Run()
}
