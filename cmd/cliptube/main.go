package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/cliptube/backend/internal/app"
)

func main() {
	// Missing .env is fine; the environment may be set by the deployment.
	_ = godotenv.Load()

	ctx := context.Background()
	if err := app.Run(ctx, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
