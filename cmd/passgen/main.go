package main

import (
	"log"

	"github.com/MrSnakeDoc/passgen/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ passgen failed to start: %v", err)
	}
}
