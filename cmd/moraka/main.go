package main

import (
	"log"

	"github.com/MrSnakeDoc/moraka/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ moraka failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ moraka stopped with error: %v", err)
	}
}
