package main

import (
	"log"

	"github.com/alphaseam/donorbox/pkg/commence"
	"github.com/alphaseam/donorbox/pkg/config"
)

func main() {
	cfg := config.Load()
	if err := commence.Start(cfg); err != nil {
		log.Fatalf("donorbox failed to start: %v", err)
	}
}
