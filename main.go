package main

import (
	"flag"
	"log"

	"fleethub/config"
	"fleethub/server"
)

func main() {
	cfgPath := flag.String("config", "", "path to yaml config (optional, env overrides)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app := &server.App{}
	app.Initialize(cfg, nil)
	if err := app.Run(); err != nil {
		log.Fatalf("server: %v", err)
	}
}
