// Command server runs the analytics HTTP API.
package main

import (
	"flag"
	"fmt"
	"os"

	"opsanalytics/internal/app"
	"opsanalytics/internal/config"
	"opsanalytics/internal/infrastructure"
	"opsanalytics/pkg/contracts"
)

func main() {
	configPath := flag.String("config", "", "YAML config file")
	port := flag.Int("port", 0, "listen port (overrides config)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString(config.AppName))
		return
	}

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	a, err := app.NewApplication(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}

	if err := a.Run(); err != nil {
		a.Logger.Error("server_failed", "error", err)
		_ = infrastructure.CloseLogFile()
		os.Exit(1)
	}
	_ = infrastructure.CloseLogFile()
}
