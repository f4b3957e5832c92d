// cmd/domed/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"domed/bus"
	"domed/domelog"
	"domed/internal/dome"
	"domed/internal/domeconfig"
	domeserial "domed/serial"
)

func main() {
	configPath := flag.String("config", "/etc/domed/config.json", "path to the JSONC config document")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "domed:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := domeconfig.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := domelog.NewProduction()
	if err != nil {
		return fmt.Errorf("start logger: %w", err)
	}
	defer log.Sync()

	shutterLink := domeserial.Open("dome.shutter", domeserial.Config{
		Port:         cfg.Shutter.Port,
		Baud:         cfg.Shutter.Baud,
		Timeout:      cfg.Shutter.Timeout,
		IdleIsNormal: cfg.HasLegacyController,
	}, log)
	defer shutterLink.Close()

	heartbeatLink := domeserial.Open("dome.heartbeat", domeserial.Config{
		Port:    cfg.Heartbeat.Port,
		Baud:    cfg.Heartbeat.Baud,
		Timeout: cfg.Heartbeat.Timeout,
	}, log)
	defer heartbeatLink.Close()

	b := bus.NewBus(16)
	conn := b.NewConnection(cfg.DaemonName)

	sup := dome.NewSupervisor(cfg, log, shutterLink, heartbeatLink, nil)
	sup.BindBelt(conn)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go sup.ServeBus(ctx, conn)
	sup.Run(ctx)

	return nil
}
