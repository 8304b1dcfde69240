package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"prizedraw/cmd"
	"prizedraw/database"

	log "github.com/sirupsen/logrus"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := handleMigrationCommand(); err != nil {
			log.Fatalf("Migration error: %v", err)
		}
		return
	}

	if len(os.Args) > 1 && os.Args[1] == "simulate" {
		if err := handleSimulateCommand(); err != nil {
			log.Fatalf("Simulation error: %v", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: prizedraw migrate [up|down|status] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}

// handleSimulateCommand runs "prizedraw simulate [trials] [seed]" against PRIZE_TABLE_PATH
func handleSimulateCommand() error {
	trials := 100000
	if len(os.Args) > 2 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil {
			return fmt.Errorf("invalid trial count %q: %w", os.Args[2], err)
		}
		trials = n
	}

	var seed uint64
	if len(os.Args) > 3 {
		s, err := strconv.ParseUint(os.Args[3], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seed %q: %w", os.Args[3], err)
		}
		seed = s
	}

	spinCost := int64(100)
	if raw := os.Getenv("SPIN_COST"); raw != "" {
		c, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid SPIN_COST: %w", err)
		}
		spinCost = c
	}

	return cmd.RunSimulation(os.Stdout, os.Getenv("PRIZE_TABLE_PATH"), trials, seed, spinCost)
}
