package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"podium/agent/internal/config"
	"podium/agent/internal/health"
)

var timeout = flag.Duration("timeout", 10*time.Second, "overall check timeout")

func main() {
	flag.Parse()
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	status := health.CheckAll(ctx, cfg)
	fmt.Print(status.String())
	if !status.OK {
		os.Exit(1)
	}
}
