package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/voxpress/voxpress/internal/audio"
	"github.com/voxpress/voxpress/internal/logging"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s <artifact.mp3>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := logging.InitFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := audio.Play(ctx, flag.Arg(0)); err != nil {
		logging.Fatalf("playback: %v", err)
	}
}
