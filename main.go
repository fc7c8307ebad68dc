package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/welling-fm/fireinspect/cmd"
	"github.com/welling-fm/fireinspect/internal/buildinfo"
	"github.com/welling-fm/fireinspect/internal/runtime"
)

// buildDate and version are set at build time with -ldflags
var (
	buildDate string
	version   string
)

func main() {
	os.Exit(mainWithExitCode())
}

func mainWithExitCode() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rc := runtime.New(buildinfo.NewContext(version, buildDate), os.Stdout)
	rootCmd := cmd.RootCommand(rc)

	err := rootCmd.ExecuteContext(ctx)
	if closeErr := rc.Close(); closeErr != nil {
		fmt.Fprintf(os.Stderr, "shutdown: %v\n", closeErr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
