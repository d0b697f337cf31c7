package main

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/gnoverse/ccheck/cmd"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := cmd.Execute(logger); err != nil {
		if !errors.Is(err, cmd.ErrVerificationFailed) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
