package cmd

import (
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

// Package-level logger shared by all command actions. Commands call
// setupLogging first; until then it stays a no-op.
var logger = zap.NewNop()

func setupLogging(ctx *cli.Context) error {
	cfg := zap.NewProductionConfig()
	if ctx.GlobalBool("v") {
		cfg = zap.NewDevelopmentConfig()
	}

	l, err := cfg.Build()
	if err != nil {
		return err
	}
	logger = l
	return nil
}
