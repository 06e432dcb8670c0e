package main

import (
	"os"

	"finsight-server/src/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log := logger.New()
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
