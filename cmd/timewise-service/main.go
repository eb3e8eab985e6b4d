package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/timewise/timewise/timewiseservice"
)

func main() {
	if err := timewiseservice.Run(); err != nil {
		log.Error().Err(err).Msg("timewise-service exited with error")
		os.Exit(1)
	}
}
