package service

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
)

// Service is a long running process. Start must not block.
type Service interface {
	Init() error
	Start() error
	Stop() error
}

// Run starts s and blocks until SIGINT or SIGTERM, then stops it.
func Run(s Service) error {
	return run(s, make(chan os.Signal, 1))
}

func run(s Service, quit chan os.Signal) error {
	if err := s.Init(); err != nil {
		return err
	}

	if err := s.Start(); err != nil {
		return err
	}

	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	sig := <-quit
	log.Info().Msgf("received signal %v, stopping service", sig)

	return s.Stop()
}
