package main

import (
	"fmt"
	"time"
)

type Config struct {
	SessionBufferSize int           `env:"SESSION_BUFFER_SIZE,required=true"`
	HistoryLimit      int           `env:"HISTORY_LIMIT,required=true"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,required=true"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH,required=true"`
	BadgerGCInterval  time.Duration `env:"BADGER_GC_INTERVAL,default=5m"`
	StatsInterval     time.Duration `env:"STATS_INTERVAL,default=1m"`
	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	LogLevel          string        `env:"LOG_LEVEL,required=true"`
	Host              string        `env:"HOST,default=localhost"`
	Port              int           `env:"PORT,default=8080"`
}

// Validate rejects combinations that could never serve a connection. A
// session buffer smaller than the history limit would overflow during every
// history replay and force-close the session before it goes live.
func (c Config) Validate() error {
	if c.SessionBufferSize < 1 {
		return fmt.Errorf("SESSION_BUFFER_SIZE must be positive, got %d", c.SessionBufferSize)
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("HISTORY_LIMIT must not be negative, got %d", c.HistoryLimit)
	}
	if c.SessionBufferSize < c.HistoryLimit {
		return fmt.Errorf("SESSION_BUFFER_SIZE (%d) must be at least HISTORY_LIMIT (%d)",
			c.SessionBufferSize, c.HistoryLimit)
	}
	return nil
}
