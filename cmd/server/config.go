package main

import (
	"time"

	"chat-relay/eventlog"
)

type Config struct {
	Host     string `env:"HOST,default=localhost"`
	Port     int    `env:"PORT,default=8080" validate:"gt=0"`
	LogLevel string `env:"LOG_LEVEL,default=info"`

	TokenSecret   string        `env:"TOKEN_SECRET,required=true" validate:"min=32"`
	TokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`

	DatabaseURL string `env:"DATABASE_URL,required=true"`

	// LogBackend selects where durable events are queued before they
	// reach Postgres: "redis" (streams) or "badger" (embedded).
	LogBackend     string `env:"LOG_BACKEND,default=redis" validate:"oneof=redis badger"`
	RedisURL       string `env:"REDIS_URL"`
	BadgerFilepath string `env:"BADGER_FILEPATH"`

	FanoutCapacity  int           `env:"FANOUT_CAPACITY,default=100" validate:"gt=0"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	StatsInterval   time.Duration `env:"STATS_INTERVAL,default=5s"`

	DrainGroup         string        `env:"DRAIN_GROUP,default=relay"`
	SendPollInterval   time.Duration `env:"SEND_POLL_INTERVAL,default=1s"`
	UpdatePollInterval time.Duration `env:"UPDATE_POLL_INTERVAL,default=1s"`
	DeletePollInterval time.Duration `env:"DELETE_POLL_INTERVAL,default=2s"`
	SeenPollInterval   time.Duration `env:"SEEN_POLL_INTERVAL,default=2s"`
}

type PartitionConfig struct {
	Name     string
	Interval time.Duration
}

// Partitions pairs every durable event partition with its poll interval,
// fixed for the process lifetime.
func (c Config) Partitions() []PartitionConfig {
	return []PartitionConfig{
		{Name: eventlog.PartitionSend, Interval: c.SendPollInterval},
		{Name: eventlog.PartitionUpdate, Interval: c.UpdatePollInterval},
		{Name: eventlog.PartitionDelete, Interval: c.DeletePollInterval},
		{Name: eventlog.PartitionSeen, Interval: c.SeenPollInterval},
	}
}
