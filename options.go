package mailvault

import (
	"io"

	"github.com/sirupsen/logrus"
)

const (
	// MailGroupType is the membership group type of a user's mail group.
	MailGroupType = "5"

	// recordFormat is the only _format value the records carry.
	recordFormat = "0"
)

// config holds configuration shared by credentials and keychains.
type config struct {
	logger        logrus.FieldLogger
	mailGroupType string
}

// Option configures credentials and the keychains they unlock.
type Option func(*config)

// WithLogger sets the logger for debug output. Key material, passphrases and
// plaintext are never logged. By default nothing is logged.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMailGroupType overrides the membership group type that identifies the
// mail group. Default: "5".
func WithMailGroupType(groupType string) Option {
	return func(c *config) {
		c.mailGroupType = groupType
	}
}

func newConfig(opts []Option) *config {
	cfg := &config{
		mailGroupType: MailGroupType,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = discardLogger()
	}
	return cfg
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
