package mgo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"marketgram/tools/errs"
)

const (
	defaultMaxPoolSize    = 100
	defaultConnectTimeout = 10 * time.Second
)

// Config represents the MongoDB configuration.
type Config struct {
	URI         string
	Address     []string
	Database    string
	Username    string
	Password    string
	AuthSource  string
	MaxPoolSize int
}

func (c *Config) norm() {
	if c.MaxPoolSize <= 0 {
		c.MaxPoolSize = defaultMaxPoolSize
	}
	if c.AuthSource == "" {
		c.AuthSource = "admin"
	}
}

func buildMongoURI(cfg *Config) string {
	credentials := ""
	if cfg.Username != "" && cfg.Password != "" {
		credentials = fmt.Sprintf("%s:%s@", cfg.Username, cfg.Password)
	}
	return fmt.Sprintf(
		"mongodb://%s%s/%s?authSource=%s&maxPoolSize=%d",
		credentials,
		strings.Join(cfg.Address, ","),
		cfg.Database,
		cfg.AuthSource,
		cfg.MaxPoolSize,
	)
}

func applyConfigToOptions(cfg *Config) (*options.ClientOptions, error) {
	switch {
	case cfg.URI != "":
		// full URI wins; it may carry its own parameters
		return options.Client().ApplyURI(cfg.URI), nil
	case len(cfg.Address) > 0:
		return options.Client().ApplyURI(buildMongoURI(cfg)), nil
	default:
		return nil, errs.New("mongo uri or address is required")
	}
}

// Connect establishes a verified (pinged) client and returns the configured
// database handle.
func Connect(ctx context.Context, cfg *Config) (*mongo.Database, error) {
	cfg.norm()
	opts, err := applyConfigToOptions(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()

	cli, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errs.WrapMsg(err, "mongo connect")
	}
	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, errs.WrapMsg(err, "mongo ping")
	}
	return cli.Database(cfg.Database), nil
}
