package config

import (
	_ "embed"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed nodes.yaml
var nodesYAML []byte

// ErrDiscordTokenNotSet is returned when DISCORD_TOKEN is missing
var ErrDiscordTokenNotSet = errors.New("DISCORD_TOKEN is not set")

// Node describes one Lavalink node
type Node struct {
	Name     string `yaml:"name"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	Secure   bool   `yaml:"secure"`
}

type Config struct {
	DiscordToken     string        `env:"DISCORD_TOKEN"`
	Port             int           `env:"PORT" envDefault:"3000"`
	Prefix           string        `env:"COMMAND_PREFIX" envDefault:"!"`
	DefaultVolume    int           `env:"DEFAULT_VOLUME" envDefault:"80"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string        `env:"LOG_FORMAT" envDefault:"text"`
	CommandTimeout   time.Duration `env:"COMMAND_TIMEOUT" envDefault:"30s"`
	SearchRate       float64       `env:"SEARCH_RATE" envDefault:"5"`
	SearchCacheTTL   time.Duration `env:"SEARCH_CACHE_TTL" envDefault:"5m"`
	PresenceSchedule string        `env:"PRESENCE_SCHEDULE" envDefault:"0 */5 * * * *"`

	// Nodes is compiled into the binary, not read from the environment
	Nodes []Node
}

// LoadConfig reads .env (if present) and the process environment
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}
	return Parse(env.Options{})
}

// Parse builds a Config from the environment described by opts
func Parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, errors.Wrap(err, "parse environment")
	}

	if cfg.DiscordToken == "" {
		return nil, ErrDiscordTokenNotSet
	}
	if cfg.DefaultVolume < 0 || cfg.DefaultVolume > 100 {
		return nil, errors.Errorf("DEFAULT_VOLUME must be between 0 and 100, got %d", cfg.DefaultVolume)
	}
	if cfg.Prefix == "" {
		return nil, errors.New("COMMAND_PREFIX must not be empty")
	}

	nodes, err := LoadNodes(nodesYAML)
	if err != nil {
		return nil, err
	}
	cfg.Nodes = nodes

	return cfg, nil
}

// LoadNodes decodes a YAML node table
func LoadNodes(data []byte) ([]Node, error) {
	var doc struct {
		Nodes []Node `yaml:"nodes"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "decode node table")
	}
	if len(doc.Nodes) == 0 {
		return nil, errors.New("node table is empty")
	}
	for i, n := range doc.Nodes {
		if n.Name == "" || n.Address == "" {
			return nil, errors.Errorf("node %d: name and address are required", i)
		}
	}
	return doc.Nodes, nil
}
