package hashlinks

import (
	"context"
	"log"
	"os"
	"strconv"

	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"
)

// Backends selectable in Config.Backend.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendFile     = "file"
	BackendDynamoDB = "dynamodb"
)

// Config selects and configures the index backend and the HTTP listener.
type Config struct {
	// Addr is the listen address of the HTTP server.
	Addr    string `yaml:"addr"`
	Backend string `yaml:"backend"`
	// DSN is the SQLite data source name or the path of the links file.
	DSN string `yaml:"dsn"`
	// CacheSize > 0 puts an in-memory LRU cache of that many links in front of the backend.
	CacheSize int  `yaml:"cache_size"`
	Quiet     bool `yaml:"quiet"`

	DynamoDB DynamoDBConfig `yaml:"dynamodb"`
}

type DynamoDBConfig struct {
	Table    string `yaml:"table"`
	Endpoint string `yaml:"endpoint"`
	// Local targets DynamoDB Local with dummy credentials.
	Local bool `yaml:"local"`
}

// DefaultConfig returns the configuration used when nothing else is specified.
func DefaultConfig() Config {
	return Config{
		Addr:    ":5656",
		Backend: BackendSQLite,
		DSN:     "file:hashlinks.sqlite?_journal_mode=wal",
	}
}

// defaultCacheSize is used when an accelerator endpoint is configured without a cache size.
const defaultCacheSize = 10000

// LoadConfig reads the YAML file at path on top of DefaultConfig, then applies
// environment overrides. An empty path skips the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, xerrors.Errorf("could not read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, xerrors.Errorf("could not parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// applyEnv overrides cfg from environment variables. DDB_TABLE, DDB_LOCAL and
// DAX_ENDPOINT switch to the DynamoDB backend.
func (cfg *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("HASHLINKS_ADDR"); ok {
		cfg.Addr = v
	}
	if v, ok := lookup("HASHLINKS_BACKEND"); ok {
		cfg.Backend = v
	}
	if v, ok := lookup("HASHLINKS_DSN"); ok {
		cfg.DSN = v
	}
	if v, ok := lookup("HASHLINKS_CACHE_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return xerrors.Errorf("invalid HASHLINKS_CACHE_SIZE %q: %w", v, err)
		}
		cfg.CacheSize = n
	}
	if v, ok := lookup("DDB_TABLE"); ok {
		cfg.Backend = BackendDynamoDB
		cfg.DynamoDB.Table = v
	}
	if v, ok := lookup("DDB_LOCAL"); ok && v != "" {
		cfg.Backend = BackendDynamoDB
		cfg.DynamoDB.Local = true
	}
	// The DAX endpoint of the original deployment is served by the in-process cache.
	if v, ok := lookup("DAX_ENDPOINT"); ok && v != "" && cfg.CacheSize == 0 {
		cfg.CacheSize = defaultCacheSize
	}
	return nil
}

// Validate reports configuration errors that would only surface on first use.
func (cfg Config) Validate() error {
	switch cfg.Backend {
	case BackendMemory:
	case BackendSQLite, BackendFile:
		if cfg.DSN == "" {
			return xerrors.Errorf("backend %s needs a dsn", cfg.Backend)
		}
	case BackendDynamoDB:
		if cfg.DynamoDB.Table == "" {
			return xerrors.New("backend dynamodb needs a table name")
		}
	default:
		return xerrors.Errorf("unknown backend %q", cfg.Backend)
	}

	if cfg.CacheSize < 0 {
		return xerrors.Errorf("cache size must not be negative, got %d", cfg.CacheSize)
	}
	return nil
}

// OpenIndex opens the backend selected by cfg, wrapped in a cache if configured.
func OpenIndex(ctx context.Context, cfg Config, l *log.Logger) (Index, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if l == nil {
		l = log.New(os.Stderr, "", log.LstdFlags)
	}

	var (
		i   Index
		err error
	)
	switch cfg.Backend {
	case BackendMemory:
		l.Println("using in-memory index")
		i = NewMemoryIndex()
	case BackendSQLite:
		l.Println("using SQLite index", cfg.DSN)
		i, err = NewSQLiteIndex(cfg.DSN)
	case BackendFile:
		l.Println("using file index", cfg.DSN)
		i, err = NewFileIndex(cfg.DSN)
	case BackendDynamoDB:
		if cfg.DynamoDB.Local {
			l.Println("using DynamoDB local, table", cfg.DynamoDB.Table)
		} else {
			l.Println("using DynamoDB, table", cfg.DynamoDB.Table)
		}
		var client DynamoDBAPI
		client, err = NewDynamoDBClient(ctx, cfg.DynamoDB.Endpoint, cfg.DynamoDB.Local)
		if err == nil {
			i = NewDynamoDBIndex(client, cfg.DynamoDB.Table)
		}
	}
	if err != nil {
		return nil, xerrors.Errorf("could not open %s index: %w", cfg.Backend, err)
	}

	if cfg.CacheSize > 0 {
		l.Println("caching up to", cfg.CacheSize, "links in memory")
		cached, err := NewCachedIndex(i, cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		return cached, nil
	}
	return i, nil
}
