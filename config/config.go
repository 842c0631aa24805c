package config

import (
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"hermannm.dev/wrap"
)

type Config struct {
	IsProduction  bool `env:"PRODUCTION"`
	API           API
	Dataset       Dataset
	ClickHouse    ClickHouse
	Elasticsearch Elasticsearch
}

type API struct {
	Port string `env:"API_PORT" envDefault:"8000"`
}

type Dataset struct {
	// Source identifier of the dashboard's dataset: a local path, or a URI such as
	// "gs://bucket/object.csv" or "clickhouse://table".
	Source          string `env:"DATASET_SOURCE"            envDefault:"src/data/Transactions/2024_2.csv"`
	SkipInvalidRows bool   `env:"DATASET_SKIP_INVALID_ROWS" envDefault:"false"`
	PreviewLimit    int    `env:"DATASET_PREVIEW_LIMIT"     envDefault:"1000"`
}

// ClickHouse is enabled if Address is set.
type ClickHouse struct {
	Address      string `env:"CLICKHOUSE_ADDRESS"`
	DatabaseName string `env:"CLICKHOUSE_DB_NAME"       envDefault:"default"`
	Username     string `env:"CLICKHOUSE_USERNAME"      envDefault:"default"`
	Password     string `env:"CLICKHOUSE_PASSWORD"`
	Debug        bool   `env:"CLICKHOUSE_DEBUG_ENABLED" envDefault:"false"`
}

func (clickhouse ClickHouse) Enabled() bool {
	return clickhouse.Address != ""
}

// Elasticsearch is enabled if Address is set.
type Elasticsearch struct {
	Address string `env:"ELASTICSEARCH_ADDRESS"`
	Debug   bool   `env:"ELASTICSEARCH_DEBUG_ENABLED" envDefault:"false"`
}

func (elasticsearch Elasticsearch) Enabled() bool {
	return elasticsearch.Address != ""
}

// ReadFromEnv loads variables from a .env file in the working directory if one exists, then
// parses the environment.
func ReadFromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, wrap.Error(err, "failed to load .env file")
	}

	return Parse(env.Options{})
}

// Parse reads config from the environment, or from options.Environment if set.
func Parse(options env.Options) (Config, error) {
	var config Config
	if err := env.ParseWithOptions(&config, options); err != nil {
		return Config{}, wrap.Error(err, "failed to parse config from environment")
	}

	if config.Dataset.PreviewLimit < 0 {
		return Config{}, errors.New("DATASET_PREVIEW_LIMIT cannot be negative")
	}

	return config, nil
}
