package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"hermannm.dev/devlog"
	"hermannm.dev/devlog/log"
	"hermannm.dev/findash/api"
	"hermannm.dev/findash/config"
	"hermannm.dev/findash/csv"
	"hermannm.dev/findash/dataset"
	"hermannm.dev/findash/db"
	"hermannm.dev/findash/db/clickhouse"
	"hermannm.dev/findash/db/elasticsearch"
	"hermannm.dev/findash/gcs"
)

func main() {
	conf, err := config.ReadFromEnv()
	if err != nil {
		initializeLogger(false)
		log.ErrorCause(err, "failed to read config from env")
		os.Exit(1)
	}
	initializeLogger(conf.IsProduction)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	databases, err := initializeDatabases(ctx, conf)
	if err != nil {
		log.ErrorCause(err, "failed to initialize databases")
		os.Exit(1)
	}

	loader := initializeLoader(conf, databases)

	// Loads the dataset up front, so a misconfigured source shows up at startup. The API still
	// starts on failure, and reports the error on each request until the cache is cleared.
	if table, err := loader.Load(ctx, conf.Dataset.Source); err != nil {
		log.ErrorCause(err, "failed to load dataset on startup")
	} else {
		log.Info(
			"dataset ready",
			slog.String("source", conf.Dataset.Source),
			slog.Int("rows", table.Len()),
		)
	}

	dashboardAPI := api.NewDashboardAPI(loader, databases, http.NewServeMux(), conf)

	log.Infof("listening on port %s", conf.API.Port)
	serveErr := dashboardAPI.ListenAndServe(ctx)
	closeDatabases(databases)

	if serveErr != nil {
		log.ErrorCause(serveErr, "server stopped")
		os.Exit(1)
	}
	log.Info("server stopped")
}

func initializeLogger(isProduction bool) {
	var logHandler slog.Handler
	if isProduction {
		logHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		logHandler = devlog.NewHandler(os.Stdout, &devlog.Options{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(logHandler))
}

func initializeDatabases(
	ctx context.Context,
	conf config.Config,
) (map[db.SupportedDB]db.Database, error) {
	databases := make(map[db.SupportedDB]db.Database, len(db.SupportedDBs))

	if conf.ClickHouse.Enabled() {
		log.Info("connecting to ClickHouse", slog.String("address", conf.ClickHouse.Address))
		database, err := clickhouse.NewClickHouseDB(ctx, conf.ClickHouse)
		if err != nil {
			return nil, err
		}
		databases[db.DBClickHouse] = database
	}

	if conf.Elasticsearch.Enabled() {
		log.Info("connecting to Elasticsearch", slog.String("address", conf.Elasticsearch.Address))
		database, err := elasticsearch.NewElasticsearchDB(conf.Elasticsearch)
		if err != nil {
			return nil, err
		}
		databases[db.DBElasticsearch] = database
	}

	return databases, nil
}

// closeDatabases closes the connections of databases that hold one.
func closeDatabases(databases map[db.SupportedDB]db.Database) {
	for supportedDB, database := range databases {
		closer, ok := database.(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			log.ErrorCause(
				err,
				"failed to close database connection",
				slog.String("database", supportedDB.String()),
			)
		}
	}
}

// initializeLoader registers a source for every supported source identifier scheme: local files,
// Google Cloud Storage objects and tables in the enabled databases.
func initializeLoader(
	conf config.Config,
	databases map[db.SupportedDB]db.Database,
) *dataset.Loader {
	readOptions := csv.ReadOptions{Delimiter: 0, SkipInvalidRows: conf.Dataset.SkipInvalidRows}

	loader := dataset.NewLoader()
	loader.RegisterSource(dataset.SchemeFile, csv.FileSource{Options: readOptions})
	loader.RegisterSource(gcs.Scheme, gcs.Source{Options: readOptions})
	for supportedDB, database := range databases {
		loader.RegisterSource(supportedDB.String(), database)
	}
	return loader
}
