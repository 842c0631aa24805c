package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"hermannm.dev/findash/config"
	"hermannm.dev/findash/csv"
	"hermannm.dev/findash/dataset"
	"hermannm.dev/findash/db"
	"hermannm.dev/wrap"
)

// DashboardAPI serves the filter-and-aggregate pipeline to an external UI.
type DashboardAPI struct {
	loader    *dataset.Loader
	databases map[db.SupportedDB]db.Database
	router    *http.ServeMux
	config    config.Config
}

// NewDashboardAPI registers the API's routes on the router. Only the databases in the given map
// can be ingested into.
func NewDashboardAPI(
	loader *dataset.Loader,
	databases map[db.SupportedDB]db.Database,
	router *http.ServeMux,
	config config.Config,
) DashboardAPI {
	api := DashboardAPI{loader: loader, databases: databases, router: router, config: config}

	api.router.HandleFunc("GET /api/options", api.GetFilterOptions)
	api.router.HandleFunc("POST /api/dashboard", api.GetDashboard)
	api.router.HandleFunc("POST /api/export", api.ExportCSV)
	api.router.HandleFunc("POST /api/cache/clear", api.ClearCache)
	api.router.HandleFunc("POST /api/ingest", api.IngestCSV)

	return api
}

// ListenAndServe serves the API until ctx is canceled, then waits for in-flight requests to
// finish.
func (api DashboardAPI) ListenAndServe(ctx context.Context) error {
	server := &http.Server{Addr: fmt.Sprintf(":%s", api.config.API.Port), Handler: api.router}

	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		shutdownErr <- server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	if err := <-shutdownErr; err != nil {
		return wrap.Error(err, "failed to shut down server gracefully")
	}
	return nil
}

const shutdownTimeout = 10 * time.Second

func (api DashboardAPI) readOptions() csv.ReadOptions {
	return csv.ReadOptions{Delimiter: 0, SkipInvalidRows: api.config.Dataset.SkipInvalidRows}
}
