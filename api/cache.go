package api

import (
	"net/http"

	"hermannm.dev/devlog/log"
)

// Drops all cached datasets, so the next request reads them from their source again.
func (api DashboardAPI) ClearCache(res http.ResponseWriter, req *http.Request) {
	api.loader.Clear()
	log.Info("cleared dataset cache")
	res.WriteHeader(http.StatusNoContent)
}
