package api

import (
	"errors"
	"log/slog"
	"net/http"

	"hermannm.dev/devlog/log"
	"hermannm.dev/findash/csv"
	"hermannm.dev/findash/dataset"
	"hermannm.dev/findash/db"
)

type IngestResult struct {
	Database db.SupportedDB `json:"database"`
	Table    string         `json:"table"`
	RowCount int            `json:"rowCount"`
	// Source identifier that DATASET_SOURCE can be set to, to serve the ingested table.
	Source string `json:"source"`
}

// Expects:
//   - query parameter 'database': 'clickhouse' or 'elasticsearch'
//   - query parameter 'table': name of table to create
//   - multipart form field 'csvFile': CSV file with the transaction columns
//
// Returns:
//   - JSON-encoded IngestResult
func (api DashboardAPI) IngestCSV(res http.ResponseWriter, req *http.Request) {
	supportedDB, err := db.ParseSupportedDB(req.URL.Query().Get("database"))
	if err != nil {
		sendClientError(res, err, "invalid 'database' query parameter")
		return
	}

	database, ok := api.databases[supportedDB]
	if !ok {
		sendClientError(res, nil, "database '"+supportedDB.String()+"' is not enabled")
		return
	}

	table := req.URL.Query().Get("table")
	if table == "" {
		sendClientError(res, nil, "missing 'table' query parameter in request")
		return
	}

	csvFile, _, err := req.FormFile("csvFile")
	if err != nil {
		sendClientError(res, err, "failed to get CSV file from request")
		return
	}
	defer csvFile.Close()

	data, err := csv.ReadTable(csvFile, api.readOptions())
	if err != nil {
		var schemaErr *dataset.SchemaError
		var qualityErr *dataset.DataQualityError
		if errors.As(err, &schemaErr) || errors.As(err, &qualityErr) {
			sendClientError(res, err, "invalid CSV file")
		} else {
			sendServerError(res, err, "failed to read uploaded CSV file")
		}
		return
	}

	if err := db.IngestTable(req.Context(), database, table, data); err != nil {
		sendServerError(res, err, "failed to store uploaded CSV")
		return
	}

	source := supportedDB.String() + "://" + table
	api.loader.Invalidate(source)

	log.Info(
		"ingested CSV",
		slog.String("database", supportedDB.String()),
		slog.String("table", table),
		slog.Int("rows", data.Len()),
	)

	sendJSON(res, IngestResult{
		Database: supportedDB,
		Table:    table,
		RowCount: data.Len(),
		Source:   source,
	})
}
