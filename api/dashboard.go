package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"cloud.google.com/go/civil"
	"hermannm.dev/findash/analysis"
	"hermannm.dev/findash/csv"
	"hermannm.dev/findash/dataset"
)

// Returns:
//   - JSON-encoded dataset.FilterOptions for the configured dataset
func (api DashboardAPI) GetFilterOptions(res http.ResponseWriter, req *http.Request) {
	table, err := api.loader.Load(req.Context(), api.config.Dataset.Source)
	if err != nil {
		sendLoadError(res, err)
		return
	}

	sendJSON(res, table.Options())
}

// Expects:
//   - body: JSON-encoded analysis.FilterSpec (dates may be omitted, and then default to the
//     dataset's first and last date)
//
// Returns:
//   - JSON-encoded analysis.Dashboard
func (api DashboardAPI) GetDashboard(res http.ResponseWriter, req *http.Request) {
	table, spec, ok := api.loadAndParseFilter(res, req)
	if !ok {
		return
	}

	filtered, spec, err := filterTable(table, spec)
	if err != nil {
		sendFilterError(res, err)
		return
	}

	sendJSON(res, analysis.NewDashboard(filtered, spec, api.config.Dataset.PreviewLimit))
}

// Expects:
//   - body: JSON-encoded analysis.FilterSpec, as for GetDashboard
//
// Returns:
//   - CSV attachment of the filtered rows
func (api DashboardAPI) ExportCSV(res http.ResponseWriter, req *http.Request) {
	table, spec, ok := api.loadAndParseFilter(res, req)
	if !ok {
		return
	}

	filtered, _, err := filterTable(table, spec)
	if err != nil {
		sendFilterError(res, err)
		return
	}

	var output bytes.Buffer
	if err := csv.WriteTable(&output, filtered); err != nil {
		sendServerError(res, err, "failed to write CSV export")
		return
	}

	res.Header().Set("Content-Type", "text/csv; charset=utf-8")
	res.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", csv.ExportFileName),
	)
	res.WriteHeader(http.StatusOK)
	_, _ = output.WriteTo(res)
}

// Request bodies are small filter specs, so anything larger is rejected.
const maxFilterBodyBytes = 1 << 20

func (api DashboardAPI) loadAndParseFilter(
	res http.ResponseWriter,
	req *http.Request,
) (table *dataset.Table, spec analysis.FilterSpec, ok bool) {
	if err := json.NewDecoder(http.MaxBytesReader(res, req.Body, maxFilterBodyBytes)).
		Decode(&spec); err != nil {
		sendClientError(res, err, "failed to parse filter from request body")
		return nil, analysis.FilterSpec{}, false
	}

	table, err := api.loader.Load(req.Context(), api.config.Dataset.Source)
	if err != nil {
		sendLoadError(res, err)
		return nil, analysis.FilterSpec{}, false
	}

	return table, spec, true
}

// filterTable fills in omitted dates from the dataset's date bounds before filtering. An empty
// dataset has no date bounds, so with omitted dates it is returned as is, without validating the
// date range.
func filterTable(
	table *dataset.Table,
	spec analysis.FilterSpec,
) (filtered *dataset.Table, filledSpec analysis.FilterSpec, err error) {
	startOmitted := spec.StartDate == (civil.Date{})
	endOmitted := spec.EndDate == (civil.Date{})

	if table.Len() == 0 && (startOmitted || endOmitted) {
		return table, spec, nil
	}

	options := table.Options()
	if startOmitted {
		spec.StartDate = options.MinDate
	}
	if endOmitted {
		spec.EndDate = options.MaxDate
	}

	filtered, err = analysis.Filter(table, spec)
	if err != nil {
		return nil, analysis.FilterSpec{}, err
	}
	return filtered, spec, nil
}

func sendFilterError(res http.ResponseWriter, err error) {
	if isInvalidFilter(err) {
		sendClientError(res, err, "")
	} else {
		sendServerError(res, err, "failed to apply filter")
	}
}
