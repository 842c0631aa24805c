package elasticsearch

import (
	"context"
	"encoding/json"

	"github.com/elastic/go-elasticsearch/v8/typedapi/core/search"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"hermannm.dev/findash/dataset"
	"hermannm.dev/findash/db"
	"hermannm.dev/wrap"
)

const searchPageSize = 1000

// ReadTable reads all documents of the index in their original row order, paging with
// search_after. Implements dataset.Source for "elasticsearch://<index>" identifiers.
func (elastic ElasticsearchDB) ReadTable(ctx context.Context, index string) (*dataset.Table, error) {
	var transactions []dataset.Transaction
	var searchAfter []types.FieldValue

	for {
		request := newPageRequest(searchAfter)

		response, err := elastic.client.Search().Index(index).Request(request).Do(ctx)
		if err != nil {
			return nil, wrapElasticErrorf(err, "search request failed for index '%s'", index)
		}

		hits := response.Hits.Hits
		for _, hit := range hits {
			var document transactionDocument
			if err := json.Unmarshal(hit.Source_, &document); err != nil {
				return nil, wrap.Errorf(
					err,
					"failed to decode document %d from index '%s'",
					len(transactions)+1,
					index,
				)
			}

			transaction, err := document.toTransaction()
			if err != nil {
				return nil, wrap.Errorf(err, "invalid document for row %d", document.Row+1)
			}
			transactions = append(transactions, transaction)
		}

		if len(hits) < searchPageSize {
			break
		}
		searchAfter = hits[len(hits)-1].Sort
	}

	return dataset.NewTable(transactions), nil
}

func newPageRequest(searchAfter []types.FieldValue) *search.Request {
	size := searchPageSize

	return &search.Request{
		Query:       &types.Query{MatchAll: types.NewMatchAllQuery()},
		Size:        &size,
		Sort:        []types.SortCombinations{map[string]string{db.ColumnRow: "asc"}},
		SearchAfter: searchAfter,
	}
}
