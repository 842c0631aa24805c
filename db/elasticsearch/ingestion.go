package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/google/uuid"
	"hermannm.dev/findash/dataset"
	"hermannm.dev/wrap"
)

func (elastic ElasticsearchDB) CreateTable(ctx context.Context, index string) error {
	mappings, err := tableMappings()
	if err != nil {
		return wrap.Error(err, "failed to translate table columns to Elasticsearch mappings")
	}

	if _, err = elastic.client.Indices.Create(index).Mappings(mappings).Do(ctx); err != nil {
		return wrapElasticErrorf(err, "Elasticsearch index creation request failed for '%s'", index)
	}

	return nil
}

func (elastic ElasticsearchDB) InsertTable(
	ctx context.Context,
	index string,
	data *dataset.Table,
) error {
	bulk, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client: elastic.untypedClient,
		Index:  index,
	})
	if err != nil {
		return wrap.Error(err, "failed to prepare bulk data insert")
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	for i := 0; i < data.Len(); i++ {
		rowNumber := i + 1

		id, err := uuid.NewUUID()
		if err != nil {
			return wrap.Errorf(err, "failed to generate unique ID for row %d", rowNumber)
		}

		rowJSON, err := json.Marshal(toDocument(i, data.Row(i)))
		if err != nil {
			return wrap.Errorf(
				err,
				"failed to encode row %d to JSON for sending to Elasticsearch",
				rowNumber,
			)
		}

		if err := bulk.Add(ctx, esutil.BulkIndexerItem{
			Action:     "create",
			DocumentID: id.String(),
			Body:       bytes.NewReader(rowJSON),
			OnFailure: func(
				ctx context.Context,
				item esutil.BulkIndexerItem,
				response esutil.BulkIndexerResponseItem,
				err error,
			) {
				if err == nil {
					err = fmt.Errorf("%s (%s)", response.Error.Reason, response.Error.Type)
				}
				cancel(wrap.Errorf(err, "failed to insert row %d", rowNumber))
			},
		}); err != nil {
			return wrap.Errorf(err, "failed to add row %d to bulk insert", rowNumber)
		}
	}

	if err := bulk.Close(ctx); err != nil {
		return wrap.Error(err, "failed to finish bulk insert")
	}

	if err := ctx.Err(); err != nil {
		if cause := context.Cause(ctx); cause != nil {
			return cause
		} else {
			return wrap.Error(err, "bulk insert was canceled with error")
		}
	}

	// Makes the inserted documents visible to the next search.
	if _, err := elastic.client.Indices.Refresh().Index(index).Do(ctx); err != nil {
		return wrapElasticErrorf(err, "failed to refresh index '%s' after insert", index)
	}

	return nil
}
