package elasticsearch

import (
	"context"
	"errors"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"hermannm.dev/findash/config"
	"hermannm.dev/wrap"
)

// Implements db.Database and dataset.Source for Elasticsearch, with one index per table.
type ElasticsearchDB struct {
	client *elasticsearch.TypedClient
	// The bulk indexer helper only works with the untyped client.
	untypedClient *elasticsearch.Client
}

func NewElasticsearchDB(config config.Elasticsearch) (ElasticsearchDB, error) {
	clientConfig := elasticsearch.Config{
		Addresses:         []string{config.Address},
		EnableDebugLogger: config.Debug,
	}

	client, err := elasticsearch.NewTypedClient(clientConfig)
	if err != nil {
		return ElasticsearchDB{}, wrap.Error(err, "failed to create Elasticsearch client")
	}

	untypedClient, err := elasticsearch.NewClient(clientConfig)
	if err != nil {
		return ElasticsearchDB{}, wrap.Error(err, "failed to create untyped Elasticsearch client")
	}

	return ElasticsearchDB{client: client, untypedClient: untypedClient}, nil
}

const elasticIndexNotFoundException = "index_not_found_exception"

func (elastic ElasticsearchDB) DropTable(
	ctx context.Context,
	index string,
) (alreadyDropped bool, err error) {
	if _, err := elastic.client.Indices.Delete(index).Do(ctx); err != nil {
		var elasticErr *types.ElasticsearchError
		if errors.As(err, &elasticErr) && elasticErr.ErrorCause.Type == elasticIndexNotFoundException {
			return true, nil
		}

		return false, wrapElasticErrorf(err, "delete request failed for index '%s'", index)
	}

	return false, nil
}
