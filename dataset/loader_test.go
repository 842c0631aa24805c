package dataset_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"hermannm.dev/findash/dataset"
)

type countingSource struct {
	reads     atomic.Int32
	locations sync.Map
	err       error
	// If set, reads block until it is closed.
	release chan struct{}
}

func (source *countingSource) ReadTable(ctx context.Context, location string) (*dataset.Table, error) {
	source.reads.Add(1)
	source.locations.Store(location, true)
	if source.release != nil {
		<-source.release
	}
	if source.err != nil {
		return nil, source.err
	}
	return dataset.NewTable(testTransactions()), nil
}

func TestLoadCachesBySourceIdentity(t *testing.T) {
	source := &countingSource{}
	loader := dataset.NewLoader()
	loader.RegisterSource(dataset.SchemeFile, source)

	first, err := loader.Load(context.Background(), "data/transactions.csv")
	require.NoError(t, err)
	second, err := loader.Load(context.Background(), "data/transactions.csv")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.EqualValues(t, 1, source.reads.Load())

	_, err = loader.Load(context.Background(), "data/other.csv")
	require.NoError(t, err)
	assert.EqualValues(t, 2, source.reads.Load())
}

func TestLoadDispatchesOnScheme(t *testing.T) {
	fileSource := &countingSource{}
	clickhouseSource := &countingSource{}

	loader := dataset.NewLoader()
	loader.RegisterSource(dataset.SchemeFile, fileSource)
	loader.RegisterSource("clickhouse", clickhouseSource)

	_, err := loader.Load(context.Background(), "ClickHouse://transactions")
	require.NoError(t, err)

	assert.EqualValues(t, 0, fileSource.reads.Load())
	assert.EqualValues(t, 1, clickhouseSource.reads.Load())
	_, found := clickhouseSource.locations.Load("transactions")
	assert.True(t, found)
}

func TestLoadUnknownSchemeIsDataSourceError(t *testing.T) {
	loader := dataset.NewLoader()

	_, err := loader.Load(context.Background(), "ftp://example.com/data.csv")

	var sourceErr *dataset.DataSourceError
	assert.True(t, errors.As(err, &sourceErr))
}

func TestLoadWrapsUntypedErrorsAsDataSourceError(t *testing.T) {
	loader := dataset.NewLoader()
	loader.RegisterSource(dataset.SchemeFile, &countingSource{err: errors.New("disk on fire")})

	_, err := loader.Load(context.Background(), "data.csv")

	var sourceErr *dataset.DataSourceError
	require.True(t, errors.As(err, &sourceErr))
	assert.Equal(t, "data.csv", sourceErr.Source)
}

func TestLoadKeepsTypedErrors(t *testing.T) {
	schemaErr := &dataset.SchemaError{MissingColumns: []string{"Date"}}
	loader := dataset.NewLoader()
	loader.RegisterSource(dataset.SchemeFile, &countingSource{err: schemaErr})

	_, err := loader.Load(context.Background(), "data.csv")

	var gotErr *dataset.SchemaError
	require.True(t, errors.As(err, &gotErr))
	assert.Same(t, schemaErr, gotErr)
}

func TestFailedLoadIsNotCached(t *testing.T) {
	source := &countingSource{err: errors.New("temporarily unavailable")}
	loader := dataset.NewLoader()
	loader.RegisterSource(dataset.SchemeFile, source)

	_, err := loader.Load(context.Background(), "data.csv")
	require.Error(t, err)

	source.err = nil
	table, err := loader.Load(context.Background(), "data.csv")
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())
}

func TestInvalidateAndClearForceReload(t *testing.T) {
	source := &countingSource{}
	loader := dataset.NewLoader()
	loader.RegisterSource(dataset.SchemeFile, source)

	ctx := context.Background()
	_, err := loader.Load(ctx, "a.csv")
	require.NoError(t, err)
	_, err = loader.Load(ctx, "b.csv")
	require.NoError(t, err)

	loader.Invalidate("a.csv")
	_, err = loader.Load(ctx, "a.csv")
	require.NoError(t, err)
	_, err = loader.Load(ctx, "b.csv")
	require.NoError(t, err)
	assert.EqualValues(t, 3, source.reads.Load())

	loader.Clear()
	_, err = loader.Load(ctx, "a.csv")
	require.NoError(t, err)
	_, err = loader.Load(ctx, "b.csv")
	require.NoError(t, err)
	assert.EqualValues(t, 5, source.reads.Load())
}

func inFlightLoad(
	t *testing.T,
	loader *dataset.Loader,
	source *countingSource,
	sourceID string,
) (finish func()) {
	t.Helper()

	var group errgroup.Group
	group.Go(func() error {
		_, err := loader.Load(context.Background(), sourceID)
		return err
	})

	require.Eventually(
		t,
		func() bool { return source.reads.Load() == 1 },
		time.Second,
		time.Millisecond,
	)

	return func() {
		close(source.release)
		require.NoError(t, group.Wait())
	}
}

func TestInvalidateOtherSourceKeepsInFlightResult(t *testing.T) {
	source := &countingSource{release: make(chan struct{})}
	loader := dataset.NewLoader()
	loader.RegisterSource(dataset.SchemeFile, source)

	finish := inFlightLoad(t, loader, source, "a.csv")
	loader.Invalidate("b.csv")
	finish()

	_, err := loader.Load(context.Background(), "a.csv")
	require.NoError(t, err)
	assert.EqualValues(t, 1, source.reads.Load())
}

func TestInvalidateDuringReadDiscardsResult(t *testing.T) {
	source := &countingSource{release: make(chan struct{})}
	loader := dataset.NewLoader()
	loader.RegisterSource(dataset.SchemeFile, source)

	finish := inFlightLoad(t, loader, source, "a.csv")
	loader.Invalidate("a.csv")
	finish()

	_, err := loader.Load(context.Background(), "a.csv")
	require.NoError(t, err)
	assert.EqualValues(t, 2, source.reads.Load())
}

func TestConcurrentLoadsShareOneRead(t *testing.T) {
	source := &countingSource{release: make(chan struct{})}
	loader := dataset.NewLoader()
	loader.RegisterSource(dataset.SchemeFile, source)

	const callers = 16
	tables := make([]*dataset.Table, callers)

	var started sync.WaitGroup
	started.Add(callers)

	group, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < callers; i++ {
		i := i
		group.Go(func() error {
			started.Done()
			table, err := loader.Load(ctx, "shared.csv")
			tables[i] = table
			return err
		})
	}

	started.Wait()
	close(source.release)
	require.NoError(t, group.Wait())

	// Callers that arrived after the shared read finished hit the cache instead.
	assert.EqualValues(t, 1, source.reads.Load())
	for _, table := range tables {
		assert.Same(t, tables[0], table)
	}
}

func TestSplitSourceID(t *testing.T) {
	for _, testCase := range []struct {
		sourceID string
		scheme   string
		location string
	}{
		{"src/data/2024.csv", "file", "src/data/2024.csv"},
		{"file:///tmp/data.csv", "file", "/tmp/data.csv"},
		{"gs://bucket/path/data.csv", "gs", "bucket/path/data.csv"},
		{"Elasticsearch://transactions", "elasticsearch", "transactions"},
	} {
		t.Run(testCase.sourceID, func(t *testing.T) {
			scheme, location := dataset.SplitSourceID(testCase.sourceID)
			assert.Equal(t, testCase.scheme, scheme)
			assert.Equal(t, testCase.location, location)
		})
	}
}
