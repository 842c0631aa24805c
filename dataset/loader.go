package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"hermannm.dev/devlog/log"
)

// Source reads tables from one family of source identifiers, such as local files or a database.
type Source interface {
	// Location is the source identifier with its scheme prefix removed.
	ReadTable(ctx context.Context, location string) (*Table, error)
}

// SchemeFile is used for source identifiers without a scheme.
const SchemeFile = "file"

// Loader loads tables by source identifier and caches them until invalidated. It is safe for
// concurrent use; cached tables are shared read-only between callers.
type Loader struct {
	sources map[string]Source

	mutex sync.Mutex
	cache map[string]*Table
	// Bumped by Clear, and per source identifier by Invalidate. A read only stores its result if
	// neither changed while it ran.
	clearGeneration   uint64
	sourceGenerations map[string]uint64

	inFlight singleflight.Group
}

func NewLoader() *Loader {
	return &Loader{
		sources:           make(map[string]Source),
		cache:             make(map[string]*Table),
		sourceGenerations: make(map[string]uint64),
	}
}

// RegisterSource must be called before the loader is used concurrently.
func (loader *Loader) RegisterSource(scheme string, source Source) {
	loader.sources[strings.ToLower(scheme)] = source
}

// Load returns the cached table for the source identifier, reading it from its source on the
// first call. Concurrent first calls for the same identifier share a single read.
//
// Errors are *DataSourceError, *SchemaError or *DataQualityError.
func (loader *Loader) Load(ctx context.Context, sourceID string) (*Table, error) {
	sourceID = strings.TrimSpace(sourceID)

	table, generation, ok := loader.cached(sourceID)
	if ok {
		return table, nil
	}

	// Keyed by generation too, so callers arriving after an invalidation never join a read that
	// started before it.
	key := fmt.Sprintf("%d:%d:%s", generation.clear, generation.source, sourceID)
	result, err, _ := loader.inFlight.Do(key, func() (any, error) {
		// Another read may have finished between the cache check above and this call.
		if table, _, ok := loader.cached(sourceID); ok {
			return table, nil
		}
		// Not canceled with the first caller's request, since other callers may share it.
		return loader.read(context.WithoutCancel(ctx), sourceID, generation)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Table), nil
}

type cacheGeneration struct {
	clear  uint64
	source uint64
}

func (loader *Loader) cached(sourceID string) (table *Table, generation cacheGeneration, ok bool) {
	loader.mutex.Lock()
	defer loader.mutex.Unlock()

	table, ok = loader.cache[sourceID]
	return table, loader.currentGeneration(sourceID), ok
}

// Must hold the mutex.
func (loader *Loader) currentGeneration(sourceID string) cacheGeneration {
	return cacheGeneration{
		clear:  loader.clearGeneration,
		source: loader.sourceGenerations[sourceID],
	}
}

func (loader *Loader) read(
	ctx context.Context,
	sourceID string,
	generation cacheGeneration,
) (*Table, error) {
	scheme, location := SplitSourceID(sourceID)

	source, ok := loader.sources[scheme]
	if !ok {
		return nil, &DataSourceError{
			Source: sourceID,
			Err:    fmt.Errorf("no source registered for scheme '%s'", scheme),
		}
	}

	start := time.Now()
	table, err := source.ReadTable(ctx, location)
	if err != nil {
		return nil, classifyLoadError(sourceID, err)
	}

	log.Info(
		"loaded dataset",
		slog.String("source", sourceID),
		slog.Int("rows", table.Len()),
		slog.Duration("duration", time.Since(start)),
	)

	loader.mutex.Lock()
	defer loader.mutex.Unlock()
	// An invalidation during the read means the result may already be stale, so it is returned
	// to the callers waiting for it but not stored.
	if loader.currentGeneration(sourceID) == generation {
		loader.cache[sourceID] = table
	}

	return table, nil
}

func classifyLoadError(sourceID string, err error) error {
	var sourceErr *DataSourceError
	var schemaErr *SchemaError
	var qualityErr *DataQualityError
	if errors.As(err, &sourceErr) || errors.As(err, &schemaErr) || errors.As(err, &qualityErr) {
		return err
	}
	return &DataSourceError{Source: sourceID, Err: err}
}

// Invalidate drops the cached table for the source identifier, so the next Load reads it again.
func (loader *Loader) Invalidate(sourceID string) {
	loader.mutex.Lock()
	defer loader.mutex.Unlock()

	sourceID = strings.TrimSpace(sourceID)
	delete(loader.cache, sourceID)
	loader.sourceGenerations[sourceID]++
}

// Clear drops all cached tables.
func (loader *Loader) Clear() {
	loader.mutex.Lock()
	defer loader.mutex.Unlock()

	clear(loader.cache)
	clear(loader.sourceGenerations)
	loader.clearGeneration++
}

// SplitSourceID splits "scheme://location" into its parts. Identifiers without a scheme are
// local file paths.
func SplitSourceID(sourceID string) (scheme string, location string) {
	scheme, location, found := strings.Cut(sourceID, "://")
	if !found {
		return SchemeFile, sourceID
	}
	return strings.ToLower(scheme), location
}
