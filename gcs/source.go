package gcs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"hermannm.dev/findash/csv"
	"hermannm.dev/findash/dataset"
	"hermannm.dev/wrap"
)

// Scheme is the source identifier prefix for objects in Google Cloud Storage, as in
// "gs://bucket/path/to/file.csv".
const Scheme = "gs"

// Source reads CSV tables from Google Cloud Storage objects. Implements dataset.Source.
//
// Credentials are taken from the environment (Application Default Credentials).
type Source struct {
	Options csv.ReadOptions
}

func (source Source) ReadTable(ctx context.Context, location string) (*dataset.Table, error) {
	sourceID := Scheme + "://" + location

	bucket, object, err := ParseObjectPath(location)
	if err != nil {
		return nil, &dataset.DataSourceError{Source: sourceID, Err: err}
	}

	data, err := downloadObject(ctx, bucket, object)
	if err != nil {
		return nil, &dataset.DataSourceError{Source: sourceID, Err: err}
	}

	return csv.ReadTable(bytes.NewReader(data), source.Options)
}

// The whole object is buffered, since reading the CSV needs to seek back after deducing its
// delimiter.
func downloadObject(ctx context.Context, bucket string, object string) ([]byte, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, wrap.Error(err, "failed to create storage client")
	}
	defer client.Close()

	reader, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, wrap.Errorf(err, "failed to open object '%s' in bucket '%s'", object, bucket)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, wrap.Errorf(err, "failed to read object '%s' in bucket '%s'", object, bucket)
	}

	return data, nil
}

// ParseObjectPath splits "bucket/path/to/object" into bucket and object name.
func ParseObjectPath(location string) (bucket string, object string, err error) {
	bucket, object, found := strings.Cut(strings.TrimPrefix(location, "/"), "/")
	if !found || bucket == "" || object == "" {
		return "", "", fmt.Errorf(
			"invalid object path '%s' (expected format '%s://<bucket>/<object>')",
			location,
			Scheme,
		)
	}
	return bucket, object, nil
}
