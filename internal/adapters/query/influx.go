package query

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxRunner executes Flux queries against InfluxDB v2 and flattens each
// result row into a Record.
type InfluxRunner struct {
	client influxdb2.Client
	api    api.QueryAPI
}

// NewInfluxRunner creates a runner with its own InfluxDB client.
func NewInfluxRunner(url, token, org string) *InfluxRunner {
	client := influxdb2.NewClient(url, token)
	return &InfluxRunner{
		client: client,
		api:    client.QueryAPI(org),
	}
}

// Run executes one Flux query.
func (r *InfluxRunner) Run(ctx context.Context, flux string) ([]Record, error) {
	result, err := r.api.Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("influx query: %w", err)
	}
	defer func() { _ = result.Close() }()

	var records []Record
	for result.Next() {
		row := result.Record()
		value, ok := toInt64(row.Value())
		if !ok {
			continue
		}
		records = append(records, Record{
			Time:  row.Time(),
			Field: row.Field(),
			Value: value,
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("influx result: %w", err)
	}
	return records, nil
}

// Close releases the underlying InfluxDB client.
func (r *InfluxRunner) Close() {
	r.client.Close()
}

// toInt64 accepts the numeric representations the store hands back.
func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
