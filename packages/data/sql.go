package data

import (
	"context"
	"fmt"

	"github.com/abdul-hamid-achik/suiterun/packages/db"
)

// ReadSQL runs query against the connection string in path and returns the
// rows as a list of column maps
func ReadSQL(ctx context.Context, path, query string) (any, error) {
	if query == "" {
		return nil, fmt.Errorf("sql data source %s needs a query", path)
	}

	client, err := db.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	result, err := client.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return result.Rows, nil
}
