package omie

import (
	"context"
	"encoding/json"
	"fmt"
)

// GetAllAs fetches every page of a paginated method and decodes each record
// into T, preserving page order.
func GetAllAs[T any](ctx context.Context, client Client, method Method, params any, opts ...CallOption) ([]T, error) {
	var out []T

	err := client.ForEachPage(ctx, method, params, func(_ context.Context, page *Page) error {
		for _, item := range page.Items {
			var value T

			err := json.Unmarshal(item, &value)
			if err != nil {
				return fmt.Errorf("%w: page %d: %w", ErrInvalidResponse, page.Number, err)
			}

			out = append(out, value)
		}

		return nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	return out, nil
}
