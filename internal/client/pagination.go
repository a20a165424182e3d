package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"

	"github.com/fivetwenty-io/omie-client/internal/constants"
	"github.com/fivetwenty-io/omie-client/pkg/omie"
)

// GetAll fetches every page and concatenates the records in page order.
func (c *Client) GetAll(ctx context.Context, method omie.Method, params any, opts ...omie.CallOption) ([]omie.Record, error) {
	var records []omie.Record

	err := c.ForEachPage(ctx, method, params, func(_ context.Context, page *omie.Page) error {
		for i, item := range page.Items {
			var record omie.Record

			decoder := json.NewDecoder(bytes.NewReader(item))
			decoder.UseNumber()

			err := decoder.Decode(&record)
			if err != nil {
				return fmt.Errorf("%w: page %d item %d: %w", omie.ErrInvalidResponse, page.Number, i, err)
			}

			records = append(records, record)
		}

		return nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	return records, nil
}

// ForEachPage runs a probe call (page 1, size 1) to learn the total count,
// then requests pages 1..ceil(total/pageSize) in order and hands each to fn.
// Any error aborts the sweep.
func (c *Client) ForEachPage(ctx context.Context, method omie.Method, params any, fn omie.PageFunc, opts ...omie.CallOption) error {
	options := omie.ApplyCallOptions(opts...)

	ctx, cancel := withTimeout(ctx, options)
	defer cancel()

	desc, err := method.Resolve(c.catalog)
	if err != nil {
		return err
	}

	if !desc.Paginated() {
		return &omie.ClientError{Op: desc.Name, Err: omie.ErrNotPaginated}
	}

	desc, payload, err := c.prepare(omie.ByDescriptor(desc), params)
	if err != nil {
		return err
	}

	pagination := desc.Pagination

	probe, err := c.execute(ctx, desc, withPage(payload, pagination, constants.ProbePage, constants.ProbePageSize), options)
	if err != nil {
		return err
	}

	record, err := probe.Record()
	if err != nil {
		return err
	}

	total := totalCount(record, pagination.TotalCountField)
	if total <= 0 {
		return &omie.RemoteAPIError{
			FaultString: fmt.Sprintf("%s: %s", desc.Name, omie.ErrNoRecords),
			StatusCode:  probe.StatusCode,
			Body:        record,
			Err:         omie.ErrNoRecords,
		}
	}

	pages := (total + options.PageSize - 1) / options.PageSize
	if options.MaxPages > 0 && pages > options.MaxPages {
		pages = options.MaxPages
	}

	c.logger.Debug("paginating", map[string]interface{}{
		"method":    desc.Name,
		"total":     total,
		"pages":     pages,
		"page_size": options.PageSize,
	})

	for number := 1; number <= pages; number++ {
		resp, err := c.execute(ctx, desc, withPage(payload, pagination, number, options.PageSize), options)
		if err != nil {
			return err
		}

		items, err := pageItems(resp, pagination.ArrayField)
		if err != nil {
			return fmt.Errorf("%s page %d: %w", desc.Name, number, err)
		}

		err = fn(ctx, &omie.Page{
			Number:     number,
			TotalPages: pages,
			Total:      total,
			Items:      items,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func withPage(payload map[string]any, pagination *omie.Pagination, page, size int) map[string]any {
	out := make(map[string]any, len(payload)+2)
	for key, value := range payload {
		out[key] = value
	}

	out[pagination.PageNumberField] = page
	out[pagination.PageSizeField] = size

	return out
}

func totalCount(record omie.Record, field string) int {
	value, ok := record[field]
	if !ok || value == nil {
		return 0
	}

	total, err := cast.ToIntE(value)
	if err != nil {
		return 0
	}

	return total
}

func pageItems(resp *omie.Response, arrayField string) ([]json.RawMessage, error) {
	if fault := resp.Fault(); fault != nil {
		return nil, fault
	}

	var fields map[string]json.RawMessage

	err := json.Unmarshal(resp.Body, &fields)
	if err != nil || fields == nil {
		return nil, fmt.Errorf("%w: body is not a JSON object", omie.ErrInvalidResponse)
	}

	raw, ok := fields[arrayField]
	if !ok {
		return nil, fmt.Errorf("%w: missing array field %q", omie.ErrInvalidResponse, arrayField)
	}

	var items []json.RawMessage

	err = json.Unmarshal(raw, &items)
	if err != nil {
		return nil, fmt.Errorf("%w: field %q is not an array: %w", omie.ErrInvalidResponse, arrayField, err)
	}

	return items, nil
}
