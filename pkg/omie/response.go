package omie

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

const (
	faultCodeKey   = "faultcode"
	faultStringKey = "faultstring"
)

// Record decodes the body as a JSON object. A body carrying a fault
// returns a *RemoteAPIError whatever the HTTP status was.
func (r *Response) Record() (Record, error) {
	fields, err := decodeObject(r.Body)
	if err != nil {
		return nil, err
	}

	var record Record

	err = unmarshalNumbers(r.Body, &record)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	if faultErr := faultFrom(fields, record, r.StatusCode); faultErr != nil {
		return nil, faultErr
	}

	return record, nil
}

// Decode checks the body for a fault and unmarshals it into v.
func (r *Response) Decode(v any) error {
	_, err := r.Record()
	if err != nil {
		return err
	}

	err = json.Unmarshal(r.Body, v)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	return nil
}

// Fault returns the fault carried by the body, or nil.
func (r *Response) Fault() *RemoteAPIError {
	_, err := r.Record()
	if apiErr, ok := AsRemoteAPIError(err); ok {
		return apiErr
	}

	return nil
}

func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage

	err := json.Unmarshal(body, &fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	if fields == nil {
		return nil, fmt.Errorf("%w: body is not a JSON object", ErrInvalidResponse)
	}

	return fields, nil
}

func faultFrom(fields map[string]json.RawMessage, body Record, status int) *RemoteAPIError {
	rawCode, hasCode := fields[faultCodeKey]
	rawString, hasString := fields[faultStringKey]

	if !hasCode && !hasString {
		return nil
	}

	return &RemoteAPIError{
		FaultCode:   rawText(rawCode),
		FaultString: rawText(rawString),
		StatusCode:  status,
		Body:        body,
	}
}

func rawText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}

	return string(bytes.TrimSpace(raw))
}

func unmarshalNumbers(data []byte, v any) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	return decoder.Decode(v)
}

// GetAs performs a single call and decodes the response into T.
func GetAs[T any](ctx context.Context, client Client, method Method, params any, opts ...CallOption) (T, error) {
	var out T

	resp, err := client.GetRaw(ctx, method, params, opts...)
	if err != nil {
		return out, err
	}

	err = resp.Decode(&out)
	if err != nil {
		return out, err
	}

	return out, nil
}
