package omie

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/spf13/cast"
)

const (
	msgRequired     = "required"
	msgUnknownField = "unknown field"
)

var (
	validate      = newValidator()
	schemaDecoder = newSchemaDecoder()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := jsonFieldName(field)
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

func newSchemaDecoder() *schema.Decoder {
	decoder := schema.NewDecoder()
	decoder.SetAliasTag("json")
	decoder.IgnoreUnknownKeys(false)

	return decoder
}

// Normalize validates params against the descriptor's shape and returns the
// payload sent inside the envelope.
//
// params may be nil, a map[string]any, a map[string]string, url.Values, or a
// request struct (or pointer to one). Structs are checked against their
// validate tags first. Values are coerced to the declared field types and
// empty optional fields are dropped. Every offending field is reported in a
// single *ValidationError wrapped in a *ClientError.
func Normalize(desc MethodDescriptor, params any) (map[string]any, error) {
	raw, err := toMapping(desc, params)
	if err != nil {
		return nil, err
	}

	return normalizeMapping(desc, raw)
}

// DecodeValues decodes string key/value pairs into the descriptor's request
// prototype. Descriptors without a prototype get the values as a plain map.
func DecodeValues(desc MethodDescriptor, values url.Values) (any, error) {
	if desc.Request == nil {
		return valuesToMap(values), nil
	}

	typ := reflect.TypeOf(desc.Request)
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	target := reflect.New(typ).Interface()

	err := schemaDecoder.Decode(target, values)
	if err != nil {
		return nil, newClientError(desc.Name, decodeErrorToValidation(desc, err))
	}

	return target, nil
}

func toMapping(desc MethodDescriptor, params any) (map[string]any, error) {
	switch typed := params.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			out[key] = value
		}

		return out, nil
	case map[string]string:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			out[key] = value
		}

		return out, nil
	case url.Values:
		return valuesToMap(typed), nil
	}

	value := reflect.ValueOf(params)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return map[string]any{}, nil
		}

		value = value.Elem()
	}

	if value.Kind() != reflect.Struct {
		return nil, newClientError(desc.Name, fmt.Errorf("%w: %T", ErrUnsupportedParams, params))
	}

	return structToMapping(desc, value.Interface())
}

func structToMapping(desc MethodDescriptor, params any) (map[string]any, error) {
	err := validate.Struct(params)
	if err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return nil, newClientError(desc.Name, validationErrorFrom(desc.Name, fieldErrs))
		}

		return nil, newClientError(desc.Name, fmt.Errorf("%w: %w", ErrInvalidParams, err))
	}

	data, err := json.Marshal(params)
	if err != nil {
		return nil, newClientError(desc.Name, fmt.Errorf("%w: %w", ErrUnsupportedParams, err))
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var out map[string]any

	err = decoder.Decode(&out)
	if err != nil {
		return nil, newClientError(desc.Name, fmt.Errorf("%w: %w", ErrUnsupportedParams, err))
	}

	return out, nil
}

func normalizeMapping(desc MethodDescriptor, raw map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(raw))
	problems := make([]FieldError, 0)

	for name, value := range raw {
		if desc.Shape == nil {
			if !isEmpty(value) {
				out[name] = value
			}

			continue
		}

		spec, ok := desc.Shape[name]
		if !ok {
			problems = append(problems, FieldError{Field: name, Message: msgUnknownField})

			continue
		}

		if isEmpty(value) {
			continue
		}

		coerced, err := coerce(spec.Type, value)
		if err != nil {
			problems = append(problems, FieldError{Field: name, Message: "expected " + string(spec.Type)})

			continue
		}

		out[name] = coerced
	}

	for name, spec := range desc.Shape {
		if !spec.Required {
			continue
		}

		if _, ok := out[name]; ok {
			continue
		}

		if _, supplied := raw[name]; supplied && !isEmpty(raw[name]) {
			// already reported as a coercion problem
			continue
		}

		problems = append(problems, FieldError{Field: name, Message: msgRequired})
	}

	if len(problems) > 0 {
		sort.Slice(problems, func(i, j int) bool { return problems[i].Field < problems[j].Field })

		return nil, newClientError(desc.Name, &ValidationError{Method: desc.Name, Fields: problems})
	}

	return out, nil
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}

	if s, ok := value.(string); ok {
		return s == ""
	}

	rv := reflect.ValueOf(value)

	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

func coerce(fieldType FieldType, value any) (any, error) {
	if b, ok := value.(bool); ok && fieldType != FieldBoolean && fieldType != FieldString {
		return nil, fmt.Errorf("%w: boolean %v", ErrInvalidParams, b)
	}

	switch fieldType {
	case FieldString:
		if isComposite(value) {
			return nil, fmt.Errorf("%w: %T", ErrInvalidParams, value)
		}

		return cast.ToStringE(value)
	case FieldInteger:
		return coerceInteger(value)
	case FieldNumber:
		return coerceNumber(value)
	case FieldBoolean:
		return cast.ToBoolE(value)
	case FieldArray:
		kind := reflect.ValueOf(value).Kind()
		if kind != reflect.Slice && kind != reflect.Array {
			return nil, fmt.Errorf("%w: %T", ErrInvalidParams, value)
		}

		return value, nil
	case FieldObject:
		if !isComposite(value) {
			return nil, fmt.Errorf("%w: %T", ErrInvalidParams, value)
		}

		return value, nil
	default:
		return value, nil
	}
}

func coerceInteger(value any) (int64, error) {
	switch typed := value.(type) {
	case string:
		return strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
	case json.Number:
		n, err := typed.Int64()
		if err == nil {
			return n, nil
		}

		f, err := typed.Float64()
		if err != nil {
			return 0, err
		}

		return integralFloat(f)
	case float64:
		return integralFloat(typed)
	case float32:
		return integralFloat(float64(typed))
	}

	if isComposite(value) {
		return 0, fmt.Errorf("%w: %T", ErrInvalidParams, value)
	}

	return cast.ToInt64E(value)
}

func coerceNumber(value any) (float64, error) {
	switch typed := value.(type) {
	case string:
		return strconv.ParseFloat(strings.TrimSpace(typed), 64)
	case json.Number:
		return typed.Float64()
	}

	if isComposite(value) {
		return 0, fmt.Errorf("%w: %T", ErrInvalidParams, value)
	}

	return cast.ToFloat64E(value)
}

func integralFloat(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f {
		return 0, fmt.Errorf("%w: %v is not an integer", ErrInvalidParams, f)
	}

	return int64(f), nil
}

func isComposite(value any) bool {
	switch reflect.ValueOf(value).Kind() {
	case reflect.Map, reflect.Struct, reflect.Slice, reflect.Array:
		return true
	default:
		return false
	}
}

func valuesToMap(values url.Values) map[string]any {
	out := make(map[string]any, len(values))

	for key, vals := range values {
		switch len(vals) {
		case 0:
		case 1:
			out[key] = vals[0]
		default:
			out[key] = append([]string(nil), vals...)
		}
	}

	return out
}

func validationErrorFrom(method string, errs validator.ValidationErrors) *ValidationError {
	fields := make([]FieldError, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, FieldError{Field: fe.Field(), Message: formatValidationError(fe)})
	}

	sort.Slice(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })

	return &ValidationError{Method: method, Fields: fields}
}

func decodeErrorToValidation(desc MethodDescriptor, err error) error {
	var multi schema.MultiError
	if !errors.As(err, &multi) {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	fields := make([]FieldError, 0, len(multi))

	for key, fieldErr := range multi {
		var (
			unknown    schema.UnknownKeyError
			conversion schema.ConversionError
		)

		switch {
		case errors.As(fieldErr, &unknown):
			fields = append(fields, FieldError{Field: key, Message: msgUnknownField})
		case errors.As(fieldErr, &conversion):
			expected := FieldString
			if spec, ok := desc.Shape[key]; ok {
				expected = spec.Type
			}

			fields = append(fields, FieldError{Field: key, Message: "expected " + string(expected)})
		default:
			fields = append(fields, FieldError{Field: key, Message: fieldErr.Error()})
		}
	}

	sort.Slice(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })

	return &ValidationError{Method: desc.Name, Fields: fields}
}

// formatValidationError converts a validator.FieldError to a short message.
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "required_without":
		return "required when " + fe.Param() + " is not set"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lt":
		return "must be less than " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "datetime":
		return "must match layout " + fe.Param()
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", fe.Tag(), fe.Param())
		}

		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
