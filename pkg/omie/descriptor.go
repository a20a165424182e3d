package omie

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Static errors for err113 compliance.
var (
	ErrDuplicateMethod      = errors.New("duplicate method name")
	ErrPartialPagination    = errors.New("pagination requires page number, page size, total count and array fields together")
	ErrDescriptorNameEmpty  = errors.New("method descriptor name is required")
	ErrDescriptorPathEmpty  = errors.New("method descriptor path is required")
	ErrUnsupportedPrototype = errors.New("request prototype must be a struct")
)

// VerbKind classifies a remote operation as read-only or mutating.
type VerbKind string

const (
	// Query operations read data. They are the only kind the client sends.
	Query VerbKind = "query"

	// Mutate operations change remote state.
	Mutate VerbKind = "mutate"
)

// FieldType is the declared type of a request field.
type FieldType string

const (
	FieldString  FieldType = "string"
	FieldInteger FieldType = "integer"
	FieldNumber  FieldType = "number"
	FieldBoolean FieldType = "boolean"
	FieldObject  FieldType = "object"
	FieldArray   FieldType = "array"
)

// FieldSpec declares one request field.
type FieldSpec struct {
	Type     FieldType `json:"type"               yaml:"type"`
	Required bool      `json:"required,omitempty" yaml:"required,omitempty"`
}

// Shape maps request field names to their declarations.
type Shape map[string]FieldSpec

// Fields returns the field names in sorted order.
func (s Shape) Fields() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Pagination names the request and response fields a list method pages with.
type Pagination struct {
	PageNumberField string `json:"page_number_field" yaml:"page_number_field"`
	PageSizeField   string `json:"page_size_field"   yaml:"page_size_field"`
	TotalCountField string `json:"total_count_field" yaml:"total_count_field"`
	ArrayField      string `json:"array_field"       yaml:"array_field"`
}

func (p *Pagination) complete() bool {
	return p.PageNumberField != "" && p.PageSizeField != "" && p.TotalCountField != "" && p.ArrayField != ""
}

func (p *Pagination) empty() bool {
	return p.PageNumberField == "" && p.PageSizeField == "" && p.TotalCountField == "" && p.ArrayField == ""
}

// MethodDescriptor is the static description of one remote operation.
//
// Request is an optional typed prototype (a struct value) used to validate
// typed parameters and to decode string parameters from the command line.
// When Shape is nil and Request is set, the shape is derived from the
// prototype's json and validate tags.
type MethodDescriptor struct {
	Name       string      `json:"name"                 yaml:"name"`
	Path       string      `json:"path"                 yaml:"path"`
	Kind       VerbKind    `json:"kind"                 yaml:"kind"`
	Shape      Shape       `json:"shape"                yaml:"shape"`
	Pagination *Pagination `json:"pagination,omitempty" yaml:"pagination,omitempty"`
	Request    any         `json:"-"                    yaml:"-"`
}

// Paginated reports whether the descriptor declares all pagination fields.
func (d MethodDescriptor) Paginated() bool {
	return d.Pagination != nil && d.Pagination.complete()
}

// Validate checks the descriptor invariants.
func (d MethodDescriptor) Validate() error {
	if d.Name == "" {
		return ErrDescriptorNameEmpty
	}

	if d.Path == "" {
		return fmt.Errorf("%s: %w", d.Name, ErrDescriptorPathEmpty)
	}

	if d.Pagination != nil && !d.Pagination.complete() && !d.Pagination.empty() {
		return fmt.Errorf("%s: %w", d.Name, ErrPartialPagination)
	}

	return nil
}

// Catalog is an immutable table of method descriptors keyed by name.
type Catalog struct {
	methods map[string]MethodDescriptor
}

// NewCatalog builds a catalog from descriptors. Descriptors without a shape
// get one derived from their request prototype, and an unset kind defaults
// to Query.
func NewCatalog(descriptors ...MethodDescriptor) (*Catalog, error) {
	catalog := &Catalog{methods: make(map[string]MethodDescriptor, len(descriptors))}

	for _, desc := range descriptors {
		prepared, err := prepareDescriptor(desc)
		if err != nil {
			return nil, err
		}

		if _, exists := catalog.methods[prepared.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateMethod, prepared.Name)
		}

		catalog.methods[prepared.Name] = prepared
	}

	return catalog, nil
}

// MustCatalog is like NewCatalog but panics on error. It is meant for
// package-level catalogs built from literal data.
func MustCatalog(descriptors ...MethodDescriptor) *Catalog {
	catalog, err := NewCatalog(descriptors...)
	if err != nil {
		panic(err)
	}

	return catalog
}

// Lookup returns the descriptor registered under name.
func (c *Catalog) Lookup(name string) (MethodDescriptor, bool) {
	if c == nil {
		return MethodDescriptor{}, false
	}

	desc, ok := c.methods[name]

	return desc, ok
}

// Names returns all method names in sorted order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}

	names := make([]string, 0, len(c.methods))
	for name := range c.methods {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Descriptors returns all descriptors sorted by name.
func (c *Catalog) Descriptors() []MethodDescriptor {
	names := c.Names()
	out := make([]MethodDescriptor, 0, len(names))

	for _, name := range names {
		out = append(out, c.methods[name])
	}

	return out
}

// Len returns the number of methods in the catalog.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}

	return len(c.methods)
}

func prepareDescriptor(desc MethodDescriptor) (MethodDescriptor, error) {
	if desc.Kind == "" {
		desc.Kind = Query
	}

	if desc.Shape == nil && desc.Request != nil {
		shape, err := ShapeOf(desc.Request)
		if err != nil {
			return MethodDescriptor{}, fmt.Errorf("%s: %w", desc.Name, err)
		}

		desc.Shape = shape
	}

	if desc.Pagination != nil && desc.Pagination.empty() {
		desc.Pagination = nil
	}

	err := desc.Validate()
	if err != nil {
		return MethodDescriptor{}, err
	}

	return desc, nil
}

// ShapeOf derives a Shape from a request struct. Field names come from json
// tags; a validate tag containing "required" marks the field required.
func ShapeOf(prototype any) (Shape, error) {
	typ := reflect.TypeOf(prototype)
	for typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w, got %T", ErrUnsupportedPrototype, prototype)
	}

	shape := make(Shape, typ.NumField())

	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		name := jsonFieldName(field)
		if name == "-" {
			continue
		}

		shape[name] = FieldSpec{
			Type:     fieldTypeOf(field.Type),
			Required: hasRequiredRule(field.Tag.Get("validate")),
		}
	}

	return shape, nil
}

func jsonFieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" {
		return field.Name
	}

	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return field.Name
	}

	return name
}

func hasRequiredRule(tag string) bool {
	for _, rule := range strings.Split(tag, ",") {
		if rule == "required" {
			return true
		}
	}

	return false
}

func fieldTypeOf(typ reflect.Type) FieldType {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	switch typ.Kind() {
	case reflect.String:
		return FieldString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return FieldInteger
	case reflect.Float32, reflect.Float64:
		return FieldNumber
	case reflect.Bool:
		return FieldBoolean
	case reflect.Slice, reflect.Array:
		return FieldArray
	default:
		return FieldObject
	}
}
