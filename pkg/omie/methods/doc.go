// Package methods is the built-in catalog of Omie API methods: their names,
// endpoint paths, typed request prototypes and pagination conventions.
//
// Descriptors are plain data. Build a custom catalog with omie.NewCatalog when
// a method you need is missing here.
package methods
