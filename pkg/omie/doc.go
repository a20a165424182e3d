// Package omie provides types, interfaces, and helpers for working with the
// Omie ERP API.
//
// # Overview
//
// Every Omie method is a POST of a JSON envelope
//
//	{"app_key": "...", "app_secret": "...", "call": "ListarEtapasPedido", "param": [{...}]}
//
// to {prefix}{path}/. The omie package defines the static description of
// methods (MethodDescriptor and Catalog), parameter validation (Normalize),
// the response cache backends, the error taxonomy and the Client interface.
// A concrete client is provided by the omieclient package, and the built-in
// method catalog lives in the methods subpackage.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/omie-client/pkg/omie"
//	  "github.com/fivetwenty-io/omie-client/pkg/omieclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := omieclient.New(&omie.Config{AppKey: "key", AppSecret: "secret"})
//	  if err != nil { log.Fatal(err) }
//
//	  rec, err := cli.Get(ctx, omie.ByName("ConsultarCategoria"), map[string]any{"codigo": "1.01.02"})
//	  if err != nil { log.Fatal(err) }
//	  _ = rec
//	}
//
// # Parameters
//
// Parameters may be a map or a typed request struct. Both are checked
// against the method's Shape: unknown fields and missing required fields are
// rejected, values are coerced to the declared types and empty optional
// fields are dropped. All problems are reported at once in a
// *ValidationError.
//
// # Pagination
//
// GetAll and ForEachPage first issue a probe call for one record to read the
// total count, then request every page in order:
//
//	err := cli.ForEachPage(ctx, omie.ByName("ListarContasPagar"), params,
//	  func(ctx context.Context, page *omie.Page) error {
//	    fmt.Printf("page %d/%d: %d items\n", page.Number, page.TotalPages, len(page.Items))
//	    return nil
//	  }, omie.WithPageSize(200))
//
// GetAllAs decodes every record into a typed value.
//
// # Caching
//
// Responses are cached per client, keyed by URL and a digest of the request
// body (which carries the credentials). Faults are cached like results.
// Concurrent identical calls share one HTTP request. Use WithoutCache to
// bypass the cache for a single call, or set Config.Cache to a NATSKVCache to
// share responses between processes.
//
// # Errors
//
// Errors fall into three families: *ClientError for local misuse,
// *RemoteAPIError for faults reported by the API, and *TransportError when no
// response could be obtained. IsNotFound and IsRedundantRequest match the
// common recoverable faults.
package omie
