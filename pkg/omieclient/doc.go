// Package omieclient provides the primary entry point for constructing an
// Omie ERP API client that implements the omie.Client interface.
//
// It wires the built-in method catalog from the methods package into the
// executor defined in internal/client. Most applications import omieclient to
// build a client, then call methods by name or by descriptor.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/omie-client/pkg/omie"
//	  "github.com/fivetwenty-io/omie-client/pkg/omie/methods"
//	  "github.com/fivetwenty-io/omie-client/pkg/omieclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  cli, err := omieclient.New(&omie.Config{
//	    AppKey:    "1234567890",
//	    AppSecret: "secret",
//	    CacheTTL:  5 * time.Minute,
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Single call, decoded into a map.
//	  pedido, err := cli.Get(ctx, omie.ByName(methods.ConsultarPedido), map[string]any{
//	    "numero_pedido": 1234,
//	  })
//
//	  // Every page of a list method, typed.
//	  etapas, err := omie.GetAllAs[methods.EtapaPedido](ctx, cli,
//	    omie.ByName(methods.ListarEtapasPedido),
//	    methods.EtapaPedidoListarRequest{DDtInicial: "01/05/2024", DDtFinal: "31/05/2024"},
//	  )
//	  _, _ = pedido, etapas
//	}
//
// # Faults
//
// Remote faults come back as *omie.RemoteAPIError regardless of the HTTP
// status. Use omie.IsNotFound, omie.IsRedundantRequest or omie.IsFault to
// decide whether a fault is recoverable.
//
// # Helpers
//
// NewWithCredentials and NewFromEnv wrap New for the common cases.
package omieclient
