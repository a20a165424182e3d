package methods_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/omie-client/pkg/omie"
	"github.com/fivetwenty-io/omie-client/pkg/omie/methods"
)

func TestCatalog(t *testing.T) {
	t.Parallel()

	catalog := methods.Catalog()
	assert.Equal(t, len(methods.Descriptors()), catalog.Len())

	for _, desc := range catalog.Descriptors() {
		assert.Equal(t, omie.Query, desc.Kind, desc.Name)
		assert.NotEmpty(t, desc.Shape, desc.Name)
		require.NoError(t, desc.Validate(), desc.Name)

		if desc.Paginated() {
			assert.Contains(t, desc.Shape, desc.Pagination.PageNumberField, desc.Name)
			assert.Contains(t, desc.Shape, desc.Pagination.PageSizeField, desc.Name)
		}
	}
}

func TestCatalogPagination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		paginated  bool
		arrayField string
	}{
		{methods.ConsultarPedido, false, ""},
		{methods.StatusPedido, false, ""},
		{methods.ListarPedidos, true, "pedido_venda_produto"},
		{methods.ListarEtapasPedido, true, "etapasPedido"},
		{methods.ListarEtapasFaturamento, true, "cadastros"},
		{methods.ConsultarVendedor, false, ""},
		{methods.ConsultarProjeto, false, ""},
		{methods.ListarOS, true, "osCadastro"},
		{methods.ListarCategorias, true, "categoria_cadastro"},
		{methods.ConsultarCategoria, false, ""},
		{methods.ListarContasPagar, true, "conta_pagar_cadastro"},
		{methods.ListarContasReceber, true, "conta_receber_cadastro"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			desc, ok := methods.Lookup(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.paginated, desc.Paginated())

			if tt.paginated {
				assert.Equal(t, tt.arrayField, desc.Pagination.ArrayField)
			}
		})
	}
}

func TestListarEtapasPedidoFields(t *testing.T) {
	t.Parallel()

	desc, ok := methods.Lookup(methods.ListarEtapasPedido)
	require.True(t, ok)

	assert.Equal(t, "produtos/pedidoetapas", desc.Path)
	assert.Equal(t, "nPagina", desc.Pagination.PageNumberField)
	assert.Equal(t, "nRegPorPagina", desc.Pagination.PageSizeField)
	assert.Equal(t, "nTotRegistros", desc.Pagination.TotalCountField)
	assert.Equal(t, omie.FieldSpec{Type: omie.FieldInteger}, desc.Shape["nPagina"])
	assert.Equal(t, omie.FieldSpec{Type: omie.FieldString}, desc.Shape["dDtInicial"])
}

func TestRequestValidation(t *testing.T) {
	t.Parallel()

	t.Run("vendedor needs codigo or codInt", func(t *testing.T) {
		t.Parallel()

		desc, _ := methods.Lookup(methods.ConsultarVendedor)

		_, err := omie.Normalize(desc, methods.VendedorConsultarRequest{})
		require.Error(t, err)

		var validationErr *omie.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.NotEmpty(t, validationErr.Field("codigo"))
		assert.NotEmpty(t, validationErr.Field("codInt"))

		payload, err := omie.Normalize(desc, methods.VendedorConsultarRequest{CodInt: "V-1"})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"codInt": "V-1"}, payload)
	})

	t.Run("date layout", func(t *testing.T) {
		t.Parallel()

		desc, _ := methods.Lookup(methods.ListarEtapasPedido)

		_, err := omie.Normalize(desc, methods.EtapaPedidoListarRequest{DDtInicial: "2024-05-01"})
		require.Error(t, err)
		assert.ErrorIs(t, err, omie.ErrInvalidParams)

		_, err = omie.Normalize(desc, methods.EtapaPedidoListarRequest{DDtInicial: "01/05/2024"})
		require.NoError(t, err)
	})

	t.Run("categoria codigo required", func(t *testing.T) {
		t.Parallel()

		desc, _ := methods.Lookup(methods.ConsultarCategoria)
		assert.True(t, desc.Shape["codigo"].Required)

		_, err := omie.Normalize(desc, map[string]any{})
		require.Error(t, err)
		assert.ErrorIs(t, err, omie.ErrInvalidParams)
	})
}

func TestDecodeValues(t *testing.T) {
	t.Parallel()

	desc, _ := methods.Lookup(methods.ListarEtapasPedido)

	decoded, err := omie.DecodeValues(desc, url.Values{
		"dDtInicial": {"01/05/2024"},
		"nCodPed":    {"123"},
	})
	require.NoError(t, err)

	request, ok := decoded.(*methods.EtapaPedidoListarRequest)
	require.True(t, ok)
	assert.Equal(t, "01/05/2024", request.DDtInicial)
	assert.Equal(t, int64(123), request.NCodPed)

	_, err = omie.DecodeValues(desc, url.Values{"nope": {"1"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, omie.ErrInvalidParams)
}
