package omie_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/omie-client/pkg/omie"
)

func TestClientError(t *testing.T) {
	t.Parallel()

	err := &omie.ClientError{Op: "ListarOS", Err: omie.ErrNotPaginated}

	assert.Equal(t, "omie client error: ListarOS: method has no pagination", err.Error())
	require.ErrorIs(t, err, omie.ErrNotPaginated)
	assert.True(t, omie.IsClientError(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, omie.IsRemoteAPIError(err))

	bare := &omie.ClientError{Err: omie.ErrMissingCredentials}
	assert.Equal(t, "omie client error: app_key and app_secret are required", bare.Error())
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	err := &omie.ValidationError{
		Method: "ConsultarProjeto",
		Fields: []omie.FieldError{
			{Field: "codigo", Message: "expected integer"},
			{Field: "extra", Message: "unknown field"},
		},
	}

	assert.Equal(t, "validation failed for ConsultarProjeto: codigo: expected integer; extra: unknown field", err.Error())
	require.ErrorIs(t, err, omie.ErrInvalidParams)
	assert.Equal(t, "unknown field", err.Field("extra"))
	assert.Empty(t, err.Field("codInt"))
}

func TestRemoteAPIError(t *testing.T) {
	t.Parallel()

	err := &omie.RemoteAPIError{
		FaultCode:   omie.FaultCodeNotFound,
		FaultString: "Pedido não cadastrado",
		StatusCode:  500,
	}

	assert.Equal(t, "omie API fault SOAP-ENV:Client-107: Pedido não cadastrado", err.Error())

	wrapped := fmt.Errorf("page 2: %w", err)
	assert.True(t, omie.IsRemoteAPIError(wrapped))
	assert.True(t, omie.IsNotFound(wrapped))
	assert.False(t, omie.IsRedundantRequest(wrapped))
	assert.True(t, omie.IsFault(wrapped, omie.FaultCodeNotFound))

	apiErr, ok := omie.AsRemoteAPIError(wrapped)
	require.True(t, ok)
	assert.Equal(t, 500, apiErr.StatusCode)

	noCode := &omie.RemoteAPIError{FaultString: "boom"}
	assert.Equal(t, "omie API fault: boom", noCode.Error())
}

func TestIsNoRecords(t *testing.T) {
	t.Parallel()

	assert.True(t, omie.IsNoRecords(&omie.RemoteAPIError{Err: omie.ErrNoRecords}))
	assert.True(t, omie.IsNoRecords(&omie.RemoteAPIError{FaultCode: omie.FaultCodeNoRecords}))
	assert.False(t, omie.IsNoRecords(&omie.RemoteAPIError{FaultCode: omie.FaultCodeRedundantRequest}))
	assert.False(t, omie.IsNoRecords(nil))
}

func TestTransportError(t *testing.T) {
	t.Parallel()

	err := omie.NewTransportError("https://app.omie.com.br/api/v1/geral/projetos/", context.Canceled)

	assert.True(t, omie.IsTransportError(err))
	require.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "geral/projetos")
	assert.False(t, omie.IsTransportError(errors.New("other")))
}
