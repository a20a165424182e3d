package methods

import (
	"github.com/fivetwenty-io/omie-client/pkg/omie"
)

// Method names.
const (
	ConsultarPedido         = "ConsultarPedido"
	StatusPedido            = "StatusPedido"
	ListarPedidos           = "ListarPedidos"
	ListarEtapasPedido      = "ListarEtapasPedido"
	ListarEtapasFaturamento = "ListarEtapasFaturamento"
	ConsultarVendedor       = "ConsultarVendedor"
	ConsultarProjeto        = "ConsultarProjeto"
	ListarOS                = "ListarOS"
	ListarCategorias        = "ListarCategorias"
	ConsultarCategoria      = "ConsultarCategoria"
	ListarContasPagar       = "ListarContasPagar"
	ListarContasReceber     = "ListarContasReceber"
)

const (
	pathPedido           = "produtos/pedido"
	pathPedidoEtapas     = "produtos/pedidoetapas"
	pathEtapaFaturamento = "produtos/etapafat"
	pathVendedores       = "geral/vendedores"
	pathProjetos         = "geral/projetos"
	pathOS               = "servicos/os"
	pathCategorias       = "geral/categorias"
	pathContaPagar       = "financas/contapagar"
	pathContaReceber     = "financas/contareceber"
)

// standardPagination is the page convention shared by most list methods;
// only the array field differs.
func standardPagination(arrayField string) *omie.Pagination {
	return &omie.Pagination{
		PageNumberField: "pagina",
		PageSizeField:   "registros_por_pagina",
		TotalCountField: "total_de_registros",
		ArrayField:      arrayField,
	}
}

// Descriptors returns a fresh copy of every built-in method descriptor.
func Descriptors() []omie.MethodDescriptor {
	return []omie.MethodDescriptor{
		{
			Name:    ConsultarPedido,
			Path:    pathPedido,
			Request: PedidoConsultarRequest{},
		},
		{
			Name:    StatusPedido,
			Path:    pathPedido,
			Request: PedidoStatusRequest{},
		},
		{
			Name:       ListarPedidos,
			Path:       pathPedido,
			Request:    PedidoListarRequest{},
			Pagination: standardPagination("pedido_venda_produto"),
		},
		{
			Name:    ListarEtapasPedido,
			Path:    pathPedidoEtapas,
			Request: EtapaPedidoListarRequest{},
			Pagination: &omie.Pagination{
				PageNumberField: "nPagina",
				PageSizeField:   "nRegPorPagina",
				TotalCountField: "nTotRegistros",
				ArrayField:      "etapasPedido",
			},
		},
		{
			Name:       ListarEtapasFaturamento,
			Path:       pathEtapaFaturamento,
			Request:    EtapaFaturamentoListarRequest{},
			Pagination: standardPagination("cadastros"),
		},
		{
			Name:    ConsultarVendedor,
			Path:    pathVendedores,
			Request: VendedorConsultarRequest{},
		},
		{
			Name:    ConsultarProjeto,
			Path:    pathProjetos,
			Request: ProjetoConsultarRequest{},
		},
		{
			Name:       ListarOS,
			Path:       pathOS,
			Request:    OSListarRequest{},
			Pagination: standardPagination("osCadastro"),
		},
		{
			Name:       ListarCategorias,
			Path:       pathCategorias,
			Request:    CategoriaListarRequest{},
			Pagination: standardPagination("categoria_cadastro"),
		},
		{
			Name:    ConsultarCategoria,
			Path:    pathCategorias,
			Request: CategoriaConsultarRequest{},
		},
		{
			Name:       ListarContasPagar,
			Path:       pathContaPagar,
			Request:    ContaListarRequest{},
			Pagination: standardPagination("conta_pagar_cadastro"),
		},
		{
			Name:       ListarContasReceber,
			Path:       pathContaReceber,
			Request:    ContaListarRequest{},
			Pagination: standardPagination("conta_receber_cadastro"),
		},
	}
}

var defaultCatalog = omie.MustCatalog(Descriptors()...)

// Catalog returns the built-in catalog. It is immutable and shared.
func Catalog() *omie.Catalog {
	return defaultCatalog
}

// Lookup returns the built-in descriptor registered under name.
func Lookup(name string) (omie.MethodDescriptor, bool) {
	return defaultCatalog.Lookup(name)
}
