package methods

// PedidoConsultarRequest identifies a sales order by any of its keys.
// Ref: produtos/pedido/#pvpConsultarRequest.
type PedidoConsultarRequest struct {
	CodigoPedido           int64  `json:"codigo_pedido,omitempty"            validate:"omitempty,gt=0"`
	CodigoPedidoIntegracao string `json:"codigo_pedido_integracao,omitempty"`
	NumeroPedido           string `json:"numero_pedido,omitempty"`
}

// PedidoStatusRequest asks for the status of a sales order.
// Ref: produtos/pedido/#pvpStatusRequest.
type PedidoStatusRequest struct {
	CodigoPedido           int64  `json:"codigo_pedido,omitempty"            validate:"required_without=CodigoPedidoIntegracao"`
	CodigoPedidoIntegracao string `json:"codigo_pedido_integracao,omitempty" validate:"required_without=CodigoPedido"`
}

// PedidoListarRequest filters the sales order list.
// Ref: produtos/pedido/#pvpListarRequest.
type PedidoListarRequest struct {
	Pagina                 int64  `json:"pagina,omitempty"                  validate:"omitempty,gte=1"`
	RegistrosPorPagina     int64  `json:"registros_por_pagina,omitempty"    validate:"omitempty,gte=1,lte=500"`
	ApenasImportadoAPI     string `json:"apenas_importado_api,omitempty"    validate:"omitempty,oneof=S N"`
	OrdenarPor             string `json:"ordenar_por,omitempty"`
	OrdemDecrescente       string `json:"ordem_decrescente,omitempty"       validate:"omitempty,oneof=S N"`
	FiltrarPorDataDe       string `json:"filtrar_por_data_de,omitempty"     validate:"omitempty,datetime=02/01/2006"`
	FiltrarPorDataAte      string `json:"filtrar_por_data_ate,omitempty"    validate:"omitempty,datetime=02/01/2006"`
	FiltrarApenasInclusao  string `json:"filtrar_apenas_inclusao,omitempty" validate:"omitempty,oneof=S N"`
	FiltrarApenasAlteracao string `json:"filtrar_apenas_alteracao,omitempty" validate:"omitempty,oneof=S N"`
	Etapa                  string `json:"etapa,omitempty"`
	FiltrarPorCliente      int64  `json:"filtrar_por_cliente,omitempty"`
}

// EtapaPedidoListarRequest filters the order stage history.
// Ref: produtos/pedidoetapas/#pEtapaListarRequest.
type EtapaPedidoListarRequest struct {
	NPagina           int64  `json:"nPagina,omitempty"           validate:"omitempty,gte=1"`
	NRegPorPagina     int64  `json:"nRegPorPagina,omitempty"     validate:"omitempty,gte=1,lte=500"`
	COrdenarPor       string `json:"cOrdenarPor,omitempty"`
	COrdemDecrescente string `json:"cOrdemDecrescente,omitempty" validate:"omitempty,oneof=S N"`
	DDtInicial        string `json:"dDtInicial,omitempty"        validate:"omitempty,datetime=02/01/2006"`
	DDtFinal          string `json:"dDtFinal,omitempty"          validate:"omitempty,datetime=02/01/2006"`
	CHrInicial        string `json:"cHrInicial,omitempty"`
	CHrFinal          string `json:"cHrFinal,omitempty"`
	NCodPed           int64  `json:"nCodPed,omitempty"`
	CCodIntPed        string `json:"cCodIntPed,omitempty"`
	CEtapa            string `json:"cEtapa,omitempty"`
}

// EtapaFaturamentoListarRequest pages through the invoicing stages.
// Ref: produtos/etapafat/#etaproListarRequest.
type EtapaFaturamentoListarRequest struct {
	Pagina             int64  `json:"pagina,omitempty"               validate:"omitempty,gte=1"`
	RegistrosPorPagina int64  `json:"registros_por_pagina,omitempty" validate:"omitempty,gte=1,lte=500"`
	OrdenarPor         string `json:"ordenar_por,omitempty"`
	OrdemDecrescente   string `json:"ordem_decrescente,omitempty"    validate:"omitempty,oneof=S N"`
}

// VendedorConsultarRequest identifies a seller by code or integration code.
// Ref: geral/vendedores/#vendConsultarRequest.
type VendedorConsultarRequest struct {
	Codigo int64  `json:"codigo,omitempty" validate:"required_without=CodInt"`
	CodInt string `json:"codInt,omitempty" validate:"required_without=Codigo"`
}

// ProjetoConsultarRequest identifies a project by code or integration code.
// Ref: geral/projetos/#projConsultarRequest.
type ProjetoConsultarRequest struct {
	Codigo int64  `json:"codigo,omitempty" validate:"required_without=CodInt"`
	CodInt string `json:"codInt,omitempty" validate:"required_without=Codigo"`
}

// OSListarRequest filters the service order list.
// Ref: servicos/os/#osListarRequest.
type OSListarRequest struct {
	Pagina             int64  `json:"pagina,omitempty"               validate:"omitempty,gte=1"`
	RegistrosPorPagina int64  `json:"registros_por_pagina,omitempty" validate:"omitempty,gte=1,lte=500"`
	ApenasImportadoAPI string `json:"apenas_importado_api,omitempty" validate:"omitempty,oneof=S N"`
	OrdenarPor         string `json:"ordenar_por,omitempty"`
	OrdemDecrescente   string `json:"ordem_decrescente,omitempty"    validate:"omitempty,oneof=S N"`
	FiltrarPorDataDe   string `json:"filtrar_por_data_de,omitempty"  validate:"omitempty,datetime=02/01/2006"`
	FiltrarPorDataAte  string `json:"filtrar_por_data_ate,omitempty" validate:"omitempty,datetime=02/01/2006"`
	FiltrarPorStatus   string `json:"filtrar_por_status,omitempty"`
	FiltrarPorEtapa    string `json:"filtrar_por_etapa,omitempty"`
	CExibirDespesas    string `json:"cExibirDespesas,omitempty"      validate:"omitempty,oneof=S N"`
}

// CategoriaListarRequest pages through the chart of categories.
// Ref: geral/categorias/#categoria_list_request.
type CategoriaListarRequest struct {
	Pagina             int64  `json:"pagina,omitempty"               validate:"omitempty,gte=1"`
	RegistrosPorPagina int64  `json:"registros_por_pagina,omitempty" validate:"omitempty,gte=1,lte=500"`
	FiltrarApenasAtiva string `json:"filtrar_apenas_ativa,omitempty" validate:"omitempty,oneof=S N"`
}

// CategoriaConsultarRequest identifies a category by code, e.g. "1.01.02".
// Ref: geral/categorias/#categoria_consultar.
type CategoriaConsultarRequest struct {
	Codigo string `json:"codigo" validate:"required"`
}

// ContaListarRequest filters payables and receivables. Both lists accept the
// same filters.
// Ref: financas/contapagar/#lcpListarRequest, financas/contareceber/#lcrListarRequest.
type ContaListarRequest struct {
	Pagina                int64  `json:"pagina,omitempty"                   validate:"omitempty,gte=1"`
	RegistrosPorPagina    int64  `json:"registros_por_pagina,omitempty"     validate:"omitempty,gte=1,lte=500"`
	ApenasImportadoAPI    string `json:"apenas_importado_api,omitempty"     validate:"omitempty,oneof=S N"`
	FiltrarPorDataDe      string `json:"filtrar_por_data_de,omitempty"      validate:"omitempty,datetime=02/01/2006"`
	FiltrarPorDataAte     string `json:"filtrar_por_data_ate,omitempty"     validate:"omitempty,datetime=02/01/2006"`
	FiltrarPorRegistroDe  string `json:"filtrar_por_registro_de,omitempty"  validate:"omitempty,datetime=02/01/2006"`
	FiltrarPorRegistroAte string `json:"filtrar_por_registro_ate,omitempty" validate:"omitempty,datetime=02/01/2006"`
	FiltrarPorStatus      string `json:"filtrar_por_status,omitempty"`
	FiltrarPorProjeto     int64  `json:"filtrar_por_projeto,omitempty"`
	FiltrarPorVendedor    int64  `json:"filtrar_por_vendedor,omitempty"`
	FiltrarCliente        int64  `json:"filtrar_cliente,omitempty"`
}
