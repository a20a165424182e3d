package methods

// EtapaPedido is one entry of the ListarEtapasPedido etapasPedido array.
type EtapaPedido struct {
	NCodPed    int64  `json:"nCodPed"              yaml:"nCodPed"`
	CCodIntPed string `json:"cCodIntPed,omitempty" yaml:"cCodIntPed,omitempty"`
	CNumero    string `json:"cNumero"              yaml:"cNumero"`
	CEtapa     string `json:"cEtapa"               yaml:"cEtapa"`
	DDtEtapa   string `json:"dDtEtapa"             yaml:"dDtEtapa"`
	CHrEtapa   string `json:"cHrEtapa,omitempty"   yaml:"cHrEtapa,omitempty"`
	CUsEtapa   string `json:"cUsEtapa,omitempty"   yaml:"cUsEtapa,omitempty"`
	Info       *Info  `json:"info,omitempty"       yaml:"info,omitempty"`
}

// Info carries the audit fields Omie attaches to many records.
type Info struct {
	DInc string `json:"dInc,omitempty" yaml:"dInc,omitempty"`
	HInc string `json:"hInc,omitempty" yaml:"hInc,omitempty"`
	UInc string `json:"uInc,omitempty" yaml:"uInc,omitempty"`
	DAlt string `json:"dAlt,omitempty" yaml:"dAlt,omitempty"`
	HAlt string `json:"hAlt,omitempty" yaml:"hAlt,omitempty"`
	UAlt string `json:"uAlt,omitempty" yaml:"uAlt,omitempty"`
}

// Categoria is the ConsultarCategoria response and a ListarCategorias entry.
type Categoria struct {
	Codigo            string `json:"codigo"                       yaml:"codigo"`
	Descricao         string `json:"descricao"                    yaml:"descricao"`
	CategoriaSuperior string `json:"categoria_superior,omitempty" yaml:"categoria_superior,omitempty"`
	Natureza          string `json:"natureza,omitempty"           yaml:"natureza,omitempty"`
	ContaReceita      string `json:"conta_receita,omitempty"      yaml:"conta_receita,omitempty"`
	ContaDespesa      string `json:"conta_despesa,omitempty"      yaml:"conta_despesa,omitempty"`
	ContaInativa      string `json:"conta_inativa,omitempty"      yaml:"conta_inativa,omitempty"`
}

// Vendedor is the ConsultarVendedor response.
type Vendedor struct {
	Codigo   int64   `json:"codigo"             yaml:"codigo"`
	CodInt   string  `json:"codInt,omitempty"   yaml:"codInt,omitempty"`
	Nome     string  `json:"nome"               yaml:"nome"`
	Email    string  `json:"email,omitempty"    yaml:"email,omitempty"`
	Inativo  string  `json:"inativo,omitempty"  yaml:"inativo,omitempty"`
	Comissao float64 `json:"comissao,omitempty" yaml:"comissao,omitempty"`
}

// Projeto is the ConsultarProjeto response.
type Projeto struct {
	Codigo  int64  `json:"codigo"            yaml:"codigo"`
	CodInt  string `json:"codInt,omitempty"  yaml:"codInt,omitempty"`
	Nome    string `json:"nome"              yaml:"nome"`
	Inativo string `json:"inativo,omitempty" yaml:"inativo,omitempty"`
}

// Conta is the subset of a payable or receivable entry most reports use.
type Conta struct {
	CodigoLancamento int64            `json:"codigo_lancamento_omie"     yaml:"codigo_lancamento_omie"`
	CodigoCategoria  string           `json:"codigo_categoria,omitempty" yaml:"codigo_categoria,omitempty"`
	CodigoProjeto    int64            `json:"codigo_projeto,omitempty"   yaml:"codigo_projeto,omitempty"`
	CodigoVendedor   int64            `json:"codigo_vendedor,omitempty"  yaml:"codigo_vendedor,omitempty"`
	ValorDocumento   float64          `json:"valor_documento"            yaml:"valor_documento"`
	DataEmissao      string           `json:"data_emissao,omitempty"     yaml:"data_emissao,omitempty"`
	DataVencimento   string           `json:"data_vencimento,omitempty"  yaml:"data_vencimento,omitempty"`
	DataPrevisao     string           `json:"data_previsao,omitempty"    yaml:"data_previsao,omitempty"`
	StatusTitulo     string           `json:"status_titulo,omitempty"    yaml:"status_titulo,omitempty"`
	Categorias       []ContaCategoria `json:"categorias,omitempty"       yaml:"categorias,omitempty"`
}

// ContaCategoria splits an entry's value across categories.
type ContaCategoria struct {
	CodigoCategoria string  `json:"codigo_categoria"     yaml:"codigo_categoria"`
	Valor           float64 `json:"valor"                yaml:"valor"`
	Percentual      float64 `json:"percentual,omitempty" yaml:"percentual,omitempty"`
}
