package kalium

// Wire models of the Kalium backend. Nested references are optional on the
// wire, so they are pointers.

// Rol is a user role.
type Rol struct {
	IDRol       int64   `json:"idRol"`
	NombreRol   string  `json:"nombreRol"`
	Descripcion *string `json:"descripcion,omitempty"`
}

// Usuario is a backend account.
type Usuario struct {
	IDUsuario int64  `json:"idUsuario"`
	Nombre    string `json:"nombre"`
	Apellido  string `json:"apellido"`
	Correo    string `json:"correo"`
	Rol       *Rol   `json:"rol,omitempty"`
}

// Estudiante wraps the student's account.
type Estudiante struct {
	IDEstudiante int64    `json:"idEstudiante"`
	Usuario      *Usuario `json:"usuario,omitempty"`
}

// PedidoRef references an order by id.
type PedidoRef struct {
	IDPedido int64 `json:"idPedido"`
}

// Entrega is a delivery.
type Entrega struct {
	IDEntrega    int64       `json:"idEntrega"`
	FechaEntrega *string     `json:"fechaEntrega,omitempty"`
	HoraEntrega  *string     `json:"horaEntrega,omitempty"`
	Pedido       *PedidoRef  `json:"pedido,omitempty"`
	Estudiante   *Estudiante `json:"estudiante,omitempty"`
}

// EstadoDevolucion is a row of the return states lookup.
type EstadoDevolucion struct {
	IDEstDevolucion  int64  `json:"idEstDevolucion"`
	EstadoDevolucion string `json:"estadoDevolucion"`
}

// Devolucion is a return.
type Devolucion struct {
	IDDevolucion    int64             `json:"idDevolucion"`
	FechaDevolucion *string           `json:"fechaDevolucion,omitempty"`
	HoraDevolucion  *string           `json:"horaDevolucion,omitempty"`
	Pedido          *PedidoRef        `json:"pedido,omitempty"`
	EstDevolucion   *EstadoDevolucion `json:"estDevolucion,omitempty"`
	Entrega         *Entrega          `json:"entrega,omitempty"`
	MotivoRechazo   *string           `json:"motivoRechazo,omitempty"`
}

// Categoria is a supply category.
type Categoria struct {
	IDCategoria     int64  `json:"idCategoria"`
	NombreCategoria string `json:"nombreCategoria"`
}

// TipoInsumo is a supply type.
type TipoInsumo struct {
	IDTipoInsumo     int64      `json:"idTipoInsumo"`
	NombreTipoInsumo string     `json:"nombreTipoInsumo"`
	Descripcion      *string    `json:"descripcion,omitempty"`
	Categoria        *Categoria `json:"categoria,omitempty"`
	EsQuimico        *bool      `json:"esQuimico,omitempty"`
}

// Insumo is one physical supply unit.
type Insumo struct {
	IDInsumo   int64       `json:"idInsumo"`
	TipoInsumo *TipoInsumo `json:"tipoInsumo,omitempty"`
}

// EntregaInsumo links an item to a delivery.
type EntregaInsumo struct {
	IDEntregaInsumo int64   `json:"idEntregaInsumo"`
	Insumo          *Insumo `json:"insumo,omitempty"`
}

// DevolucionRef references a return by id.
type DevolucionRef struct {
	IDDevolucion int64 `json:"idDevolucion"`
}

// InsumoRef references an item by id.
type InsumoRef struct {
	IDInsumo int64 `json:"idInsumo"`
}

// DevolucionDetalle is the stored review of one returned item.
type DevolucionDetalle struct {
	IDDevolucionDetalle  int64          `json:"idDevolucionDetalle"`
	Devolucion           *DevolucionRef `json:"devolucion,omitempty"`
	Insumo               *Insumo        `json:"insumo,omitempty"`
	EstadoInsumoDevuelto string         `json:"estadoInsumoDevuelto"`
	Observaciones        *string        `json:"observaciones,omitempty"`
}

// NuevoDetalle is the body of the detail upsert.
type NuevoDetalle struct {
	Devolucion           DevolucionRef `json:"devolucion"`
	Insumo               InsumoRef     `json:"insumo"`
	EstadoInsumoDevuelto string        `json:"estadoInsumoDevuelto"`
	Observaciones        *string       `json:"observaciones,omitempty"`
}

type rechazoBody struct {
	Motivo string `json:"motivo"`
}

type loginBody struct {
	Correo     string `json:"correo"`
	Contrasena string `json:"contrasena"`
}

// errorResponse is the JSON error body of the backend's exception handler.
type errorResponse struct {
	Timestamp *string `json:"timestamp,omitempty"`
	Status    *int    `json:"status,omitempty"`
	Error     *string `json:"error,omitempty"`
	Message   *string `json:"message,omitempty"`
	Path      *string `json:"path,omitempty"`
}
