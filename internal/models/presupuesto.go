package models

import "github.com/shopspring/decimal"

// ProgramacionPresupuestal is one annual budget line: a (anio, unidad, meta,
// clasificador) cell with its framework amounts and execution amounts.
type ProgramacionPresupuestal struct {
	ID              int64           `json:"id"`
	Anio            int             `json:"anio"`
	UnidadID        int64           `json:"unidadEjecutoraId"`
	MetaID          int64           `json:"metaPresupuestalId"`
	ClasificadorID  int64           `json:"clasificadorId"`
	PIA             decimal.Decimal `json:"pia"`
	PIM             decimal.Decimal `json:"pim"`
	Certificado     decimal.Decimal `json:"certificado"`
	CompromisoAnual decimal.Decimal `json:"compromisoAnual"`
	Devengado       decimal.Decimal `json:"devengado"`
	Girado          decimal.Decimal `json:"girado"`
	Saldo           decimal.Decimal `json:"saldo"`
	AuditFields
}

// ProgramacionMensual is the month-by-month programming attached to an
// annual budget line.
type ProgramacionMensual struct {
	ID             int64           `json:"id"`
	ProgramacionID int64           `json:"programacionPresupuestalId"`
	Mes            int             `json:"mes"` // 1..12
	Programado     decimal.Decimal `json:"programado"`
	Ejecutado      decimal.Decimal `json:"ejecutado"`
	Saldo          decimal.Decimal `json:"saldo"`
	AuditFields
}

// ModificacionTipo distinguishes the two sides of a budget modification note.
type ModificacionTipo string

const (
	ModificacionHabilitacion ModificacionTipo = "HABILITACION"
	ModificacionHabilitada   ModificacionTipo = "HABILITADA"
)

// ModificacionPresupuestal is one row of a Nota de Modificación Presupuestal
// (Formato 04).
type ModificacionPresupuestal struct {
	ID               int64            `json:"id"`
	Anio             int              `json:"anio"`
	UnidadID         *int64           `json:"unidadEjecutoraId,omitempty"`
	ClasificadorID   *int64           `json:"clasificadorId,omitempty"`
	Tipo             ModificacionTipo `json:"tipo"`
	Monto            decimal.Decimal  `json:"monto"`
	NotaModificacion string           `json:"notaModificacion"`
	Fecha            string           `json:"fecha"` // normalized YYYY-MM-DD when parseable
	Descripcion      string           `json:"descripcion"`
	Asignado         decimal.Decimal  `json:"asignado"`
	Habilitadora     decimal.Decimal  `json:"habilitadora"`
	Habilitada       decimal.Decimal  `json:"habilitada"`
	PIMResultante    decimal.Decimal  `json:"pimResultante"`
	AuditFields
}
