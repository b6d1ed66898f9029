package dto

import "github.com/inei-sipp/presupuesto_backend/internal/parsers"

// CatalogoResponse lists every supported format.
type CatalogoResponse struct {
	Formatos []parsers.FormatoInfo `json:"formatos"`
	Total    int                   `json:"total"`
}

// PlantillaResponse describes a downloadable template layout.
type PlantillaResponse struct {
	Plantilla parsers.Plantilla `json:"plantilla"`
}
