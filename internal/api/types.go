package api

import (
	"oceaneye/internal/identification"
)

// StatusResponse describes the running server.
type StatusResponse struct {
	CatalogURL     string `json:"catalog_url"`
	Algorithm      string `json:"algorithm"`
	Reencode       bool   `json:"reencode"`
	InFlight       bool   `json:"in_flight"`
	HistoryEnabled bool   `json:"history_enabled"`
	MaxImageBytes  int64  `json:"max_image_bytes"`
}

// IdentifyResponse wraps a settled report.
type IdentifyResponse struct {
	Report identification.View `json:"report"`
}

// ErrorResponse is returned for requests rejected before identification.
type ErrorResponse struct {
	Error string `json:"error"`
}
