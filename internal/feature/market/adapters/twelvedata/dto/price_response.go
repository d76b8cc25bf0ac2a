// Package dto defines data transfer objects for the Twelve Data API responses.
package dto

// PriceResponse represents the JSON response from the Twelve Data price endpoint.
// On failure the API still answers 200 with status "error".
type PriceResponse struct {
	Price   string `json:"price"`
	Status  string `json:"status,omitempty"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
