// Package apicontract embeds the OpenAPI description of the HTTP API. The
// server validates requests against it and serves it to the docs page.
package apicontract

import _ "embed"

//go:embed openapi.yml
var specBytes []byte

// GetSpecBytes returns the embedded OpenAPI specification as a byte slice.
func GetSpecBytes() []byte {
	return specBytes
}
