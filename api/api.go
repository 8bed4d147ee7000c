// Package api holds the OpenAPI description of the HTTP interface.
package api

import _ "embed"

// OpenAPI is the OpenAPI 3 document served at /swagger/spec.
//
//go:embed openapi.yaml
var OpenAPI []byte
