// Package openapi embeds the OpenAPI description of the catalog API.
package openapi

import _ "embed"

// YAML contains the embedded OpenAPI document.
//
//go:embed openapi.yaml
var YAML []byte
