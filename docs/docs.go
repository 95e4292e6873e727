// Package docs registra la especificación OpenAPI de la API (generada con swag init).
package docs

import (
	_ "embed"

	"github.com/swaggo/swag"
)

// SwaggerJSON documento servido en /docs.
//
//go:embed swagger.json
var SwaggerJSON []byte

// SwaggerInfo metadatos de la especificación.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Inventario Ledger API",
	Description:      "Libro de movimientos de inventario por producto, lote y vencimiento con saldos versionados.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  string(SwaggerJSON),
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
