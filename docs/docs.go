// Package docs registers the OpenAPI description served at /swagger/.
// Regenerate with `swag init -g cmd/lankaportal/main.go` after changing
// handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {"get": {"tags": ["system"], "summary": "Aggregated module health", "responses": {"200": {"description": "OK"}, "503": {"description": "A module is down"}}}},
        "/modules": {"get": {"tags": ["system"], "summary": "List registered modules", "responses": {"200": {"description": "OK"}}}},
        "/catalog/collections": {"get": {"tags": ["catalog"], "summary": "List collections", "responses": {"200": {"description": "OK"}}}},
        "/catalog/collections/{collection}": {"get": {"tags": ["catalog"], "summary": "Query a collection", "parameters": [
            {"name": "collection", "in": "path", "required": true, "type": "string"},
            {"name": "category", "in": "query", "type": "string"},
            {"name": "location", "in": "query", "type": "string"},
            {"name": "q", "in": "query", "type": "string"},
            {"name": "page", "in": "query", "type": "integer", "description": "1-indexed; past the last page returns empty items"},
            {"name": "page_size", "in": "query", "type": "integer"}
        ], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}},
        "/catalog/collections/{collection}/suggest": {"get": {"tags": ["catalog"], "summary": "Autocomplete suggestions", "parameters": [
            {"name": "collection", "in": "path", "required": true, "type": "string"},
            {"name": "q", "in": "query", "required": true, "type": "string"},
            {"name": "limit", "in": "query", "type": "integer"}
        ], "responses": {"200": {"description": "OK"}}}},
        "/catalog/collections/{collection}/items/{id}": {"get": {"tags": ["catalog"], "summary": "Get a record", "parameters": [
            {"name": "collection", "in": "path", "required": true, "type": "string"},
            {"name": "id", "in": "path", "required": true, "type": "string"}
        ], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/catalog/collections/{collection}/locations": {"get": {"tags": ["catalog"], "summary": "List locations", "parameters": [
            {"name": "collection", "in": "path", "required": true, "type": "string"}
        ], "responses": {"200": {"description": "OK"}}}},
        "/catalog/collections/{collection}/export": {"get": {"tags": ["catalog"], "summary": "Export a filtered collection", "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"], "parameters": [
            {"name": "collection", "in": "path", "required": true, "type": "string"}
        ], "responses": {"200": {"description": "OK"}}}},
        "/insight": {"get": {"tags": ["insight"], "summary": "Generated insight for a search query", "parameters": [
            {"name": "q", "in": "query", "required": true, "type": "string"},
            {"name": "client", "in": "query", "type": "string"}
        ], "responses": {"200": {"description": "OK"}}}},
        "/auth/sign-in": {"post": {"tags": ["auth"], "summary": "Sign in", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/auth/sign-out": {"post": {"tags": ["auth"], "summary": "Sign out", "responses": {"204": {"description": "No Content"}}}},
        "/auth/session": {"get": {"tags": ["auth"], "summary": "Current session", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/auth/events": {"get": {"tags": ["auth"], "summary": "Session change stream (WebSocket)", "responses": {"101": {"description": "Switching Protocols"}}}},
        "/favorites/{collection}": {"get": {"tags": ["favorites"], "summary": "List favorites", "parameters": [
            {"name": "collection", "in": "path", "required": true, "type": "string"},
            {"name": "category", "in": "query", "type": "string"},
            {"name": "location", "in": "query", "type": "string"},
            {"name": "q", "in": "query", "type": "string"},
            {"name": "page", "in": "query", "type": "integer", "description": "1-indexed; past the last page returns empty items"},
            {"name": "page_size", "in": "query", "type": "integer"}
        ], "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/favorites/{collection}/{id}": {
            "put": {"tags": ["favorites"], "summary": "Add a favorite", "parameters": [
                {"name": "collection", "in": "path", "required": true, "type": "string"},
                {"name": "id", "in": "path", "required": true, "type": "string"}
            ], "responses": {"204": {"description": "No Content"}}},
            "delete": {"tags": ["favorites"], "summary": "Remove a favorite", "parameters": [
                {"name": "collection", "in": "path", "required": true, "type": "string"},
                {"name": "id", "in": "path", "required": true, "type": "string"}
            ], "responses": {"204": {"description": "No Content"}}}
        },
        "/contact": {"post": {"tags": ["contact"], "summary": "Submit the contact form", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "429": {"description": "Too Many Requests"}, "502": {"description": "Stored but not delivered"}}}},
        "/contact/messages": {"get": {"tags": ["contact"], "summary": "List contact messages", "responses": {"200": {"description": "OK"}}}},
        "/contact/messages/{id}": {"get": {"tags": ["contact"], "summary": "Get a contact message", "parameters": [
            {"name": "id", "in": "path", "required": true, "type": "string"}
        ], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/booking/checkouts": {"post": {"tags": ["booking"], "summary": "Start a checkout", "responses": {"201": {"description": "Created"}, "404": {"description": "Not Found"}}}},
        "/booking/checkouts/{id}": {"get": {"tags": ["booking"], "summary": "Get a checkout", "parameters": [
            {"name": "id", "in": "path", "required": true, "type": "string"}
        ], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/booking/checkouts/{id}/details": {"post": {"tags": ["booking"], "summary": "Submit traveller details", "parameters": [
            {"name": "id", "in": "path", "required": true, "type": "string"}
        ], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/booking/checkouts/{id}/payment": {"post": {"tags": ["booking"], "summary": "Pay for a checkout", "parameters": [
            {"name": "id", "in": "path", "required": true, "type": "string"}
        ], "responses": {"202": {"description": "Accepted"}, "409": {"description": "Conflict"}}}},
        "/booking/checkouts/{id}/cancel": {"post": {"tags": ["booking"], "summary": "Cancel a checkout", "parameters": [
            {"name": "id", "in": "path", "required": true, "type": "string"}
        ], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "LankaPortal API",
	Description:      "Sri Lanka travel catalog, insights, favorites, contact and booking.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
