// Package docs holds the Swagger document served at /swagger. Regenerate with
// `swag init -g cmd/api/main.go`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/jwt/create": {
            "post": {
                "tags": ["Auth"],
                "summary": "Obtain a token pair",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/controllers.LoginRequest"}}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/jwt/refresh": {
            "post": {"tags": ["Auth"], "summary": "Refresh the access token", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}
        },
        "/jwt/verify": {
            "post": {"tags": ["Auth"], "summary": "Verify an access token", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}
        },
        "/logout": {
            "post": {"tags": ["Auth"], "summary": "Log out", "responses": {"204": {"description": "No Content"}}}
        },
        "/o/{provider}": {
            "post": {
                "tags": ["Auth"],
                "summary": "Sign in with an identity provider",
                "parameters": [
                    {"type": "string", "name": "provider", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/controllers.ProviderRequest"}}
                ],
                "responses": {"201": {"description": "Created"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/register": {
            "post": {"tags": ["Auth"], "summary": "Self-service registration", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/user-role": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Auth"], "summary": "Current account roles", "responses": {"200": {"description": "OK"}}}
        },
        "/documents/application": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Documents"],
                "summary": "Generate an oral defense application",
                "produces": ["application/pdf"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"type": "object", "additionalProperties": {"type": "string"}}}],
                "responses": {"200": {"description": "PDF", "schema": {"type": "file"}}, "404": {"description": "Template file not found."}, "500": {"description": "Pipeline failure"}}
            }
        },
        "/documents/panel": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Documents"],
                "summary": "Generate an examination panel nomination",
                "produces": ["application/pdf"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"type": "object", "additionalProperties": {"type": "string"}}}],
                "responses": {"200": {"description": "PDF", "schema": {"type": "file"}}, "404": {"description": "Template file not found."}, "500": {"description": "Pipeline failure"}}
            }
        },
        "/admin/templates/{kind}/revision": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Templates"],
                "summary": "Stamp a template revision",
                "parameters": [
                    {"type": "string", "name": "kind", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/controllers.TemplateRevisionRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "No placeholders"}, "404": {"description": "Template missing"}}
            }
        },
        "/manuscripts": {
            "get": {
                "tags": ["Manuscripts"],
                "summary": "Search manuscripts",
                "parameters": [{"type": "string", "name": "q", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/controllers.ManuscriptResponse"}}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Manuscripts"],
                "summary": "Upload a manuscript",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"type": "string", "name": "title", "in": "formData", "required": true},
                    {"type": "string", "name": "description", "in": "formData"},
                    {"type": "file", "name": "pdf", "in": "formData", "required": true}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/controllers.ManuscriptResponse"}}, "400": {"description": "Bad Request"}}
            }
        },
        "/document-count": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Documents"], "summary": "Document counters", "responses": {"200": {"description": "OK"}}}
        },
        "/list-files": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Documents"],
                "summary": "List stored files",
                "parameters": [{"type": "string", "name": "kind", "in": "query", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/accounts": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Accounts"], "summary": "List accounts", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Accounts"], "summary": "Create an account", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/accounts/{id}": {
            "patch": {"security": [{"BearerAuth": []}], "tags": ["Accounts"], "summary": "Update an account", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["Accounts"], "summary": "Delete an account", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}}
        },
        "/faculty": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Faculty"], "summary": "List faculty", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Faculty"], "summary": "Create a faculty entry", "responses": {"201": {"description": "Created"}}}
        },
        "/faculty/{id}": {
            "delete": {"security": [{"BearerAuth": []}], "tags": ["Faculty"], "summary": "Delete a faculty entry", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}
        },
        "/reviews": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Reviews"], "summary": "List submission reviews", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Reviews"], "summary": "Create a submission review", "responses": {"201": {"description": "Created"}, "404": {"description": "Not Found"}}}
        },
        "/reviews/{id}": {
            "patch": {"security": [{"BearerAuth": []}], "tags": ["Reviews"], "summary": "Update a submission review", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "controllers.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "controllers.ProviderRequest": {
            "type": "object",
            "required": ["id_token"],
            "properties": {"id_token": {"type": "string"}}
        },
        "controllers.TemplateRevisionRequest": {
            "type": "object",
            "required": ["rev"],
            "properties": {"rev": {"type": "string"}, "date": {"type": "string"}}
        },
        "controllers.ManuscriptResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "pdf_url": {"type": "string"},
                "filename": {"type": "string"},
                "created_at": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "rkive API",
	Description:      "Oral defense paperwork generation and manuscript archive",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
