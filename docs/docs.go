// Package docs registers the OpenAPI document served under /swagger.
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
        "/ask": {
            "post": {
                "description": "Runs extractive question answering over the supplied context. The literal \"Could not find a specific answer in the text.\" means no answer was found.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["qa"],
                "summary": "Answer a question about a context",
                "parameters": [
                    {
                        "description": "Context and question",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/model.AskRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.AskResponse"}},
                    "400": {"description": "Context and question are required; a body that is not JSON is rejected with Invalid request body", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "description": "Reports whether the question answering model is loaded.",
                "produces": ["application/json"],
                "tags": ["ops"],
                "summary": "Readiness",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/upload": {
            "post": {
                "description": "Accepts a .pdf or .txt file and returns its text, truncated to 10000 characters.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["qa"],
                "summary": "Extract the text of a document",
                "parameters": [
                    {
                        "type": "file",
                        "description": "Document (.pdf or .txt)",
                        "name": "file",
                        "in": "formData",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.UploadResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "model.AskRequest": {
            "type": "object",
            "properties": {
                "context": {"type": "string", "example": "Paris is the capital of France."},
                "question": {"type": "string", "example": "What is the capital of France?"}
            }
        },
        "model.AskResponse": {
            "type": "object",
            "properties": {
                "answer": {"type": "string", "example": "paris"}
            }
        },
        "model.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "Context and question are required"}
            }
        },
        "model.HealthResponse": {
            "type": "object",
            "properties": {
                "model": {"type": "string", "example": "distilbert-base-uncased-distilled-squad"},
                "status": {"type": "string", "example": "healthy"}
            }
        },
        "model.UploadResponse": {
            "type": "object",
            "properties": {
                "context": {"type": "string", "example": "Paris is the capital of France."}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Document QA API",
	Description:      "Upload a document, then ask questions answered from its text.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
