// Package docs holds the OpenAPI document served under /swagger/ when the
// binary is built with -tags=swagger. Regenerate with `swag init -g cmd/classifyd/docs.go`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "classifyd maintainers"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["status"],
                "summary": "Service banner",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.RootResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["status"],
                "summary": "Health and model state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.HealthResponse"}}
                }
            }
        },
        "/model": {
            "get": {
                "produces": ["application/json"],
                "tags": ["status"],
                "summary": "Loaded model and pipeline parameters",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ModelResponse"}}
                }
            }
        },
        "/predict": {
            "post": {
                "description": "Accepts a jpg/jpeg/png upload of at most 10 MiB and returns the predicted class with per-class scores. Predictions whose top score is below the confidence threshold are labelled \"Low Confidence Prediction\".",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["predict"],
                "summary": "Classify an image",
                "parameters": [
                    {"type": "file", "description": "Image file", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.PredictionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 400},
                "error": {"type": "string", "example": "File must be an image."},
                "kind": {"type": "string", "example": "validation"}
            }
        },
        "types.HealthResponse": {
            "type": "object",
            "properties": {
                "model_loaded": {"type": "boolean", "example": true},
                "status": {"type": "string", "example": "healthy"}
            }
        },
        "types.Model": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "example": "brain_tumor_model.onnx"},
                "name": {"type": "string", "example": "brain_tumor_model"},
                "path": {"type": "string"},
                "runtime": {"type": "string", "example": "onnx"}
            }
        },
        "types.ModelResponse": {
            "type": "object",
            "properties": {
                "allowed_extensions": {"type": "array", "items": {"type": "string"}},
                "classes": {"type": "array", "items": {"type": "string"}},
                "confidence_threshold": {"type": "number", "example": 0.6},
                "image_size": {"type": "integer", "example": 128},
                "max_file_size": {"type": "integer", "example": 10485760},
                "model": {"$ref": "#/definitions/types.Model"}
            }
        },
        "types.PredictionResponse": {
            "type": "object",
            "properties": {
                "all_probabilities": {"type": "object", "additionalProperties": {"type": "number"}},
                "confidence": {"type": "number", "example": 0.9731},
                "prediction": {"type": "string", "example": "glioma"}
            }
        },
        "types.RootResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Image classification API is running."},
                "status": {"type": "string", "example": "ok"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "classifyd API",
	Description:      "HTTP API for single-image classification.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
