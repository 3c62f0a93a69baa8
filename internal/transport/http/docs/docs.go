// Package docs registers the OpenAPI document served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "paths": {
        "/orders/{order_id}/items": {
            "get": {
                "summary": "List order items",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "order_id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/OrderDetailsResponse"}},
                    "404": {"description": "Order not found", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "422": {"description": "Invalid order id", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "post": {
                "summary": "Add a product to an order",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "order_id", "in": "path", "required": true, "type": "integer"},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddItemRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/AddItemResponse"}},
                    "400": {"description": "Order closed or insufficient stock", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Order or product not found", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "422": {"description": "Invalid request", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "503": {"description": "Lock wait timed out or database unavailable, retry", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/healthcheck": {
            "get": {
                "summary": "Service and database health",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Healthy", "schema": {"$ref": "#/definitions/HealthStatus"}},
                    "503": {"description": "Unhealthy", "schema": {"$ref": "#/definitions/HealthStatus"}}
                }
            }
        }
    },
    "definitions": {
        "AddItemRequest": {
            "type": "object",
            "required": ["product_id", "quantity"],
            "properties": {
                "product_id": {"type": "integer", "minimum": 1},
                "quantity": {"type": "integer", "minimum": 1}
            }
        },
        "AddItemResponse": {
            "type": "object",
            "properties": {
                "order_id": {"type": "integer"},
                "product_id": {"type": "integer"},
                "quantity": {"type": "integer"},
                "message": {"type": "string"}
            }
        },
        "Order": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "created_at": {"type": "string", "format": "date-time"},
                "closed_at": {"type": "string", "format": "date-time", "x-nullable": true}
            }
        },
        "OrderItem": {
            "type": "object",
            "properties": {
                "order_id": {"type": "integer"},
                "product_id": {"type": "integer"},
                "quantity": {"type": "integer"},
                "created_at": {"type": "string", "format": "date-time"},
                "product_name": {"type": "string"},
                "price": {"type": "string"}
            }
        },
        "OrderDetailsResponse": {
            "type": "object",
            "properties": {
                "order": {"$ref": "#/definitions/Order"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/OrderItem"}}
            }
        },
        "HealthStatus": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "database": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "ErrorBody": {
            "type": "object",
            "properties": {
                "detail": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Order Items API",
	Description:      "Adds products to orders against shared product stock.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
