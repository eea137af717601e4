// Package docs holds the OpenAPI description of the presence API, registered
// with swag so gin-swagger can serve it under /swagger/*.
//
// Keep it in sync with the godoc annotations in internal/http/handlers.
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
        "/users": {
            "get": {
                "description": "Returns every user that has attendance records, merged with the user directory (default name and avatar when absent), sorted by name.",
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "List users",
                "operationId": "listUsers",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/services.UserSummary"}}
                    },
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Data source unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/mean_time_weekday/{user_id}": {
            "get": {
                "description": "Returns seven [weekday, seconds] pairs, Monday first. Weekdays without records report 0.",
                "produces": ["application/json"],
                "tags": ["Presence"],
                "summary": "Mean presence per weekday",
                "operationId": "meanTimeWeekday",
                "parameters": [{"$ref": "#/parameters/userID"}],
                "responses": {
                    "200": {"description": "e.g. [[\"Mon\",0],[\"Tue\",30047.5],...]", "schema": {"$ref": "#/definitions/handlers.WeekdayPairs"}},
                    "400": {"description": "Bad user id", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Data source unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/presence_weekday/{user_id}": {
            "get": {
                "description": "Returns a header row [\"Weekday\",\"Presence (s)\"] followed by seven [weekday, seconds] pairs, Monday first.",
                "produces": ["application/json"],
                "tags": ["Presence"],
                "summary": "Total presence per weekday",
                "operationId": "presenceWeekday",
                "parameters": [{"$ref": "#/parameters/userID"}],
                "responses": {
                    "200": {"description": "e.g. [[\"Weekday\",\"Presence (s)\"],[\"Mon\",0],...]", "schema": {"$ref": "#/definitions/handlers.WeekdayPairs"}},
                    "400": {"description": "Bad user id", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Data source unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/presence_start_end/{user_id}": {
            "get": {
                "description": "Returns seven [weekday, [start, end]] entries, Monday first. Times are H:MM:SS; weekdays without records report [[], []].",
                "produces": ["application/json"],
                "tags": ["Presence"],
                "summary": "Mean arrival and departure per weekday",
                "operationId": "presenceStartEnd",
                "parameters": [{"$ref": "#/parameters/userID"}],
                "responses": {
                    "200": {"description": "e.g. [[\"Mon\",[[],[]]],[\"Tue\",[\"9:39:05\",\"17:59:52\"]],...]", "schema": {"$ref": "#/definitions/handlers.WeekdayPairs"}},
                    "400": {"description": "Bad user id", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Data source unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/get_url_photo/{user_id}": {
            "get": {
                "description": "Returns the absolute avatar URL: the directory host followed by the user's avatar path (a default path when the directory lacks the user).",
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Avatar URL",
                "operationId": "photoURL",
                "parameters": [{"$ref": "#/parameters/userID"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.PhotoResponse"}},
                    "400": {"description": "Bad user id", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Data source unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "parameters": {
        "userID": {
            "type": "integer",
            "minimum": 0,
            "example": 10,
            "description": "User ID",
            "name": "user_id",
            "in": "path",
            "required": true
        }
    },
    "definitions": {
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"description": "Stable, machine-readable code", "type": "string", "example": "not_found"},
                "message": {"description": "Human-readable message", "type": "string", "example": "user not found"},
                "request_id": {"description": "Correlates server logs and client errors", "type": "string", "example": "123e4567-e89b-12d3-a456-426614174000"}
            }
        },
        "handlers.PhotoResponse": {
            "type": "object",
            "properties": {
                "url": {"type": "string", "example": "https://intranet.example.com/api/images/users/10"}
            }
        },
        "handlers.WeekdayPairs": {
            "type": "array",
            "items": {"type": "array", "items": {}}
        },
        "services.UserSummary": {
            "type": "object",
            "properties": {
                "avatar": {"type": "string", "example": "/api/images/users/10"},
                "name": {"type": "string", "example": "Żaneta K."},
                "user_id": {"type": "integer", "example": 10}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Presence Analyzer API",
	Description:      "Per-user weekday presence statistics computed from attendance intervals and the intranet user directory.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
