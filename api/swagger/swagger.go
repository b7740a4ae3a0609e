package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Universal Yoga Admin API",
        "description": "Studio admin service for class definitions, scheduled occurrences and bulk cloud sync",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Admin authentication"},
        {"name": "Classes", "description": "Weekly class definitions"},
        {"name": "Occurrences", "description": "Dated class occurrences"},
        {"name": "Sync", "description": "Bulk upload to the remote store"},
        {"name": "Exports", "description": "Catalog exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Admin login",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes": {
            "get": {
                "tags": ["Classes"],
                "summary": "List class definitions",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Classes"],
                "summary": "Create class definition",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateClassRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes/search": {
            "get": {
                "tags": ["Classes"],
                "summary": "Search class definitions by instructor",
                "parameters": [
                    {"name": "instructor", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes/reset": {
            "post": {
                "tags": ["Classes"],
                "summary": "Reset the entire local catalog",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/classes/{id}": {
            "get": {
                "tags": ["Classes"],
                "summary": "Get class definition",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Classes"],
                "summary": "Delete class definition",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes/{id}/occurrences": {
            "get": {
                "tags": ["Occurrences"],
                "summary": "List occurrences of a class, soonest first",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Occurrences"],
                "summary": "Schedule an occurrence",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateOccurrenceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Occurrences"],
                "summary": "Delete every occurrence of a class",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/occurrences/{id}": {
            "get": {
                "tags": ["Occurrences"],
                "summary": "Get occurrence",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Occurrences"],
                "summary": "Update occurrence",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateOccurrenceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Occurrences"],
                "summary": "Delete occurrence",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/sync/upload": {
            "post": {
                "tags": ["Sync"],
                "summary": "Upload the local catalog to the remote store",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UploadRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Upload failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sync/status": {
            "get": {
                "tags": ["Sync"],
                "summary": "Report connectivity as seen by the sync engine",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/classes.csv": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export the class catalog as CSV",
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/exports/classes.pdf": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export the class catalog as PDF",
                "produces": ["application/pdf"],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "CreateClassRequest": {
            "type": "object",
            "required": ["day_of_week", "start_time", "capacity", "duration_minutes", "class_type", "instructor"],
            "properties": {
                "day_of_week": {"type": "string", "enum": ["Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"]},
                "start_time": {"type": "string", "example": "10:30"},
                "capacity": {"type": "integer", "minimum": 1, "maximum": 50},
                "duration_minutes": {"type": "integer", "minimum": 1, "maximum": 180},
                "price": {"type": "number", "minimum": 0, "maximum": 100},
                "class_type": {"type": "string", "enum": ["Flow Yoga", "Aerial Yoga", "Family Yoga"]},
                "description": {"type": "string"},
                "equipment": {"type": "string"},
                "instructor": {"type": "string"}
            }
        },
        "CreateOccurrenceRequest": {
            "type": "object",
            "required": ["date"],
            "properties": {
                "date": {"type": "string", "format": "date-time"},
                "instructor": {"type": "string"},
                "comments": {"type": "string"}
            }
        },
        "UpdateOccurrenceRequest": {
            "type": "object",
            "required": ["date", "instructor"],
            "properties": {
                "date": {"type": "string", "format": "date-time"},
                "instructor": {"type": "string"},
                "comments": {"type": "string"}
            }
        },
        "UploadRequest": {
            "type": "object",
            "properties": {
                "mode": {"type": "string", "enum": ["append", "replace"], "default": "append"}
            }
        },
        "UploadResult": {
            "type": "object",
            "properties": {
                "mode": {"type": "string"},
                "total": {"type": "integer"},
                "message": {"type": "string"}
            }
        },
        "SyncStatus": {
            "type": "object",
            "properties": {
                "available": {"type": "boolean"},
                "online": {"type": "boolean"},
                "quality": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
