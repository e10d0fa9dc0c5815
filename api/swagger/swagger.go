package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Variation Order Tracker API",
        "description": "Tracks construction variation orders, their approval documents and reporting totals.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Authentication", "description": "Access tokens"},
        {"name": "VariationOrders", "description": "Variation order register, statistics, documents and exports"},
        {"name": "Activity", "description": "Audit feed"},
        {"name": "ProjectDetails", "description": "Contract-level snapshot"},
        {"name": "PaymentApplications", "description": "Interim payment claims"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "security": [],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {
                    "200": {"description": "Token issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/variation-orders": {
            "get": {
                "tags": ["VariationOrders"],
                "summary": "List variation orders",
                "parameters": [
                    {"in": "query", "name": "search", "type": "string"},
                    {"in": "query", "name": "status", "type": "string", "enum": ["PendingWithFFC", "PendingWithRSG", "PendingWithRSGFFC", "ApprovedAwaitingDVO", "DVORRIssued"]},
                    {"in": "query", "name": "submissionType", "type": "string", "enum": ["VO", "GenCorr", "RFI", "Email"]},
                    {"in": "query", "name": "sortBy", "type": "string", "enum": ["submissionDate", "createdAt", "proposalValue", "approvedAmount"], "default": "createdAt"},
                    {"in": "query", "name": "sortOrder", "type": "string", "enum": ["asc", "desc"], "default": "desc"},
                    {"in": "query", "name": "page", "type": "integer", "minimum": 1, "default": 1},
                    {"in": "query", "name": "limit", "type": "integer", "minimum": 1, "maximum": 100, "default": 20}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["VariationOrders"],
                "summary": "Create variation order (ADMIN)",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/VariationOrderInput"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/variation-orders/statistics": {
            "get": {
                "tags": ["VariationOrders"],
                "summary": "Counts and totals over VOs not excluded from stats",
                "responses": {"200": {"description": "OK; meta.cache_hit reports cache use", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/variation-orders/export": {
            "get": {
                "tags": ["VariationOrders"],
                "summary": "Export the filtered register",
                "produces": ["text/csv", "application/pdf", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "parameters": [
                    {"in": "query", "name": "format", "type": "string", "required": true, "enum": ["csv", "xlsx", "pdf"]},
                    {"in": "query", "name": "search", "type": "string"},
                    {"in": "query", "name": "status", "type": "string"},
                    {"in": "query", "name": "submissionType", "type": "string"},
                    {"in": "query", "name": "sortBy", "type": "string"},
                    {"in": "query", "name": "sortOrder", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Attachment", "schema": {"type": "file"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/variation-orders/{id}": {
            "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
            "get": {
                "tags": ["VariationOrders"],
                "summary": "Get variation order",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["VariationOrders"],
                "summary": "Partially update variation order (ADMIN)",
                "description": "Omitted fields are untouched. null or empty string clears optional fields; required fields cannot be cleared. PUT is accepted as an alias.",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/VariationOrderInput"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["VariationOrders"],
                "summary": "Delete variation order (ADMIN)",
                "responses": {
                    "204": {"description": "Deleted"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/variation-orders/{id}/files": {
            "post": {
                "tags": ["VariationOrders"],
                "summary": "Upload a stage document (ADMIN)",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "integer", "required": true},
                    {"in": "formData", "name": "stage", "type": "string", "required": true, "enum": ["proposed", "assessed", "approved"]},
                    {"in": "formData", "name": "file", "type": "file", "required": true}
                ],
                "responses": {
                    "200": {"description": "Stored", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Storage failure", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/files/{key}": {
            "get": {
                "tags": ["VariationOrders"],
                "summary": "Download a locally stored document",
                "parameters": [{"in": "path", "name": "key", "type": "string", "required": true}],
                "responses": {"200": {"description": "File", "schema": {"type": "file"}}, "404": {"description": "Not found"}}
            }
        },
        "/activity": {
            "get": {
                "tags": ["Activity"],
                "summary": "Recent activity, newest first",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/project-details": {
            "get": {
                "tags": ["ProjectDetails"],
                "summary": "Latest project details",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["ProjectDetails"],
                "summary": "Create or replace project details by projectCode (ADMIN)",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "Updated"}, "201": {"description": "Created"}, "400": {"description": "Validation error"}}
            }
        },
        "/payment-applications": {
            "get": {
                "tags": ["PaymentApplications"],
                "summary": "List payment applications, newest payment number first",
                "parameters": [
                    {"in": "query", "name": "status", "type": "string", "enum": ["Submitted", "UnderReview", "Certified", "Paid"]},
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "limit", "type": "integer", "maximum": 100}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["PaymentApplications"],
                "summary": "Create payment application (ADMIN)",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"type": "object"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Validation error"}, "409": {"description": "Duplicate payment number"}}
            }
        },
        "/payment-applications/{id}": {
            "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
            "get": {"tags": ["PaymentApplications"], "summary": "Get payment application", "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "patch": {
                "tags": ["PaymentApplications"],
                "summary": "Partially update payment application (ADMIN)",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Validation error"}, "404": {"description": "Not found"}}
            },
            "delete": {"tags": ["PaymentApplications"], "summary": "Delete payment application (ADMIN)", "responses": {"204": {"description": "Deleted"}, "404": {"description": "Not found"}}}
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "VariationOrderInput": {
            "type": "object",
            "properties": {
                "subject": {"type": "string", "maxLength": 500},
                "submissionType": {"type": "string", "enum": ["VO", "GenCorr", "RFI", "Email"]},
                "submissionReference": {"type": "string"},
                "responseReference": {"type": "string"},
                "vorReference": {"type": "string"},
                "dvoReference": {"type": "string"},
                "submissionDate": {"type": "string", "format": "date"},
                "dvoIssuedDate": {"type": "string", "format": "date"},
                "assessmentValue": {"type": "string", "description": "decimal, >= 0"},
                "proposalValue": {"type": "string", "description": "decimal, >= 0"},
                "approvedAmount": {"type": "string", "description": "decimal, >= 0"},
                "status": {"type": "string", "enum": ["PendingWithFFC", "PendingWithRSG", "PendingWithRSGFFC", "ApprovedAwaitingDVO", "DVORRIssued"]},
                "remarks": {"type": "string"},
                "actionNotes": {"type": "string"},
                "excludeFromStats": {"type": "boolean"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "total": {"type": "integer"},
                "totalPages": {"type": "integer"}
            }
        },
        "FieldError": {
            "type": "object",
            "properties": {"field": {"type": "string"}, "reason": {"type": "string"}}
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "array", "items": {"$ref": "#/definitions/FieldError"}}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
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
