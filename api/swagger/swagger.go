package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "MyanEdu Portal API",
        "description": "Student portal backend: sessions, course access, payments, classroom and notifications",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Phone lookup, login and registration"},
        {"name": "Session", "description": "Portal session restore and teardown"},
        {"name": "View", "description": "Server-validated view transitions"},
        {"name": "Catalog", "description": "Public course catalog"},
        {"name": "Dashboard", "description": "Authenticated landing data"},
        {"name": "Payments", "description": "Payment history, submission and export"},
        {"name": "Classroom", "description": "Lessons and discussion"},
        {"name": "Notifications", "description": "Student notifications"},
        {"name": "Receipts", "description": "Receipt rendering and download"},
        {"name": "Feeds", "description": "Server-sent event streams"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/auth/search": {
            "post": {
                "tags": ["Auth"],
                "summary": "Find an account by phone number",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LookupRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No account for this phone"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log in and bind the account to a portal session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Incorrect credentials"}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Create a new student account and bind it to the session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/session": {
            "get": {
                "tags": ["Session"],
                "summary": "Restore the portal state for a returning browser",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Session"],
                "summary": "End the portal session",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/session/refresh": {
            "post": {
                "tags": ["Session"],
                "summary": "Revalidate the session against the backend",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Session expired"}
                }
            }
        },
        "/view": {
            "post": {
                "tags": ["View"],
                "summary": "Apply a view transition and return the corrected intent",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ViewEventRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/catalog/batches": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List batches open for enrollment",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/catalog/promoted": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List promoted courses",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/catalog/instructors": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List instructors",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Dashboard stats, access states and payment records",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Session expired"}
                }
            }
        },
        "/exams": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Released exam results",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payments/methods": {
            "get": {
                "tags": ["Payments"],
                "summary": "List accepted payment methods",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payments": {
            "get": {
                "tags": ["Payments"],
                "summary": "Payment history with derived access states",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Payments"],
                "summary": "Submit a payment with a receipt image",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "batch_id", "in": "formData", "required": true, "type": "string"},
                    {"name": "amount", "in": "formData", "required": true, "type": "string"},
                    {"name": "payment_method", "in": "formData", "required": true, "type": "string"},
                    {"name": "transaction_id", "in": "formData", "required": true, "type": "string"},
                    {"name": "receipt_image", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payments/export": {
            "get": {
                "tags": ["Payments"],
                "summary": "Export payment history as CSV",
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "CSV file"}
                }
            }
        },
        "/classroom/{batchId}/lessons": {
            "get": {
                "tags": ["Classroom"],
                "summary": "List lessons for a batch the student can enter",
                "parameters": [
                    {"name": "batchId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Access expired or not verified"}
                }
            }
        },
        "/lessons/{lessonId}/comments": {
            "get": {
                "tags": ["Classroom"],
                "summary": "List discussion messages for a lesson",
                "parameters": [
                    {"name": "lessonId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/comments": {
            "post": {
                "tags": ["Classroom"],
                "summary": "Post a discussion message",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CommentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List notifications with unread count",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notifications/{id}/read": {
            "put": {
                "tags": ["Notifications"],
                "summary": "Mark a notification as read",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "202": {"description": "Accepted"}
                }
            }
        },
        "/profile": {
            "put": {
                "tags": ["Session"],
                "summary": "Update the student profile",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "name", "in": "formData", "type": "string"},
                    {"name": "address", "in": "formData", "type": "string"},
                    {"name": "old_password", "in": "formData", "type": "string"},
                    {"name": "new_password", "in": "formData", "type": "string"},
                    {"name": "profile_image", "in": "formData", "type": "file"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/receipts": {
            "post": {
                "tags": ["Receipts"],
                "summary": "Queue receipt rendering for a verified payment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReceiptRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Payment not verified"}
                }
            }
        },
        "/receipts/{id}": {
            "get": {
                "tags": ["Receipts"],
                "summary": "Receipt rendering status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/downloads/receipt": {
            "get": {
                "tags": ["Receipts"],
                "summary": "Download a rendered receipt by signed token",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF file"},
                    "401": {"description": "Invalid or expired token"}
                }
            }
        },
        "/feeds/notifications": {
            "get": {
                "tags": ["Feeds"],
                "summary": "Notification stream (server-sent events)",
                "produces": ["text/event-stream"],
                "responses": {
                    "200": {"description": "Event stream"}
                }
            }
        },
        "/feeds/lessons/{lessonId}/comments": {
            "get": {
                "tags": ["Feeds"],
                "summary": "Lesson discussion stream (server-sent events)",
                "parameters": [
                    {"name": "lessonId", "in": "path", "required": true, "type": "string"}
                ],
                "produces": ["text/event-stream"],
                "responses": {
                    "200": {"description": "Event stream"}
                }
            }
        }
    },
    "definitions": {
        "LookupRequest": {
            "type": "object",
            "properties": {
                "phone": {"type": "string"}
            },
            "required": ["phone"]
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "phone": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["phone", "password"]
        },
        "RegisterRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "phone": {"type": "string"},
                "date_of_birth": {"type": "string"},
                "address": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["name", "phone", "date_of_birth", "address", "password"]
        },
        "ViewEventRequest": {
            "type": "object",
            "properties": {
                "event": {"type": "string"},
                "intent": {"$ref": "#/definitions/ViewIntent"},
                "batch_id": {"type": "string"},
                "anchor": {"type": "string"}
            }
        },
        "ViewIntent": {
            "type": "object",
            "properties": {
                "screen": {"type": "string"},
                "pending_enroll_batch_id": {"type": "string"},
                "auth_prompt_open": {"type": "boolean"},
                "scroll_target": {"type": "string"},
                "notice": {"type": "string"}
            }
        },
        "CommentRequest": {
            "type": "object",
            "properties": {
                "lesson_id": {"type": "string"},
                "message": {"type": "string"}
            },
            "required": ["lesson_id", "message"]
        },
        "ReceiptRequest": {
            "type": "object",
            "properties": {
                "payment_id": {"type": "string"}
            },
            "required": ["payment_id"]
        },
        "PaymentRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "course_name": {"type": "string"},
                "batch_name": {"type": "string"},
                "batch_id": {"type": "string"},
                "amount": {"type": "number"},
                "payment_method": {"type": "string"},
                "status": {"type": "string"},
                "payment_date": {"type": "string"},
                "expire_date": {"type": "string"}
            }
        },
        "AccessState": {
            "type": "object",
            "properties": {
                "batch_id": {"type": "string"},
                "course_name": {"type": "string"},
                "batch_name": {"type": "string"},
                "status": {"type": "string"},
                "action": {"type": "string"},
                "days_remaining": {"type": "integer"},
                "is_expired": {"type": "boolean"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
