// Package docs holds the OpenAPI description served at /swagger.
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
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Register a new account",
                "parameters": [
                    {"description": "Registration details", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.RegisterRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.AuthResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.AuthResponse"}},
                    "500": {"description": "Server error", "schema": {"type": "string"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Sign in",
                "parameters": [
                    {"description": "Credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.AuthResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.AuthResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.AuthResponse"}}
                }
            }
        },
        "/auth/ForgotPassword": {
            "post": {
                "tags": ["Auth"],
                "summary": "Email a password reset link",
                "parameters": [
                    {"type": "string", "description": "Account email", "name": "email", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Email is required", "schema": {"type": "string"}},
                    "404": {"description": "User not found", "schema": {"type": "string"}},
                    "500": {"description": "Email could not be sent", "schema": {"type": "string"}}
                }
            }
        },
        "/auth/ResendEmailConfirmation": {
            "post": {
                "tags": ["Auth"],
                "summary": "Email a fresh confirmation link",
                "parameters": [
                    {"type": "string", "description": "Account email", "name": "email", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Email is required", "schema": {"type": "string"}},
                    "404": {"description": "User not found", "schema": {"type": "string"}}
                }
            }
        },
        "/auth/ResetPassword": {
            "post": {
                "consumes": ["application/json"],
                "tags": ["Auth"],
                "summary": "Set a new password with a reset code",
                "parameters": [
                    {"description": "Reset details", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ResetPasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Invalid input or code", "schema": {"type": "string"}},
                    "404": {"description": "User not found", "schema": {"type": "string"}}
                }
            }
        },
        "/auth/ConfirmEmail": {
            "post": {
                "tags": ["Auth"],
                "summary": "Confirm an email address",
                "parameters": [
                    {"type": "string", "description": "User id", "name": "userId", "in": "query", "required": true},
                    {"type": "string", "description": "Confirmation code from the email link", "name": "code", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"},
                    "404": {"description": "Not Found"},
                    "500": {"description": "Server error", "schema": {"type": "string"}}
                }
            }
        },
        "/users/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Current user profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.UserResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "string"}},
                    "404": {"description": "User not found", "schema": {"type": "string"}}
                }
            }
        },
        "/users/ChangePassword": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["Users"],
                "summary": "Change the caller's password",
                "parameters": [
                    {"description": "Old and new password", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ChangePasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Invalid password", "schema": {"type": "string"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "string"}}
                }
            }
        },
        "/users/preferences": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Update notification preferences",
                "parameters": [
                    {"description": "Preferences", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.UpdatePreferencesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.UserResponse"}},
                    "400": {"description": "Invalid request body", "schema": {"type": "string"}}
                }
            }
        },
        "/readbooks": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["ReadBooks"],
                "summary": "List the caller's read books",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.ReadBook"}}}
                }
            }
        },
        "/readbooks/Create": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ReadBooks"],
                "summary": "Record a read book",
                "parameters": [
                    {"description": "Book", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ReadBookRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.ReadBook"}},
                    "400": {"description": "Validation error", "schema": {"type": "string"}}
                }
            }
        },
        "/readbooks/Update": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ReadBooks"],
                "summary": "Update a read book",
                "parameters": [
                    {"description": "Book including its id", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ReadBookRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.ReadBook"}},
                    "400": {"description": "Validation error", "schema": {"type": "string"}},
                    "404": {"description": "Read book not found", "schema": {"type": "string"}}
                }
            }
        },
        "/readbooks/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["ReadBooks"],
                "summary": "Get one read book",
                "parameters": [
                    {"type": "integer", "description": "Read book id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.ReadBook"}},
                    "404": {"description": "Read book not found", "schema": {"type": "string"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["ReadBooks"],
                "summary": "Delete a read book",
                "parameters": [
                    {"type": "integer", "description": "Read book id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Read book not found", "schema": {"type": "string"}}
                }
            }
        },
        "/books/search": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Books"],
                "summary": "Search the book catalog",
                "parameters": [
                    {"type": "string", "description": "Search term", "name": "q", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.VolumeSearchResult"}},
                    "400": {"description": "Search term is required", "schema": {"type": "string"}},
                    "502": {"description": "Book catalog unavailable", "schema": {"type": "string"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.RegisterRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "termsAgreedTo": {"type": "boolean"}
            }
        },
        "handlers.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "handlers.ResetPasswordRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "confirmPassword": {"type": "string"},
                "code": {"type": "string"}
            }
        },
        "handlers.AuthResponse": {
            "type": "object",
            "properties": {
                "isAuthSuccessful": {"type": "boolean"},
                "errorMessage": {"type": "string"},
                "token": {"type": "string"}
            }
        },
        "handlers.ChangePasswordRequest": {
            "type": "object",
            "properties": {
                "oldPassword": {"type": "string"},
                "newPassword": {"type": "string"}
            }
        },
        "handlers.UpdatePreferencesRequest": {
            "type": "object",
            "properties": {
                "emailNotificationsEnabled": {"type": "boolean"}
            }
        },
        "handlers.UserResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "emailConfirmed": {"type": "boolean"},
                "joinedOn": {"type": "string"},
                "emailNotificationsEnabled": {"type": "boolean"},
                "roles": {"type": "array", "items": {"type": "string"}}
            }
        },
        "handlers.ReadBookRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "externalCatalogId": {"type": "string"},
                "startDate": {"type": "string"},
                "endDate": {"type": "string"}
            }
        },
        "domain.ReadBook": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "userId": {"type": "string"},
                "name": {"type": "string"},
                "externalCatalogId": {"type": "string"},
                "startDate": {"type": "string"},
                "endDate": {"type": "string"},
                "createdBy": {"type": "string"},
                "createdOn": {"type": "string"},
                "updatedBy": {"type": "string"},
                "updatedOn": {"type": "string"}
            }
        },
        "domain.VolumeSearchResult": {
            "type": "object",
            "properties": {
                "kind": {"type": "string"},
                "totalItems": {"type": "integer"},
                "items": {"type": "array", "items": {"type": "object"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Reader API",
	Description:      "Personal reading log with book catalog search.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
