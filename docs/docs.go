// Package docs holds the OpenAPI definition served by the swagger UI.
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
        "/health": {
            "get": {
                "tags": ["system"],
                "summary": "Service health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/users": {
            "get": {
                "tags": ["users"],
                "security": [{"BearerAuth": []}],
                "summary": "List registered users (admin)",
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "paginated users"},
                    "403": {"description": "not an admin"}
                }
            }
        },
        "/users/login": {
            "post": {
                "tags": ["users"],
                "summary": "Exchange a mini-program login code for a token pair",
                "parameters": [
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {"code": {"type": "string"}}
                        }
                    }
                ],
                "responses": {
                    "200": {"description": "user and tokens"},
                    "400": {"description": "missing code"},
                    "502": {"description": "identity provider failure"}
                }
            }
        },
        "/users/refresh": {
            "post": {
                "tags": ["users"],
                "summary": "Rotate tokens from a refresh token",
                "responses": {
                    "200": {"description": "new token pair"},
                    "401": {"description": "invalid or revoked refresh token"}
                }
            }
        },
        "/users/logout": {
            "post": {
                "tags": ["users"],
                "security": [{"BearerAuth": []}],
                "summary": "Revoke the caller's sessions",
                "responses": {"200": {"description": "logged out"}}
            }
        },
        "/users/me": {
            "get": {
                "tags": ["users"],
                "security": [{"BearerAuth": []}],
                "summary": "Current profile",
                "responses": {"200": {"description": "profile"}}
            },
            "put": {
                "tags": ["users"],
                "security": [{"BearerAuth": []}],
                "summary": "Update profile fields",
                "responses": {
                    "200": {"description": "updated profile"},
                    "400": {"description": "validation failure"}
                }
            }
        },
        "/users/me/avatar": {
            "post": {
                "tags": ["users"],
                "security": [{"BearerAuth": []}],
                "summary": "Upload a profile avatar",
                "consumes": ["multipart/form-data"],
                "responses": {
                    "200": {"description": "updated profile"},
                    "502": {"description": "upload provider failure"}
                }
            }
        },
        "/stores": {
            "get": {
                "tags": ["catalog"],
                "summary": "List active stores",
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "size", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "paginated stores"}}
            }
        },
        "/stores/{id}": {
            "get": {
                "tags": ["catalog"],
                "summary": "Store detail with rooms",
                "parameters": [{"name": "id", "in": "path", "type": "integer", "required": true}],
                "responses": {
                    "200": {"description": "store"},
                    "404": {"description": "unknown store"}
                }
            }
        },
        "/rooms": {
            "get": {
                "tags": ["catalog"],
                "summary": "List rooms with filters",
                "parameters": [
                    {"name": "store_id", "in": "query", "type": "integer"},
                    {"name": "capacity", "in": "query", "type": "integer"},
                    {"name": "min_price", "in": "query", "type": "number"},
                    {"name": "max_price", "in": "query", "type": "number"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "size", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "paginated rooms"}}
            }
        },
        "/rooms/search": {
            "get": {
                "tags": ["catalog"],
                "summary": "Search rooms by name or description",
                "parameters": [{"name": "q", "in": "query", "type": "string", "required": true}],
                "responses": {"200": {"description": "paginated rooms"}}
            }
        },
        "/rooms/{id}": {
            "get": {
                "tags": ["catalog"],
                "summary": "Room detail",
                "parameters": [{"name": "id", "in": "path", "type": "integer", "required": true}],
                "responses": {
                    "200": {"description": "room"},
                    "404": {"description": "unknown room"}
                }
            }
        },
        "/rooms/{id}/images": {
            "post": {
                "tags": ["catalog"],
                "security": [{"BearerAuth": []}],
                "summary": "Append gallery images to a room (admin)",
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true},
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {"images": {"type": "array", "items": {"type": "string"}}}
                        }
                    }
                ],
                "responses": {
                    "200": {"description": "room with updated gallery"},
                    "403": {"description": "not an admin"},
                    "404": {"description": "unknown room"}
                }
            }
        },
        "/rooms/{id}/availability": {
            "get": {
                "tags": ["catalog"],
                "summary": "Hour-by-hour occupancy for a day",
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true},
                    {"name": "date", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {"200": {"description": "24 hour slots"}}
            }
        },
        "/rooms/{id}/reviews": {
            "get": {
                "tags": ["reviews"],
                "summary": "Reviews for a room",
                "parameters": [{"name": "id", "in": "path", "type": "integer", "required": true}],
                "responses": {"200": {"description": "paginated reviews"}}
            }
        },
        "/rooms/{id}/reviews/stats": {
            "get": {
                "tags": ["reviews"],
                "summary": "Rating average and distribution",
                "parameters": [{"name": "id", "in": "path", "type": "integer", "required": true}],
                "responses": {"200": {"description": "review statistics"}}
            }
        },
        "/bookings": {
            "post": {
                "tags": ["bookings"],
                "security": [{"BearerAuth": []}],
                "summary": "Reserve a room slot",
                "responses": {
                    "201": {"description": "booking with payment order"},
                    "409": {"description": "slot overlap or room in maintenance"}
                }
            }
        },
        "/bookings/me": {
            "get": {
                "tags": ["bookings"],
                "security": [{"BearerAuth": []}],
                "summary": "The caller's bookings",
                "parameters": [{"name": "status", "in": "query", "type": "string"}],
                "responses": {"200": {"description": "paginated bookings"}}
            }
        },
        "/bookings/statistics": {
            "get": {
                "tags": ["bookings"],
                "security": [{"BearerAuth": []}],
                "summary": "Booking counts by status",
                "responses": {"200": {"description": "statistics"}}
            }
        },
        "/bookings/{id}": {
            "get": {
                "tags": ["bookings"],
                "security": [{"BearerAuth": []}],
                "summary": "Booking detail",
                "parameters": [{"name": "id", "in": "path", "type": "integer", "required": true}],
                "responses": {
                    "200": {"description": "booking"},
                    "404": {"description": "unknown booking"}
                }
            }
        },
        "/bookings/{id}/cancel": {
            "put": {
                "tags": ["bookings"],
                "security": [{"BearerAuth": []}],
                "summary": "Cancel a pending or confirmed booking",
                "parameters": [{"name": "id", "in": "path", "type": "integer", "required": true}],
                "responses": {
                    "200": {"description": "cancelled booking"},
                    "409": {"description": "booking not cancellable"}
                }
            }
        },
        "/bookings/{id}/status": {
            "put": {
                "tags": ["bookings"],
                "security": [{"BearerAuth": []}],
                "summary": "Move a booking through the status machine (admin)",
                "parameters": [{"name": "id", "in": "path", "type": "integer", "required": true}],
                "responses": {
                    "200": {"description": "updated booking"},
                    "403": {"description": "admin required"},
                    "409": {"description": "illegal transition"}
                }
            }
        },
        "/reviews": {
            "post": {
                "tags": ["reviews"],
                "security": [{"BearerAuth": []}],
                "summary": "Review a completed booking",
                "responses": {
                    "201": {"description": "review"},
                    "409": {"description": "booking not completed or already reviewed"}
                }
            }
        },
        "/reviews/me": {
            "get": {
                "tags": ["reviews"],
                "security": [{"BearerAuth": []}],
                "summary": "The caller's reviews",
                "responses": {"200": {"description": "paginated reviews"}}
            }
        },
        "/reviews/by-booking/{booking_id}": {
            "get": {
                "tags": ["reviews"],
                "security": [{"BearerAuth": []}],
                "summary": "The caller's review for a booking",
                "parameters": [{"name": "booking_id", "in": "path", "type": "integer", "required": true}],
                "responses": {
                    "200": {"description": "review"},
                    "404": {"description": "booking unreviewed or not the caller's"}
                }
            }
        },
        "/reviews/{id}": {
            "get": {
                "tags": ["reviews"],
                "security": [{"BearerAuth": []}],
                "summary": "Review detail",
                "parameters": [{"name": "id", "in": "path", "type": "integer", "required": true}],
                "responses": {"200": {"description": "review"}}
            }
        },
        "/reviews/{id}/reply": {
            "put": {
                "tags": ["reviews"],
                "security": [{"BearerAuth": []}],
                "summary": "Post the store's reply (admin, once per review)",
                "parameters": [{"name": "id", "in": "path", "type": "integer", "required": true}],
                "responses": {
                    "200": {"description": "review with reply"},
                    "409": {"description": "already replied"}
                }
            }
        },
        "/payment/orders": {
            "post": {
                "tags": ["payment"],
                "security": [{"BearerAuth": []}],
                "summary": "Open the payment order for a booking (idempotent)",
                "responses": {
                    "201": {"description": "payment order"},
                    "409": {"description": "booking not pending"}
                }
            }
        },
        "/payment/unified-order": {
            "post": {
                "tags": ["payment"],
                "security": [{"BearerAuth": []}],
                "summary": "Place the order with the payment gateway",
                "responses": {
                    "200": {"description": "payment parameters"},
                    "502": {"description": "gateway failure, order left open for retry"}
                }
            }
        },
        "/payment/callback": {
            "post": {
                "tags": ["payment"],
                "summary": "Gateway settlement notification (signed)",
                "responses": {
                    "200": {"description": "acknowledged; replays are no-ops"},
                    "401": {"description": "bad signature"}
                }
            }
        },
        "/payment/orders/me": {
            "get": {
                "tags": ["payment"],
                "security": [{"BearerAuth": []}],
                "summary": "The caller's payment orders",
                "parameters": [{"name": "status", "in": "query", "type": "string"}],
                "responses": {"200": {"description": "paginated orders"}}
            }
        },
        "/payment/orders/{id}": {
            "get": {
                "tags": ["payment"],
                "security": [{"BearerAuth": []}],
                "summary": "Payment order detail",
                "parameters": [{"name": "id", "in": "path", "type": "integer", "required": true}],
                "responses": {"200": {"description": "order"}}
            }
        },
        "/payment/orders/by-trade-no/{trade_no}": {
            "get": {
                "tags": ["payment"],
                "security": [{"BearerAuth": []}],
                "summary": "Payment order by merchant order number",
                "parameters": [{"name": "trade_no", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "order"}}
            }
        },
        "/payment/orders/{id}/refund": {
            "put": {
                "tags": ["payment"],
                "security": [{"BearerAuth": []}],
                "summary": "Refund a paid order (admin)",
                "parameters": [{"name": "id", "in": "path", "type": "integer", "required": true}],
                "responses": {
                    "200": {"description": "refunded order"},
                    "409": {"description": "order not paid"}
                }
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
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Parlor API",
	Description:      "Room booking backend: stores, rooms, bookings, reviews and payment orders.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
