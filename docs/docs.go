// Package docs registers the Swagger document served under /swagger/.
// Regenerate with: swag init -g cmd/peerwallet/main.go
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
        "/api/v1/status": {
            "get": {
                "description": "Fetches the status document of the active peer",
                "produces": ["application/json"],
                "tags": ["peer"],
                "summary": "Peer status",
                "parameters": [
                    {"type": "string", "description": "One-off peer URL override", "name": "peer", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/api/v1/query": {
            "post": {
                "description": "Runs a side-effect-free query on the peer. Nothing is signed.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["peer"],
                "summary": "Run a query",
                "parameters": [
                    {"description": "Query", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.QueryRequest"}},
                    {"type": "string", "description": "One-off peer URL override", "name": "peer", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.QueryResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.RPCErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/model.RPCErrorResponse"}}
                }
            }
        },
        "/api/v1/transact": {
            "post": {
                "description": "Signs {source, address} with the stored key of publicKey and submits it once. The seed never leaves the wallet.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["peer"],
                "summary": "Submit a transaction",
                "parameters": [
                    {"description": "Transaction", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.TransactRequest"}},
                    {"type": "string", "description": "One-off peer URL override", "name": "peer", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.TransactResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.RPCErrorResponse"}},
                    "412": {"description": "Precondition Failed", "schema": {"$ref": "#/definitions/model.RPCErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/model.RPCErrorResponse"}}
                }
            }
        },
        "/api/v1/accounts/{address}": {
            "get": {
                "description": "Fetches an account by numeric address; a leading # is accepted",
                "produces": ["application/json"],
                "tags": ["peer"],
                "summary": "Account lookup",
                "parameters": [
                    {"type": "string", "description": "Account address", "name": "address", "in": "path", "required": true},
                    {"type": "string", "description": "One-off peer URL override", "name": "peer", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/identicon/{hex}": {
            "get": {
                "description": "Fetches the identicon image for a hex string",
                "produces": ["image/png"],
                "tags": ["peer"],
                "summary": "Identicon",
                "parameters": [
                    {"type": "string", "description": "Hex string", "name": "hex", "in": "path", "required": true},
                    {"type": "string", "description": "One-off peer URL override", "name": "peer", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/wallet/keys": {
            "get": {
                "description": "Lists the public keys held by the wallet",
                "produces": ["application/json"],
                "tags": ["wallet"],
                "summary": "List keys",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.KeysResponse"}}
                }
            },
            "post": {
                "description": "Generates a new Ed25519 key pair and stores it",
                "produces": ["application/json"],
                "tags": ["wallet"],
                "summary": "Generate key",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.GenerateResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/wallet/keys/{publicKey}": {
            "delete": {
                "description": "Removes a key from the wallet. Removing an absent key is not an error.",
                "tags": ["wallet"],
                "summary": "Remove key",
                "parameters": [
                    {"type": "string", "description": "Public key (hex)", "name": "publicKey", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/wallet/keys/{publicKey}/import": {
            "post": {
                "description": "Admits a seed (64 hex chars) or a 24-word phrase after checking it derives publicKey",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["wallet"],
                "summary": "Import key",
                "parameters": [
                    {"type": "string", "description": "Expected public key (hex)", "name": "publicKey", "in": "path", "required": true},
                    {"description": "Seed or mnemonic", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.ImportRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.ImportResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/wallet/keys/{publicKey}/qr": {
            "get": {
                "description": "PNG QR code of a stored public key (hex)",
                "produces": ["image/png"],
                "tags": ["wallet"],
                "summary": "Key QR code",
                "parameters": [
                    {"type": "string", "description": "Public key (hex)", "name": "publicKey", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/endpoint": {
            "get": {
                "description": "Returns the active peer URL and the presets",
                "produces": ["application/json"],
                "tags": ["endpoint"],
                "summary": "Active peer",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.EndpointResponse"}}
                }
            },
            "put": {
                "description": "Sets the active peer by URL or preset label. Reachability is not checked.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["endpoint"],
                "summary": "Switch peer",
                "parameters": [
                    {"description": "URL or preset label", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.EndpointRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.EndpointResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "endpoint.Preset": {
            "type": "object",
            "properties": {
                "label": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "model.EndpointRequest": {
            "type": "object",
            "properties": {
                "preset": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "model.EndpointResponse": {
            "type": "object",
            "properties": {
                "current": {"type": "string"},
                "presets": {"type": "array", "items": {"$ref": "#/definitions/endpoint.Preset"}}
            }
        },
        "model.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "model.GenerateResponse": {
            "type": "object",
            "properties": {
                "key": {"$ref": "#/definitions/model.KeyInfo"},
                "message": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "model.ImportRequest": {
            "type": "object",
            "properties": {
                "mnemonic": {"type": "string"},
                "seed": {"type": "string"}
            }
        },
        "model.ImportResponse": {
            "type": "object",
            "properties": {
                "key": {"$ref": "#/definitions/model.KeyInfo"},
                "message": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "model.KeyInfo": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "publicKey": {"type": "string"}
            }
        },
        "model.KeysResponse": {
            "type": "object",
            "properties": {
                "keys": {"type": "array", "items": {"$ref": "#/definitions/model.KeyInfo"}}
            }
        },
        "model.QueryRequest": {
            "type": "object",
            "required": ["source"],
            "properties": {
                "address": {"type": "string"},
                "source": {"type": "string"}
            }
        },
        "model.QueryResponse": {
            "type": "object",
            "properties": {
                "juice": {"type": "integer"},
                "latencyMs": {"type": "integer"},
                "value": {}
            }
        },
        "model.RPCErrorResponse": {
            "type": "object",
            "properties": {
                "errorCode": {"type": "string"},
                "errorMessage": {"type": "string"},
                "latencyMs": {"type": "integer"},
                "peerCode": {"type": "string"}
            }
        },
        "model.TransactRequest": {
            "type": "object",
            "required": ["address", "publicKey", "source"],
            "properties": {
                "address": {"type": "string"},
                "publicKey": {"type": "string"},
                "source": {"type": "string"}
            }
        },
        "model.TransactResponse": {
            "type": "object",
            "properties": {
                "latencyMs": {"type": "integer"},
                "value": {}
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
	Title:            "peer-wallet API",
	Description:      "Local key custody and signing proxy for a ledger peer. Seeds never leave this process.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
