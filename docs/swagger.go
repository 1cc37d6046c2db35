// Package docs holds the generated-style OpenAPI document for the news
// feed service.
package docs

import "github.com/swaggo/swag"

// @title News Feed API
// @version 1.0
// @description An AI-enhanced news feed service with relevance ranking and bias analysis

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

func init() {
	swag.Register(swag.Name, &swag.Spec{
		InfoInstanceName: "swagger",
		SwaggerTemplate:  docTemplate,
	})
}

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "News Feed API",
        "description": "An AI-enhanced news feed service with relevance ranking and bias analysis",
        "version": "1.0.0",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        }
    },
    "host": "localhost:8080",
    "basePath": "/",
    "schemes": ["http"],
    "consumes": ["application/json"],
    "produces": ["application/json"],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health Check",
                "operationId": "healthCheck",
                "responses": {
                    "200": {
                        "description": "Service health and AI availability",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "status": {"type": "string", "example": "healthy"},
                                "ai_available": {"type": "boolean"},
                                "poller_active": {"type": "boolean"}
                            }
                        }
                    }
                }
            }
        },
        "/refresh": {
            "post": {
                "summary": "Refresh Feeds",
                "description": "Run one ingestion cycle over all active feeds",
                "operationId": "refresh",
                "responses": {
                    "200": {
                        "description": "Refresh result",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "message": {"type": "string"},
                                "feeds": {"type": "integer"},
                                "new_articles": {"type": "integer"}
                            }
                        }
                    },
                    "500": {"description": "Refresh failed"}
                }
            }
        },
        "/articles": {
            "get": {
                "summary": "List Articles",
                "description": "Articles ranked by relevance score, newest first within equal scores",
                "operationId": "getArticles",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer", "default": 20},
                    {"name": "offset", "in": "query", "type": "integer", "default": 0},
                    {"name": "category", "in": "query", "type": "string"},
                    {"name": "min_relevance", "in": "query", "type": "number"},
                    {"name": "read_status", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "Ranked article list"},
                    "400": {"description": "Invalid query parameters"}
                }
            }
        },
        "/articles/{id}": {
            "get": {
                "summary": "Get Article",
                "operationId": "getArticle",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "The article"},
                    "404": {"description": "Article not found"}
                }
            }
        },
        "/articles/{id}/summary": {
            "post": {
                "summary": "Summarize Article",
                "description": "Generate or return a cached AI summary",
                "operationId": "summarizeArticle",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {
                        "description": "Summary with cache flag",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "summary": {"type": "string"},
                                "cached": {"type": "boolean"}
                            }
                        }
                    },
                    "404": {"description": "Article not found"},
                    "503": {"description": "AI service unavailable"}
                }
            }
        },
        "/articles/{id}/bias-analysis": {
            "get": {
                "summary": "Bias Analysis",
                "operationId": "getBiasAnalysis",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Bias fields with derived label"},
                    "404": {"description": "Article not found"}
                }
            }
        },
        "/articles/{id}/read": {
            "post": {
                "summary": "Mark Read",
                "operationId": "markRead",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Marked read"},
                    "404": {"description": "Article not found"}
                }
            }
        },
        "/articles/{id}/unread": {
            "post": {
                "summary": "Mark Unread",
                "operationId": "markUnread",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Marked unread"},
                    "404": {"description": "Article not found"}
                }
            }
        },
        "/articles/{id}/interact": {
            "post": {
                "summary": "Record Interaction",
                "operationId": "recordInteraction",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {
                        "name": "body", "in": "body", "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {
                                "action": {"type": "string", "example": "like"},
                                "value": {"type": "number", "default": 1.0}
                            }
                        }
                    }
                ],
                "responses": {
                    "200": {"description": "Interaction recorded"},
                    "400": {"description": "Missing action"},
                    "404": {"description": "Article not found"}
                }
            }
        },
        "/stats/reading": {
            "get": {
                "summary": "Reading Stats",
                "operationId": "getReadingStats",
                "responses": {
                    "200": {
                        "description": "Read tracking totals",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "total_articles": {"type": "integer"},
                                "read_count": {"type": "integer"},
                                "unread_count": {"type": "integer"},
                                "read_percentage": {"type": "number"}
                            }
                        }
                    }
                }
            }
        },
        "/preferences": {
            "get": {
                "summary": "List Preferences",
                "operationId": "getPreferences",
                "responses": {
                    "200": {"description": "Active category preferences"}
                }
            },
            "post": {
                "summary": "Set Preference",
                "operationId": "setPreference",
                "parameters": [
                    {
                        "name": "body", "in": "body", "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {
                                "category": {"type": "string", "example": "technology"},
                                "keywords": {"type": "array", "items": {"type": "string"}},
                                "priority": {"type": "number", "default": 1.0}
                            }
                        }
                    }
                ],
                "responses": {
                    "200": {"description": "Preference saved"},
                    "400": {"description": "Missing category or keywords"}
                }
            }
        },
        "/preferences/{category}": {
            "delete": {
                "summary": "Delete Preference",
                "operationId": "deletePreference",
                "parameters": [
                    {"name": "category", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Preference deleted"},
                    "404": {"description": "Preference not found"}
                }
            }
        },
        "/feeds": {
            "get": {
                "summary": "List Feeds",
                "operationId": "getFeeds",
                "responses": {
                    "200": {"description": "Active feed sources"}
                }
            },
            "post": {
                "summary": "Add Feed",
                "operationId": "addFeed",
                "parameters": [
                    {
                        "name": "body", "in": "body", "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {
                                "title": {"type": "string"},
                                "url": {"type": "string", "example": "https://example.com/rss"},
                                "category": {"type": "string"}
                            }
                        }
                    }
                ],
                "responses": {
                    "200": {"description": "Feed added"},
                    "400": {"description": "Missing url"}
                }
            }
        },
        "/feeds/{id}": {
            "delete": {
                "summary": "Delete Feed",
                "operationId": "deleteFeed",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Feed deleted"},
                    "404": {"description": "Feed not found"}
                }
            }
        }
    }
}`
