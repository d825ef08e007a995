package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestIdentityFrom(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/probe", func(c *gin.Context) {
		identity, ok := identityFrom(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, identity)
	})

	// Complete headers
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/probe", nil)
	req.Header.Set("X-Tenant-ID", "tenant-1")
	req.Header.Set("X-User-ID", "guest-1")
	req.Header.Set("X-Property-ID", "prop-9")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var identity map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &identity)
	assert.Equal(t, "tenant-1", identity["tenant_id"])
	assert.Equal(t, "guest-1", identity["user_id"])
	assert.Equal(t, "prop-9", identity["property_id"])

	// Property header is optional
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/probe", nil)
	req.Header.Set("X-Tenant-ID", "tenant-1")
	req.Header.Set("X-User-ID", "guest-1")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Missing tenant is rejected
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/probe", nil)
	req.Header.Set("X-User-ID", "guest-1")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatEndpoint_InvalidRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.POST("/api/chat", func(c *gin.Context) {
		if _, ok := identityFrom(c); !ok {
			return
		}
		var req struct {
			Message string `json:"message" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"response": "ok"})
	})

	// Missing message body
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/chat", bytes.NewBuffer([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", "tenant-1")
	req.Header.Set("X-User-ID", "guest-1")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Missing identity headers
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/api/chat", bytes.NewBuffer([]byte(`{"message": "hello"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMemorySearchEndpoint_InvalidRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.POST("/api/memory/search", func(c *gin.Context) {
		if _, ok := identityFrom(c); !ok {
			return
		}
		var req struct {
			Query string `json:"query" binding:"required"`
			Limit int    `json:"limit"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": []string{}})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/memory/search", bytes.NewBuffer([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", "tenant-1")
	req.Header.Set("X-User-ID", "guest-1")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
