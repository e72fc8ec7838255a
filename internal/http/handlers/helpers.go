package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adknaupp/cytometry-manager/internal/domain/cytometry"
	"github.com/adknaupp/cytometry-manager/internal/http/response"
	"github.com/adknaupp/cytometry-manager/internal/platform/dbctx"
)

func requestDBC(c *gin.Context) dbctx.Context {
	return dbctx.Context{Ctx: c.Request.Context()}
}

// pathID parses a positive integer path parameter, responding 400 on failure.
func pathID(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		response.RespondErr(c, cytometry.Validationf("http", "invalid %s %q", name, raw))
		return 0, false
	}
	return uint(id), true
}

// queryUint parses an optional unsigned query parameter; absent is 0.
func queryUint(c *gin.Context, key string) (uint, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		response.RespondErr(c, cytometry.Validationf("http", "invalid %s %q", key, raw))
		return 0, false
	}
	return uint(v), true
}

func queryLimit(c *gin.Context) int {
	v, err := strconv.Atoi(strings.TrimSpace(c.Query("limit")))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondErr(c, cytometry.NewError(cytometry.CodeValidation, "http", fmt.Sprintf("invalid request body: %v", err), err))
		return false
	}
	return true
}
