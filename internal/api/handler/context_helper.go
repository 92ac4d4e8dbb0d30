package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kama950028/KadrSp/pkg/response"
)

// MustGetID parses a positive numeric path parameter.
// On failure it writes a 400 response; callers return when ok=false.
func MustGetID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, 10001, "invalid "+name+": "+raw)
		return 0, false
	}
	return uint(id), true
}

// RequestID the id assigned by the request_id middleware, if any
func RequestID(c *gin.Context) string {
	return c.GetString("request_id")
}
