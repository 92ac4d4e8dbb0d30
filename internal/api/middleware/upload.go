package middleware

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kama950028/KadrSp/pkg/response"
)

// Context keys the import handlers fill in for the request log
const (
	UploadFileKey = "upload_file"
	RunIDKey      = "run_id"
)

// Upload admits multipart/form-data bodies of at most maxBytes.
// A declared Content-Length over the cap is refused before the body is read;
// chunked bodies are cut by http.MaxBytesReader and the handler answers 413.
func Upload(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		mediaType, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
		if err != nil || mediaType != "multipart/form-data" {
			response.Error(c, http.StatusUnsupportedMediaType, 20007, "upload must be multipart/form-data with a \"file\" field")
			c.Abort()
			return
		}

		if maxBytes > 0 {
			if c.Request.ContentLength > maxBytes {
				response.Error(c, http.StatusRequestEntityTooLarge, 20006, "upload too large")
				c.Abort()
				return
			}
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
