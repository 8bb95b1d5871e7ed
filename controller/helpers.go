package controller

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"tienda-api/apperr"
)

// respondError maps an error kind to its HTTP status. Internal details are
// logged server-side and only exposed outside release mode.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		if gin.Mode() == gin.ReleaseMode {
			c.JSON(status, gin.H{"ok": false, "message": "error interno del servidor"})
			return
		}
	}
	c.JSON(status, gin.H{"ok": false, "message": err.Error()})
}
