package handler

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/localtrip/backend/docs"
)

const openAPICacheControl = "public, max-age=300"

var renderedOpenAPIDoc = sync.OnceValue(func() []byte {
	return []byte(docs.SwaggerInfo.ReadDoc())
})

// OpenAPIDoc serves the membership API document. The swag template is rendered on
// first request only.
func OpenAPIDoc(c *gin.Context) {
	c.Header("Cache-Control", openAPICacheControl)
	c.Data(http.StatusOK, "application/json; charset=utf-8", renderedOpenAPIDoc())
}
