package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ErrorPage writes the generic error page for status.
type ErrorPage func(c *gin.Context, status int)

// HandlePanics logs the recovered value and answers with the generic error
// page. The panic value never reaches the visitor.
func HandlePanics(errorPage ErrorPage) gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		err, ok := recovered.(error)
		if !ok {
			err = fmt.Errorf("%v", recovered)
		}
		log.Error().
			Err(err).
			Str("path", c.Request.URL.Path).
			Str("requestID", c.GetString(RequestIDKey)).
			Msg("Recovered from panic")

		if errorPage != nil && !c.Writer.Written() {
			errorPage(c, http.StatusInternalServerError)
		}
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}
