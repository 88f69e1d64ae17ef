package middleware

import (
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"time"

	"maroctour/internal/pkg/messages"
	"maroctour/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// ErrorLogger recovers panics into the 500 envelope and logs every request
// that failed with a gin error or a 5xx status.
func ErrorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				log.Printf("level=error msg=\"panic recovered\" %s panic=%q stack=%q",
					requestFields(c, start), recovered, debug.Stack())
				if !c.Writer.Written() {
					response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", messages.ErrDefault)
				}
				c.Abort()
				return
			}

			for _, e := range c.Errors {
				log.Printf("level=error msg=\"request failed\" %s err=%q", requestFields(c, start), e.Error())
			}
			if len(c.Errors) == 0 && c.Writer.Status() >= http.StatusInternalServerError {
				log.Printf("level=error msg=\"request failed\" %s", requestFields(c, start))
			}
		}()

		c.Next()
	}
}

func requestFields(c *gin.Context, start time.Time) string {
	return fmt.Sprintf("status=%d method=%s path=%s client_ip=%s user_id=%s role=%s request_id=%s latency=%s",
		c.Writer.Status(), c.Request.Method, c.Request.URL.Path, c.ClientIP(),
		c.GetString(CtxUserID), c.GetString(CtxRole), c.GetHeader("X-Request-ID"), time.Since(start))
}
