package httpx

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the JSON shape of every error response.
// swagger:model
type ErrorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, ErrorBody{Error: msg})
}

func ErrorDetails(c *gin.Context, status int, msg string, details any) {
	c.JSON(status, ErrorBody{Error: msg, Details: details})
}

// Internal logs err under tag and answers with a generic 500.
func Internal(c *gin.Context, log *slog.Logger, tag string, err error) {
	log.Error(tag, "rid", c.GetString("rid"), "err", err)
	Error(c, http.StatusInternalServerError, "internal server error")
}

// Page reads limit/offset query parameters, falling back to the defaults.
func Page(c *gin.Context, defLimit, maxLimit int) (limit, offset int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defLimit)))
	if err != nil || limit <= 0 || limit > maxLimit {
		limit = defLimit
	}
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
