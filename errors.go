package arname

import (
	"errors"
	"net/http"

	"github.com/everFinance/arname/schema"
	"github.com/gin-gonic/gin"
)

var (
	ErrNullBody     = errors.New("null_body")
	ErrBodyTooLarge = errors.New("body_too_large")
	ErrInvalidParam = errors.New("invalid_param")
)

// errorResponse maps component errors onto HTTP: not found is 404,
// unclassified errors are 500 and every other rejection is 400.
func errorResponse(c *gin.Context, err error) {
	switch schema.ErrKind(err) {
	case schema.KindNotFound:
		c.JSON(http.StatusNotFound, schema.RespErr{Err: err.Error()})
	case schema.KindInternal:
		if errors.Is(err, ErrNullBody) || errors.Is(err, ErrBodyTooLarge) || errors.Is(err, ErrInvalidParam) {
			c.JSON(http.StatusBadRequest, schema.RespErr{Err: err.Error()})
			return
		}
		log.Error("internal error", "path", c.Request.URL.Path, "err", err)
		internalErrorResponse(c, err.Error())
	default:
		c.JSON(http.StatusBadRequest, schema.RespErr{Err: err.Error()})
	}
}

func internalErrorResponse(c *gin.Context, err string) {
	c.JSON(http.StatusInternalServerError, schema.RespErr{
		Err: err,
	})
}
