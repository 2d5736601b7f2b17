package ez

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "go-gin-gorm-accounts/internal/transport/http/response"
)

type Binder int

const (
	BindNone Binder = iota
	BindJSON
	BindQuery
)

// EZ registers Actions on one router group.
type EZ struct {
	g *gin.RouterGroup
}

func New(g *gin.RouterGroup) *EZ {
	Setup()
	return &EZ{g: g}
}

// Action is one endpoint: bind I, run Handler, answer O with Status.
type Action[I any, O any] struct {
	Method string
	Path   string
	Binder Binder
	// Status defaults to 200. 204 answers without a body.
	Status     int
	Middleware []gin.HandlerFunc
	Handler    func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](ez *EZ, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}
	handlers := append([]gin.HandlerFunc(nil), a.Middleware...)
	handlers = append(handlers, func(c *gin.Context) {
		in := new(I)
		if !bind(c, a.Binder, in) {
			return
		}
		out, err := a.Handler(c, in)
		if err != nil {
			resp.Fail(c, err)
			return
		}
		if status == http.StatusNoContent {
			c.Status(status)
			return
		}
		c.JSON(status, out)
	})
	ez.g.Handle(a.Method, a.Path, handlers...)
}

func bind(c *gin.Context, b Binder, in any) bool {
	var err error
	switch b {
	case BindJSON:
		err = c.ShouldBindJSON(in)
	case BindQuery:
		err = c.ShouldBindQuery(in)
	default:
		return true
	}
	if err != nil {
		status, body := bindStatus(err)
		c.AbortWithStatusJSON(status, body)
		return false
	}
	return true
}
