package problem

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ContentType é o media type de RFC 7807
const ContentType = "application/problem+json"

// Error é um erro de domínio que carrega o status HTTP correspondente
type Error struct {
	Status int
	Detail string
	Err    error
}

func (e *Error) Error() string {
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New cria um Error com status, causa e mensagem formatada
func New(status int, cause error, format string, args ...any) *Error {
	return &Error{
		Status: status,
		Detail: fmt.Sprintf(format, args...),
		Err:    cause,
	}
}

func BadRequest(cause error, format string, args ...any) *Error {
	return New(http.StatusBadRequest, cause, format, args...)
}

func NotFound(cause error, format string, args ...any) *Error {
	return New(http.StatusNotFound, cause, format, args...)
}

func MethodNotAllowed(cause error, format string, args ...any) *Error {
	return New(http.StatusMethodNotAllowed, cause, format, args...)
}

func Conflict(cause error, format string, args ...any) *Error {
	return New(http.StatusConflict, cause, format, args...)
}

func BadGateway(cause error, format string, args ...any) *Error {
	return New(http.StatusBadGateway, cause, format, args...)
}

// StatusOf retorna o status HTTP de err, 500 quando não é um *Error
func StatusOf(err error) int {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Status
	}
	return http.StatusInternalServerError
}

// Details é o corpo da resposta de erro
type Details struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// Write anexa err ao contexto do gin e escreve o problem detail.
// Erros sem status conhecido viram 500 sem expor a mensagem interna.
func Write(c *gin.Context, err error) {
	_ = c.Error(err)

	status := StatusOf(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		detail = "An unexpected error occurred"
	}

	c.Header("Content-Type", ContentType)
	c.AbortWithStatusJSON(status, Details{
		Type:     "about:blank",
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   detail,
		Instance: c.Request.URL.Path,
	})
}

// PathInt64 lê um parâmetro numérico da rota
func PathInt64(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, BadRequest(err, "Failed to convert value of type 'string' to required type 'int64'; For input string: %q", raw)
	}
	return id, nil
}
