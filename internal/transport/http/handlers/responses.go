package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bert0h-dev/menvitta-backend/internal/infra/i18n"
	"github.com/bert0h-dev/menvitta-backend/internal/transport/http/middleware"
	"github.com/bert0h-dev/menvitta-backend/internal/usecase"
)

// Envelope is the uniform response shape of every endpoint. All five keys
// are always present; data and errors are null when they do not apply.
type Envelope struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	StatusCode int                 `json:"status_code"`
	Data       interface{}         `json:"data"`
	Errors     map[string][]string `json:"errors"`
}

// Responder renders envelopes with messages localized in the request
// language. The rendered message is also left on the gin context so the
// audit middleware persists the text the client saw.
type Responder struct {
	translator *i18n.Translator
}

// NewResponder builds a Responder over the message catalog.
func NewResponder(translator *i18n.Translator) *Responder {
	return &Responder{translator: translator}
}

// Lang resolves the response language for the request.
func (r *Responder) Lang(c *gin.Context) string {
	return middleware.RequestLanguage(c)
}

// OK writes a success envelope.
func (r *Responder) OK(c *gin.Context, status int, code i18n.Code, data interface{}) {
	message := r.translator.Resolve(r.Lang(c), code)
	c.Set(middleware.AuditMessageKey, message)
	c.JSON(status, Envelope{
		Success:    true,
		Message:    message,
		StatusCode: status,
		Data:       data,
	})
}

// Fail writes an error envelope and aborts the handler chain.
func (r *Responder) Fail(c *gin.Context, status int, code i18n.Code, fieldErrors map[string][]string) {
	message := r.translator.Resolve(r.Lang(c), code)
	c.Set(middleware.AuditMessageKey, message)
	c.AbortWithStatusJSON(status, Envelope{
		Success:    false,
		Message:    message,
		StatusCode: status,
		Errors:     fieldErrors,
	})
}

// FieldFail writes a single-field error envelope.
func (r *Responder) FieldFail(c *gin.Context, status int, field string, code i18n.Code) {
	r.Fail(c, status, code, map[string][]string{
		field: {r.translator.Resolve(r.Lang(c), code)},
	})
}

// BadRequest reports a malformed or unparsable payload.
func (r *Responder) BadRequest(c *gin.Context) {
	r.Fail(c, http.StatusBadRequest, i18n.CodeBadRequest, nil)
}

// Internal reports an unexpected failure without leaking its cause.
func (r *Responder) Internal(c *gin.Context, err error) {
	_ = c.Error(err)
	r.Fail(c, http.StatusInternalServerError, i18n.CodeInternalServerError, nil)
}

// ValidationFailed translates a per-field validation error into a 400
// envelope keyed by input field.
func (r *Responder) ValidationFailed(c *gin.Context, verr *usecase.ValidationError) {
	lang := r.Lang(c)
	fieldErrors := make(map[string][]string, len(verr.Fields))
	for field, codes := range verr.Fields {
		for _, code := range codes {
			fieldErrors[field] = append(fieldErrors[field], r.translator.Resolve(lang, code))
		}
	}
	r.Fail(c, http.StatusBadRequest, i18n.CodeBadRequest, fieldErrors)
}
