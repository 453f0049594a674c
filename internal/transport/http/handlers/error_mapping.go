package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/bert0h-dev/menvitta-backend/internal/infra/i18n"
	"github.com/bert0h-dev/menvitta-backend/internal/usecase"
)

// ErrorCase maps a sentinel error to an HTTP status, the envelope message
// code, and the errors-map key the translated message is filed under.
type ErrorCase struct {
	Err    error
	Status int
	Code   i18n.Code
	Field  string
}

// RespondWithMappedError resolves err against the known cases. Validation
// errors become field-keyed 400 envelopes; anything unmatched is reported
// as an internal error.
func (r *Responder) RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase) {
	if verr, ok := usecase.AsValidationError(err); ok {
		r.ValidationFailed(c, verr)
		return
	}

	for _, cs := range cases {
		if cs.Err == nil {
			continue
		}
		if errors.Is(err, cs.Err) {
			field := cs.Field
			if field == "" {
				field = "detail"
			}
			r.FieldFail(c, cs.Status, field, cs.Code)
			return
		}
	}

	r.Internal(c, err)
}
