package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bert0h-dev/menvitta-backend/internal/core/domain"
	"github.com/bert0h-dev/menvitta-backend/internal/core/port"
	"github.com/bert0h-dev/menvitta-backend/internal/infra/i18n"
	"github.com/bert0h-dev/menvitta-backend/internal/usecase"
)

// envelope matches the handlers response envelope so auth failures look
// the same as every other error the API returns.
type envelope struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	StatusCode int                 `json:"status_code"`
	Data       interface{}         `json:"data"`
	Errors     map[string][]string `json:"errors"`
}

// RequestLanguage picks the language responses are localized in: the
// authenticated actor's preference when available, the Accept-Language
// header otherwise.
func RequestLanguage(c *gin.Context) string {
	if actor, ok := GetActor(c); ok && actor.Language != "" {
		return actor.Language
	}
	return i18n.NormalizeLanguage(c.GetHeader("Accept-Language"))
}

func abortUnauthorized(c *gin.Context, translator *i18n.Translator, detail i18n.Code) {
	lang := RequestLanguage(c)
	c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{
		Success:    false,
		Message:    translator.Resolve(lang, i18n.CodeUnauthorized),
		StatusCode: http.StatusUnauthorized,
		Errors:     map[string][]string{"detail": {translator.Resolve(lang, detail)}},
	})
}

// RequireAuth validates the Authorization header, loads the account, and
// stores the resulting actor on the context. Tokens of disabled accounts
// are rejected even while cryptographically valid.
func RequireAuth(auth *usecase.AuthService, users port.UserRepository, translator *i18n.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, translator, i18n.CodeTokenRequired)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c, translator, i18n.CodeTokenInvalid)
			return
		}

		token := strings.TrimSpace(parts[1])
		if token == "" {
			abortUnauthorized(c, translator, i18n.CodeTokenRequired)
			return
		}

		claims, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			abortUnauthorized(c, translator, i18n.CodeTokenInvalid)
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			abortUnauthorized(c, translator, i18n.CodeTokenInvalid)
			return
		}

		if !user.IsActive {
			abortUnauthorized(c, translator, i18n.CodeUserDisabled)
			return
		}

		SetActor(c, domain.ActorFromUser(*user))

		if reqCtx := GetRequestContext(c); reqCtx != nil {
			reqCtx.UserID = user.ID
		}

		c.Next()
	}
}

// RequireUserType gates a route to the given account classifications.
func RequireUserType(translator *i18n.Translator, types ...domain.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			abortUnauthorized(c, translator, i18n.CodeTokenRequired)
			return
		}

		for _, t := range types {
			if actor.UserType == t {
				c.Next()
				return
			}
		}

		lang := RequestLanguage(c)
		c.AbortWithStatusJSON(http.StatusForbidden, envelope{
			Success:    false,
			Message:    translator.Resolve(lang, i18n.CodeForbidden),
			StatusCode: http.StatusForbidden,
		})
	}
}
