package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/bert0h-dev/menvitta-backend/internal/core/domain"
	"github.com/bert0h-dev/menvitta-backend/internal/infra/i18n"
)

func newGateRouter(t *testing.T, actor *domain.Actor, types ...domain.UserType) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	translator, err := i18n.NewTranslator("es", true)
	if err != nil {
		t.Fatalf("build translator: %v", err)
	}

	router := gin.New()
	router.GET("/gated",
		func(c *gin.Context) {
			if actor != nil {
				SetActor(c, *actor)
			}
		},
		RequireUserType(translator, types...),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)
	return router
}

func TestRequireUserTypeAllowsListedTypes(t *testing.T) {
	actor := &domain.Actor{ID: "u1", UserType: domain.UserTypeStaff}
	router := newGateRouter(t, actor, domain.UserTypeAdmin, domain.UserTypeStaff)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/gated", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRequireUserTypeRejectsPlainUser(t *testing.T) {
	actor := &domain.Actor{ID: "u1", UserType: domain.UserTypeUser, Language: "es"}
	router := newGateRouter(t, actor, domain.UserTypeAdmin, domain.UserTypeStaff)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/gated", nil))

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}

	var body envelope
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Success {
		t.Fatal("expected success=false")
	}
	if body.Message != "Acceso denegado." {
		t.Fatalf("unexpected message %q", body.Message)
	}
}

func TestRequireUserTypeWithoutActorIsUnauthorized(t *testing.T) {
	router := newGateRouter(t, nil, domain.UserTypeAdmin)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/gated", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequestLanguagePrefersActorPreference(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Accept-Language", "en-US")

	if got := RequestLanguage(c); got != "en" {
		t.Fatalf("expected header language en, got %q", got)
	}

	SetActor(c, domain.Actor{ID: "u1", Language: "es"})
	if got := RequestLanguage(c); got != "es" {
		t.Fatalf("expected actor language es, got %q", got)
	}
}
