package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bert0h-dev/menvitta-backend/internal/core/domain"
	"github.com/bert0h-dev/menvitta-backend/internal/core/port"
	"github.com/bert0h-dev/menvitta-backend/internal/infra/i18n"
	"github.com/bert0h-dev/menvitta-backend/internal/usecase"
)

type capturingLogRepo struct {
	mu      sync.Mutex
	entries []domain.AccessLog
}

func (r *capturingLogRepo) Create(_ context.Context, entry domain.AccessLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *capturingLogRepo) List(context.Context, port.AccessLogFilter) ([]domain.AccessLog, error) {
	return nil, nil
}

func (r *capturingLogRepo) GetByID(context.Context, string) (*domain.AccessLog, error) {
	return nil, nil
}

func (r *capturingLogRepo) last(t *testing.T) domain.AccessLog {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		r.mu.Lock()
		if len(r.entries) > 0 {
			entry := r.entries[len(r.entries)-1]
			r.mu.Unlock()
			return entry
		}
		r.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("no audit entry recorded")
	return domain.AccessLog{}
}

func newAuditFixture(t *testing.T) (*capturingLogRepo, *usecase.AuditRecorder, *i18n.Translator) {
	t.Helper()
	repo := &capturingLogRepo{}
	recorder := usecase.NewAuditRecorder(repo, zap.NewNop(), 16)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = recorder.Close(ctx)
	})

	translator, err := i18n.NewTranslator("es", true)
	if err != nil {
		t.Fatalf("build translator: %v", err)
	}
	return repo, recorder, translator
}

func TestAuditRecordsActionWithDescriptor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo, recorder, translator := newAuditFixture(t)

	router := gin.New()
	router.POST("/roles", Audit(recorder, translator, i18n.LogRoleCreate), func(c *gin.Context) {
		SetActor(c, domain.Actor{ID: "user-1", Email: "ana@example.com", UserType: domain.UserTypeAdmin})
		SetAuditObject(c, "role-9", "role")
		SetAuditDescriptor(c, "Soporte")
		c.Set(AuditMessageKey, "Rol creado exitosamente.")
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/roles", nil)
	req.Header.Set("User-Agent", "audit-test")
	router.ServeHTTP(httptest.NewRecorder(), req)

	entry := repo.last(t)
	if entry.Action != "Creó un nuevo rol.: Soporte" {
		t.Fatalf("unexpected action %q", entry.Action)
	}
	if entry.StatusCode != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", entry.StatusCode)
	}
	if entry.UserID == nil || *entry.UserID != "user-1" {
		t.Fatalf("expected user-1, got %v", entry.UserID)
	}
	if entry.ObjectID == nil || *entry.ObjectID != "role-9" {
		t.Fatalf("expected object role-9, got %v", entry.ObjectID)
	}
	if entry.ObjectType == nil || *entry.ObjectType != "role" {
		t.Fatalf("expected object type role, got %v", entry.ObjectType)
	}
	if entry.Message != "Rol creado exitosamente." {
		t.Fatalf("unexpected message %q", entry.Message)
	}
	if entry.UserAgent != "audit-test" {
		t.Fatalf("unexpected user agent %q", entry.UserAgent)
	}
}

func TestAuditAnonymousRequestHasNoUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo, recorder, translator := newAuditFixture(t)

	router := gin.New()
	router.POST("/login", Audit(recorder, translator, i18n.LogLogin), func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/login", nil))

	entry := repo.last(t)
	if entry.UserID != nil {
		t.Fatalf("expected anonymous entry, got user %v", *entry.UserID)
	}
	if entry.Action != "Inicio de sesión." {
		t.Fatalf("unexpected action %q", entry.Action)
	}
}

func TestAuditDescriptionFailureFallsBack(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo, recorder, translator := newAuditFixture(t)

	// Strict-mode translators panic on unknown codes; the middleware
	// downgrades that to the fallback marker.
	router := gin.New()
	router.GET("/x", Audit(recorder, translator, i18n.Code("missing.code")), func(c *gin.Context) {
		SetAuditDescriptor(c, "entidad")
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	entry := repo.last(t)
	if entry.Action != "(Error al obtener descripción): entidad" {
		t.Fatalf("unexpected action %q", entry.Action)
	}
}
