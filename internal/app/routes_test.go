package app

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockModule struct {
	called bool
}

func (m *mockModule) RegisterRoutes(api *gin.RouterGroup) {
	m.called = true
	api.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
}

func openTestSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "routes.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func decodeHealth(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode health response: %v", err)
	}
	return body
}

func TestHealthHandler_OK(t *testing.T) {
	r := gin.New()
	r.GET("/health", healthHandler(openTestSQLiteDB(t)))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := decodeHealth(t, w)
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	components, _ := body["components"].(map[string]any)
	if components["database"] != "ok" {
		t.Errorf("components.database = %v, want ok", components["database"])
	}
}

func TestHealthHandler_DBDown(t *testing.T) {
	db := openTestSQLiteDB(t)
	sqlDB, _ := db.DB()
	sqlDB.Close()

	r := gin.New()
	r.GET("/health", healthHandler(db))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
	if body := decodeHealth(t, w); body["status"] != "degraded" {
		t.Errorf("status = %v, want degraded", body["status"])
	}
}

func TestHealthHandler_NilDB(t *testing.T) {
	r := gin.New()
	r.GET("/health", healthHandler(nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
}

func TestHealthHandler_UsesRequestContextTimeout(t *testing.T) {
	registerBlockingPingDriver()

	sqlDB, err := sql.Open(blockingPingDriverName, "")
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DisableAutomaticPing: true})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}

	r := gin.New()
	r.GET("/health", healthHandler(db))

	reqCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	t.Cleanup(cancel)

	w := httptest.NewRecorder()
	start := time.Now()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil).WithContext(reqCtx))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
	if elapsed := time.Since(start); elapsed > 300*time.Millisecond {
		t.Fatalf("expected health check to honor request context timeout, elapsed=%v", elapsed)
	}
}

func TestRegisterRoutes_Guards(t *testing.T) {
	if err := RegisterRoutes(nil, &RouteDeps{}); err == nil {
		t.Error("nil router: expected error")
	}
	if err := RegisterRoutes(gin.New(), nil); err == nil {
		t.Error("nil deps: expected error")
	}
	if err := RegisterRoutes(gin.New(), &RouteDeps{}); err == nil {
		t.Error("no modules: expected error")
	}
	if err := RegisterRoutes(gin.New(), &RouteDeps{Modules: []Module{nil}}); err == nil {
		t.Error("nil module: expected error")
	}
}

func TestRegisterRoutes_MountsModulesUnderAPIPrefix(t *testing.T) {
	r := gin.New()
	m := &mockModule{}
	if err := RegisterRoutes(r, &RouteDeps{Modules: []Module{m}, DB: openTestSQLiteDB(t)}); err != nil {
		t.Fatalf("RegisterRoutes() error = %v", err)
	}
	if !m.called {
		t.Fatal("module RegisterRoutes was not called")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, APIPrefix+"/ping", nil))
	if w.Code != http.StatusOK || w.Body.String() != "pong" {
		t.Errorf("GET %s/ping = %d %q", APIPrefix, w.Code, w.Body.String())
	}
}

func TestRegisterRoutes_JSONFallbacks(t *testing.T) {
	r := gin.New()
	if err := RegisterRoutes(r, &RouteDeps{Modules: []Module{&mockModule{}}}); err != nil {
		t.Fatalf("RegisterRoutes() error = %v", err)
	}

	tests := []struct {
		method      string
		path        string
		wantCode    int
		wantMessage string
	}{
		{http.MethodGet, "/api/v1/unknown", http.StatusNotFound, "not found"},
		{http.MethodGet, "/", http.StatusNotFound, "not found"},
		{http.MethodPost, APIPrefix + "/ping", http.StatusMethodNotAllowed, "method not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body %q: %v", w.Body.String(), err)
			}
			if body["code"] != float64(tt.wantCode) || body["message"] != tt.wantMessage {
				t.Errorf("body = %v", body)
			}
		})
	}
}

const blockingPingDriverName = "catalog_blocking_ping"

var registerBlockingPingDriverOnce sync.Once

func registerBlockingPingDriver() {
	registerBlockingPingDriverOnce.Do(func() {
		sql.Register(blockingPingDriverName, blockingPingDriver{})
	})
}

type blockingPingDriver struct{}

func (blockingPingDriver) Open(string) (driver.Conn, error) {
	return blockingPingConn{}, nil
}

type blockingPingConn struct{}

func (blockingPingConn) Prepare(string) (driver.Stmt, error) { return nil, driver.ErrSkip }
func (blockingPingConn) Close() error                        { return nil }
func (blockingPingConn) Begin() (driver.Tx, error)           { return blockingPingTx{}, nil }

func (blockingPingConn) Ping(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

type blockingPingTx struct{}

func (blockingPingTx) Commit() error   { return nil }
func (blockingPingTx) Rollback() error { return nil }
