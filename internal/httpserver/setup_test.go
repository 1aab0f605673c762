package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/ambition_store/internal/models"
	"github.com/Skotchmaster/ambition_store/internal/mykafka"
	"github.com/Skotchmaster/ambition_store/internal/repo"
	"github.com/Skotchmaster/ambition_store/internal/service"
	"github.com/Skotchmaster/ambition_store/internal/session"
	pkgdb "github.com/Skotchmaster/ambition_store/pkg/db"
	pkg_hash "github.com/Skotchmaster/ambition_store/pkg/hash"
)

type testEnv struct {
	E    *echo.Echo
	Repo *repo.GormRepo
}

type nopMailer struct{}

func (nopMailer) Send(context.Context, string, string, string) error { return nil }

func newTestEnv(t *testing.T, codes ...string) *testEnv {
	return newTestEnvWithRate(t, 0, codes...)
}

func newTestEnvWithRate(t *testing.T, perMinute int, codes ...string) *testEnv {
	t.Helper()
	db, err := pkgdb.Open(context.Background(), pkgdb.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, repo.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	r := &repo.GormRepo{DB: db}
	require.NoError(t, r.SeedOrderStatuses(context.Background()))

	next := 0
	email := &service.EmailService{
		Repo:   r,
		Mailer: nopMailer{},
		TTL:    30 * time.Minute,
		Codes: func() (string, error) {
			c := codes[next%len(codes)]
			next++
			return c, nil
		},
	}
	if len(codes) == 0 {
		email.Codes = nil
	}
	sessions := session.NewManager([]byte("test-secret"), time.Hour, &session.GormStore{Repo: r})
	pub := mykafka.Noop{}
	catalog := &service.CatalogService{Repo: r, Producer: pub}

	e := echo.New()
	Register(e, &Deps{
		AuthHandler:     &AuthHTTP{Svc: &service.AuthService{Repo: r, Email: email, Sessions: sessions, Producer: pub}},
		EmailHandler:    &EmailHTTP{Svc: email},
		ProductHandler:  &ProductHTTP{Svc: catalog},
		CategoryHandler: &CategoryHTTP{Svc: catalog},
		OrderHandler:    &OrderHTTP{Svc: &service.OrderService{Repo: r, Producer: pub}},
		Tokens:          sessions,
		Ready:           r.Ping,
		ValidationRate:  perMinute,
	})
	return &testEnv{E: e, Repo: r}
}

// do sends payload as JSON. A non-empty token is sent as a bearer header.
func (env *testEnv) do(method, path string, payload any, token string) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, path, &body)
	if payload != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func data(t *testing.T, rec *httptest.ResponseRecorder, key string) map[string]any {
	t.Helper()
	body := decode(t, rec)
	d, ok := body["data"].(map[string]any)
	require.True(t, ok, rec.Body.String())
	v, ok := d[key].(map[string]any)
	require.True(t, ok, rec.Body.String())
	return v
}

func list(t *testing.T, rec *httptest.ResponseRecorder, key string) []any {
	t.Helper()
	body := decode(t, rec)
	d, ok := body["data"].(map[string]any)
	require.True(t, ok, rec.Body.String())
	v, ok := d[key].([]any)
	require.True(t, ok, rec.Body.String())
	return v
}

// login creates a user directly and returns a bearer token for it.
func (env *testEnv) login(t *testing.T) string {
	t.Helper()
	hash, err := pkg_hash.HashPassword("password")
	require.NoError(t, err)
	require.NoError(t, env.Repo.CreateUser(context.Background(), &models.User{Name: "admin", Email: "admin@b.com", PasswordHash: hash}))

	rec := env.do(http.MethodPost, "/login", map[string]string{"email": "admin@b.com", "password": "password"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	token, _ := body["data"].(map[string]any)["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func (env *testEnv) seedCategory(t *testing.T, name string) models.Category {
	t.Helper()
	c := models.Category{Name: name}
	require.NoError(t, env.Repo.CreateCategory(context.Background(), &c))
	return c
}

func (env *testEnv) seedProduct(t *testing.T, categoryID uint, name string, price int64, soldout bool) models.Product {
	t.Helper()
	p := models.Product{CategoryID: categoryID, Name: name, ImageURL: "https://img/" + name, Price: price, IsSoldout: soldout}
	require.NoError(t, env.Repo.CreateProduct(context.Background(), &p))
	return p
}
