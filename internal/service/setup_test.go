package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/ambition_store/internal/models"
	"github.com/Skotchmaster/ambition_store/internal/repo"
	"github.com/Skotchmaster/ambition_store/internal/session"
	pkgdb "github.com/Skotchmaster/ambition_store/pkg/db"
)

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	db, err := pkgdb.Open(context.Background(), pkgdb.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, repo.AutoMigrate(db))

	r := &repo.GormRepo{DB: db}
	require.NoError(t, r.SeedOrderStatuses(context.Background()))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return r
}

type sentMail struct {
	To, Subject, Body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return m.err
}

type event struct {
	Topic string
	Key   string
	Body  map[string]any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []event
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic, key string, e any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	body, _ := e.(map[string]any)
	p.events = append(p.events, event{Topic: topic, Key: key, Body: body})
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Body["type"].(string))
	}
	return out
}

func fixedCodes(codes ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		if i >= len(codes) {
			return "", errors.New("no more codes")
		}
		c := codes[i]
		i++
		return c, nil
	}
}

type testServices struct {
	Repo    *repo.GormRepo
	Mailer  *fakeMailer
	Events  *fakePublisher
	Email   *EmailService
	Auth    *AuthService
	Catalog *CatalogService
	Orders  *OrderService
	Clock   *clock
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newServices(t *testing.T, codes ...string) *testServices {
	t.Helper()
	r := newTestRepo(t)
	m := &fakeMailer{}
	pub := &fakePublisher{}
	clk := &clock{t: time.Now().UTC().Truncate(time.Second)}

	email := &EmailService{Repo: r, Mailer: m, TTL: 30 * time.Minute, Now: clk.Now, Codes: fixedCodes(codes...)}
	sessions := session.NewManager([]byte("test-secret"), 15*time.Minute, &session.GormStore{Repo: r})

	return &testServices{
		Repo:    r,
		Mailer:  m,
		Events:  pub,
		Email:   email,
		Auth:    &AuthService{Repo: r, Email: email, Sessions: sessions, Producer: pub},
		Catalog: &CatalogService{Repo: r, Producer: pub},
		Orders:  &OrderService{Repo: r, Producer: pub, Now: clk.Now},
		Clock:   clk,
	}
}

func seedCategory(t *testing.T, r *repo.GormRepo, name string) models.Category {
	t.Helper()
	c := models.Category{Name: name}
	require.NoError(t, r.CreateCategory(context.Background(), &c))
	return c
}

func seedProduct(t *testing.T, r *repo.GormRepo, categoryID uint, name string, price int64, soldout bool) models.Product {
	t.Helper()
	p := models.Product{CategoryID: categoryID, Name: name, ImageURL: "https://img/" + name, Price: price, IsSoldout: soldout}
	require.NoError(t, r.CreateProduct(context.Background(), &p))
	return p
}
