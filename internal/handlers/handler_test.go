// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"github.com/Junito34/mon-site/internal/articles"
	"github.com/Junito34/mon-site/internal/cache"
	"github.com/Junito34/mon-site/internal/database"
	"github.com/Junito34/mon-site/internal/middleware"
	"github.com/Junito34/mon-site/internal/models"
	"github.com/Junito34/mon-site/internal/session"
	"github.com/Junito34/mon-site/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "monsite")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "monsite")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		// Clean up test session and cache keys.
		for _, pattern := range []string{"session:*", "page:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB           *sql.DB
	Valkey       *redis.Client
	Sessions     *session.Store
	ArticleStore *store.ArticleStore
	BlockStore   *store.BlockStore
	CommentStore *store.CommentStore
	UserStore    *store.UserStore
	PageCache    *cache.PageCache
	Service      *articles.Service
	Auth         *Auth
	Public       *Public
	Comments     *Comments
	Moderation   *Moderation
	Users        *Users
}

// newTestEnv creates a complete test environment. Object storage is left
// unconfigured: saves with pending image files are exercised with fakes in
// the articles package instead.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	sessions := session.NewStore(vk, false)
	articleStore := store.NewArticleStore(db)
	blockStore := store.NewBlockStore(db)
	commentStore := store.NewCommentStore(db)
	userStore := store.NewUserStore(db)
	pageCache := cache.NewPageCache(vk, 1*time.Minute)
	feed := cache.NewCommentFeed(vk)
	service := articles.NewService(articleStore, blockStore, nil)

	return &testEnv{
		DB:           db,
		Valkey:       vk,
		Sessions:     sessions,
		ArticleStore: articleStore,
		BlockStore:   blockStore,
		CommentStore: commentStore,
		UserStore:    userStore,
		PageCache:    pageCache,
		Service:      service,
		Auth:         NewAuth(sessions, userStore),
		Public:       NewPublic(articleStore, blockStore, userStore, pageCache),
		Comments:     NewComments(commentStore, feed),
		Moderation:   NewModeration(service, articleStore, blockStore, pageCache),
		Users:        NewUsers(userStore),
	}
}

// testUser creates a throwaway user and registers cleanup.
func testUser(t *testing.T, env *testEnv, email, role string) uuid.UUID {
	t.Helper()
	t.Cleanup(func() { env.DB.Exec("DELETE FROM users WHERE email = $1", email) })
	u, err := env.UserStore.Create(context.Background(), email, "testpass123", "Test User", models.Role(role))
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u.ID
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// testSession creates a session.Data for testing.
func testSession(userID uuid.UUID, email, role string, twoFADone bool) *session.Data {
	return &session.Data{
		UserID:      userID,
		Email:       email,
		DisplayName: "Test User",
		Role:        role,
		TwoFADone:   twoFADone,
	}
}

// withChiURLParams adds chi URL parameters to a request.
func withChiURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// cleanArticles removes test articles by slug.
func cleanArticles(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, s := range slugs {
		db.Exec("DELETE FROM articles WHERE slug = $1", s)
	}
}
