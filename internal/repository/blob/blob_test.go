package blob

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"storefront/internal/migrate"
)

func exerciseRepo(ctx context.Context, t *testing.T, repo Repository, key string) {
	t.Helper()
	if _, ok, err := repo.Get(ctx, key); err != nil || ok {
		t.Fatalf("expected absent key, ok=%v err=%v", ok, err)
	}
	if err := repo.Set(ctx, key, []byte(`[{"id":"a"}]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := repo.Set(ctx, key, []byte(`[]`)); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, ok, err := repo.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if string(got) != `[]` {
		t.Fatalf("expected last write to win, got %s", got)
	}
}

func TestMemory_GetSet(t *testing.T) {
	exerciseRepo(context.Background(), t, NewMemory(), "cart")
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	value := []byte("abc")
	if err := repo.Set(ctx, "k", value); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value[0] = 'x'
	got, _, _ := repo.Get(ctx, "k")
	got[1] = 'y'
	again, _, _ := repo.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("stored value was aliased: %s", again)
	}
}

func TestPostgres_GetSet(t *testing.T) {
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE blobs`); err != nil {
		t.Fatalf("truncate blobs: %v", err)
	}
	exerciseRepo(ctx, t, NewPostgres(pool, nil), "cart")
}

func TestRedis_GetSet(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()
	if err := rdb.Del(ctx, redisKeyPrefix+"cart-test").Err(); err != nil {
		t.Fatalf("reset key: %v", err)
	}
	exerciseRepo(ctx, t, NewRedis(rdb), "cart-test")
}
