package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sakif/gamehub/internal/model"
)

// These tests use a file database so the pool holds several connections and
// the writes really interleave. Run them with -race.

const concurrentWriters = 40

func newFileTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "gamehub.db"))
	if err != nil {
		t.Fatalf("failed to create file db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// runConcurrently starts n goroutines together and waits for all of them.
// Errors are collected and reported from the test goroutine.
func runConcurrently(t *testing.T, n int, fn func(i int) error) {
	t.Helper()
	var (
		start sync.WaitGroup
		done  sync.WaitGroup
	)
	errs := make(chan error, n)

	start.Add(1)
	for i := 0; i < n; i++ {
		done.Add(1)
		go func(i int) {
			defer done.Done()
			start.Wait()
			if err := fn(i); err != nil {
				errs <- err
			}
		}(i)
	}
	start.Done()
	done.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent call failed: %v", err)
	}
}

func TestInsertGameIfAbsent_ConcurrentResolvesConverge(t *testing.T) {
	db := newFileTestDB(t)
	ctx := context.Background()

	ids := make([]string, concurrentWriters)
	runConcurrently(t, concurrentWriters, func(i int) error {
		game, _, err := db.InsertGameIfAbsent(ctx, &model.Game{RawgID: 42, Title: "Halo"})
		if err != nil {
			return err
		}
		ids[i] = game.ID
		return nil
	})

	for i, id := range ids {
		if id != ids[0] {
			t.Fatalf("writer %d got game id %q, writer 0 got %q", i, id, ids[0])
		}
	}

	var rows int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM games WHERE rawg_id = 42`).Scan(&rows); err != nil {
		t.Fatalf("counting games: %v", err)
	}
	if rows != 1 {
		t.Errorf("games with rawg_id 42 = %d, want 1", rows)
	}
}

func TestInsertCharacterIfAbsent_ConcurrentResolvesConverge(t *testing.T) {
	db := newFileTestDB(t)
	ctx := context.Background()

	ids := make([]string, concurrentWriters)
	runConcurrently(t, concurrentWriters, func(i int) error {
		character, _, err := db.InsertCharacterIfAbsent(ctx, &model.Character{Name: "Master Chief", GameID: "123"})
		if err != nil {
			return err
		}
		ids[i] = character.ID
		return nil
	})

	for i, id := range ids {
		if id != ids[0] {
			t.Fatalf("writer %d got character id %q, writer 0 got %q", i, id, ids[0])
		}
	}
}

// TestAddFavoriteGame_ConcurrentAddsKeepEveryEdge: one account favorites a
// different game from each goroutine; no add may be lost.
func TestAddFavoriteGame_ConcurrentAddsKeepEveryEdge(t *testing.T) {
	db := newFileTestDB(t)
	ctx := context.Background()
	acc := createTestAccount(t, db, "acc1")

	games := make([]*model.Game, concurrentWriters)
	for i := range games {
		games[i] = createTestGame(t, db, int64(i+1), "Game")
	}

	runConcurrently(t, concurrentWriters, func(i int) error {
		_, err := db.AddFavoriteGame(ctx, acc.ID, games[i].ID)
		return err
	})

	ids, err := db.ListFavoriteGameIDs(ctx, acc.ID)
	if err != nil {
		t.Fatalf("ListFavoriteGameIDs() error = %v", err)
	}
	if len(ids) != concurrentWriters {
		t.Fatalf("favorites = %d, want %d", len(ids), concurrentWriters)
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			t.Errorf("game %s listed twice", id)
		}
		seen[id] = true
	}
}

// TestAddFavoriteGame_ConcurrentDuplicateAdds: the same add from every
// goroutine leaves exactly one edge, and exactly one call reports it added.
func TestAddFavoriteGame_ConcurrentDuplicateAdds(t *testing.T) {
	db := newFileTestDB(t)
	ctx := context.Background()
	acc := createTestAccount(t, db, "acc1")
	halo := createTestGame(t, db, 42, "Halo")

	var (
		mu    sync.Mutex
		added int
	)
	runConcurrently(t, concurrentWriters, func(int) error {
		ok, err := db.AddFavoriteGame(ctx, acc.ID, halo.ID)
		if ok {
			mu.Lock()
			added++
			mu.Unlock()
		}
		return err
	})

	if added != 1 {
		t.Errorf("calls reporting added = %d, want 1", added)
	}
	ids, err := db.ListFavoriteGameIDs(ctx, acc.ID)
	if err != nil {
		t.Fatalf("ListFavoriteGameIDs() error = %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("favorites = %v, want exactly [%s]", ids, halo.ID)
	}
}
