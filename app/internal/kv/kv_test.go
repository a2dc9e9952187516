package kv

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"sync"
	"testing"
)

// runContract exercises the Store operations shared by every backend.
func runContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	// Get on a missing key
	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) = %v, want ErrNotFound", err)
	}

	// Set then Get
	if err := s.Set(ctx, "a", []byte("1")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(v) != "1" {
		t.Errorf("Get = %q, want 1", v)
	}

	// Set overwrites
	if err := s.Set(ctx, "a", []byte("2")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, _ = s.Get(ctx, "a")
	if string(v) != "2" {
		t.Errorf("overwrite: Get = %q, want 2", v)
	}

	// Update on an absent key sees nil
	err = s.Update(ctx, "counter", func(old []byte) ([]byte, error) {
		if old != nil {
			t.Errorf("expected nil old value, got %q", old)
		}
		return []byte("1"), nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	// Update on an existing key sees the current value
	err = s.Update(ctx, "counter", func(old []byte) ([]byte, error) {
		n, _ := strconv.Atoi(string(old))
		return []byte(strconv.Itoa(n + 1)), nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	v, _ = s.Get(ctx, "counter")
	if string(v) != "2" {
		t.Errorf("counter = %q, want 2", v)
	}

	// Update propagates the callback error without writing
	wantErr := errors.New("boom")
	err = s.Update(ctx, "counter", func(old []byte) ([]byte, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("Update error = %v, want boom", err)
	}
	v, _ = s.Get(ctx, "counter")
	if string(v) != "2" {
		t.Errorf("failed update must not write, counter = %q", v)
	}

	// Keys with a prefix, sorted
	for _, k := range []string{"p:b", "p:a", "q:x"} {
		if err := s.Set(ctx, k, []byte("v")); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}
	keys, err := s.Keys(ctx, "p:")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if !reflect.DeepEqual(keys, []string{"p:a", "p:b"}) {
		t.Errorf("Keys = %v, want [p:a p:b]", keys)
	}

	// Delete counts only keys that existed
	n, err := s.Delete(ctx, "p:a", "p:b", "nope")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Delete = %d, want 2", n)
	}
	if _, err := s.Get(ctx, "p:a"); !errors.Is(err, ErrNotFound) {
		t.Error("p:a should be gone")
	}

	// Delete with no keys
	if n, err := s.Delete(ctx); err != nil || n != 0 {
		t.Errorf("empty Delete = (%d, %v), want (0, nil)", n, err)
	}
}

func TestMemory_Contract(t *testing.T) {
	runContract(t, NewMemory())
}

func TestSQLite_Contract(t *testing.T) {
	s, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer s.Close()
	runContract(t, s)
}

// --------------- Update atomicity ---------------

func TestMemory_ConcurrentUpdates(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	const workers = 20
	const perWorker = 25
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				err := s.Update(ctx, "n", func(old []byte) ([]byte, error) {
					n := 0
					if old != nil {
						n, _ = strconv.Atoi(string(old))
					}
					return []byte(strconv.Itoa(n + 1)), nil
				})
				if err != nil {
					t.Errorf("Update failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	v, err := s.Get(ctx, "n")
	if err != nil {
		t.Fatal(err)
	}
	if string(v) != fmt.Sprint(workers*perWorker) {
		t.Errorf("counter = %s, want %d (lost updates)", v, workers*perWorker)
	}
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	_ = s.Set(ctx, "k", []byte("abc"))

	v, _ := s.Get(ctx, "k")
	v[0] = 'x'

	v2, _ := s.Get(ctx, "k")
	if string(v2) != "abc" {
		t.Errorf("stored value mutated through a returned slice: %q", v2)
	}
}

func TestSQLite_UpdatePersistsAcrossReopen(t *testing.T) {
	path := t.TempDir() + "/kv.db"
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := s.Update(ctx, "k", func(old []byte) ([]byte, error) {
		return []byte("v"), nil
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s2, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	v, err := s2.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if string(v) != "v" {
		t.Errorf("Get after reopen = %q, want v", v)
	}
}
