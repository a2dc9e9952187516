package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := New(time.Minute)
	defer c.Stop()

	c.Set("k", 42)
	v, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if v.(int) != 42 {
		t.Errorf("v = %v", v)
	}
}

func TestGet_Missing(t *testing.T) {
	c := New(time.Minute)
	defer c.Stop()

	if _, ok := c.Get("nope"); ok {
		t.Error("expected miss")
	}
}

func TestGet_Expired(t *testing.T) {
	c := New(20 * time.Millisecond)
	defer c.Stop()

	c.Set("k", "v")
	time.Sleep(40 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("entry should have expired")
	}
}

func TestDelete(t *testing.T) {
	c := New(time.Minute)
	defer c.Stop()

	c.Set("k", "v")
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("entry should be gone")
	}
}

func TestClear(t *testing.T) {
	c := New(time.Minute)
	defer c.Stop()

	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()
	if _, ok := c.Get("a"); ok {
		t.Error("cache should be empty")
	}
}
