package ssh

import "testing"

func TestPool_GetReusesConnection(t *testing.T) {
	pool := NewPool()
	pool.Register("dev", Config{Host: "dev.example.com", User: "me"})

	first, err := pool.Get("dev")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	second, err := pool.Get("dev")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if first != second {
		t.Error("Get() should reuse the pooled connection")
	}
	if first.Host != "dev.example.com" || first.User != "me" {
		t.Errorf("connection config not applied: %+v", first)
	}
}

func TestPool_UnknownHostFallsBackToName(t *testing.T) {
	pool := NewPool()
	conn, err := pool.Get("bare-hostname")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if conn.Host != "bare-hostname" {
		t.Errorf("Host = %q, want bare-hostname", conn.Host)
	}
}

func TestPool_ReregisterWithNewConfigDropsConnection(t *testing.T) {
	pool := NewPool()
	pool.Register("dev", Config{Host: "old.example.com"})
	first, _ := pool.Get("dev")

	pool.Register("dev", Config{Host: "new.example.com"})
	second, _ := pool.Get("dev")

	if first == second {
		t.Error("changed config should produce a fresh connection")
	}
	if second.Host != "new.example.com" {
		t.Errorf("Host = %q, want new.example.com", second.Host)
	}
}

func TestPool_PruneDropsAbsentHosts(t *testing.T) {
	pool := NewPool()
	pool.Register("dev", Config{Host: "dev.example.com"})
	pool.Register("old", Config{Host: "old.example.com"})
	kept, _ := pool.Get("dev")
	pool.Get("old")

	pool.Prune([]string{"dev"})

	again, _ := pool.Get("dev")
	if kept != again {
		t.Error("Prune() must keep listed hosts pooled")
	}
	// Both the connection and the config are gone: the name falls back to
	// being used as the hostname
	dropped, _ := pool.Get("old")
	if dropped.Host != "old" {
		t.Errorf("Host = %q, want old (pruned host must be forgotten)", dropped.Host)
	}
}

func TestPool_Remove(t *testing.T) {
	pool := NewPool()
	pool.Register("dev", Config{Host: "dev.example.com"})
	first, _ := pool.Get("dev")
	pool.Remove("dev")

	second, _ := pool.Get("dev")
	if first == second {
		t.Error("Remove() should drop the pooled connection")
	}
	// Config was removed too, so the name itself becomes the host
	if second.Host != "dev" {
		t.Errorf("Host = %q, want dev", second.Host)
	}
}
