package service_test

import (
	"sync"
	"testing"

	"github.com/jonny/stayhub/internal/domain/service"
)

func TestActionRegistry_LookupIsCaseInsensitive(t *testing.T) {
	lights := newFakeExecutor("lights_off", "ok")
	r := service.NewActionRegistry(nil, lights)

	for _, name := range []string{"lights_off", "LIGHTS_OFF", "Lights_Off"} {
		got, ok := r.Lookup(name)
		if !ok {
			t.Fatalf("Lookup(%q) found nothing", name)
		}
		if got != lights {
			t.Errorf("Lookup(%q) returned the wrong executor", name)
		}
	}
	if _, ok := r.Lookup("lights"); ok {
		t.Error("expected no prefix match")
	}
}

func TestActionRegistry_FirstRegistrationWins(t *testing.T) {
	first := newFakeExecutor("shutdown_server", "first")
	second := newFakeExecutor("Shutdown_Server", "second")
	r := service.NewActionRegistry(nil, first)

	if r.Register(second) {
		t.Error("expected duplicate registration to be rejected")
	}
	got, _ := r.Lookup("shutdown_server")
	if got != first {
		t.Error("expected the first executor to be kept")
	}
	if n := len(r.Actions()); n != 1 {
		t.Errorf("expected 1 action, got %d", n)
	}
}

func TestActionRegistry_ActionsSorted(t *testing.T) {
	r := service.NewActionRegistry(nil,
		newFakeExecutor("shutdown_server", ""),
		newFakeExecutor("assess_guest", ""),
		newFakeExecutor("lights_off", ""),
	)

	got := r.Actions()
	want := []string{"assess_guest", "lights_off", "shutdown_server"}
	if len(got) != len(want) {
		t.Fatalf("Actions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Actions()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestActionRegistry_ConcurrentLookups(t *testing.T) {
	r := service.NewActionRegistry(nil, newFakeExecutor("lights_off", ""))

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := r.Lookup("lights_off"); !ok {
				t.Error("lookup failed")
			}
		}()
	}
	wg.Wait()
}
