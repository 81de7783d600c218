package dictionary

import (
	"context"
	"testing"
	"time"
)

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "operators_dict.json", humansDict)
	d, err := New(path, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan ReloadResult, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, d, 20*time.Millisecond, func(res ReloadResult, err error) {
			if err == nil {
				reloaded <- res
			}
		})
	}()

	// give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)
	writeFile(t, dir, "operators_dict.json", `{"aliases": [{"alias": "CLICK", "operator": "Click"}]}`)

	select {
	case res := <-reloaded:
		if res.Entries != 1 || !res.Changed {
			t.Errorf("unexpected reload result %+v", res)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not reload")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch() error = %v", err)
	}
}
