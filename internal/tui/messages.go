package tui

import (
	"sync"

	tea "charm.land/bubbletea/v2"

	"github.com/mark3labs/storelaunch/internal/wizard"
)

// ViewMsg carries a fresh controller view into the program.
type ViewMsg struct {
	View wizard.View
}

// Bridge forwards every controller change to send as a ViewMsg. Bursts are
// coalesced: only the latest view is delivered once send is free again.
// send runs on a dedicated goroutine, so controller observers never block
// on the program's event loop. The returned func stops forwarding.
func Bridge(ctrl *wizard.Controller, send func(tea.Msg)) func() {
	var (
		mu      sync.Mutex
		pending *wizard.View
	)
	wake := make(chan struct{}, 1)
	done := make(chan struct{})

	unsubscribe := ctrl.Subscribe(func(v wizard.View) {
		mu.Lock()
		pending = &v
		mu.Unlock()
		select {
		case wake <- struct{}{}:
		default:
		}
	})

	go func() {
		for {
			select {
			case <-done:
				return
			case <-wake:
			}
			mu.Lock()
			v := pending
			pending = nil
			mu.Unlock()
			if v != nil {
				send(ViewMsg{View: *v})
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			unsubscribe()
			close(done)
		})
	}
}
