package app

import (
	"errors"
	"sync"

	"github.com/dshills/gridcore/internal/config"
	"github.com/dshills/gridcore/internal/renderer/backend"
)

// inputBuffer bounds how many backend events may wait for the main loop.
const inputBuffer = 64

// eventLoop is the main application loop. Every grid operation happens on
// this goroutine; input polling and config watching feed it via channels.
func (app *Application) eventLoop(b backend.Backend, reloads <-chan config.Reload) error {
	events := make(chan backend.Event, inputBuffer)
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go app.pollEvents(b, events, stop, &wg)
	defer func() {
		close(stop)
		// Unblock PollEvent so the poller sees stop
		b.PostEvent(backend.Event{Type: backend.EventInterrupt})
		wg.Wait()
	}()

	wake := app.grid.Scheduler().Wake()
	var lastDraws uint64
	app.settle(b, &lastDraws, true)

	for {
		select {
		case <-app.done:
			return nil

		case ev := <-events:
			timer := StartTimer()
			err := app.handleBackendEvent(b, ev)
			app.metrics.RecordInput(timer.Stop())
			if errors.Is(err, ErrQuit) {
				return nil
			}
			if err != nil {
				return err
			}

		case <-wake:

		case r, ok := <-reloads:
			if !ok {
				reloads = nil
				continue
			}
			app.applyReload(r)
		}

		app.settle(b, &lastDraws, false)
	}
}

// settle ticks the scheduler until no work is left and paints if a draw
// completed.
func (app *Application) settle(b backend.Backend, lastDraws *uint64, force bool) {
	// Each tick may schedule a retry draw; the renderer bounds retries
	for i := 0; i < 8; i++ {
		n := app.grid.Tick()
		app.metrics.RecordTick(n)
		if n == 0 {
			break
		}
	}

	draws := app.grid.Draws()
	if !force && draws == *lastDraws {
		return
	}
	*lastDraws = draws

	timer := StartTimer()
	app.grid.Paint(b)
	b.Show()
	app.metrics.RecordFrame(timer.Stop())
}

// pollEvents forwards backend events to the main loop until stop closes.
// Pointer motion is dropped when the loop falls behind; everything else
// waits.
func (app *Application) pollEvents(b backend.Backend, out chan<- backend.Event, stop <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		ev := b.PollEvent()
		select {
		case <-stop:
			return
		default:
		}
		if ev.Type == backend.EventInterrupt || ev.Type == backend.EventNone {
			continue
		}

		if ev.Type == backend.EventMouse && ev.MouseButton == backend.MouseNone {
			select {
			case out <- ev:
			default:
				app.metrics.RecordInputDropped()
			}
			continue
		}

		select {
		case out <- ev:
		case <-stop:
			return
		}
	}
}

// handleBackendEvent processes a backend event and routes it appropriately.
// Returns ErrQuit if the application should exit.
func (app *Application) handleBackendEvent(b backend.Backend, ev backend.Event) error {
	switch ev.Type {
	case backend.EventResize:
		return app.handleResize(b, ev)
	case backend.EventKey:
		if isQuitKey(ev) {
			return ErrQuit
		}
		if ev.Key == backend.KeyCtrlL {
			// Force a full repaint on the next settle
			app.grid.Cells().SetDirty()
			return nil
		}
		app.grid.Dispatch(ev)
		return nil
	default:
		app.grid.Dispatch(ev)
		return nil
	}
}

func isQuitKey(ev backend.Event) bool {
	if ev.Key == backend.KeyCtrlC {
		return true
	}
	return ev.Key == backend.KeyRune && ev.Rune == 'q' && ev.Mod == backend.ModNone
}

// handleResize rebuilds the grid for the new terminal size.
func (app *Application) handleResize(b backend.Backend, ev backend.Event) error {
	w, h := ev.Width, ev.Height
	if w <= 0 || h <= 0 {
		w, h = b.Size()
	}
	if err := app.grid.Mount(w, h); err != nil {
		return err
	}
	app.logger.Debug("resized", "width", w, "height", h)
	return nil
}

// applyReload switches to a reloaded config. A failed reload keeps the
// current config.
func (app *Application) applyReload(r config.Reload) {
	app.metrics.RecordReload(r.Err)
	if r.Err != nil {
		app.logger.Warn("config reload rejected", "error", r.Err)
		return
	}
	if err := app.grid.ApplyConfig(r.Config); err != nil {
		app.logger.Warn("config reload rejected", "error", err)
		return
	}
	app.mu.Lock()
	app.cfg = r.Config
	app.mu.Unlock()
	app.logger.Info("config applied")
}
