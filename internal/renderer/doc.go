// Package renderer provides the view layer of the grid.
//
// The renderer is responsible for:
//   - Building the cell matrix inside a host container
//   - Redrawing cells when the cell state is dirty
//   - Mounting, positioning and tearing down decorators
//   - Announcing each completed draw on the event loop
//   - Painting the visual tree into a backend
//
// Architecture:
//
// The renderer sits between the models and the visual tree:
//
//	┌─────────────────────────────────────────┐
//	│         Renderer (build/draw)           │
//	├─────────────────────────────────────────┤
//	│ Viewport │ Decorators │ Dirty states    │
//	│ Schedule │ Data model │ Event loop      │
//	├─────────────────────────────────────────┤
//	│     Visual tree (surface) + Paint       │
//	├─────────────────────────────────────────┤
//	│  Terminal (tcell) │ Null (in memory)    │
//	└─────────────────────────────────────────┘
//
// Draw requests are coalesced on the scheduler so any number of SetDirty
// calls between two ticks produce a single draw.
//
// Usage:
//
//	r := renderer.New(renderer.DefaultConfig(), deps)
//	if err := r.Build(container); err != nil {
//		return err
//	}
//	r.Draw()
//	sched.Tick()
//	renderer.Paint(container, term, renderer.PaintOptions{})
package renderer
