// Package config loads gridcore settings.
//
// Settings come from three sources, later ones overriding earlier:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← GRIDCORE_GRID_CELL_WIDTH=14
//	├─────────────────────────────┤
//	│  2. Config File             │  ← gridcore.toml / gridcore.yaml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │
//	└─────────────────────────────┘
//
// The file format is chosen by extension: ".toml" is decoded with go-toml,
// ".yaml" and ".yml" with yaml.v3. Unknown keys are rejected so typos
// surface as a ParseError instead of being silently ignored.
//
// # Basic Usage
//
//	cfg, err := config.Load("gridcore.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	styles, err := cfg.Style.Styles()
//
// # Live Reload
//
// A Watcher observes the config file with fsnotify and delivers a freshly
// loaded Config on its channel after writes settle:
//
//	w, err := config.NewWatcher("gridcore.toml", config.WithDebounce(100*time.Millisecond))
//	defer w.Close()
//	for r := range w.Reloads() {
//	    if r.Err != nil {
//	        continue
//	    }
//	    apply(r.Config)
//	}
package config
