// Package config holds the editor's configuration.
//
// Configuration is an explicit value passed to the session controller at
// construction rather than process-wide state. It is assembled from layers,
// higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Startup script          │  ← ~/.vimrc or init.lua ("set" options)
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← WOLFEDIT_*
//	├─────────────────────────────┤
//	│  2. Config file             │  ← ~/.config/wolfedit/config.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │
//	└─────────────────────────────┘
//
// Layers 1-3 are handled by Load; the startup script is applied afterwards
// by the startup package because it speaks the modal engine's command
// language rather than TOML.
package config
