// Package startup runs the editor's startup script.
//
// Two script forms are understood. A vimrc-style file holds one command per
// line; the "set" command changes editor options and "source" runs another
// file. An init.lua file runs in a restricted Lua state and reaches the same
// options through the global "wolfedit" table:
//
//	wolfedit.set("shiftwidth", 4)
//	wolfedit.set("expandtab", false)
//	wolfedit.command("set tabstop=8")
//
// When no user script exists the built-in DefaultScript applies.
package startup
