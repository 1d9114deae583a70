// Package backend runs the editor in a terminal through tcell.
//
// Host implements the session collaborators (confirmation dialog, path
// picker, message surface and host window) on the bottom row of the
// screen. Editor owns the key loop: a small modal front end that edits the
// current document's buffer, routes ':' command lines to the controller,
// keeps search highlighting live and paints block selections.
package backend
