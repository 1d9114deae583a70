// Package buffer provides a thread-safe, line-addressed text buffer.
//
// The buffer is the headless implementation of the text buffer adapter the
// session controller talks to. It stores text as a slice of lines split on
// '\n' so that reading the text back yields exactly the bytes that were
// loaded, and it notifies subscribers after every mutation.
//
// Positions are 0-indexed (line, column) pairs where the column counts
// characters (runes), not bytes.
//
// Basic usage:
//
//	buf := buffer.NewBufferFromString("if (x) {\n}")
//
//	unsubscribe := buf.OnChange(func(c buffer.Change) {
//	    // mark the owning document dirty
//	})
//	defer unsubscribe()
//
//	buf.Insert(buffer.Point{Line: 1, Column: 0}, "    ")
package buffer
