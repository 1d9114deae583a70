// Package dispatcher routes ex-commands to session actions.
//
// The modal command engine hands every command-line entry (":w", ":q!",
// ":make") to the Router as a parsed ExCommand. The Router maps it to at
// most one Action using a fixed priority table; the first matching rule
// wins and there is no fallthrough between rules:
//
//  1. "wq"                        -> ActionSaveAndQuit
//  2. "w"/"write", "wa"/"wall"    -> ActionSave
//  3. "q"/"quit", "qa"/"qall"     -> ActionDiscard with bang, else ActionQuit
//  4. "run", "make"               -> ActionRun
//
// Matching is case-sensitive against the short or the long form; prefixes
// such as "wri" do not match. Anything else is offered to an optional
// fallback and otherwise reported as not handled.
package dispatcher
