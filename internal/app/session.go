package app

import (
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"
)

// Phase is where the session's close/quit/save sequence stands.
type Phase int

const (
	// PhaseIdle means no sequence is waiting.
	PhaseIdle Phase = iota
	// PhaseAwaitingConfirmation waits for Resolve.
	PhaseAwaitingConfirmation
	// PhaseAwaitingSave waits for ResolvePath.
	PhaseAwaitingSave
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingConfirmation:
		return "awaiting-confirmation"
	case PhaseAwaitingSave:
		return "awaiting-save"
	default:
		return "unknown"
	}
}

type sequenceKind int

const (
	seqClose sequenceKind = iota
	seqQuit
	seqSave
	seqSaveAndQuit
)

func (k sequenceKind) String() string {
	switch k {
	case seqClose:
		return "close"
	case seqQuit:
		return "quit"
	case seqSave:
		return "save"
	case seqSaveAndQuit:
		return "save-and-quit"
	default:
		return "unknown"
	}
}

// sequence is the suspended state of a multi-step operation. A quit keeps
// closing index 0 after each removal; the others stop after one document.
type sequence struct {
	kind   sequenceKind
	target DocumentID
	prompt Prompt
}

// PathWatcher is told which files the session has open.
type PathWatcher interface {
	Watch(path string) error
	Unwatch(path string) error
}

// Session is the ordered set of open documents and the current index.
//
// Close, quit and save run as resumable sequences: a Begin call either
// completes or returns a Prompt, and the sequence resumes when the prompt
// is answered through Resolve or ResolvePath. Only one sequence can be
// pending at a time.
type Session struct {
	mu sync.Mutex

	docs    []*Document
	current int

	seq   *sequence
	phase Phase

	host     Host
	messages MessageSurface
	logger   *Logger
	metrics  *Metrics
	watcher  PathWatcher
	watched  map[DocumentID]string

	untitled   int
	terminated bool
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithHost sets the host terminated when the session empties.
func WithHost(h Host) SessionOption {
	return func(s *Session) {
		s.host = h
	}
}

// WithMessages sets the surface for user-facing messages.
func WithMessages(m MessageSurface) SessionOption {
	return func(s *Session) {
		s.messages = m
	}
}

// WithLogger sets the session logger.
func WithLogger(l *Logger) SessionOption {
	return func(s *Session) {
		s.logger = l
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *Metrics) SessionOption {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithWatcher registers open files with w.
func WithWatcher(w PathWatcher) SessionOption {
	return func(s *Session) {
		s.watcher = w
	}
}

// NewSession creates an empty session.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		current:  -1,
		host:     nopHost{},
		messages: nopSurface{},
		logger:   NullLogger,
		metrics:  NewMetrics(),
		watched:  make(map[DocumentID]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("session")
	return s
}

// NewDocument appends an empty untitled document and makes it current.
func (s *Session) NewDocument() *Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.untitled++
	name := UntitledName
	if s.untitled > 1 {
		name = fmt.Sprintf("%s-%d", UntitledName, s.untitled)
	}
	doc := NewScratchDocument(name)
	s.appendLocked(doc)
	s.logger.Info("new document %s", name)
	return doc
}

// OpenDocument reads path into a new current document. On failure the
// session is unchanged and the error matches ErrIO.
func (s *Session) OpenDocument(path string) (*Document, error) {
	doc, err := LoadDocument(path)
	if err != nil {
		s.logger.Error("open failed: %v", err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.appendLocked(doc)
	s.watchLocked(doc)
	s.metrics.recordOpen()
	s.logger.WithField("path", doc.Path()).Info("opened %s", doc.Name())
	return doc, nil
}

func (s *Session) appendLocked(doc *Document) {
	s.docs = append(s.docs, doc)
	s.current = len(s.docs) - 1
	s.terminated = false
}

// RequestSave writes doc to its path. A document without a path fails
// with ErrNoPath; callers obtain one and use RequestSaveAs.
func (s *Session) RequestSave(doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(doc.ID()) < 0 {
		return ErrDocumentNotFound
	}
	return s.saveLocked(doc)
}

// RequestSaveAs rebinds doc to path, then saves.
func (s *Session) RequestSaveAs(doc *Document, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(doc.ID()) < 0 {
		return ErrDocumentNotFound
	}
	if err := doc.SetPath(path); err != nil {
		return err
	}
	return s.saveLocked(doc)
}

func (s *Session) saveLocked(doc *Document) error {
	start := time.Now()
	err := doc.Save()
	s.metrics.RecordSave(time.Since(start), err)
	if err != nil {
		s.logger.Error("save failed: %v", err)
		return err
	}
	s.watchLocked(doc)
	s.logger.WithField("path", doc.Path()).Info("saved %s", doc.Name())
	return nil
}

// BeginClose starts closing the document at index. A clean document is
// removed at once; a dirty one yields a confirmation prompt.
func (s *Session) BeginClose(index int) (*Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq != nil {
		return nil, ErrSequencePending
	}
	if index < 0 || index >= len(s.docs) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}
	return s.closeStepLocked(s.docs[index], seqClose)
}

// BeginQuit starts closing every document, always at index 0, until the
// session is empty or the user cancels.
func (s *Session) BeginQuit() (*Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq != nil {
		return nil, ErrSequencePending
	}
	return s.quitLocked()
}

func (s *Session) quitLocked() (*Prompt, error) {
	if len(s.docs) == 0 {
		s.finishLocked()
		s.terminateLocked()
		return nil, nil
	}
	s.logger.Info("quitting %d document(s)", len(s.docs))
	return s.closeStepLocked(s.docs[0], seqQuit)
}

// BeginSave saves the current document, asking for a path when it has
// none.
func (s *Session) BeginSave() (*Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq != nil {
		return nil, ErrSequencePending
	}
	doc := s.currentLocked()
	if doc == nil {
		return nil, ErrNoActiveDocument
	}
	if doc.IsUntitled() {
		return s.askPathLocked(doc, seqSave), nil
	}
	return nil, s.saveLocked(doc)
}

// BeginSaveAndQuit saves the current document, then quits. A failed save
// is reported and the quit goes ahead; the document is still dirty so the
// quit asks about it.
func (s *Session) BeginSaveAndQuit() (*Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq != nil {
		return nil, ErrSequencePending
	}
	doc := s.currentLocked()
	if doc == nil {
		return s.quitLocked()
	}
	if doc.IsUntitled() {
		return s.askPathLocked(doc, seqSaveAndQuit), nil
	}
	if err := s.saveLocked(doc); err != nil {
		s.messages.ShowMessage(MessageError, err.Error())
	}
	return s.quitLocked()
}

// Resolve answers a PromptConfirm.
func (s *Session) Resolve(choice Choice) (*Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseAwaitingConfirmation {
		return nil, ErrNoPendingPrompt
	}
	seq := s.seq
	doc := s.findLocked(seq.target)
	if doc == nil {
		s.finishLocked()
		return nil, ErrDocumentNotFound
	}
	s.logger.Debug("%s of %s resolved: %s", seq.kind, doc.Name(), choice)

	switch choice {
	case ChoiceCancel:
		s.finishLocked()
		s.metrics.recordCancel()
		s.logger.Info("%s aborted at %s", seq.kind, doc.Name())
		return nil, ErrUserCancelled

	case ChoiceDiscard:
		s.removeLocked(doc, true)
		return s.afterRemoveLocked(seq.kind)

	case ChoiceSave:
		if doc.IsUntitled() {
			return s.askPathLocked(doc, seq.kind), nil
		}
		if err := s.saveLocked(doc); err != nil {
			s.finishLocked()
			return nil, err
		}
		s.removeLocked(doc, false)
		return s.afterRemoveLocked(seq.kind)

	default:
		return nil, fmt.Errorf("unknown choice %d", choice)
	}
}

// ResolvePath answers a PromptSavePath. An empty path means the picker
// was cancelled and abandons the whole sequence.
func (s *Session) ResolvePath(path string) (*Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseAwaitingSave {
		return nil, ErrNoPendingPrompt
	}
	seq := s.seq
	doc := s.findLocked(seq.target)
	if doc == nil {
		s.finishLocked()
		return nil, ErrDocumentNotFound
	}
	if path == "" {
		s.finishLocked()
		s.metrics.recordCancel()
		s.logger.Info("%s aborted: no path for %s", seq.kind, doc.Name())
		return nil, ErrUserCancelled
	}

	if err := doc.SetPath(path); err != nil {
		s.finishLocked()
		return nil, err
	}
	err := s.saveLocked(doc)

	switch seq.kind {
	case seqSave:
		s.finishLocked()
		return nil, err
	case seqSaveAndQuit:
		s.finishLocked()
		if err != nil {
			s.messages.ShowMessage(MessageError, err.Error())
		}
		return s.quitLocked()
	default:
		if err != nil {
			s.finishLocked()
			return nil, err
		}
		s.removeLocked(doc, false)
		return s.afterRemoveLocked(seq.kind)
	}
}

func (s *Session) closeStepLocked(doc *Document, kind sequenceKind) (*Prompt, error) {
	if !doc.IsDirty() {
		s.removeLocked(doc, false)
		return s.afterRemoveLocked(kind)
	}
	p := Prompt{
		Kind:     PromptConfirm,
		Document: doc.ID(),
		Name:     doc.Name(),
		Message:  fmt.Sprintf("Save changes to %q before closing?", doc.Name()),
	}
	s.seq = &sequence{kind: kind, target: doc.ID(), prompt: p}
	s.phase = PhaseAwaitingConfirmation
	return &p, nil
}

func (s *Session) askPathLocked(doc *Document, kind sequenceKind) *Prompt {
	p := Prompt{
		Kind:      PromptSavePath,
		Document:  doc.ID(),
		Name:      doc.Name(),
		Suggested: doc.Name(),
		Message:   fmt.Sprintf("Save %s as", doc.Name()),
	}
	s.seq = &sequence{kind: kind, target: doc.ID(), prompt: p}
	s.phase = PhaseAwaitingSave
	return &p
}

func (s *Session) afterRemoveLocked(kind sequenceKind) (*Prompt, error) {
	if len(s.docs) == 0 {
		s.finishLocked()
		s.terminateLocked()
		return nil, nil
	}
	if kind == seqQuit {
		return s.closeStepLocked(s.docs[0], seqQuit)
	}
	s.finishLocked()
	return nil, nil
}

func (s *Session) finishLocked() {
	s.seq = nil
	s.phase = PhaseIdle
}

func (s *Session) terminateLocked() {
	if s.terminated {
		return
	}
	s.terminated = true
	s.logger.Info("no documents left, terminating")
	s.host.Terminate()
}

func (s *Session) removeLocked(doc *Document, discarded bool) {
	i := s.indexLocked(doc.ID())
	if i < 0 {
		return
	}
	s.docs = slices.Delete(s.docs, i, i+1)
	doc.close()
	s.unwatchLocked(doc)

	s.metrics.recordClose()
	if discarded {
		s.metrics.recordDiscard()
		s.logger.Info("discarded %s", doc.Name())
	} else {
		s.logger.Info("closed %s", doc.Name())
	}

	switch {
	case len(s.docs) == 0:
		s.current = -1
	case s.current > i:
		s.current--
	case s.current >= len(s.docs):
		s.current = len(s.docs) - 1
	}
}

// Abort drops a pending sequence without touching any document.
func (s *Session) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != nil {
		s.logger.Debug("%s abandoned", s.seq.kind)
	}
	s.finishLocked()
}

// ForceQuit discards every document without asking and terminates the
// host. A pending sequence is dropped.
func (s *Session) ForceQuit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.finishLocked()
	s.logger.Warn("force quit, discarding %d document(s)", len(s.docs))
	for _, doc := range slices.Clone(s.docs) {
		s.removeLocked(doc, true)
	}
	s.terminateLocked()
}

// Cancel terminates the host unless doc differs from its file, in which
// case the user is told and nothing else happens. It reports whether the
// host was terminated.
func (s *Session) Cancel(doc *Document) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc.HasChanges() {
		name := doc.Path()
		if name == "" {
			name = doc.Name()
		}
		s.messages.ShowMessage(MessageWarning, fmt.Sprintf("File %q was changed", name))
		return false
	}
	s.terminateLocked()
	return true
}

// HasChanges reports whether doc differs from its backing file.
func (s *Session) HasChanges(doc *Document) bool {
	return doc.HasChanges()
}

// MarkStale flags every document bound to path whose buffer no longer
// matches the file. It returns how many were flagged.
func (s *Session) MarkStale(path string) int {
	abs, err := filepath.Abs(path)
	if err != nil {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, doc := range s.docs {
		if doc.Path() != abs || !doc.HasChanges() {
			continue
		}
		doc.markStale()
		n++
	}
	if n > 0 {
		s.metrics.recordStaleMark()
		s.logger.WithField("path", abs).Info("file changed on disk")
		s.messages.ShowMessage(MessageWarning, fmt.Sprintf("File %q changed on disk", abs))
	}
	return n
}

func (s *Session) watchLocked(doc *Document) {
	if s.watcher == nil {
		return
	}
	path := doc.Path()
	old := s.watched[doc.ID()]
	if path == old {
		return
	}
	if old != "" {
		_ = s.watcher.Unwatch(old)
		delete(s.watched, doc.ID())
	}
	if path == "" {
		return
	}
	if err := s.watcher.Watch(path); err != nil {
		s.logger.Debug("not watching %s: %v", path, err)
		return
	}
	s.watched[doc.ID()] = path
}

func (s *Session) unwatchLocked(doc *Document) {
	if s.watcher == nil {
		return
	}
	if path, ok := s.watched[doc.ID()]; ok {
		_ = s.watcher.Unwatch(path)
		delete(s.watched, doc.ID())
	}
}

// Phase returns the sequence phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Pending returns the prompt the session is waiting on, or nil.
func (s *Session) Pending() *Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq == nil {
		return nil
	}
	p := s.seq.prompt
	return &p
}

// Terminated reports whether the host has been told to terminate.
func (s *Session) Terminated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminated
}

// SetCurrent makes the document at index current.
func (s *Session) SetCurrent(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.docs) {
		return fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}
	s.current = index
	return nil
}

// Current returns the current document, or nil when the session is empty.
func (s *Session) Current() *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked()
}

func (s *Session) currentLocked() *Document {
	if s.current < 0 || s.current >= len(s.docs) {
		return nil
	}
	return s.docs[s.current]
}

// CurrentIndex returns the current index, -1 when empty.
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Documents returns the documents in tab order.
func (s *Session) Documents() []*Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.docs)
}

// Count returns the number of open documents.
func (s *Session) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

// Document returns the document with the given ID.
func (s *Session) Document(id DocumentID) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc := s.findLocked(id); doc != nil {
		return doc, nil
	}
	return nil, ErrDocumentNotFound
}

// IndexOf returns the tab index of id, or -1.
func (s *Session) IndexOf(id DocumentID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(id)
}

// Metrics returns the session's counters.
func (s *Session) Metrics() *Metrics {
	return s.metrics
}

func (s *Session) indexLocked(id DocumentID) int {
	return slices.IndexFunc(s.docs, func(d *Document) bool { return d.id == id })
}

func (s *Session) findLocked(id DocumentID) *Document {
	if i := s.indexLocked(id); i >= 0 {
		return s.docs[i]
	}
	return nil
}
