package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

type fakeHost struct {
	mu         sync.Mutex
	terminated int
}

func (h *fakeHost) Terminate() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.terminated++
}

func (h *fakeHost) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.terminated
}

type message struct {
	level MessageLevel
	text  string
}

type fakeSurface struct {
	mu       sync.Mutex
	messages []message
}

func (s *fakeSurface) ShowMessage(level MessageLevel, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message{level, text})
}

func (s *fakeSurface) last() (message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return message{}, false
	}
	return s.messages[len(s.messages)-1], true
}

// fakeDialog answers with choices in order, repeating the last one.
type fakeDialog struct {
	choices []Choice
	prompts []Prompt
	err     error
}

func (d *fakeDialog) Confirm(_ context.Context, p Prompt) (Choice, error) {
	d.prompts = append(d.prompts, p)
	if d.err != nil {
		return ChoiceCancel, d.err
	}
	i := len(d.prompts) - 1
	if i >= len(d.choices) {
		i = len(d.choices) - 1
	}
	return d.choices[i], nil
}

func (d *fakeDialog) names() []string {
	names := make([]string, len(d.prompts))
	for i, p := range d.prompts {
		names[i] = p.Name
	}
	return names
}

type fakePicker struct {
	open      string
	save      []string
	suggested []string
}

func (p *fakePicker) PickOpenPath(context.Context) (string, bool) {
	return p.open, p.open != ""
}

func (p *fakePicker) PickSavePath(_ context.Context, suggested string) (string, bool) {
	p.suggested = append(p.suggested, suggested)
	if len(p.save) == 0 {
		return "", false
	}
	path := p.save[0]
	p.save = p.save[1:]
	return path, path != ""
}

type fakeRunner struct {
	dir, command, name string
	out                string
	err                error
}

func (r *fakeRunner) Run(_ context.Context, dir, command, name string) (string, error) {
	r.dir, r.command, r.name = dir, command, name
	return r.out, r.err
}

type fakeWatcher struct {
	watched map[string]int
}

func (w *fakeWatcher) Watch(path string) error {
	if w.watched == nil {
		w.watched = make(map[string]int)
	}
	w.watched[path]++
	return nil
}

func (w *fakeWatcher) Unwatch(path string) error {
	w.watched[path]--
	if w.watched[path] == 0 {
		delete(w.watched, path)
	}
	return nil
}

// openFiles creates files named by names with matching content and opens
// them in order.
func openFiles(t *testing.T, s *Session, names ...string) []*Document {
	t.Helper()
	dir := t.TempDir()
	docs := make([]*Document, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
		doc, err := s.OpenDocument(path)
		if err != nil {
			t.Fatalf("OpenDocument(%s): %v", name, err)
		}
		docs = append(docs, doc)
	}
	return docs
}

func dirtyAll(docs ...*Document) {
	for _, d := range docs {
		d.Buffer().SetText(d.Content() + " edited")
	}
}
