package buffer

import "testing"

func TestNewBuffer_Empty(t *testing.T) {
	b := NewBuffer()

	if !b.IsEmpty() {
		t.Error("expected new buffer to be empty")
	}
	if b.LineCount() != 1 {
		t.Errorf("LineCount() = %d, want 1", b.LineCount())
	}
	if b.Text() != "" {
		t.Errorf("Text() = %q, want empty", b.Text())
	}
}

func TestBuffer_TextRoundTrip(t *testing.T) {
	tests := []string{
		"",
		"one line",
		"trailing newline\n",
		"a\nb\nc",
		"crlf\r\nlines\r\n",
		"\n\n",
	}

	for _, s := range tests {
		b := NewBufferFromString(s)
		if got := b.Text(); got != s {
			t.Errorf("Text() = %q, want %q", got, s)
		}
	}
}

func TestBuffer_LineAccess(t *testing.T) {
	b := NewBufferFromString("héllo\nwörld!\n")

	if b.LineCount() != 3 {
		t.Fatalf("LineCount() = %d, want 3", b.LineCount())
	}
	if b.LineText(1) != "wörld!" {
		t.Errorf("LineText(1) = %q", b.LineText(1))
	}
	if b.LineLen(0) != 5 {
		t.Errorf("LineLen(0) = %d, want 5 runes", b.LineLen(0))
	}
	if b.LineText(7) != "" {
		t.Error("expected empty text for out-of-range line")
	}
}

func TestBuffer_Insert(t *testing.T) {
	b := NewBufferFromString("hello world")

	after, err := b.Insert(Point{Line: 0, Column: 5}, ",\nbig")
	if err != nil {
		t.Fatalf("Insert error = %v", err)
	}
	if b.Text() != "hello,\nbig world" {
		t.Errorf("Text() = %q", b.Text())
	}
	if after != (Point{Line: 1, Column: 3}) {
		t.Errorf("after = %v, want (1:3)", after)
	}
}

func TestBuffer_ReplaceSingleLine(t *testing.T) {
	b := NewBufferFromString("abcdef")

	after, err := b.Replace(Point{0, 1}, Point{0, 4}, "XY")
	if err != nil {
		t.Fatalf("Replace error = %v", err)
	}
	if b.Text() != "aXYef" {
		t.Errorf("Text() = %q, want %q", b.Text(), "aXYef")
	}
	if after != (Point{0, 3}) {
		t.Errorf("after = %v, want (0:3)", after)
	}
}

func TestBuffer_DeleteAcrossLines(t *testing.T) {
	b := NewBufferFromString("first\nsecond\nthird")

	if err := b.Delete(Point{0, 2}, Point{2, 1}); err != nil {
		t.Fatalf("Delete error = %v", err)
	}
	if b.Text() != "fihird" {
		t.Errorf("Text() = %q, want %q", b.Text(), "fihird")
	}
}

func TestBuffer_ReplaceInvalidRange(t *testing.T) {
	b := NewBufferFromString("abc\ndef")

	if _, err := b.Replace(Point{1, 0}, Point{0, 0}, ""); err != ErrRangeInvalid {
		t.Errorf("err = %v, want ErrRangeInvalid", err)
	}
	if _, err := b.Replace(Point{0, 0}, Point{5, 0}, ""); err != ErrLineOutOfRange {
		t.Errorf("err = %v, want ErrLineOutOfRange", err)
	}
}

func TestBuffer_SetLine(t *testing.T) {
	b := NewBufferFromString("a\nb")

	if err := b.SetLine(1, "  b"); err != nil {
		t.Fatalf("SetLine error = %v", err)
	}
	if b.Text() != "a\n  b" {
		t.Errorf("Text() = %q", b.Text())
	}
	if err := b.SetLine(3, "x"); err != ErrLineOutOfRange {
		t.Errorf("err = %v, want ErrLineOutOfRange", err)
	}
}

func TestBuffer_OnChange(t *testing.T) {
	b := NewBuffer()

	var changes []Change
	unsubscribe := b.OnChange(func(c Change) {
		changes = append(changes, c)
	})

	b.SetText("x")
	_, _ = b.Insert(Point{0, 1}, "y")
	if len(changes) != 2 {
		t.Fatalf("got %d changes, want 2", len(changes))
	}
	if changes[1].Revision != 2 {
		t.Errorf("Revision = %d, want 2", changes[1].Revision)
	}

	unsubscribe()
	b.SetText("z")
	if len(changes) != 2 {
		t.Errorf("got %d changes after unsubscribe, want 2", len(changes))
	}
}

func TestBuffer_SetLineUnchangedDoesNotNotify(t *testing.T) {
	b := NewBufferFromString("same")
	notified := false
	b.OnChange(func(Change) { notified = true })

	if err := b.SetLine(0, "same"); err != nil {
		t.Fatal(err)
	}
	if notified {
		t.Error("expected no notification for identical line")
	}
}

func TestBuffer_SelectionClamped(t *testing.T) {
	b := NewBufferFromString("abc\nde")

	b.SetSelection(Point{1, 10}, Point{-1, 0})
	if b.Cursor() != (Point{1, 2}) {
		t.Errorf("Cursor() = %v, want (1:2)", b.Cursor())
	}
	if b.Anchor() != (Point{0, 0}) {
		t.Errorf("Anchor() = %v, want (0:0)", b.Anchor())
	}

	b.SetCursor(Point{0, 1})
	if b.Anchor() != b.Cursor() {
		t.Error("SetCursor should collapse the selection")
	}
}

func TestBuffer_OffsetConversion(t *testing.T) {
	b := NewBufferFromString("ab\ncde\n")

	tests := []struct {
		offset int
		point  Point
	}{
		{0, Point{0, 0}},
		{2, Point{0, 2}},
		{3, Point{1, 0}},
		{6, Point{1, 3}},
		{7, Point{2, 0}},
	}

	for _, tt := range tests {
		if got := b.OffsetToPoint(tt.offset); got != tt.point {
			t.Errorf("OffsetToPoint(%d) = %v, want %v", tt.offset, got, tt.point)
		}
		if got := b.PointToOffset(tt.point); got != tt.offset {
			t.Errorf("PointToOffset(%v) = %d, want %d", tt.point, got, tt.offset)
		}
	}
}

func TestPoint_Compare(t *testing.T) {
	a := Point{Line: 1, Column: 4}
	b := Point{Line: 2, Column: 0}

	if !a.Before(b) || !b.After(a) {
		t.Error("expected (1:4) before (2:0)")
	}
	if MinPoint(b, a) != a || MaxPoint(a, b) != b {
		t.Error("MinPoint/MaxPoint mismatch")
	}
	if a.Compare(a) != 0 {
		t.Error("expected point to equal itself")
	}
}
