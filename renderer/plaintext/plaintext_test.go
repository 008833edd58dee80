package plaintext

import (
	"bytes"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteIsVerbatim(t *testing.T) {
	doc := "11 February 2026\r\nABC Corp\n\n  indented\t\n"
	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if buf.String() != doc {
		t.Fatalf("plain text export altered the document: %q", buf.String())
	}
	if string(Render(doc)) != doc {
		t.Fatalf("Render altered the document")
	}
}

func TestCopyUsesSystemClipboard(t *testing.T) {
	var got string
	c := &Clipboard{write: func(s string) error { got = s; return nil }}
	if !c.Copy("hello") {
		t.Fatalf("expected copy to succeed")
	}
	if got != "hello" {
		t.Fatalf("clipboard received %q", got)
	}
}

func TestCopyFailsSilentlyWithoutTerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "not-a-tty"))
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	defer f.Close()

	c := &Clipboard{Terminal: f, write: func(string) error { return errors.New("no clipboard") }}
	if c.Copy("hello") {
		t.Fatalf("expected copy to report failure when no terminal is attached")
	}
	info, _ := f.Stat()
	if info.Size() != 0 {
		t.Fatalf("nothing should be written to a non-terminal file")
	}
}

func TestOSC52Sequence(t *testing.T) {
	var buf bytes.Buffer
	if err := writeOSC52(&buf, "hi"); err != nil {
		t.Fatalf("osc52 failed: %v", err)
	}
	want := "\x1b]52;c;" + base64.StdEncoding.EncodeToString([]byte("hi")) + "\a"
	if buf.String() != want {
		t.Fatalf("unexpected sequence %q", buf.String())
	}
}
