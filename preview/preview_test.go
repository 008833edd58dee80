package preview

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/wohhie/cover-letter-tool/layout"
)

func TestDetectLink(t *testing.T) {
	link, ok := DetectLink("LinkedIn: HTTPS://www.LinkedIn.com/in/jane-doe and more")
	if !ok {
		t.Fatalf("expected a link")
	}
	want := Link{Before: "LinkedIn: ", URL: "HTTPS://www.LinkedIn.com/in/jane-doe", After: " and more"}
	if diff := cmp.Diff(want, link); diff != "" {
		t.Fatalf("link mismatch (-want +got):\n%s", diff)
	}

	if _, ok := DetectLink("see https://example.com/in/jane"); ok {
		t.Fatalf("non-LinkedIn URL must stay plain text")
	}
}

func TestDetectLinkOnlyFirst(t *testing.T) {
	link, ok := DetectLink("http://linkedin.com/a http://linkedin.com/b")
	if !ok || link.URL != "http://linkedin.com/a" || link.After != " http://linkedin.com/b" {
		t.Fatalf("unexpected split: %+v", link)
	}
}

func TestRenderHTMLParagraphs(t *testing.T) {
	long := strings.Repeat("word ", 40)
	doc := "Jane\nABC Corp\n\n\n" + long + "\n\nLinkedIn: https://www.linkedin.com/in/jane"
	out, err := RenderHTML(doc, Options{})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if got := strings.Count(out, "<p"); got != 3 {
		t.Fatalf("expected 3 paragraphs, got %d: %s", got, out)
	}
	if got := strings.Count(out, "<br"); got != 1 {
		t.Fatalf("expected 1 hard break, got %d", got)
	}
	if got := strings.Count(out, "text-align: justify"); got != 1 {
		t.Fatalf("expected exactly one justified paragraph, got %d", got)
	}
	if !strings.Contains(out, `href="https://www.linkedin.com/in/jane"`) {
		t.Fatalf("LinkedIn URL not linked: %s", out)
	}
	if !strings.Contains(out, `class="letter"`) {
		t.Fatalf("article class stripped: %s", out)
	}
}

func TestRenderHTMLEscapesText(t *testing.T) {
	out, err := RenderHTML("R&D <script>alert(1)</script>", Options{})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("markup leaked into preview: %s", out)
	}
	if !strings.Contains(out, "R&amp;D") {
		t.Fatalf("ampersand not escaped: %s", out)
	}
}

func TestRenderPage(t *testing.T) {
	page, err := RenderPage("Hello\n\nWorld", true, Options{Title: "Cover Letter – ABC"})
	if err != nil {
		t.Fatalf("render page failed: %v", err)
	}
	s := string(page)
	for _, want := range []string{"<!DOCTYPE html>", `data-overflow="true"`, "<title>Cover Letter – ABC</title>", "595.28pt", "scrollHeight"} {
		if !strings.Contains(s, want) {
			t.Fatalf("page missing %q", want)
		}
	}
}

func TestEstimateOverflow(t *testing.T) {
	geo := layout.DefaultGeometry()
	vp := ViewportFor(geo)
	measure := AverageCharMeasure(geo.FontSize)

	if EstimateOverflow("Short letter.\n\nRegards", vp, measure) {
		t.Fatalf("short letter should fit")
	}
	long := strings.Repeat("line\n", 60)
	if !EstimateOverflow(long, vp, measure) {
		t.Fatalf("60 hard lines must overflow a 48-line page")
	}
}

func TestContentHeightCountsParagraphGap(t *testing.T) {
	vp := Viewport{Width: 1000, Height: 100, LineHeight: 10, ParagraphGap: 10}
	measure := AverageCharMeasure(10)
	if got := ContentHeight("a\nb\n\nc", vp, measure); got != 40 {
		t.Fatalf("expected height 40, got %v", got)
	}
}

func TestTerminalLinesJustify(t *testing.T) {
	got := TerminalLines("aa bb cc dd ee ff", 10, 5)
	want := []string{"aa  bb  cc", "dd ee ff"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestTerminalLinesParagraphGap(t *testing.T) {
	got := TerminalLines("one\ntwo\n\n\nthree", 40, 120)
	want := []string{"one", "two", "", "three"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestTerminalLinesWideRunes(t *testing.T) {
	got := TerminalLines("你好世界", 4, 120)
	want := []string{"你好", "世界"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderTerminal(t *testing.T) {
	var buf bytes.Buffer
	overflow, err := RenderTerminal(&buf, "a\nb\nc", TerminalOptions{Columns: 20, Rows: 2})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !overflow {
		t.Fatalf("3 lines in 2 rows should overflow")
	}
	if buf.String() != "a\nb\nc\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}

	buf.Reset()
	overflow, err = RenderTerminal(&buf, "LinkedIn: https://linkedin.com/in/x", TerminalOptions{Columns: 60, Rows: 10, Hyperlinks: true})
	if err != nil || overflow {
		t.Fatalf("unexpected result overflow=%v err=%v", overflow, err)
	}
	want := "LinkedIn: \x1b]8;;https://linkedin.com/in/x\x1b\\https://linkedin.com/in/x\x1b]8;;\x1b\\\n"
	if buf.String() != want {
		t.Fatalf("unexpected hyperlink output %q", buf.String())
	}
}

func TestWatchDebouncesChanges(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "values.yaml")
	other := filepath.Join(dir, "other.txt")
	if err := os.WriteFile(target, []byte("a: 1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fired := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, []string{target}, 20*time.Millisecond, func() { fired <- struct{}{} }, nil)
	}()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
loop:
	for {
		select {
		case <-fired:
			break loop
		case <-tick.C:
			_ = os.WriteFile(other, []byte("ignored"), 0o644)
			_ = os.WriteFile(target, []byte("a: 2\n"), 0o644)
		case <-deadline:
			t.Fatalf("watcher never fired")
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("watch did not stop after cancel")
	}
}

func TestDebouncerRunsOneCallbackAtATime(t *testing.T) {
	var active, maxActive, calls atomic.Int32
	finished := make(chan struct{}, 2)
	d := &debouncer{delay: 5 * time.Millisecond, fire: func() {
		n := active.Add(1)
		for {
			m := maxActive.Load()
			if n <= m || maxActive.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(80 * time.Millisecond)
		active.Add(-1)
		calls.Add(1)
		finished <- struct{}{}
	}}
	defer d.stop()

	d.trigger()
	time.Sleep(30 * time.Millisecond)
	// 第一次重绘仍在进行
	d.trigger()

	for i := 0; i < 2; i++ {
		select {
		case <-finished:
		case <-time.After(2 * time.Second):
			t.Fatalf("callback %d never finished", i+1)
		}
	}
	if got := maxActive.Load(); got != 1 {
		t.Fatalf("callbacks overlapped: max concurrent %d", got)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 callbacks, got %d", got)
	}
}

func TestWatchRequiresPaths(t *testing.T) {
	if err := Watch(context.Background(), nil, 0, func() {}, nil); err == nil {
		t.Fatalf("expected error without paths")
	}
}
