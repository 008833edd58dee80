package layout

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplitParagraphs(t *testing.T) {
	doc := "11 February 2026\nABC Corp\n\nDear Hiring Manager,\n \n\nBody line one\nBody line two\n\n\n"
	got := SplitParagraphs(doc)
	want := []string{
		"11 February 2026\nABC Corp",
		"Dear Hiring Manager,",
		"Body line one\nBody line two",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("paragraph mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Body line one", "Body line two"}, HardBreaks(got[2])); diff != "" {
		t.Fatalf("hard break mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitParagraphsEmpty(t *testing.T) {
	if got := SplitParagraphs("\n \n\t\n"); len(got) != 0 {
		t.Fatalf("expected no paragraphs, got %q", got)
	}
}

func TestAlignmentFor(t *testing.T) {
	short := "Sincerely,\nYour Name"
	if got := AlignmentFor(short, DefaultJustifyThreshold); got != AlignLeft {
		t.Fatalf("short paragraph should be left aligned, got %s", got)
	}

	exact := strings.Repeat("a", 120)
	if got := AlignmentFor(exact, DefaultJustifyThreshold); got != AlignLeft {
		t.Fatalf("paragraph of exactly 120 chars should be left aligned, got %s", got)
	}

	long := strings.Repeat("word ", 30)
	if got := AlignmentFor(long, DefaultJustifyThreshold); got != AlignJustify {
		t.Fatalf("long paragraph should be justified, got %s", got)
	}

	// 折叠空白后只有 119 个字符
	padded := strings.Repeat("a", 60) + "          \n   " + strings.Repeat("b", 58)
	if got := AlignmentFor(padded, 120); got != AlignLeft {
		t.Fatalf("whitespace must be collapsed before measuring, got %s", got)
	}

	if got := AlignmentFor(strings.Repeat("a", 30), 20); got != AlignJustify {
		t.Fatalf("custom threshold ignored, got %s", got)
	}
}
