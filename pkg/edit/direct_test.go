package edit

import (
	"strings"
	"testing"
)

func TestApplyDirect_NoOpWhenIdentical(t *testing.T) {
	content := "unchanged\ncontent\n"
	res := ApplyDirect(content, content)
	if res.Applied {
		t.Error("ApplyDirect should not mark identical content as applied")
	}
	if res.Content != content || res.Summary != "" {
		t.Errorf("ApplyDirect(identical) = %+v, want untouched no-op", res)
	}
}

func TestApplyDirect_ReplacesAndSummarizes(t *testing.T) {
	original := "package main\n\nfunc old() {}\n"
	updated := "package main\n\nfunc new() {}\n"
	res := ApplyDirect(original, updated)
	if !res.Applied {
		t.Fatal("ApplyDirect should mark differing content as applied")
	}
	if res.Content != updated {
		t.Errorf("Content = %q, want %q", res.Content, updated)
	}
	if !strings.Contains(res.Summary, "-func old() {}") || !strings.Contains(res.Summary, "+func new() {}") {
		t.Errorf("Summary missing expected diff lines: %q", res.Summary)
	}
}

func TestApplyDirect_CommonPrefixAndSuffixTrimmed(t *testing.T) {
	original := "a\nb\nc\nd\ne"
	updated := "a\nb\nX\nd\ne"
	res := ApplyDirect(original, updated)
	if strings.Contains(res.Summary, "-a") || strings.Contains(res.Summary, "-e") {
		t.Errorf("Summary should not include unchanged prefix/suffix lines: %q", res.Summary)
	}
	if !strings.Contains(res.Summary, "-c") || !strings.Contains(res.Summary, "+X") {
		t.Errorf("Summary missing the changed line: %q", res.Summary)
	}
}
