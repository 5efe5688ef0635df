package edit

import (
	"strings"
	"testing"
)

func TestApply_EmptyBatchIsIdentity(t *testing.T) {
	content := "a\nb\nc"
	res := Apply(content, nil)
	if res.Content != content || res.Applied {
		t.Errorf("Apply(nil) = %+v, want identity no-op", res)
	}
}

func TestApply_AddThenRemoveRoundTrip(t *testing.T) {
	original := "one\ntwo\nthree"

	added := Apply(original, []Command{{Kind: KindAdd, Start: 1, End: 1, Content: "inserted-a\ninserted-b"}})
	if !added.Applied {
		t.Fatalf("ADD did not apply: %+v", added)
	}

	addedLines := strings.Split(added.Content, "\n")
	if len(addedLines) != 5 || addedLines[1] != "inserted-a" || addedLines[2] != "inserted-b" {
		t.Fatalf("unexpected content after ADD: %q", added.Content)
	}

	restored := Apply(added.Content, []Command{{Kind: KindRemove, Start: 2, End: 3}})
	if restored.Content != original {
		t.Errorf("round trip failed: got %q, want %q", restored.Content, original)
	}
}

func TestApply_ModifyReplacesRange(t *testing.T) {
	original := "a\nb\nc\nd"
	res := Apply(original, []Command{{Kind: KindModify, Start: 2, End: 3, Content: "x\ny\nz"}})
	want := "a\nx\ny\nz\nd"
	if res.Content != want {
		t.Errorf("MODIFY result = %q, want %q", res.Content, want)
	}
	if !strings.Contains(res.Summary, "-b") || !strings.Contains(res.Summary, "+x") {
		t.Errorf("summary missing expected diff lines: %q", res.Summary)
	}
}

func TestApply_OutOfRangeWarnsWithoutAborting(t *testing.T) {
	original := "a\nb\nc\nd"
	res := Apply(original, []Command{{Kind: KindModify, Start: 5, End: 10, Content: "z"}})
	if res.Content != original {
		t.Errorf("out-of-range MODIFY mutated content: got %q, want unchanged %q", res.Content, original)
	}
	if !strings.Contains(res.Summary, "out of range") {
		t.Errorf("summary should note the out-of-range command, got %q", res.Summary)
	}
	if res.Applied {
		t.Error("Applied should be false when every command in the batch was out of range")
	}
}

func TestApply_MultipleRemovesInOneBatch(t *testing.T) {
	original := "1\n2\n3\n4\n5"
	res := Apply(original, []Command{
		{Kind: KindRemove, Start: 4, End: 4},
		{Kind: KindRemove, Start: 1, End: 1},
	})
	if res.Content != "2\n3\n5" {
		t.Errorf("Content = %q, want %q", res.Content, "2\n3\n5")
	}
}
