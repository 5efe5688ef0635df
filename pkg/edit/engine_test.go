package edit

import "testing"

func TestApplyReply_ValidBatchApplies(t *testing.T) {
	original := "line1\nline2\nline3"
	reply := "ADD 1: " + ContentStart + "\nnew-line\n" + ContentEnd
	res, err := ApplyReply(original, reply)
	if err != nil {
		t.Fatalf("ApplyReply() error = %v", err)
	}
	want := "line1\nnew-line\nline2\nline3"
	if res.Content != want {
		t.Errorf("Content = %q, want %q", res.Content, want)
	}
}

func TestApplyReply_ParseFailureLeavesContentUnchanged(t *testing.T) {
	original := "line1\nline2\nline3"
	reply := "ADD 1: " + ContentStart + "\nmissing the end marker"
	res, err := ApplyReply(original, reply)
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if res.Content != original {
		t.Errorf("Content = %q, want original %q unchanged on parse failure", res.Content, original)
	}
}

func TestApplyReply_MixedKindsLeavesContentUnchanged(t *testing.T) {
	original := "x\ny\nz"
	reply := "ADD 1: " + ContentStart + "\na\n" + ContentEnd + "\nREMOVE 2\n"
	res, err := ApplyReply(original, reply)
	if err == nil {
		t.Fatal("expected mixed-kind rejection")
	}
	if res.Content != original {
		t.Errorf("Content = %q, want original %q unchanged", res.Content, original)
	}
}
