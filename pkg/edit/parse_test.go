package edit

import "testing"

func TestParseBatch_SingleAdd(t *testing.T) {
	reply := "Here's the fix.\n\nADD 3: " + ContentStart + "\nfoo()\nbar()\n" + ContentEnd + "\n\nDone."
	cmds, err := ParseBatch(reply)
	if err != nil {
		t.Fatalf("ParseBatch() error = %v", err)
	}
	if len(cmds) != 1 {
		t.Fatalf("len(cmds) = %d, want 1", len(cmds))
	}
	c := cmds[0]
	if c.Kind != KindAdd || c.Start != 3 || c.Content != "foo()\nbar()" {
		t.Errorf("cmd = %+v, want Kind=ADD Start=3 Content=%q", c, "foo()\nbar()")
	}
}

func TestParseBatch_RemoveRange(t *testing.T) {
	cmds, err := ParseBatch("REMOVE 5-8\n")
	if err != nil {
		t.Fatalf("ParseBatch() error = %v", err)
	}
	if len(cmds) != 1 || cmds[0].Kind != KindRemove || cmds[0].Start != 5 || cmds[0].End != 8 {
		t.Errorf("cmds = %+v, want one REMOVE 5-8", cmds)
	}
}

func TestParseBatch_MultipleSameKind(t *testing.T) {
	reply := "MODIFY 1: " + ContentStart + "\na\n" + ContentEnd + "\nMODIFY 3-4: " + ContentStart + "\nb\nc\n" + ContentEnd
	cmds, err := ParseBatch(reply)
	if err != nil {
		t.Fatalf("ParseBatch() error = %v", err)
	}
	if len(cmds) != 2 {
		t.Fatalf("len(cmds) = %d, want 2", len(cmds))
	}
}

func TestParseBatch_MixedKindsRejected(t *testing.T) {
	reply := "ADD 1: " + ContentStart + "\nx\n" + ContentEnd + "\nREMOVE 2\n"
	_, err := ParseBatch(reply)
	if err == nil {
		t.Fatal("expected mixed-kind rejection")
	}
}

func TestParseBatch_UnterminatedContentRejected(t *testing.T) {
	reply := "ADD 1: " + ContentStart + "\nx\n"
	_, err := ParseBatch(reply)
	if err == nil {
		t.Fatal("expected unterminated-content rejection")
	}
}

func TestParseBatch_NoCommandsRejected(t *testing.T) {
	_, err := ParseBatch("just some prose, no commands here")
	if err == nil {
		t.Fatal("expected no-valid-commands rejection")
	}
}
