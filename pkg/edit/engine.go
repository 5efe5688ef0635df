package edit

// ApplyReply parses reply for an edit-command batch and applies it to
// original. On any parse error (mixed kinds, missing/unterminated content
// block, no valid command) the original content is returned byte-for-byte
// unchanged — §8 invariant 3, "edit atomicity" — and the error describes why.
func ApplyReply(original, reply string) (Result, error) {
	cmds, err := ParseBatch(reply)
	if err != nil {
		return Result{Content: original}, err
	}
	return Apply(original, cmds), nil
}
