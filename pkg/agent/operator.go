package agent

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// Operator is every synchronous human-in-the-loop touchpoint the control
// loop needs (spec §4.6, §5 Suspension points "operator prompts"): task
// entry, command approval, credit-exhaustion acknowledgement, the
// notes-file pause, and the first-SIGINT suggestion capture.
type Operator interface {
	// Task asks for this session's task when not supplied via --task.
	Task() string
	// Approve implements dispatch.Approver.
	Approve(ctx context.Context, message string) (bool, error)
	// Await implements llm.Operator.
	Await(ctx context.Context, message string) error
	// PauseForEnter blocks, displaying message, until the operator presses
	// Enter (spec §4.6 notes-file pause).
	PauseForEnter(message string)
	// CaptureSuggestion blocks reading one line of free-form operator text
	// (spec §4.6 first-SIGINT handling).
	CaptureSuggestion() string
}

// StdOperator implements Operator against stdin/stderr: prompts are
// printed to stderr so they never interleave with anything written to
// stdout, answers are read one line at a time from stdin.
type StdOperator struct {
	reader *bufio.Reader
}

// NewStdOperator returns an Operator backed by the process's stdin/stderr.
func NewStdOperator() *StdOperator {
	return &StdOperator{reader: bufio.NewReader(os.Stdin)}
}

func (o *StdOperator) Task() string {
	fmt.Fprint(os.Stderr, "task: ")
	return o.readLine()
}

func (o *StdOperator) Approve(ctx context.Context, message string) (bool, error) {
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", message)
	answer := strings.ToLower(strings.TrimSpace(o.readLine()))
	return answer == "y" || answer == "yes", nil
}

func (o *StdOperator) Await(ctx context.Context, message string) error {
	fmt.Fprintf(os.Stderr, "%s (press Enter to continue)\n", message)
	o.readLine()
	return nil
}

func (o *StdOperator) PauseForEnter(message string) {
	fmt.Fprintf(os.Stderr, "%s (press Enter to continue)\n", message)
	o.readLine()
}

func (o *StdOperator) CaptureSuggestion() string {
	fmt.Fprint(os.Stderr, "\ninterrupt received; suggestion for the next iteration (Enter to skip): ")
	return o.readLine()
}

func (o *StdOperator) readLine() string {
	line, _ := o.reader.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}
