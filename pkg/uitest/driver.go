// Package uitest is the seam for the browser-driver-backed UI testing
// add-on (spec §1 Non-goals, §6 out-of-scope collaborators): the add-on
// itself runs out of core, but this package gives the control loop a
// concrete client to dial it with when an operator passes --frontend.
package uitest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"nhooyr.io/websocket"
)

// Command is one instruction sent to the UI driver: navigate, click, type,
// or read the current page source back.
type Command struct {
	Op       string `json:"op"` // "navigate", "click", "type", "page_source"
	Selector string `json:"selector,omitempty"`
	Value    string `json:"value,omitempty"`
}

// Reply is what the driver sends back for one Command.
type Reply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	HTML  string `json:"html,omitempty"` // present for "page_source"
}

// dialTimeout bounds the initial WebSocket handshake with the driver.
const dialTimeout = 10 * time.Second

// Driver is a thin client over a running browser-driver process, reached
// over WebSocket (spec §6: "UI testing add-on" is an external
// collaborator; this is the seam the control loop hands actions to).
type Driver struct {
	conn *websocket.Conn
}

// Dial connects to a UI driver listening at url (e.g.
// "ws://127.0.0.1:9444/driver").
func Dial(ctx context.Context, url string) (*Driver, error) {
	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("uitest: dial %s: %w", url, err)
	}
	return &Driver{conn: conn}, nil
}

// Close shuts down the WebSocket connection to the driver.
func (d *Driver) Close() error {
	return d.conn.Close(websocket.StatusNormalClosure, "")
}

// Send issues one command and waits for the driver's reply.
func (d *Driver) Send(ctx context.Context, cmd Command) (Reply, error) {
	data, err := json.Marshal(cmd)
	if err != nil {
		return Reply{}, fmt.Errorf("uitest: marshal command: %w", err)
	}
	if err := d.conn.Write(ctx, websocket.MessageText, data); err != nil {
		return Reply{}, fmt.Errorf("uitest: write command: %w", err)
	}

	_, raw, err := d.conn.Read(ctx)
	if err != nil {
		return Reply{}, fmt.Errorf("uitest: read reply: %w", err)
	}
	var reply Reply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return Reply{}, fmt.Errorf("uitest: parse reply: %w", err)
	}
	if !reply.OK {
		return reply, fmt.Errorf("uitest: driver reported error: %s", reply.Error)
	}
	return reply, nil
}

// Navigate instructs the driver to load url.
func (d *Driver) Navigate(ctx context.Context, url string) error {
	_, err := d.Send(ctx, Command{Op: "navigate", Value: url})
	return err
}

// Click instructs the driver to click the element matching selector.
func (d *Driver) Click(ctx context.Context, selector string) error {
	_, err := d.Send(ctx, Command{Op: "click", Selector: selector})
	return err
}

// Type instructs the driver to type value into the element matching
// selector.
func (d *Driver) Type(ctx context.Context, selector, value string) error {
	_, err := d.Send(ctx, Command{Op: "type", Selector: selector, Value: value})
	return err
}

// PageText fetches the driver's current page source and returns its
// extracted visible text, for inclusion in a failure report.
func (d *Driver) PageText(ctx context.Context) (string, error) {
	reply, err := d.Send(ctx, Command{Op: "page_source"})
	if err != nil {
		return "", err
	}
	return ExtractText(reply.HTML), nil
}
