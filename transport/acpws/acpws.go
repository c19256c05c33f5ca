// Package acpws adapts a WebSocket connection into the (io.Reader,
// io.Writer) duplex byte pair package acp requires, so the same acp.Conn
// engine runs unmodified over a WebSocket instead of stdio pipes.
//
// Grounded on scrypster-memento's web/handlers/websocket.go, which depends
// on nhooyr.io/websocket for its own browser-facing connections; here the
// library's websocket.NetConn view does the adapting instead of a
// hand-rolled read/write pump, since a NetConn already satisfies
// net.Conn (and so io.Reader/io.Writer) over a message-framed socket.
package acpws

import (
	"context"
	"net"
	"net/http"

	"nhooyr.io/websocket"
)

// Accept upgrades an incoming HTTP request to a WebSocket and returns it
// as a duplex byte pair. Close must be called on the returned *Conn once
// the caller's acp.Conn.Run returns.
func Accept(w http.ResponseWriter, r *http.Request, opts *websocket.AcceptOptions) (*Conn, error) {
	ws, err := websocket.Accept(w, r, opts)
	if err != nil {
		return nil, err
	}
	return wrap(ws), nil
}

// Dial connects to a WebSocket server and returns it as a duplex byte
// pair.
func Dial(ctx context.Context, url string, opts *websocket.DialOptions) (*Conn, error) {
	ws, _, err := websocket.Dial(ctx, url, opts)
	if err != nil {
		return nil, err
	}
	return wrap(ws), nil
}

// Conn is a WebSocket connection presented as a plain duplex byte stream
// (net.Conn, which embeds io.Reader/io.Writer/io.Closer).
type Conn struct {
	net.Conn
	ws *websocket.Conn
}

func wrap(ws *websocket.Conn) *Conn {
	// websocket.NetConn frames every Write as one text message and every
	// Read as a drain of the next inbound message — exactly the framing
	// acp.FrameScanner/FrameWriter already assume is newline-delimited
	// text, so messages here are newline-delimited JSON lines same as
	// over stdio.
	nc := websocket.NetConn(context.Background(), ws, websocket.MessageText)
	return &Conn{Conn: nc, ws: ws}
}

// Close closes the underlying WebSocket with a normal closure status.
func (c *Conn) Close() error {
	return c.ws.Close(websocket.StatusNormalClosure, "")
}
