package gateway

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/coder/websocket"
)

const wsReadLimitBytes int64 = 16 << 20 // kernel channels carry large outputs

// HandleSocket forwards a WebSocket upgrade to the kernel: dial the kernel's
// matching endpoint first, then accept the client with the negotiated
// subprotocol and pump frames both ways until either side closes. With no
// kernel running the connection is logged and dropped; an upgrade request
// offers no response to answer on.
func (g *Gateway) HandleSocket(w http.ResponseWriter, r *http.Request) {
	ep, ok := g.state.Active()
	if !ok {
		g.log.Error("websocket upgrade with no kernel running", "path", r.URL.Path)
		dropConnection(w)
		return
	}
	target := g.resolveTarget(ep)
	backendURL := "ws://" + net.JoinHostPort(target.Host, strconv.Itoa(target.Port)) + r.URL.RequestURI()

	ctx := r.Context()
	back, _, err := websocket.Dial(ctx, backendURL, &websocket.DialOptions{
		HTTPHeader:   forwardedHeaders(r),
		Subprotocols: requestedSubprotocols(r),
	})
	if err != nil {
		g.log.Error("kernel websocket dial failed", "url", backendURL, "err", err)
		dropConnection(w)
		return
	}

	acceptOpts := &websocket.AcceptOptions{OriginPatterns: []string{"*"}}
	if sp := back.Subprotocol(); sp != "" {
		acceptOpts.Subprotocols = []string{sp}
	}
	client, err := websocket.Accept(w, r, acceptOpts)
	if err != nil {
		g.log.Error("websocket accept failed", "path", r.URL.Path, "err", err)
		back.Close(websocket.StatusInternalError, "client upgrade failed")
		return
	}
	client.SetReadLimit(wsReadLimitBytes)
	back.SetReadLimit(wsReadLimitBytes)

	errc := make(chan error, 2)
	go func() { errc <- pumpFrames(ctx, client, back) }()
	go func() { errc <- pumpFrames(ctx, back, client) }()
	err = <-errc

	status := websocket.CloseStatus(err)
	if status == -1 {
		status = websocket.StatusNormalClosure
	}
	client.Close(status, "")
	back.Close(status, "")
}

func pumpFrames(ctx context.Context, src, dst *websocket.Conn) error {
	for {
		typ, data, err := src.Read(ctx)
		if err != nil {
			return err
		}
		if err := dst.Write(ctx, typ, data); err != nil {
			return err
		}
	}
}

// forwardedHeaders carries the auth-relevant request headers to the kernel.
func forwardedHeaders(r *http.Request) http.Header {
	h := http.Header{}
	for _, k := range []string{"Cookie", "Authorization", "Origin"} {
		if v := r.Header.Values(k); len(v) > 0 {
			h[k] = v
		}
	}
	return h
}

func requestedSubprotocols(r *http.Request) []string {
	raw := r.Header.Get("Sec-WebSocket-Protocol")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// dropConnection closes the underlying TCP connection without an HTTP
// response, matching socket semantics where no response channel exists.
func dropConnection(w http.ResponseWriter) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		return
	}
	conn, _, err := hj.Hijack()
	if err != nil {
		return
	}
	_ = conn.Close()
}
