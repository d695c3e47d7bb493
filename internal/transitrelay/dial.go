package transitrelay

import (
	"context"
	"fmt"
	"net"
	"time"
)

// Dial connects to the relay at addr and waits until it has paired us with
// the peer presenting the same token. The returned connection carries the
// peer's bytes.
func Dial(ctx context.Context, addr, token, side string) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	if _, err := conn.Write([]byte(requestLine(token, side))); err != nil {
		conn.Close()
		return nil, err
	}
	line, err := readLine(conn)
	if err != nil {
		conn.Close()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	if line != "ok" {
		conn.Close()
		return nil, fmt.Errorf("%w: %q", ErrRefused, line)
	}
	if !stop() {
		// ctx ended after the reply arrived; the deadline is already set.
		conn.Close()
		return nil, ctx.Err()
	}
	return conn, nil
}

// Ping checks that a relay answers at addr without taking part in
// pairing.
func Ping(ctx context.Context, addr string) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	if _, err := conn.Write([]byte(pingLine + "\n")); err != nil {
		return err
	}
	line, err := readLine(conn)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	if line != pongLine {
		return fmt.Errorf("%w: %q", ErrRefused, line)
	}
	return nil
}
