package observer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// dialTimeout bounds how long DialStream waits for the initial connection.
const dialTimeout = 15 * time.Second

// reachTimeout bounds the TCP check made before the socket.io handshake.
const reachTimeout = 3 * time.Second

// DialStream connects a socket.io client to rawURL and namespace and waits
// for the connection to be established. The caller owns the returned socket
// and must Disconnect it.
func DialStream(ctx context.Context, rawURL, namespace string, insecureSkipVerify bool, logger *slog.Logger) (*socket.Socket, error) {
	logger = logger.With("url", rawURL, "namespace", namespace)
	logger.Debug("Connecting lifecycle event stream...")

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid events URL %q: scheme and host are required", rawURL)
	}

	if err := checkReachable(ctx, parsedURL); err != nil {
		return nil, fmt.Errorf("events server unreachable: %w", err)
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		opts.SetPath(parsedURL.Path)
	}
	if insecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Lifecycle event stream connected", "sid", io.Id())
		select {
		case connectChan <- nil:
		default:
		}
	})

	fail := func(event string) func(...any) {
		return func(errs ...any) {
			err := errors.New(event)
			if len(errs) > 0 {
				if e, ok := errs[0].(error); ok {
					err = fmt.Errorf("%s: %w", event, e)
				}
			}
			select {
			case connectChan <- err:
			default:
			}
		}
	}
	io.Once(types.EventName("connect_error"), fail("connect_error"))
	manager.Once(types.EventName("reconnect_error"), fail("reconnect_error"))

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return io, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(dialTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", dialTimeout)
	}
}

// checkReachable dials the events server once over TCP so that a refused
// connection is reported immediately rather than after dialTimeout.
func checkReachable(ctx context.Context, u *url.URL) error {
	port := u.Port()
	if port == "" {
		switch u.Scheme {
		case "https", "wss":
			port = "443"
		default:
			port = "80"
		}
	}

	dialer := net.Dialer{Timeout: reachTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(u.Hostname(), port))
	if err != nil {
		return err
	}
	return conn.Close()
}
