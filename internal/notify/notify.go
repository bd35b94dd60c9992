// Package notify delivers operator messages through Pushover.
//
// Every call is independent: Send opens a TLS connection, writes one
// HTTP/1.0 form POST, drains the response and closes. Failures are logged and
// reduced to a Result so the caller can retry on a later tick.
package notify

import (
	"bufio"
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/sweeney/float-alarm/internal/logger"
	"github.com/sweeney/float-alarm/internal/logic"
)

// DefaultTimeout bounds one complete send, connect to last byte.
const DefaultTimeout = 10 * time.Second

// Failures are retried every tick; warnings beyond this rate drop to debug.
const (
	failureLogEvery = time.Minute
	failureLogBurst = 3
)

// ErrNotConnected is returned when the radio reports no link.
var ErrNotConnected = errors.New("wifi not connected")

// Result is the outcome of a send.
type Result int

const (
	Failed Result = iota
	Sent
)

func (r Result) String() string {
	if r == Sent {
		return "SENT"
	}
	return "FAILED"
}

// Link reports whether the network is usable.
type Link interface {
	IsConnected() bool
}

// Sender sends one notification kind. *Dispatcher satisfies it.
type Sender interface {
	Send(ctx context.Context, kind logic.Notification) Result
}

// Config holds the endpoint and credentials.
type Config struct {
	Host       string
	Port       int
	Path       string
	User       string
	Token      string
	DeviceName string
	Timeout    time.Duration
	// TLSConfig overrides the client TLS settings. ServerName defaults to Host.
	TLSConfig *tls.Config
}

// Message is a rendered notification.
type Message struct {
	Title        string
	Body         string
	HighPriority bool
}

// Dispatcher sends notifications. It keeps no state between calls.
type Dispatcher struct {
	cfg  Config
	link Link

	failureLog *rate.Limiter
}

// New creates a Dispatcher that checks link before every send.
func New(cfg Config, link Link) *Dispatcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Dispatcher{
		cfg:        cfg,
		link:       link,
		failureLog: rate.NewLimiter(rate.Every(failureLogEvery), failureLogBurst),
	}
}

// Render returns the fixed message for kind.
func Render(deviceName string, kind logic.Notification) Message {
	switch kind {
	case logic.NotifyAlert:
		return Message{
			Title:        deviceName + ": ALERT",
			Body:         "The float switch has triggered. Check overflow!",
			HighPriority: true,
		}
	case logic.NotifyRecovery:
		return Message{
			Title: deviceName + ": OK",
			Body:  "The float switch state has been restored",
		}
	default:
		return Message{
			Title: deviceName + ": Started",
			Body:  "The float switch service has started up",
		}
	}
}

// Form builds the url-encoded request body for msg.
func (d *Dispatcher) Form(msg Message) string {
	var b strings.Builder
	b.WriteString("token=")
	b.WriteString(Encode(d.cfg.Token))
	b.WriteString("&user=")
	b.WriteString(Encode(d.cfg.User))
	b.WriteString("&title=")
	b.WriteString(Encode(msg.Title))
	b.WriteString("&message=")
	b.WriteString(Encode(msg.Body))
	if msg.HighPriority {
		b.WriteString("&priority=1")
	}
	return b.String()
}

// Send delivers the message for kind. It never returns an error; any failure
// is logged and reported as Failed.
func (d *Dispatcher) Send(ctx context.Context, kind logic.Notification) Result {
	if !d.link.IsConnected() {
		d.logFailure(kind, ErrNotConnected)
		return Failed
	}

	msg := Render(d.cfg.DeviceName, kind)
	status, err := d.post(ctx, d.Form(msg))
	if err != nil {
		d.logFailure(kind, err)
		return Failed
	}

	logger.InfoKV("notification sent", "kind", kind, "title", msg.Title, "response", status)
	return Sent
}

func (d *Dispatcher) logFailure(kind logic.Notification, err error) {
	if d.failureLog.Allow() {
		logger.WarnKV("notification not sent", "kind", kind, "error", err)
		return
	}
	logger.Debugf("notification %s not sent: %v", kind, err)
}

// post performs one request and returns the response status line.
// The response body is drained and ignored.
func (d *Dispatcher) post(ctx context.Context, body string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	dialer := &tls.Dialer{Config: d.tlsConfig()}
	addr := net.JoinHostPort(d.cfg.Host, strconv.Itoa(d.cfg.Port))
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return "", fmt.Errorf("set deadline: %w", err)
		}
	}

	if _, err := conn.Write(d.request(body)); err != nil {
		return "", fmt.Errorf("write request: %w", err)
	}

	r := bufio.NewReader(conn)
	status, err := r.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read status: %w", err)
	}
	length := int64(-1)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("read headers: %w", err)
		}
		if line == "\r\n" || line == "\n" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if ok && strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			if n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
				length = n
			}
		}
	}

	// The request is delivered once the headers arrive; the body is only
	// drained. Without a length the server closes the connection after it.
	rest := io.Reader(r)
	if length >= 0 {
		rest = io.LimitReader(r, length)
	}
	if _, err := io.Copy(io.Discard, rest); err != nil {
		logger.Debugf("pushover: discarding response body: %v", err)
	}

	return strings.TrimSpace(status), nil
}

func (d *Dispatcher) request(body string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "POST %s HTTP/1.0\r\n", d.cfg.Path)
	fmt.Fprintf(&b, "Host: %s\r\n", d.cfg.Host)
	b.WriteString("Content-Type: application/x-www-form-urlencoded\r\n")
	fmt.Fprintf(&b, "Content-Length: %d\r\n", len(body))
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.Bytes()
}

func (d *Dispatcher) tlsConfig() *tls.Config {
	var cfg *tls.Config
	if d.cfg.TLSConfig != nil {
		cfg = d.cfg.TLSConfig.Clone()
	} else {
		cfg = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	if cfg.ServerName == "" {
		cfg.ServerName = d.cfg.Host
	}
	return cfg
}
