// Package control implements the HTTP control plane: a single-threaded
// TCP accept loop that parses raw requests off the wire and routes them
// to a recsession.Session, the way the generator's original control
// surface spoke to its session context directly over a socket instead
// of through a web framework.
package control

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/hankthetank27/edlgen/internal/recsession"
)

// Server owns one TCP listener bound to the local control port.
type Server struct {
	host   string
	logger *slog.Logger
}

// New returns a Server bound to 127.0.0.1:port. It does not listen until
// Listen is called.
func New(port int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{host: fmt.Sprintf("127.0.0.1:%d", port), logger: logger}
}

// Addr returns the address the server binds to.
func (s *Server) Addr() string { return s.host }

// NewShutdownChannels returns the stop/stopped pair Listen and Shutdown
// coordinate over. Both are buffered to capacity 1 so Shutdown's send
// never blocks waiting for the accept loop to be between connections.
func NewShutdownChannels() (stop chan struct{}, stopped chan struct{}) {
	return make(chan struct{}, 1), make(chan struct{}, 1)
}

// Listen runs the accept loop until stop is signaled. Connections are
// handled one at a time; between connections the loop checks stop
// without blocking. GET /SIGKILL is the only way to unblock a pending
// Accept once shutdown has begun (see Shutdown).
func (s *Server) Listen(session *recsession.Session, stop <-chan struct{}, stopped chan<- struct{}) error {
	listener, err := net.Listen("tcp", s.host)
	if err != nil {
		return fmt.Errorf("control: could not open TCP listener: %w", err)
	}
	defer listener.Close()

	s.logger.Info("control plane listening", "addr", s.host)

	for {
		conn, err := listener.Accept()
		if err != nil {
			return fmt.Errorf("control: accept failed: %w", err)
		}
		s.handleConnection(conn, session)

		select {
		case <-stop:
			stopped <- struct{}{}
			s.logger.Info("control plane stopped")
			return nil
		default:
		}
	}
}

func (s *Server) handleConnection(conn net.Conn, session *recsession.Session) {
	defer conn.Close()

	req, err := readRequest(bufio.NewReader(conn))
	res := serverErrResponse()
	if err != nil {
		s.logger.Error("error processing request", "error", err)
	} else if routed, routeErr := route(req, session); routeErr != nil {
		s.logger.Error("error processing request", "error", routeErr)
	} else {
		res = routed
	}

	if _, err := conn.Write(res.render()); err != nil {
		s.logger.Error("response could not be sent", "error", err)
	}
}

// Shutdown runs the shutdown plumbing the caller drives once a session
// no longer needs the control plane: send stop, wait briefly in case the
// loop is between connections, self-dial GET /SIGKILL to unblock a
// pending Accept if the loop has not yet seen the stop signal, then wait
// up to 3s more for the loop to confirm. stop and stopped must be the
// pair returned by NewShutdownChannels.
func Shutdown(addr string, stop chan<- struct{}, stopped <-chan struct{}) error {
	stop <- struct{}{}

	select {
	case <-stopped:
		return nil
	case <-time.After(50 * time.Millisecond):
	}

	conn, err := net.DialTimeout("tcp", addr, time.Second)
	if err == nil {
		fmt.Fprintf(conn, "GET /SIGKILL HTTP/1.1\r\nHost: %s\r\n\r\n", addr)
		conn.Close()
	}

	select {
	case <-stopped:
		return nil
	case <-time.After(3 * time.Second):
		return fmt.Errorf("control: server did not stop within 3s")
	}
}
