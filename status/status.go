// Package status exposes the daemon's last sweep over a unix socket.
package status

import (
	"net"
	"os"

	"github.com/cenkalti/rpc2"
	"go.uber.org/zap"

	"dynwg/journal"
)

// Query is the request for the watchdog status. It carries no fields.
type Query struct{}

// Reply carries the last sweep summary and the latest per-interface
// outcomes.
type Reply struct {
	Summary  journal.Summary
	Outcomes []journal.Outcome
}

// Server answers status queries from the sweep journal.
type Server struct {
	srv     *rpc2.Server
	journal *journal.Journal
}

// NewServer returns a status server reading from j. A nil journal yields
// empty replies.
func NewServer(j *journal.Journal) *Server {
	s := &Server{srv: rpc2.NewServer(), journal: j}
	s.srv.Handle("watchdog-status", s.handleStatus)
	return s
}

func (s *Server) handleStatus(client *rpc2.Client, q *Query, r *Reply) error {
	sum, ok, err := s.journal.LastSummary()
	if err != nil {
		return err
	}
	if ok {
		r.Summary = sum
	}
	r.Outcomes, err = s.journal.Outcomes()
	return err
}

// Listen serves status queries on a unix socket until the returned listener
// is closed. A stale socket file from a killed daemon is removed first.
func (s *Server) Listen(socketPath string) (net.Listener, error) {
	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	lis, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, err
	}
	go func() {
		s.srv.Accept(lis)
		zap.S().Debug("status listener closed.")
	}()
	return lis, nil
}

// Client queries a running watchdog daemon.
type Client struct {
	c *rpc2.Client
}

// Dial connects to a daemon's status socket.
func Dial(socketPath string) (*Client, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, err
	}
	c := rpc2.NewClient(conn)
	go c.Run()
	return &Client{c: c}, nil
}

// Status fetches the last sweep summary and per-interface outcomes.
func (c *Client) Status() (Reply, error) {
	var r Reply
	err := c.c.Call("watchdog-status", Query{}, &r)
	return r, err
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.c.Close()
}
