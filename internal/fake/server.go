// Package fake provides stand-ins for development and tests: a scripted legacy
// ping endpoint and a generator of random tracked servers.
package fake

import (
	"encoding/binary"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/text/encoding/unicode"
)

var utf16be = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// LegacyReply encodes a well formed kick packet answering a legacy ping.
func LegacyReply(motd string, online, maxPlayers int) []byte {
	return LegacyFrame(0xFF, fmt.Sprintf("%s§§%d§§%d", motd, online, maxPlayers))
}

// LegacyFrame encodes packetID, the UTF-16 length of text and text as UTF-16BE.
func LegacyFrame(packetID byte, text string) []byte {
	payload, err := utf16be.NewEncoder().Bytes([]byte(text))
	if err != nil {
		panic(err)
	}

	frame := make([]byte, 3, 3+len(payload))
	frame[0] = packetID
	binary.BigEndian.PutUint16(frame[1:], uint16(len(payload)/2))

	return append(frame, payload...)
}

// Server is a loopback TCP endpoint that answers every ping request with Reply.
// With Stall set it reads the request and then never answers.
type Server struct {
	ln       net.Listener
	reply    []byte
	stall    bool
	done     chan struct{}
	wg       sync.WaitGroup
	requests atomic.Int32
}

// NewServer starts a server answering with reply.
func NewServer(reply []byte) (*Server, error) {
	return start(reply, false)
}

// NewStallingServer starts a server that accepts connections but never replies.
func NewStallingServer() (*Server, error) {
	return start(nil, true)
}

func start(reply []byte, stall bool) (*Server, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}

	s := &Server{
		ln:    ln,
		reply: reply,
		stall: stall,
		done:  make(chan struct{}),
	}

	s.wg.Add(1)
	go s.serve()

	return s, nil
}

// Host returns the listening IP.
func (s *Server) Host() string {
	host, _, _ := net.SplitHostPort(s.ln.Addr().String())
	return host
}

// Port returns the listening port.
func (s *Server) Port() int {
	_, port, _ := net.SplitHostPort(s.ln.Addr().String())
	n, _ := strconv.Atoi(port)
	return n
}

// Requests returns how many 0xFE requests were received.
func (s *Server) Requests() int {
	return int(s.requests.Load())
}

// Close stops accepting and waits for open connections to finish.
func (s *Server) Close() error {
	close(s.done)
	err := s.ln.Close()
	s.wg.Wait()

	return err
}

func (s *Server) serve() {
	defer s.wg.Done()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}

		s.wg.Add(1)
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer s.wg.Done()
	defer func() { _ = conn.Close() }()

	_ = conn.SetDeadline(time.Now().Add(10 * time.Second))

	req := make([]byte, 1)
	if _, err := conn.Read(req); err != nil || req[0] != 0xFE {
		return
	}
	s.requests.Add(1)

	if s.stall {
		<-s.done
		return
	}

	_, _ = conn.Write(s.reply)
}
