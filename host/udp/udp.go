// Package udp receives telemetry frames broadcast by networked boards
package udp

import (
	"fmt"
	"net"

	"github.com/libp2p/go-reuseport"
)

// Conn is a datagram listener read as a byte stream. Each Read returns at
// most one datagram; a frame never spans datagrams.
type Conn struct {
	pc net.PacketConn
}

// Listen binds addr (e.g. ":7400") with SO_REUSEPORT, so several monitors
// on one machine can receive the same broadcast
func Listen(addr string) (*Conn, error) {
	pc, err := reuseport.ListenPacket("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return &Conn{pc: pc}, nil
}

func (c *Conn) Read(b []byte) (int, error) {
	n, _, err := c.pc.ReadFrom(b)
	return n, err
}

// Close closes the socket, unblocking a pending Read
func (c *Conn) Close() error {
	return c.pc.Close()
}

// LocalAddr returns the bound address
func (c *Conn) LocalAddr() net.Addr {
	return c.pc.LocalAddr()
}

// Sender writes telemetry frames as datagrams to one address
type Sender struct {
	pc    net.PacketConn
	raddr *net.UDPAddr
}

// Dial sends to raddr from the same port number, bound with
// SO_REUSEPORT so a monitor on this machine can listen on it too
func Dial(raddr string) (*Sender, error) {
	_, port, err := net.SplitHostPort(raddr)
	if err != nil {
		return nil, fmt.Errorf("invalid address %s: %w", raddr, err)
	}
	return DialFrom(":"+port, raddr)
}

// DialFrom sends to raddr from a socket bound to laddr
func DialFrom(laddr, raddr string) (*Sender, error) {
	addr, err := net.ResolveUDPAddr("udp4", raddr)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", raddr, err)
	}

	pc, err := reuseport.ListenPacket("udp4", laddr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", laddr, err)
	}
	return &Sender{pc: pc, raddr: addr}, nil
}

// Write sends b as one datagram
func (s *Sender) Write(b []byte) (int, error) {
	return s.pc.WriteTo(b, s.raddr)
}

// Close closes the socket
func (s *Sender) Close() error {
	return s.pc.Close()
}

// LocalAddr returns the bound address
func (s *Sender) LocalAddr() net.Addr {
	return s.pc.LocalAddr()
}
