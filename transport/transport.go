// Package transport delivers rendered command streams to a printer over a
// network socket or a serial line.  The rendering pipeline is independent
// of it; callers can also take the bytes and deliver them however they
// like.
package transport

import (
	"fmt"
	"net"
	"time"

	"go.bug.st/serial"

	"github.com/limousyf/receipt-printer/internal/logging"
)

// Conn is a connection to a printer.
type Conn interface {
	Connect() error
	Send(data []byte) error
	Close() error
}

// Config describes a printer connection.
type Config struct {
	Type    string        // "network" or "serial"
	Host    string        // network: printer address
	Port    int           // network: TCP port; 0 means 9100
	Timeout time.Duration // network: dial and write timeout; 0 means 5s
	Device  string        // serial: device path, e.g. /dev/ttyUSB0
	Baud    int           // serial: baud rate; 0 means 19200
}

// New returns an unconnected Conn for the described printer.
func New(cfg Config) (Conn, error) {
	switch cfg.Type {
	case "network":
		return &Network{Host: cfg.Host, Port: cfg.Port, Timeout: cfg.Timeout}, nil
	case "serial":
		return &Serial{Device: cfg.Device, Baud: cfg.Baud}, nil
	}
	return nil, fmt.Errorf("unknown transport type %q", cfg.Type)
}

// Print connects, sends the full stream, and closes the connection.
func Print(c Conn, data []byte) error {
	if err := c.Connect(); err != nil {
		return err
	}
	defer c.Close()
	return c.Send(data)
}

// Network talks to a printer over a TCP socket, conventionally port 9100.
type Network struct {
	Host    string
	Port    int
	Timeout time.Duration

	conn net.Conn
}

func (n *Network) port() int {
	if n.Port == 0 {
		return 9100
	}
	return n.Port
}

func (n *Network) timeout() time.Duration {
	if n.Timeout == 0 {
		return 5 * time.Second
	}
	return n.Timeout
}

func (n *Network) addr() string {
	return net.JoinHostPort(n.Host, fmt.Sprint(n.port()))
}

func (n *Network) Connect() error {
	var logger = logging.GetLogger("transport")
	conn, err := net.DialTimeout("tcp", n.addr(), n.timeout())
	if err != nil {
		return fmt.Errorf("connecting to printer at %s: %w", n.addr(), err)
	}
	logger.Debug().Str("addr", n.addr()).Msg("connected to printer")
	n.conn = conn
	return nil
}

func (n *Network) Send(data []byte) error {
	if n.conn == nil {
		return fmt.Errorf("not connected to printer at %s", n.addr())
	}
	if err := n.conn.SetWriteDeadline(time.Now().Add(n.timeout())); err != nil {
		return err
	}
	if _, err := n.conn.Write(data); err != nil {
		return fmt.Errorf("sending to printer at %s: %w", n.addr(), err)
	}
	logger := logging.GetLogger("transport")
	logger.Debug().
		Str("addr", n.addr()).
		Int("bytes", len(data)).
		Msg("sent print job")
	return nil
}

func (n *Network) Close() error {
	if n.conn == nil {
		return nil
	}
	var err = n.conn.Close()
	n.conn = nil
	return err
}

// Serial talks to a printer over a serial line.
type Serial struct {
	Device string
	Baud   int

	port serial.Port
}

func (s *Serial) baud() int {
	if s.Baud == 0 {
		return 19200
	}
	return s.Baud
}

func (s *Serial) Connect() error {
	port, err := serial.Open(s.Device, &serial.Mode{BaudRate: s.baud()})
	if err != nil {
		return fmt.Errorf("opening serial device %s: %w", s.Device, err)
	}
	logger := logging.GetLogger("transport")
	logger.Debug().
		Str("device", s.Device).
		Int("baud", s.baud()).
		Msg("opened serial device")
	s.port = port
	return nil
}

func (s *Serial) Send(data []byte) error {
	if s.port == nil {
		return fmt.Errorf("serial device %s not open", s.Device)
	}
	if _, err := s.port.Write(data); err != nil {
		return fmt.Errorf("writing to serial device %s: %w", s.Device, err)
	}
	// Block until the printer has taken every byte.
	return s.port.Drain()
}

func (s *Serial) Close() error {
	if s.port == nil {
		return nil
	}
	var err = s.port.Close()
	s.port = nil
	return err
}
