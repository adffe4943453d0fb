package apiclient

import (
	"bytes"
	"context"
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
)

// Client is the high-level API: request formatting, response parsing and
// device streams.
type Client struct{ transport *Transport }

// New constructs a client for the server at addr (host:port).
func New(addr string) *Client { return &Client{transport: NewTransport(addr)} }

// NewWithConfig constructs a client with custom timeouts or a password.
func NewWithConfig(addr string, cfg *Config) *Client {
	return &Client{transport: NewTransportWithConfig(addr, cfg)}
}

// WithTransport constructs a client around an existing transport.
func WithTransport(t *Transport) *Client { return &Client{transport: t} }

func (c *Client) Ping(ctx context.Context) (*PingResponse, error) {
	raw, err := c.transport.Do(ctx, "ping", nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[PingResponse](raw)
}

func (c *Client) BusList(ctx context.Context) (*BusListResponse, error) {
	raw, err := c.transport.Do(ctx, "bus/list", nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[BusListResponse](raw)
}

// BusCreate creates a bus with the given number; 0 lets the server pick.
func (c *Client) BusCreate(ctx context.Context, busID uint32) (*BusCreateResponse, error) {
	var payload any
	if busID != 0 {
		payload = fmt.Sprintf("%d", busID)
	}
	raw, err := c.transport.Do(ctx, "bus/create", payload, nil)
	if err != nil {
		return nil, err
	}
	return parse[BusCreateResponse](raw)
}

// DeviceAdd attaches a device of devType ("keyboard", "mouse", ...) to a bus.
func (c *Client) DeviceAdd(ctx context.Context, busID uint32, devType string) (*Device, error) {
	params := map[string]string{"id": fmt.Sprintf("%d", busID)}
	raw, err := c.transport.Do(ctx, "bus/{id}/add", deviceCreateRequest{Type: devType}, params)
	if err != nil {
		return nil, err
	}
	return parse[Device](raw)
}

// DeviceRemove detaches a device and closes its stream.
func (c *Client) DeviceRemove(ctx context.Context, busID uint32, devID string) (*DeviceRemoveResponse, error) {
	params := map[string]string{"id": fmt.Sprintf("%d", busID)}
	raw, err := c.transport.Do(ctx, "bus/{id}/remove", devID, params)
	if err != nil {
		return nil, err
	}
	return parse[DeviceRemoveResponse](raw)
}

// DeviceStream is the long-lived input connection of one device.
type DeviceStream struct {
	conn   net.Conn
	mu     sync.Mutex
	closed bool

	BusID uint32
	DevID string
}

// OpenStream connects to the input stream of an existing device.
func (c *Client) OpenStream(ctx context.Context, busID uint32, devID string) (*DeviceStream, error) {
	if c.transport.mock != nil {
		return nil, errors.New("stream connections not supported with mock transport")
	}
	conn, err := c.transport.dial(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := fmt.Fprintf(conn, "bus/%d/%s\x00", busID, devID); err != nil {
		conn.Close()
		return nil, fmt.Errorf("write stream path: %w", err)
	}
	return &DeviceStream{conn: conn, BusID: busID, DevID: devID}, nil
}

// AddDeviceAndConnect is DeviceAdd followed by OpenStream.
func (c *Client) AddDeviceAndConnect(ctx context.Context, busID uint32, devType string) (*DeviceStream, *Device, error) {
	dev, err := c.DeviceAdd(ctx, busID, devType)
	if err != nil {
		return nil, nil, err
	}
	s, err := c.OpenStream(ctx, busID, dev.DevID)
	if err != nil {
		return nil, dev, err
	}
	return s, dev, nil
}

// Write sends raw report bytes.
func (s *DeviceStream) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, net.ErrClosed
	}
	return s.conn.Write(p)
}

// WriteBinary marshals v and sends it as one report.
func (s *DeviceStream) WriteBinary(v encoding.BinaryMarshaler) error {
	b, err := v.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	_, err = s.Write(b)
	return err
}

// Close ends the stream.
func (s *DeviceStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}

func parse[T any](data string) (*T, error) {
	if data == "" {
		return nil, errors.New("empty response")
	}
	var problem APIError
	if err := json.Unmarshal([]byte(data), &problem); err == nil && (problem.Status != 0 || problem.Title != "") {
		return nil, problem
	}
	var out T
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &out, nil
}
