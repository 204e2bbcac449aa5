package status

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"
)

func TestConn_WriteFrame(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		prefix bool
		want   []byte
	}{
		{"unprefixed", []byte{0xFE}, false, []byte{0xFE}},
		{"short prefix", []byte{0x01, 0x02}, true, []byte{0x02, 0x01, 0x02}},
		{"varint prefix", bytes.Repeat([]byte{0xAA}, 300), true, append([]byte{0xAC, 0x02}, bytes.Repeat([]byte{0xAA}, 300)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			local, remote := net.Pipe()
			defer func() { _ = remote.Close() }()

			conn := newConn(local)
			defer func() { _ = conn.Destroy() }()

			errc := make(chan error, 1)
			go func() { errc <- conn.WriteFrame(tt.data, tt.prefix) }()

			got := make([]byte, len(tt.want))
			if _, err := io.ReadFull(remote, got); err != nil {
				t.Fatalf("read: %v", err)
			}
			if err := <-errc; err != nil {
				t.Fatalf("write: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Fatalf("got % X, want % X", got, tt.want)
			}
		})
	}
}

func TestConn_Reads(t *testing.T) {
	local, remote := net.Pipe()
	defer func() { _ = remote.Close() }()

	conn := newConn(local)
	defer func() { _ = conn.Destroy() }()

	go func() { _, _ = remote.Write([]byte{0xFF, 0x01, 0x02, 'a', 'b', 'c'}) }()

	b, err := conn.ReadByte()
	if err != nil || b != 0xFF {
		t.Fatalf("ReadByte = %X, %v", b, err)
	}

	s, err := conn.ReadShort()
	if err != nil || s != 0x0102 {
		t.Fatalf("ReadShort = %X, %v", s, err)
	}

	data, err := conn.ReadBytes(3)
	if err != nil || string(data) != "abc" {
		t.Fatalf("ReadBytes = %q, %v", data, err)
	}
}

func TestConn_ReadDeadline(t *testing.T) {
	local, remote := net.Pipe()
	defer func() { _ = remote.Close() }()

	_ = local.SetDeadline(time.Now().Add(50 * time.Millisecond))
	conn := newConn(local)
	defer func() { _ = conn.Destroy() }()

	if _, err := conn.ReadBytes(4); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestConn_DestroyIdempotent(t *testing.T) {
	local, remote := net.Pipe()
	defer func() { _ = remote.Close() }()

	conn := newConn(local)
	if err := conn.Destroy(); err != nil {
		t.Fatalf("first Destroy: %v", err)
	}
	if err := conn.Destroy(); err != nil {
		t.Fatalf("second Destroy: %v", err)
	}

	if _, err := conn.ReadByte(); !errors.Is(err, ErrConnection) {
		t.Fatalf("expected ErrConnection after Destroy, got %v", err)
	}
}

func TestTCPDialer_Refused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().(*net.TCPAddr)
	_ = ln.Close()

	_, err = TCPDialer{}.Dial(context.Background(), "127.0.0.1", addr.Port, time.Second)
	if !errors.Is(err, ErrConnection) {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
}
