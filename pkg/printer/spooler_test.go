package printer

import (
	"bufio"
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSpooler(t *testing.T) {
	s, err := NewSpooler("direct", "", "")
	require.NoError(t, err)
	assert.Equal(t, "direct", s.Name())

	s, err = NewSpooler("none", "", "")
	require.NoError(t, err)
	assert.Equal(t, "none", s.Name())

	_, err = NewSpooler("carrier-pigeon", "", "")
	assert.Error(t, err)
}

func TestDirectSpooler_PrintsEachCopyOverTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan string, 4)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			data, _ := io.ReadAll(bufio.NewReader(conn))
			conn.Close()
			received <- string(data)
		}
	}()

	job := &Job{
		Kind:   JobKOT,
		Target: Target{Name: "Kitchen", Connection: ConnectionNetwork, Address: ln.Addr().String(), Copies: 2},
		Data:   []byte("ticket"),
	}
	require.NoError(t, NewDirectSpooler().Submit(context.Background(), job))

	for i := 0; i < 2; i++ {
		select {
		case got := <-received:
			assert.Equal(t, "ticket", got)
		case <-time.After(2 * time.Second):
			t.Fatalf("copy %d not received", i+1)
		}
	}
}

func TestDirectSpooler_UnreachablePrinter(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	job := &Job{Target: Target{Connection: ConnectionNetwork, Address: addr}, Data: []byte("x")}
	assert.Error(t, NewDirectSpooler().Submit(context.Background(), job))
}

func TestNewPrinter_Validation(t *testing.T) {
	_, err := NewPrinter(ConnectionUSB, "", "")
	assert.Error(t, err)
	_, err = NewPrinter(ConnectionNetwork, "", "")
	assert.Error(t, err)

	p, err := NewPrinter(ConnectionNone, "", "")
	require.NoError(t, err)
	assert.NoError(t, p.Print(context.Background(), []byte("x")))
	assert.False(t, p.Online(context.Background()))
}
