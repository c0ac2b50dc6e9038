package printer

import (
	"bytes"
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentEncodesSpanishInPC850(t *testing.T) {
	doc := NewDocument(32)
	doc.Text("Crédito ñ")

	out := doc.Bytes()
	assert.Equal(t, []byte{ESC, '@', ESC, 't', codePagePC850}, out[:5])
	// é = 0x82 and ñ = 0xA4 in PC850
	assert.Equal(t, []byte{'C', 'r', 0x82, 'd', 'i', 't', 'o', ' ', 0xA4, LF}, out[5:])
}

func TestKeyValueCountsCharactersNotBytes(t *testing.T) {
	doc := NewDocument(20)
	doc.Reset()
	start := len(doc.Bytes())
	doc.KeyValue("Método:", "Crédito")

	line := doc.Bytes()[start:]
	// 20 columns plus the line feed, one byte per character after encoding
	assert.Len(t, line, 21)
	assert.Equal(t, byte(LF), line[20])
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"Queso de hoja", "criollo"}, wrap("Queso de hoja criollo", 14))
	assert.Equal(t, []string{"abcde", "fgh"}, wrap("abcdefgh", 5))
	assert.Equal(t, []string{""}, wrap("   ", 5))
}

func TestItemLineRightAlignsTotal(t *testing.T) {
	doc := NewDocument(32)
	start := len(doc.Bytes())
	doc.ItemLine("Arroz", "2", "RD$50.00", "RD$100.00")

	text := string(doc.Bytes()[start:])
	assert.Equal(t, "Arroz\n  2 x RD$50.00         RD$100.00\n", text)
}

func TestNewSelectsTransport(t *testing.T) {
	p, err := New(Config{Type: "none"})
	require.NoError(t, err)
	assert.NoError(t, p.Print(context.Background(), []byte("x")))

	_, err = New(Config{Type: "usb"})
	assert.Error(t, err)
	_, err = New(Config{Type: "network"})
	assert.Error(t, err)
	_, err = New(Config{Type: "bluetooth"})
	assert.Error(t, err)
}

func TestNetworkPrinterSendsBytes(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(conn)
		received <- buf.Bytes()
	}()

	p, err := New(Config{Type: "network", Address: ln.Addr().String()})
	require.NoError(t, err)
	require.NoError(t, p.Print(context.Background(), []byte("hola")))
	assert.Equal(t, []byte("hola"), <-received)
}

func TestWriterPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewWriterPrinter(&buf)
	require.NoError(t, p.Print(context.Background(), []byte{1, 2}))
	assert.Equal(t, []byte{1, 2}, buf.Bytes())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Print(ctx, []byte{3}), context.Canceled)
}
