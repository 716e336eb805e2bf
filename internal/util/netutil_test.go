package util

import (
	"errors"
	"os"
	"syscall"
	"testing"
)

func TestCreateListener_UnsupportedNetwork(t *testing.T) {
	if _, err := CreateListener("udp", ":0"); err == nil {
		t.Fatal("expected error for udp network")
	}
}

func TestCreateListener_AndAddrInUse(t *testing.T) {
	ln, err := CreateListener("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("CreateListener failed: %v", err)
	}
	defer ln.Close()

	_, err = CreateListener("tcp", ln.Addr().String())
	if err == nil {
		t.Fatal("expected second bind to the same address to fail")
	}
	if !IsAddrInUse(err) {
		t.Errorf("expected IsAddrInUse to recognise %v", err)
	}
}

func TestIsAddrInUse(t *testing.T) {
	if IsAddrInUse(nil) {
		t.Error("nil error must not be address-in-use")
	}
	if IsAddrInUse(errors.New("connection refused")) {
		t.Error("unrelated error must not be address-in-use")
	}
	wrapped := os.NewSyscallError("bind", syscall.EADDRINUSE)
	if !IsAddrInUse(wrapped) {
		t.Error("expected syscall EADDRINUSE to be recognised")
	}
}
