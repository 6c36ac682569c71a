// Package rpc provides remote control of a running emulator over net/rpc.
package rpc

import (
	"net"

	"nx/emu/log"
)

var modRPC = log.NewModule("rpc")

func UnusedPort() int {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		panic("pickUnusedPort failed: " + err.Error())
	}
	port := l.Addr().(*net.TCPAddr).Port
	if err := l.Close(); err != nil {
		panic("pickUnusedPort failed: " + err.Error())
	}
	return port
}
