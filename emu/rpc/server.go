package rpc

import (
	"net"
	"net/http"
	"net/rpc"
	"strconv"

	"nx/emu"
)

// Emu is the part of the emulator that can be remotely controlled.
type Emu interface {
	Reset()
	SetPause(pause bool)
	Stop()
	Status() emu.Status
}

type emuProxy struct {
	emu Emu
}

func (ep *emuProxy) Reset(_, _ *struct{}) error             { ep.emu.Reset(); return nil }
func (ep *emuProxy) SetPause(pause bool, _ *struct{}) error { ep.emu.SetPause(pause); return nil }
func (ep *emuProxy) Stop(_ *struct{}, _ *struct{}) error    { ep.emu.Stop(); return nil }

func (ep *emuProxy) Status(_ *struct{}, reply *emu.Status) error {
	*reply = ep.emu.Status()
	return nil
}

func (ep *emuProxy) IsReady(_ *struct{}, reply *bool) error {
	*reply = true
	return nil
}

type Server struct {
	l    net.Listener
	http *http.Server
}

// NewServer starts serving remote calls to e on the given TCP port, on all
// interfaces. With port 0, a port is automatically chosen.
func NewServer(port int, e Emu) (*Server, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName("emu", &emuProxy{emu: e}); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle(rpc.DefaultRPCPath, srv)

	l, err := net.Listen("tcp", ":"+strconv.Itoa(port))
	if err != nil {
		return nil, err
	}

	s := &Server{l: l, http: &http.Server{Handler: mux}}
	modRPC.InfoZ("rpc server listening").Int("port", s.Port()).End()
	go s.http.Serve(l)
	return s, nil
}

// Port returns the port the server listens on.
func (s *Server) Port() int {
	return s.l.Addr().(*net.TCPAddr).Port
}

func (s *Server) Close() error {
	modRPC.DebugZ("closing rpc server").End()
	return s.http.Close()
}
