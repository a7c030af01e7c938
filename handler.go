package lazyrpc

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// A Handler consumes a call request routed to it. The frame and its bytes
// are only valid for the duration of the call.
type Handler interface {
	ServeFrame(req CallRequestView)
}

type HandlerFunc func(req CallRequestView)

func (f HandlerFunc) ServeFrame(req CallRequestView) {
	f(req)
}

// MaxServiceLen is the longest service name the wire format can carry.
const MaxServiceLen = 0xff

// Route returns the name a call request should be routed by: the routing
// delegate when the "rd" header is present, otherwise the service.
func Route(req CallRequestView) (string, error) {
	rd, ok, err := req.RoutingDelegateStr()
	if err != nil {
		return "", err
	}
	if ok {
		return rd, nil
	}
	return req.ServiceStr()
}

// ServeMux is a call request multiplexer keyed by routed service name.
type ServeMux struct {
	mu sync.RWMutex
	m  map[string]Handler
}

func NewServeMux() *ServeMux { return &ServeMux{} }

func (mux *ServeMux) HandleFunc(service string, handler func(req CallRequestView)) {
	mux.Handle(service, HandlerFunc(handler))
}

func (mux *ServeMux) Handle(service string, handler Handler) {
	if handler == nil {
		panic("lazyrpc: nil handler")
	}
	if service == "" {
		panic("lazyrpc: empty service")
	}
	if len(service) > MaxServiceLen {
		panic("lazyrpc: service name too long")
	}

	mux.mu.Lock()
	defer mux.mu.Unlock()

	if mux.m == nil {
		mux.m = make(map[string]Handler)
	}
	if _, exist := mux.m[service]; exist {
		panic(fmt.Sprintf("lazyrpc: multiple registrations for service %s", service))
	}

	mux.m[service] = handler
}

// Handler returns the handler registered for the routed name of req.
func (mux *ServeMux) Handler(req CallRequestView) (h Handler, service string, err error) {
	service, err = Route(req)
	if err != nil {
		return
	}

	mux.mu.RLock()
	h = mux.m[service]
	mux.mu.RUnlock()
	return
}

// ServeFrame routes req. Frames that fail to decode or have no handler
// are dropped.
func (mux *ServeMux) ServeFrame(req CallRequestView) {
	h, service, err := mux.Handler(req)
	if err != nil {
		l.Error("lazyrpc: dropped undecodable frame", zap.Uint32("id", req.ID()), zap.Error(err))
		return
	}
	if h == nil {
		l.Error("service not registered", zap.String("service", service), zap.Uint32("id", req.ID()))
		return
	}

	h.ServeFrame(req)
}
