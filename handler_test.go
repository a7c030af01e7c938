package lazyrpc

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	old := l
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(old) })
	return logs
}

func TestServeMuxRoutesByService(t *testing.T) {
	logs := observeLogs(t)

	var got []string
	mux := NewServeMux()
	mux.HandleFunc("castle", func(req CallRequestView) {
		arg1, err := req.Arg1Str()
		if err != nil {
			t.Fatalf("arg1: %v", err)
		}
		got = append(got, "castle:"+arg1)
	})
	mux.HandleFunc("koopa", func(req CallRequestView) {
		cn, _, err := req.CallerNameStr()
		if err != nil {
			t.Fatalf("caller name: %v", err)
		}
		got = append(got, "koopa:"+cn)
	})

	_, req := mustView(t, mustEncode(t, 1, castleRequest()))
	mux.ServeFrame(req)

	delegated := castleRequest()
	delegated.Headers = append(delegated.Headers, TransportHeader{Key: RoutingDelegateKey, Value: "koopa"})
	_, req = mustView(t, mustEncode(t, 2, delegated))
	mux.ServeFrame(req)

	if len(got) != 2 || got[0] != "castle:door" || got[1] != "koopa:mario" {
		t.Fatalf("unexpected routing: %v", got)
	}
	if logs.Len() != 0 {
		t.Fatalf("unexpected logs: %v", logs.All())
	}
}

func TestServeMuxDropsUnknownAndMalformed(t *testing.T) {
	logs := observeLogs(t)

	mux := NewServeMux()
	mux.HandleFunc("castle", func(req CallRequestView) {
		t.Fatalf("handler must not run")
	})

	unknown := castleRequest()
	unknown.Service = "dungeon"
	_, req := mustView(t, mustEncode(t, 5, unknown))
	mux.ServeFrame(req)

	entries := logs.FilterMessage("service not registered").All()
	if len(entries) != 1 {
		t.Fatalf("expected one unknown service log, got %d", len(entries))
	}
	if entries[0].ContextMap()["service"] != "dungeon" {
		t.Fatalf("unexpected log context: %v", entries[0].ContextMap())
	}

	buf := mustEncode(t, 6, castleRequest())
	buf[FrameHeaderSize+castleChecksumStart-8] = 0xff // "as" value length
	_, req = mustView(t, buf)
	mux.ServeFrame(req)

	if logs.FilterMessage("lazyrpc: dropped undecodable frame").Len() != 1 {
		t.Fatalf("expected one undecodable frame log, got %v", logs.All())
	}
}

func TestServeMuxRegistration(t *testing.T) {
	mustPanic := func(name string, fn func()) {
		t.Helper()
		defer func() {
			if recover() == nil {
				t.Fatalf("%s: expected panic", name)
			}
		}()
		fn()
	}

	mux := NewServeMux()
	noop := func(CallRequestView) {}
	mux.HandleFunc("castle", noop)

	mustPanic("duplicate", func() { mux.HandleFunc("castle", noop) })
	mustPanic("empty", func() { mux.HandleFunc("", noop) })
	mustPanic("nil", func() { mux.Handle("moat", nil) })
	mustPanic("too long", func() { mux.HandleFunc(string(make([]byte, MaxServiceLen+1)), noop) })
}

func TestRoute(t *testing.T) {
	_, req := mustView(t, mustEncode(t, 1, castleRequest()))
	if name, err := Route(req); err != nil || name != "castle" {
		t.Fatalf("route: %q %v", name, err)
	}
}
