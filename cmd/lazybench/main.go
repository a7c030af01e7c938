package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/zhiqiangxu/lazyrpc"
	"go.uber.org/zap"
)

// frameData is what a router extracts from each request.
type frameData struct {
	ServiceName     string
	CallerName      string
	RoutingDelegate string
	HasDelegate     bool
	Endpoint        string
}

func referenceRequest() *lazyrpc.CallRequest {
	return &lazyrpc.CallRequest{
		Flags: 42,
		TTL:   99 * time.Millisecond,
		Tracing: lazyrpc.Tracing{
			SpanID:   0<<32 | 1,
			ParentID: 2<<32 | 3,
			TraceID:  4<<32 | 5,
		},
		Service: "castle",
		Headers: []lazyrpc.TransportHeader{
			{Key: lazyrpc.CallerNameKey, Value: "mario"},
			{Key: lazyrpc.ArgSchemeKey, Value: "plumber"},
		},
		ChecksumType: lazyrpc.ChecksumNone,
		Args:         [][]byte{[]byte("door"), []byte("key"), []byte("turn")},
	}
}

func encodeReference() ([]byte, error) {
	return lazyrpc.EncodeCallRequest(24, referenceRequest())
}

func main() {
	configPath := flag.String("config", "", "bench config toml")
	mode := flag.String("mode", "", "loop mode: optimized|default")
	iter := flag.Int("iter", 0, "iterations, in millions")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "lazybench: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	lazyrpc.SetLogger(logger)

	cfg := defaultBenchConfig()
	if *configPath != "" {
		cfg, err = loadBenchConfig(*configPath)
		if err != nil {
			logger.Fatal("lazybench: config", zap.Error(err))
		}
	}
	if *mode != "" {
		cfg.Mode = *mode
	}
	if *iter > 0 {
		cfg.Iterations = *iter * 1000 * 1000
	}
	if err := cfg.validate(); err != nil {
		logger.Fatal("lazybench: config", zap.Error(err))
	}

	if err := run(logger, cfg); err != nil {
		logger.Fatal("lazybench: run", zap.Error(err))
	}
}

func run(logger *zap.Logger, cfg benchConfig) error {
	buf, err := encodeReference()
	if err != nil {
		return err
	}

	if _, err = runLoop(buf, cfg.Mode, cfg.Warmup); err != nil {
		return err
	}
	logger.Info("done warmup", zap.Int("iterations", cfg.Warmup))
	time.Sleep(cfg.Pause)

	logger.Info("running bench", zap.Int("pid", os.Getpid()), zap.String("mode", cfg.Mode), zap.Int("iterations", cfg.Iterations))
	start := time.Now()
	last, err := runLoop(buf, cfg.Mode, cfg.Iterations)
	if err != nil {
		return err
	}
	logger.Info("finished bench",
		zap.Duration("elapsed", time.Since(start)),
		zap.String("service", last.ServiceName),
		zap.String("endpoint", last.Endpoint))
	return nil
}

func runLoop(buf []byte, mode string, iter int) (last frameData, err error) {
	f, err := lazyrpc.NewLazyFrame(buf)
	if err != nil {
		return
	}
	req, err := f.CallRequest()
	if err != nil {
		return
	}

	read := readOptimized
	if mode == modeDefault {
		read = readDefault
	}

	var res [10]frameData
	for i := 0; i < iter; i++ {
		res[i%10], err = read(req)
		if err != nil {
			return
		}
		// drop memoized fields so every iteration decodes again
		f.Reset()
	}
	if iter > 0 {
		last = res[(iter-1)%10]
	}
	return
}

func readOptimized(req lazyrpc.CallRequestView) (d frameData, err error) {
	if d.ServiceName, err = req.ServiceStr(); err != nil {
		return
	}
	if d.CallerName, _, err = req.CallerNameStr(); err != nil {
		return
	}
	if d.RoutingDelegate, d.HasDelegate, err = req.RoutingDelegateStr(); err != nil {
		return
	}
	d.Endpoint, err = req.Arg1Str()
	return
}

func readDefault(req lazyrpc.CallRequestView) (d frameData, err error) {
	svc, err := req.ReadService()
	if err != nil {
		return
	}
	d.ServiceName = string(svc.Value)

	headers, err := req.ReadHeaders()
	if err != nil {
		return
	}
	cn, _ := headers.Value.Get([]byte(lazyrpc.CallerNameKey))
	d.CallerName = string(cn)
	d.RoutingDelegate, d.HasDelegate = headers.Value.GetString(lazyrpc.RoutingDelegateKey)

	arg1, err := req.ReadArg1()
	if err != nil {
		return
	}
	d.Endpoint = string(arg1.Value)
	return
}
