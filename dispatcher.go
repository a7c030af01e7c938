package lazyrpc

import (
	"context"
	"sync"

	"github.com/zhiqiangxu/util"
	"go.uber.org/zap"
)

// Dispatcher hands each received frame buffer to a Handler on its own
// goroutine. Every buffer is decoded into its own pooled LazyFrame, so
// handlers never share decoder state.
type Dispatcher struct {
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.RWMutex
	closed     bool
	h          Handler
	sem        chan struct{}
	config     DispatcherConfig
}

type DispatcherConfig struct {
	// MaxInflight bounds the number of frames being handled at once.
	// Dispatch blocks when the bound is reached. 0 means unbounded.
	MaxInflight int
	// OnDrop is called for frames that are not call requests.
	OnDrop func(f *LazyFrame, err error)
}

func NewDispatcher(h Handler, config DispatcherConfig) *Dispatcher {
	if h == nil {
		panic("lazyrpc: nil handler")
	}
	ctx, cancelFunc := context.WithCancel(context.Background())
	d := &Dispatcher{ctx: ctx, cancelFunc: cancelFunc, h: h, config: config}
	if config.MaxInflight > 0 {
		d.sem = make(chan struct{}, config.MaxInflight)
	}
	return d
}

// Dispatch decodes the frame envelope at the start of buf and schedules the
// handler. Envelope errors are returned to the caller and nothing is
// scheduled. buf must not be modified until the handler returns.
func (d *Dispatcher) Dispatch(ctx context.Context, buf []byte) (err error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherClosed
	}

	f, err := AcquireLazyFrame(buf)
	if err != nil {
		return
	}

	req, err := f.CallRequest()
	if err != nil {
		if d.config.OnDrop != nil {
			d.config.OnDrop(f, err)
		} else {
			l.Warn("lazyrpc: dropped frame", zap.Stringer("type", f.Type), zap.Uint32("id", f.ID))
		}
		ReleaseLazyFrame(f)
		return nil
	}

	if d.sem != nil {
		select {
		case d.sem <- struct{}{}:
		case <-ctx.Done():
			ReleaseLazyFrame(f)
			return ctx.Err()
		case <-d.ctx.Done():
			ReleaseLazyFrame(f)
			return ErrDispatcherClosed
		}
	}

	util.GoFunc(&d.wg, func() {
		defer func() {
			ReleaseLazyFrame(f)
			if d.sem != nil {
				<-d.sem
			}
		}()
		d.h.ServeFrame(req)
	})
	return nil
}

// Shutdown stops accepting frames and waits for running handlers.
func (d *Dispatcher) Shutdown() {
	// cancel first so a Dispatch blocked on MaxInflight releases its read lock
	d.cancelFunc()

	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.wg.Wait()
}
