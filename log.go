package lazyrpc

import "go.uber.org/zap"

var l *zap.Logger

func init() {
	var err error
	l, err = zap.NewProduction()
	if err != nil {
		panic(err)
	}
}

// SetLogger replaces the logger used by ServeMux and Dispatcher.
// The decoding path never logs.
func SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	l = logger
}
