package platform

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aretw0/cleverpad/pkg/adapters/fs"
	"github.com/aretw0/cleverpad/pkg/adapters/memory"
	"github.com/aretw0/cleverpad/pkg/core"
)

// Init prepares the key/value store that holds the session and preferences.
// The uri is adapter-specific: a state directory for "fs", ignored for
// "memory". The *fs.Store is returned as well when the fs adapter is used.
func Init(uri string, opts ...Option) (core.KeyValue, *fs.Store, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return initStore(uri, o)
}

func initStore(uri string, o *options) (core.KeyValue, *fs.Store, error) {
	if o.kv != nil {
		if st, ok := o.kv.(*fs.Store); ok {
			return st, st, nil
		}
		return o.kv, nil, nil
	}

	switch o.adapter {
	case "fs":
		st, err := initFS(uri, o)
		if err != nil {
			return nil, nil, err
		}
		return st, st, nil
	case "memory":
		return memory.NewKV(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
}

// initFS resolves the state directory, applying the dev sandbox, and creates it.
func initFS(path string, o *options) (*fs.Store, error) {
	useTemp := o.forceTemp || (o.devSafety && IsDevRun())
	resolved := ResolveStateDir(path, useTemp)

	if useTemp {
		o.logger.Warn("running in SAFE MODE (dev/test): state redirected",
			zap.String("original_path", path), zap.String("resolved_path", resolved))
	} else if IsDevRun() {
		o.logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", zap.String("path", resolved))
	}

	st := fs.NewStore(fs.Config{
		Path:         resolved,
		MustExist:    o.mustExist,
		Logger:       o.logger.Named("state"),
		ErrorHandler: o.errorHandler,
	})
	if err := st.Initialize(context.Background()); err != nil {
		return nil, err
	}
	return st, nil
}
