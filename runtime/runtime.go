package runtime

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-printnf/errors"
	"github.com/wippyai/wasm-printnf/host"
)

// Config holds configuration for runtime creation.
type Config struct {
	// Logger defaults to the package logger. It is also handed to the env
	// module when Env.Logger is unset.
	Logger *zap.Logger

	// Env configures the env host module.
	Env host.Config

	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means the wazero default.
	MemoryLimitPages uint32
}

// Runtime hosts printnf guests.
type Runtime struct {
	rt     wazero.Runtime
	env    *host.Env
	logger *zap.Logger
	seq    atomic.Uint32
}

// New creates a runtime and instantiates the env module in it.
func New(ctx context.Context, cfg *Config) (*Runtime, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	log := cfg.Logger
	if log == nil {
		log = Logger()
	}
	envCfg := cfg.Env
	if envCfg.Logger == nil {
		envCfg.Logger = log
	}

	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	env := host.New(envCfg)
	if _, err := env.Instantiate(ctx, rt); err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}
	return &Runtime{rt: rt, env: env, logger: log}, nil
}

// Env returns the env host module.
func (r *Runtime) Env() *host.Env { return r.env }

// Close releases all runtime resources, closing every instance.
func (r *Runtime) Close(ctx context.Context) error {
	return r.rt.Close(ctx)
}

// Load compiles and instantiates a guest module.
func (r *Runtime) Load(ctx context.Context, wasm []byte) (*Instance, error) {
	compiled, err := r.rt.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "failed to compile guest")
	}

	name := "guest-" + strconv.FormatUint(uint64(r.seq.Add(1)), 10)
	if len(compiled.ExportedMemories()) == 0 {
		_ = compiled.Close(ctx)
		return nil, errors.NotFound(errors.PhaseLoad, "exported memory of", name)
	}
	mod, err := r.rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(name))
	if err != nil {
		_ = compiled.Close(ctx)
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInstantiation, err, "failed to instantiate guest")
	}

	r.logger.Debug("guest loaded", zap.String("module", name), zap.Uint32("memory", mod.Memory().Size()))
	return &Instance{rt: r, mod: mod, compiled: compiled, logger: r.logger}, nil
}
