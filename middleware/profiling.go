package middleware

import (
	"errors"

	"github.com/grafana/pyroscope-go"
	"github.com/gurbetbiz/account-service/config"
)

var profiler *pyroscope.Profiler

// ErrProfilingDisabled is returned by InitProfiling when PROFILING_ENABLED=false.
var ErrProfilingDisabled = errors.New("profiling is disabled (PROFILING_ENABLED=false)")

// InitProfiling starts continuous Pyroscope profiling.
func InitProfiling(cfg *config.Config) error {
	if !cfg.Profiling.Enabled {
		return ErrProfilingDisabled
	}

	serviceName, namespace := detectServiceInfo(cfg.Service)
	if cfg.Profiling.ServiceName != "" {
		serviceName = cfg.Profiling.ServiceName
	}

	var err error
	profiler, err = pyroscope.Start(pyroscope.Config{
		ApplicationName: serviceName,
		ServerAddress:   cfg.Profiling.Endpoint,
		Tags: map[string]string{
			"service":   serviceName,
			"namespace": namespace,
			"version":   cfg.Service.Version,
		},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	})
	return err
}

// StopProfiling stops Pyroscope profiling
func StopProfiling() {
	if profiler != nil {
		_ = profiler.Stop()
	}
}
