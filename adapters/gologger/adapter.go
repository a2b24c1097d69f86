// Package gologger bridges the engine's glog-based logging into the
// contracts the observation job runtime expects.
package gologger

import (
	"strings"

	job "github.com/goliatone/go-job"
	glog "github.com/goliatone/go-logger/glog"
)

// DefaultChannel is the logger channel used when callers pass a blank name.
const DefaultChannel = "raccoon"

// Resolve picks the effective logger pair with precedence
// provider > logger > nop. A blank name falls back to DefaultChannel.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(channelName(name), provider, logger)
}

// ToJobProvider wraps a glog provider in the go-job provider contract.
// A nil provider stays nil so the job runtime applies its own fallback.
func ToJobProvider(provider glog.LoggerProvider) job.LoggerProvider {
	if provider == nil {
		return nil
	}
	return job.GoLoggerProvider(provider)
}

// ToJobLogger wraps a glog logger in the go-job logger contract.
func ToJobLogger(logger glog.Logger) job.Logger {
	if logger == nil {
		return nil
	}
	return job.GoLogger(logger)
}

// ResolveForJob resolves the glog pair and returns it alongside the go-job
// projections, so observation workers and the engine log through the same
// sink.
func ResolveForJob(
	name string,
	provider glog.LoggerProvider,
	logger glog.Logger,
) (glog.LoggerProvider, glog.Logger, job.LoggerProvider, job.Logger) {
	resolvedProvider, resolvedLogger := Resolve(name, provider, logger)
	return resolvedProvider, resolvedLogger,
		ToJobProvider(resolvedProvider), ToJobLogger(resolvedLogger)
}

func channelName(name string) string {
	if strings.TrimSpace(name) == "" {
		return DefaultChannel
	}
	return name
}
