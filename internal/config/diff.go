// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"strconv"
)

// Change describes one changed configuration key.
type Change struct {
	Key string
	Old string
	New string
	// Restart is true when the change only takes effect after a restart.
	Restart bool
}

type field struct {
	key     string
	restart bool
	secret  bool
	get     func(AppConfig) string
}

func num(n int) string   { return strconv.Itoa(n) }
func flag(b bool) string { return strconv.FormatBool(b) }

var fields = []field{
	{"logLevel", false, false, func(c AppConfig) string { return c.LogLevel }},
	{"logService", true, false, func(c AppConfig) string { return c.LogService }},
	{"api.listenAddr", true, false, func(c AppConfig) string { return c.API.ListenAddr }},
	{"api.maxBodyBytes", true, false, func(c AppConfig) string { return strconv.FormatInt(c.API.MaxBodyBytes, 10) }},
	{"api.rateLimit.enabled", true, false, func(c AppConfig) string { return flag(c.API.RateLimit.Enabled) }},
	{"api.rateLimit.requestsPerMinute", true, false, func(c AppConfig) string { return num(c.API.RateLimit.RequestsPerMinute) }},
	{"api.batch.maxDocuments", true, false, func(c AppConfig) string { return num(c.API.Batch.MaxDocuments) }},
	{"api.batch.concurrency", true, false, func(c AppConfig) string { return num(c.API.Batch.Concurrency) }},
	{"api.batch.costPerSecond", true, false, func(c AppConfig) string { return fmt.Sprint(c.API.Batch.CostPerSecond) }},
	{"api.batch.costBurst", true, false, func(c AppConfig) string { return num(c.API.Batch.CostBurst) }},
	{"metrics.enabled", true, false, func(c AppConfig) string { return flag(c.Metrics.Enabled) }},
	{"metrics.listenAddr", true, false, func(c AppConfig) string { return c.Metrics.ListenAddr }},
	{"dictionary.backend", true, false, func(c AppConfig) string { return c.Dictionary.Backend }},
	{"dictionary.path", true, false, func(c AppConfig) string { return c.Dictionary.Path }},
	{"dictionary.watchFile", true, false, func(c AppConfig) string { return c.Dictionary.WatchFile }},
	{"dictionary.watch", true, false, func(c AppConfig) string { return flag(c.Dictionary.Watch) }},
	{"cache.backend", true, false, func(c AppConfig) string { return c.Cache.Backend }},
	{"cache.ttl", true, false, func(c AppConfig) string { return c.Cache.TTL.String() }},
	{"cache.redis.addr", true, false, func(c AppConfig) string { return c.Cache.Redis.Addr }},
	{"cache.redis.password", true, true, func(c AppConfig) string { return c.Cache.Redis.Password }},
	{"cache.redis.db", true, false, func(c AppConfig) string { return num(c.Cache.Redis.DB) }},
	{"cache.badger.path", true, false, func(c AppConfig) string { return c.Cache.Badger.Path }},
	{"telemetry.enabled", true, false, func(c AppConfig) string { return flag(c.Telemetry.Enabled) }},
	{"telemetry.exporter", true, false, func(c AppConfig) string { return c.Telemetry.Exporter }},
	{"telemetry.endpoint", true, false, func(c AppConfig) string { return c.Telemetry.Endpoint }},
	{"telemetry.samplingRate", true, false, func(c AppConfig) string { return fmt.Sprint(c.Telemetry.SamplingRate) }},
}

// Diff lists the keys that differ between old and newCfg. Secret values
// are masked.
func Diff(old, newCfg AppConfig) []Change {
	var out []Change
	for _, f := range fields {
		o, n := f.get(old), f.get(newCfg)
		if o == n {
			continue
		}
		if f.secret {
			o, n = mask(o), mask(n)
		}
		out = append(out, Change{Key: f.key, Old: o, New: n, Restart: f.restart})
	}
	return out
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}

// RequiresRestart reports whether any change needs a restart to apply.
func RequiresRestart(changes []Change) bool {
	for _, c := range changes {
		if c.Restart {
			return true
		}
	}
	return false
}
