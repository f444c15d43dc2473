/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package viper wraps spf13/viper into the daemon's configuration loader:
// typed getters, remote provider registration, home/base config file
// resolution, default-config fallback and mapstructure decode hooks.
package viper

import (
	"context"
	"io"
	"time"

	spfvpr "github.com/spf13/viper"

	liblog "github.com/luciusmagn/hiisi/logger"
)

// Viper exposes the configuration surface used across the daemon: typed
// value getters, remote provider setup, file loading and decode hooks.
type Viper interface {
	// Viper returns the wrapped spf13/viper instance for callers that need
	// direct access.
	Viper() *spfvpr.Viper

	GetBool(key string) bool
	GetString(key string) string
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetUint(key string) uint
	GetUint16(key string) uint16
	GetUint32(key string) uint32
	GetUint64(key string) uint64
	GetFloat64(key string) float64
	GetDuration(key string) time.Duration
	GetTime(key string) time.Time
	GetIntSlice(key string) []int
	GetStringSlice(key string) []string
	GetStringMap(key string) map[string]interface{}
	GetStringMapString(key string) map[string]string
	GetStringMapStringSlice(key string) map[string][]string

	// SetRemoteProvider registers a remote configuration provider (e.g.
	// "etcd", "consul").
	SetRemoteProvider(provider string)

	// SetRemoteEndpoint sets the endpoint used to reach the remote provider.
	SetRemoteEndpoint(endpoint string)

	// SetRemotePath sets the key path read from the remote provider.
	SetRemotePath(path string)

	// SetRemoteSecureKey sets the decryption key used for secure remote
	// providers such as crypt-backed etcd.
	SetRemoteSecureKey(key string)

	// SetRemoteModel registers the struct used to marshal defaults toward a
	// remote provider that requires an initial model.
	SetRemoteModel(model interface{})

	// SetRemoteReloadFunc registers a callback invoked whenever the remote
	// provider signals a config change.
	SetRemoteReloadFunc(fct func())

	// SetHomeBaseName sets the base file name (without extension) searched
	// for in the user's home directory when SetConfigFile("") is used.
	SetHomeBaseName(base string)

	// SetEnvVarsPrefix sets the prefix used when automatically binding
	// environment variables.
	SetEnvVarsPrefix(prefix string)

	// SetDefaultConfig registers a fallback config reader used when no
	// config file can be read.
	SetDefaultConfig(fct func() io.Reader)

	// SetConfigFile sets the config file path. An empty path resolves to
	// home-base-name in the user's home directory; SetHomeBaseName must have
	// been called first.
	SetConfigFile(path string) error

	// Config loads the registered config file, falling back to the default
	// config reader if set. errLvl/infoLvl control how the outcome is
	// logged.
	Config(errLvl, infoLvl loglvl.Level) error

	// HookRegister adds a mapstructure decode hook applied during Unmarshal,
	// UnmarshalKey and UnmarshalExact.
	HookRegister(hook interface{})

	// HookReset clears every registered decode hook.
	HookReset()

	// UnmarshalKey decodes the value at key into out. It returns an error if
	// the key is not set.
	UnmarshalKey(key string, out interface{}) error

	// Unmarshal decodes the whole configuration into out.
	Unmarshal(out interface{}) error

	// UnmarshalExact decodes the whole configuration into out, failing if
	// any key in the config has no matching field in out.
	UnmarshalExact(out interface{}) error

	// Unset removes the given keys (and any key nested under them) from the
	// configuration. No keys is a no-op.
	Unset(keys ...string) error
}

type vpr struct {
	ctx context.Context
	log liblog.FuncLog

	v *spfvpr.Viper

	homeBase string
	envPfx   string

	remoteProvider string
	remoteEndpoint string
	remotePath     string
	remoteSecure   string
	remoteModel    interface{}
	remoteReload   func()

	defaultConfig func() io.Reader

	hooks []interface{}
}

// New creates a Viper bound to ctx, using log for diagnostic output. A nil
// log falls back to a freshly created default logger.
func New(ctx context.Context, log liblog.FuncLog) Viper {
	if log == nil {
		log = func() liblog.Logger {
			return liblog.New(ctx)
		}
	}

	return &vpr{
		ctx: ctx,
		log: log,
		v:   spfvpr.New(),
	}
}

func (o *vpr) Viper() *spfvpr.Viper {
	return o.v
}
