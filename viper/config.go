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

package viper

import (
	"io"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"

	loglvl "github.com/luciusmagn/hiisi/logger/level"
)

func (o *vpr) SetRemoteProvider(provider string) {
	o.remoteProvider = provider
}

func (o *vpr) SetRemoteEndpoint(endpoint string) {
	o.remoteEndpoint = endpoint
}

func (o *vpr) SetRemotePath(path string) {
	o.remotePath = path
}

func (o *vpr) SetRemoteSecureKey(key string) {
	o.remoteSecure = key
}

func (o *vpr) SetRemoteModel(model interface{}) {
	o.remoteModel = model
}

func (o *vpr) SetRemoteReloadFunc(fct func()) {
	o.remoteReload = fct
}

func (o *vpr) SetHomeBaseName(base string) {
	o.homeBase = base
}

func (o *vpr) SetEnvVarsPrefix(prefix string) {
	o.envPfx = prefix
}

func (o *vpr) SetDefaultConfig(fct func() io.Reader) {
	o.defaultConfig = fct
}

// SetConfigFile implements Viper.
func (o *vpr) SetConfigFile(path string) error {
	if path != "" {
		o.v.SetConfigFile(path)
		return nil
	}

	if o.homeBase == "" {
		return ErrorBasePathNotFound.Error(nil)
	}

	home, err := homedir.Dir()
	if err != nil {
		return ErrorHomePathNotFound.Error(err)
	}

	o.v.SetConfigName(o.homeBase)
	o.v.AddConfigPath(home)
	o.v.AddConfigPath(filepath.Join(home, "."+o.homeBase))
	o.v.AddConfigPath(".")

	return nil
}

func (o *vpr) registerRemote() error {
	if o.remoteProvider == "" {
		return nil
	}

	var err error
	if o.remoteSecure != "" {
		err = o.v.AddSecureRemoteProvider(o.remoteProvider, o.remoteEndpoint, o.remotePath, o.remoteSecure)
	} else {
		err = o.v.AddRemoteProvider(o.remoteProvider, o.remoteEndpoint, o.remotePath)
	}

	if err != nil {
		return ErrorRemoteProvider.Error(err)
	}

	if o.remoteModel != nil {
		if err = o.v.ReadRemoteConfig(); err != nil {
			return ErrorRemoteProviderMarshall.Error(err)
		}
	} else if err = o.v.ReadRemoteConfig(); err != nil {
		return ErrorRemoteProviderRead.Error(err)
	}

	if o.remoteReload != nil {
		go func() {
			if e := o.v.WatchRemoteConfig(); e == nil {
				o.remoteReload()
			}
		}()
	}

	return nil
}

// Config implements Viper.
func (o *vpr) Config(errLvl, infoLvl loglvl.Level) error {
	log := o.log()

	if o.envPfx != "" {
		o.v.SetEnvPrefix(o.envPfx)
	}
	o.v.AutomaticEnv()
	o.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := o.registerRemote(); err != nil {
		log.CheckError(errLvl, loglvl.NilLevel, "viper: remote provider setup", err)
		return err
	}

	if err := o.v.ReadInConfig(); err != nil {
		if o.defaultConfig != nil {
			r := o.defaultConfig()
			if r == nil {
				e := ErrorConfigReadDefault.Error(err)
				log.CheckError(errLvl, loglvl.NilLevel, "viper: default config reader is nil", e)
				return e
			}

			if derr := o.v.ReadConfig(r); derr != nil {
				e := ErrorConfigReadDefault.Error(derr)
				log.CheckError(errLvl, loglvl.NilLevel, "viper: reading default config", e)
				return e
			}

			e := ErrorConfigIsDefault.Error(err)
			log.CheckError(infoLvl, infoLvl, "viper: config loaded from default config", e)
			return e
		}

		e := ErrorConfigRead.Error(err)
		log.CheckError(errLvl, loglvl.NilLevel, "viper: reading config file", e)
		return e
	}

	log.CheckError(errLvl, infoLvl, "viper: config loaded from "+o.v.ConfigFileUsed())

	return nil
}
