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
	"sync"

	libmap "github.com/go-viper/mapstructure/v2"
)

var hookMu sync.Mutex

// HookRegister implements Viper. hook must be a mapstructure decode hook:
// func(reflect.Value, reflect.Value) (interface{}, error),
// func(reflect.Type, reflect.Type, interface{}) (interface{}, error), or
// func(reflect.Kind, reflect.Kind, interface{}) (interface{}, error).
func (o *vpr) HookRegister(hook interface{}) {
	hookMu.Lock()
	defer hookMu.Unlock()

	o.hooks = append(o.hooks, hook)
}

// HookReset implements Viper.
func (o *vpr) HookReset() {
	hookMu.Lock()
	defer hookMu.Unlock()

	o.hooks = nil
}

func (o *vpr) decodeHook() libmap.DecodeHookFunc {
	hookMu.Lock()
	hooks := make([]libmap.DecodeHookFunc, 0, len(o.hooks))
	for _, h := range o.hooks {
		hooks = append(hooks, h)
	}
	hookMu.Unlock()

	hooks = append(hooks,
		libmap.StringToTimeDurationHookFunc(),
		libmap.StringToSliceHookFunc(","),
	)

	return libmap.ComposeDecodeHookFunc(hooks...)
}
