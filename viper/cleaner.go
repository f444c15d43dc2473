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
	"strings"

	spfvpr "github.com/spf13/viper"
)

// Unset implements Viper. spf13/viper has no native key removal, so the
// current settings are flattened, the requested keys pruned from the
// resulting tree, and a fresh instance re-merged from what remains.
func (o *vpr) Unset(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	settings := o.v.AllSettings()

	for _, k := range keys {
		if k == "" {
			continue
		}

		deleteNestedKey(settings, strings.Split(strings.ToLower(k), "."))
	}

	nv := spfvpr.New()
	if err := nv.MergeConfigMap(settings); err != nil {
		return err
	}

	o.v = nv

	return nil
}

func deleteNestedKey(m map[string]interface{}, parts []string) {
	if len(parts) == 0 {
		return
	}

	key := parts[0]

	if len(parts) == 1 {
		delete(m, key)
		return
	}

	nested, ok := m[key].(map[string]interface{})
	if !ok {
		return
	}

	deleteNestedKey(nested, parts[1:])
}
