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

import "time"

func (o *vpr) GetBool(key string) bool {
	return o.v.GetBool(key)
}

func (o *vpr) GetString(key string) string {
	return o.v.GetString(key)
}

func (o *vpr) GetInt(key string) int {
	return o.v.GetInt(key)
}

func (o *vpr) GetInt32(key string) int32 {
	return o.v.GetInt32(key)
}

func (o *vpr) GetInt64(key string) int64 {
	return o.v.GetInt64(key)
}

func (o *vpr) GetUint(key string) uint {
	return o.v.GetUint(key)
}

func (o *vpr) GetUint16(key string) uint16 {
	return o.v.GetUint16(key)
}

func (o *vpr) GetUint32(key string) uint32 {
	return o.v.GetUint32(key)
}

func (o *vpr) GetUint64(key string) uint64 {
	return o.v.GetUint64(key)
}

func (o *vpr) GetFloat64(key string) float64 {
	return o.v.GetFloat64(key)
}

func (o *vpr) GetDuration(key string) time.Duration {
	return o.v.GetDuration(key)
}

func (o *vpr) GetTime(key string) time.Time {
	return o.v.GetTime(key)
}

func (o *vpr) GetIntSlice(key string) []int {
	return o.v.GetIntSlice(key)
}

func (o *vpr) GetStringSlice(key string) []string {
	return o.v.GetStringSlice(key)
}

func (o *vpr) GetStringMap(key string) map[string]interface{} {
	return o.v.GetStringMap(key)
}

func (o *vpr) GetStringMapString(key string) map[string]string {
	return o.v.GetStringMapString(key)
}

func (o *vpr) GetStringMapStringSlice(key string) map[string][]string {
	return o.v.GetStringMapStringSlice(key)
}
