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

// Package size provides a byte-count type with human-readable parsing and formatting.
package size

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Size is a count of bytes, with binary (1024-based) unit helpers.
type Size uint64

const (
	SizeNul  Size = 0
	SizeUnit Size = 1
	SizeKilo Size = SizeUnit << 10
	SizeMega Size = SizeKilo << 10
	SizeGiga Size = SizeMega << 10
	SizeTera Size = SizeGiga << 10
	SizePeta Size = SizeTera << 10
	SizeExa  Size = SizePeta << 10
)

var units = []struct {
	suffix string
	size   Size
}{
	{"EB", SizeExa},
	{"PB", SizePeta},
	{"TB", SizeTera},
	{"GB", SizeGiga},
	{"MB", SizeMega},
	{"KB", SizeKilo},
	{"B", SizeUnit},
}

// Unit returns the largest binary unit suffix that the size fits in ("B", "KB", "MB", ...).
func (s Size) Unit() string {
	for _, u := range units {
		if s >= u.size {
			return u.suffix
		}
	}
	return "B"
}

// Format renders the size with the given number of decimals and no unit suffix.
func (s Size) Format(decimals int) string {
	for _, u := range units {
		if s >= u.size || u.size == SizeUnit {
			v := float64(s) / float64(u.size)
			return strconv.FormatFloat(v, 'f', decimals, 64)
		}
	}
	return strconv.FormatFloat(float64(s), 'f', decimals, 64)
}

// String implements fmt.Stringer, rendering size with two decimals and a unit suffix.
func (s Size) String() string {
	return s.Format(2) + " " + s.Unit()
}

func (s Size) Uint64() uint64 {
	return uint64(s)
}

func (s Size) Int64() int64 {
	if s > Size(math.MaxInt64) {
		return math.MaxInt64
	}
	return int64(s)
}

func (s Size) Float64() float64 {
	return float64(s)
}

// Add increases the size in place by n bytes.
func (s *Size) Add(n uint64) {
	*s = Size(uint64(*s) + n)
}

// Sub decreases the size in place by n bytes, clamping at zero.
func (s *Size) Sub(n uint64) {
	if n >= uint64(*s) {
		*s = 0
		return
	}
	*s = Size(uint64(*s) - n)
}

func (s Size) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Size) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s Size) MarshalJSON() ([]byte, error) {
	b, err := s.MarshalText()
	if err != nil {
		return nil, err
	}
	return []byte(strconv.Quote(string(b))), nil
}

func (s *Size) UnmarshalJSON(b []byte) error {
	str, err := strconv.Unquote(string(b))
	if err != nil {
		str = string(b)
	}
	return s.UnmarshalText([]byte(str))
}

// Parse reads a human size string such as "100MB", "1.5 GiB" or a bare byte count.
func Parse(in string) (Size, error) {
	str := strings.TrimSpace(in)
	if str == "" {
		return 0, fmt.Errorf("size: empty value")
	}

	neg := false
	if strings.HasPrefix(str, "-") {
		neg = true
		str = str[1:]
	} else if strings.HasPrefix(str, "+") {
		str = str[1:]
	}

	i := 0
	for i < len(str) && (str[i] == '.' || (str[i] >= '0' && str[i] <= '9')) {
		i++
	}

	numPart := str[:i]
	unitPart := strings.TrimSpace(str[i:])

	if numPart == "" {
		return 0, fmt.Errorf("size: no numeric value in %q", in)
	}

	val, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, fmt.Errorf("size: invalid numeric value %q: %w", numPart, err)
	}

	mult, err := unitMultiplier(unitPart)
	if err != nil {
		return 0, err
	}

	res := val * mult
	if res < 0 {
		res = -res
	}
	_ = neg // sign is informational only; Size is unsigned, absolute value is kept

	return Size(res), nil
}

// ParseSize is a deprecated alias for Parse, kept for source compatibility.
func ParseSize(in string) (Size, error) {
	return Parse(in)
}

func unitMultiplier(unit string) (float64, error) {
	u := strings.ToUpper(strings.TrimSpace(unit))
	u = strings.TrimSuffix(u, "IB")
	u = strings.TrimSuffix(u, "B")

	switch u {
	case "":
		return float64(SizeUnit), nil
	case "K":
		return float64(SizeKilo), nil
	case "M":
		return float64(SizeMega), nil
	case "G":
		return float64(SizeGiga), nil
	case "T":
		return float64(SizeTera), nil
	case "P":
		return float64(SizePeta), nil
	case "E":
		return float64(SizeExa), nil
	default:
		return 0, fmt.Errorf("size: unknown unit %q", unit)
	}
}

// ViperDecoderHook returns a mapstructure-compatible decode hook that converts
// strings and numeric kinds into a Size, for use with viper.Unmarshal.
func ViperDecoderHook() func(reflect.Type, reflect.Type, interface{}) (interface{}, error) {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(Size(0)) {
			return data, nil
		}

		switch from.Kind() {
		case reflect.String:
			return Parse(data.(string))
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return Size(reflect.ValueOf(data).Int()), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return Size(reflect.ValueOf(data).Uint()), nil
		case reflect.Float32, reflect.Float64:
			return Size(reflect.ValueOf(data).Float()), nil
		default:
			return data, nil
		}
	}
}
