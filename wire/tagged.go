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

package wire

import "encoding/json"

// marshalBareString encodes a fieldless variant as a bare JSON string.
func marshalBareString(tag string) ([]byte, error) {
	return json.Marshal(tag)
}

// marshalTagged encodes payload as {"tag": payload}, the externally-tagged
// shape used throughout this package's unions.
func marshalTagged(tag string, payload interface{}) ([]byte, error) {
	m, err := json.Marshal(payload)
	if err != nil {
		return nil, ErrorMalformedVariant.Error(err)
	}

	out := append([]byte(`{"`+tag+`":`), m...)
	out = append(out, '}')

	return out, nil
}

// unmarshalBareOrTagged reports whether data is a bare JSON string (a
// fieldless variant). If so, tag is its value and isBare is true.
func unmarshalBareOrTagged(data []byte) (tag string, isBare bool, err error) {
	var s string
	if e := json.Unmarshal(data, &s); e == nil {
		return s, true, nil
	}

	return "", false, nil
}

// splitTagged decodes a single-key object {"tag": <raw>} and returns the key
// and the raw payload bytes.
func splitTagged(data []byte) (tag string, raw json.RawMessage, err error) {
	m := map[string]json.RawMessage{}
	if e := json.Unmarshal(data, &m); e != nil {
		return "", nil, ErrorMalformedVariant.Error(e)
	}

	if len(m) != 1 {
		return "", nil, ErrorMalformedVariant.Error(nil)
	}

	for k, v := range m {
		return k, v, nil
	}

	return "", nil, ErrorMalformedVariant.Error(nil)
}

func decodeInto(raw json.RawMessage, out interface{}) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return ErrorMalformedVariant.Error(err)
	}

	return nil
}
