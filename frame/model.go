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

// Package frame implements the daemon's wire framing: a 4-byte big-endian
// length prefix followed by a JSON body, over any io.Reader/io.Writer.
package frame

import (
	"encoding/binary"
	"encoding/json"
	"io"
)

// MaxFrameSize is the largest body, in bytes, a frame may declare. A length
// prefix beyond this is rejected without reading the body.
const MaxFrameSize = 16 * 1024 * 1024

const lengthPrefixSize = 4

// WriteFrame serializes v as JSON and writes it to w as a length-prefixed
// frame: 4-byte big-endian length, then the JSON body.
func WriteFrame(w io.Writer, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return ErrorEncode.Error(err)
	}

	var hdr [lengthPrefixSize]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(body)))

	if _, err = w.Write(hdr[:]); err != nil {
		return ErrorIO.Error(err)
	}

	if _, err = w.Write(body); err != nil {
		return ErrorIO.Error(err)
	}

	return nil
}

// ReadFrame reads one length-prefixed frame from r and decodes its JSON
// body into v. If the declared length exceeds MaxFrameSize, the body is not
// read and ErrorFrameTooLarge is returned; the stream should be considered
// unusable past that point.
func ReadFrame(r io.Reader, v interface{}) error {
	body, err := ReadFrameRaw(r)
	if err != nil {
		return err
	}

	if err = json.Unmarshal(body, v); err != nil {
		return ErrorDecode.Error(err)
	}

	return nil
}

// ReadFrameRaw reads one length-prefixed frame from r and returns its raw
// JSON body without decoding it, for callers that need to inspect the
// discriminator before picking a concrete type.
func ReadFrameRaw(r io.Reader) ([]byte, error) {
	var hdr [lengthPrefixSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, ErrorIO.Error(err)
	}

	n := binary.BigEndian.Uint32(hdr[:])
	if n > MaxFrameSize {
		return nil, ErrorFrameTooLarge.Errorf(int(n))
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, ErrorIO.Error(err)
	}

	return body, nil
}
