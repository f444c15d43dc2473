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

package process

import (
	"io"
	"os"
	"strconv"
	"time"

	"github.com/pierrec/lz4/v4"
)

// DefaultMaxLogBytes is the rotation threshold used when the daemon config
// does not override process.max_log_bytes.
const DefaultMaxLogBytes int64 = 64 * 1024 * 1024

// RotateIfNeeded compresses path into path+".<unix-timestamp>.lz4" and
// truncates it in place if its size is at or above maxBytes. It is a no-op
// if the file is smaller, missing, or maxBytes is non-positive.
func RotateIfNeeded(path string, maxBytes int64) error {
	if maxBytes <= 0 {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return ErrorLogFile.Error(err)
	}

	if info.Size() < maxBytes {
		return nil
	}

	return rotate(path)
}

func rotate(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return ErrorLogFile.Error(err)
	}
	defer src.Close()

	dstPath := path + "." + strconv.FormatInt(time.Now().Unix(), 10) + ".lz4"
	dst, err := os.OpenFile(dstPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return ErrorLogFile.Error(err)
	}

	zw := lz4.NewWriter(dst)

	if _, err = io.Copy(zw, src); err != nil {
		_ = zw.Close()
		_ = dst.Close()
		return ErrorLogFile.Error(err)
	}

	if err = zw.Close(); err != nil {
		_ = dst.Close()
		return ErrorLogFile.Error(err)
	}

	if err = dst.Close(); err != nil {
		return ErrorLogFile.Error(err)
	}

	if err = os.Truncate(path, 0); err != nil {
		return ErrorLogFile.Error(err)
	}

	return nil
}
