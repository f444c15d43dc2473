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
	"os/user"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("sweep", func() {
	It("leaves a still-running row untouched", func() {
		requireRoot()

		u, err := user.Current()
		Expect(err).ToNot(HaveOccurred())

		table := NewTable()
		row, err := Spawn(SpawnRequest{Id: 0, User: u.Username, Cmd: "sleep 60", Cwd: "/tmp", Restart: true})
		Expect(err).ToNot(HaveOccurred())
		table.Add(row)

		sweep(table, nil)

		got, ok := table.Get(0)
		Expect(ok).To(BeTrue())
		Expect(got).To(BeIdenticalTo(row))
		Expect(Terminate(row)).To(Succeed())
	})

	It("respawns an exited row with restart set, preserving its id", func() {
		requireRoot()

		u, err := user.Current()
		Expect(err).ToNot(HaveOccurred())

		table := NewTable()
		row, err := Spawn(SpawnRequest{Id: 0, User: u.Username, Cmd: "true", Cwd: "/tmp", Restart: true})
		Expect(err).ToNot(HaveOccurred())
		table.Add(row)

		Eventually(row.Exited).Should(BeTrue())

		sweep(table, nil)

		got, ok := table.Get(0)
		Expect(ok).To(BeTrue())
		Expect(got.Id).To(Equal(uint32(0)))
		Expect(got).ToNot(BeIdenticalTo(row))
	})

	It("counts a successful respawn towards RestartsTotal", func() {
		requireRoot()

		u, err := user.Current()
		Expect(err).ToNot(HaveOccurred())

		table := NewTable()
		row, err := Spawn(SpawnRequest{Id: 0, User: u.Username, Cmd: "true", Cwd: "/tmp", Restart: true})
		Expect(err).ToNot(HaveOccurred())
		table.Add(row)

		Eventually(row.Exited).Should(BeTrue())

		before := RestartsTotal()
		sweep(table, nil)
		Expect(RestartsTotal()).To(Equal(before + 1))
	})

	It("ignores a row without restart set", func() {
		requireRoot()

		u, err := user.Current()
		Expect(err).ToNot(HaveOccurred())

		table := NewTable()
		row, err := Spawn(SpawnRequest{Id: 0, User: u.Username, Cmd: "true", Cwd: "/tmp", Restart: false})
		Expect(err).ToNot(HaveOccurred())
		table.Add(row)

		Eventually(row.Exited).Should(BeTrue())

		sweep(table, nil)

		got, ok := table.Get(0)
		Expect(ok).To(BeTrue())
		Expect(got).To(BeIdenticalTo(row))
	})
})
