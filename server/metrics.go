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

package server

import (
	"net/http"
	"sync"

	ginsdk "github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	libproc "github.com/luciusmagn/hiisi/process"
	libptr "github.com/luciusmagn/hiisi/portreg"
	libsysmon "github.com/luciusmagn/hiisi/sysmon"
)

// adminMetrics holds every Prometheus collector exposed on the admin
// surface (§11.2). Gauges are refreshed on scrape from live state; the two
// counters mirror atomic totals kept by the process package.
type adminMetrics struct {
	processesTotal   *prometheus.GaugeVec
	portsAllocated   prometheus.Gauge
	restartsTotal    prometheus.Counter
	spawnErrorsTotal prometheus.Counter
	sysmonCPUPercent prometheus.Gauge
	sysmonMemoryUsed prometheus.Gauge

	registry *prometheus.Registry

	mu              sync.Mutex
	restartsSeen    uint64
	spawnErrorsSeen uint64
}

func newAdminMetrics() *adminMetrics {
	m := &adminMetrics{
		processesTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hiisi_processes_total",
			Help: "Number of supervised processes, by restart policy.",
		}, []string{"restart"}),
		portsAllocated: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hiisi_ports_allocated",
			Help: "Number of ports currently allocated.",
		}),
		restartsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hiisi_restarts_total",
			Help: "Number of processes successfully respawned by the supervision loop.",
		}),
		spawnErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hiisi_spawn_errors_total",
			Help: "Number of restart attempts that failed to spawn.",
		}),
		sysmonCPUPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hiisi_sysmon_cpu_percent",
			Help: "Host-wide CPU utilization percentage, last sample.",
		}),
		sysmonMemoryUsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hiisi_sysmon_memory_used_bytes",
			Help: "Host-wide used memory in bytes, last sample.",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.processesTotal,
		m.portsAllocated,
		m.restartsTotal,
		m.spawnErrorsTotal,
		m.sysmonCPUPercent,
		m.sysmonMemoryUsed,
	)

	return m
}

// refresh recomputes every gauge from the daemon's live state. Counters are
// monotonic totals pulled from the process package's atomic counters, so a
// scrape reports the delta-free cumulative value Prometheus expects.
func (m *adminMetrics) refresh(table *libproc.Table, ports *libptr.Registry, mon *libsysmon.Monitor) {
	restarting, oneShot := table.CountsByRestart()
	m.processesTotal.WithLabelValues("true").Set(float64(restarting))
	m.processesTotal.WithLabelValues("false").Set(float64(oneShot))

	m.portsAllocated.Set(float64(len(ports.Lookup(nil))))

	m.advance(m.restartsTotal, &m.restartsSeen, libproc.RestartsTotal())
	m.advance(m.spawnErrorsTotal, &m.spawnErrorsSeen, libproc.SpawnErrorsTotal())

	stats := mon.Update(table.Pids())
	m.sysmonCPUPercent.Set(stats.TotalCPUPercent)
	m.sysmonMemoryUsed.Set(float64(stats.UsedMemory))
}

// advance moves a monotonic Prometheus counter forward by the delta between
// total and the last-seen value recorded in seen, since prometheus.Counter
// only exposes Add, not Set.
func (m *adminMetrics) advance(c prometheus.Counter, seen *uint64, total uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if total > *seen {
		c.Add(float64(total - *seen))
		*seen = total
	}
}

// handler returns the admin engine serving /healthz and /metrics.
func (d *Daemon) adminHandler() http.Handler {
	ginsdk.SetMode(ginsdk.ReleaseMode)
	r := ginsdk.New()
	r.Use(ginsdk.Recovery())

	r.GET("/healthz", func(c *ginsdk.Context) {
		if !d.socket.IsRunning() {
			c.JSON(http.StatusServiceUnavailable, ginsdk.H{"status": "socket not bound"})
			return
		}
		c.JSON(http.StatusOK, ginsdk.H{"status": "ok"})
	})

	r.GET("/metrics", func(c *ginsdk.Context) {
		d.metrics.refresh(d.Table, d.Ports, d.Monitor)
		promhttp.HandlerFor(d.metrics.registry, promhttp.HandlerOpts{}).ServeHTTP(c.Writer, c.Request)
	})

	return r
}
