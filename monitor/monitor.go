package monitor

import (
	"net/http"
	"runtime"
	"time"

	"rkive-api/config"
	"rkive-api/services"

	"github.com/gin-gonic/gin"
)

// maxLogBytes bounds the /logs response.
const maxLogBytes = 256 << 10

var startedAt = time.Now()

type RuntimeStats struct {
	Uptime       string `json:"uptime"`
	Goroutines   int    `json:"goroutines"`
	HeapAllocMB  uint64 `json:"heap_alloc_mb"`
	SysMB        uint64 `json:"sys_mb"`
	NumGC        uint32 `json:"num_gc"`
	GoVersion    string `json:"go_version"`
	RedisEnabled bool   `json:"redis_enabled"`
}

func runtimeStats() RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	return RuntimeStats{
		Uptime:       time.Since(startedAt).Round(time.Second).String(),
		Goroutines:   runtime.NumGoroutine(),
		HeapAllocMB:  mem.HeapAlloc >> 20,
		SysMB:        mem.Sys >> 20,
		NumGC:        mem.NumGC,
		GoVersion:    runtime.Version(),
		RedisEnabled: config.Redis != nil,
	}
}

func authorized(c *gin.Context) bool {
	token := config.Current.LogAccessToken
	if token == "" || c.Query("token") != token {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return false
	}
	return true
}

// RegisterMonitorPage mounts the monitor page and its JSON feed.
func RegisterMonitorPage(router *gin.Engine) {
	router.GET("/monitor", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(monitorPage))
	})

	router.GET("/monitor/stats", func(c *gin.Context) {
		if !authorized(c) {
			return
		}
		counts, err := services.NewDocumentService(config.DB, config.Current).Counts()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"runtime": runtimeStats(),
			"records": counts,
		})
	})
}

// RegisterLogsRoute serves the tail of the log file to holders of LOG_ACCESS_TOKEN.
func RegisterLogsRoute(router *gin.Engine) {
	router.GET("/logs", func(c *gin.Context) {
		if !authorized(c) {
			return
		}
		logData, err := config.TailLog(maxLogBytes)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to read log"})
			return
		}
		c.Data(http.StatusOK, "text/plain; charset=utf-8", logData)
	})
}

const monitorPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1.0" />
  <title>rkive monitor</title>
  <style>
    body { background: #0f0f0f; color: #e0e0e0; font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; padding: 20px; }
    .container { max-width: 1100px; margin: 0 auto; }
    h1 { color: #a5b4fc; }
    .card { background: rgba(255,255,255,0.05); border: 1px solid rgba(255,255,255,0.1); border-radius: 12px; padding: 1rem 1.5rem; margin-bottom: 1.5rem; }
    table { border-collapse: collapse; }
    td { padding: 4px 16px 4px 0; }
    pre { background: rgba(0,0,0,0.3); padding: 1rem; border-radius: 8px; max-height: 480px; overflow-y: auto; white-space: pre-wrap; font-family: Consolas, monospace; font-size: 0.85rem; }
    button { padding: 0.5rem 1rem; background: #667eea; color: #fff; border: none; border-radius: 6px; cursor: pointer; }
    button.paused { background: #f5576c; }
  </style>
</head>
<body>
  <div class="container">
    <h1>rkive monitor</h1>
    <div class="card"><div id="status">Status: checking...</div></div>
    <div class="card"><table id="stats"></table></div>
    <div class="card">
      <button onclick="toggleLive()" id="toggleBtn">Pause live logs</button>
      <pre id="logs">Loading logs...</pre>
    </div>
  </div>
  <script>
    const token = new URLSearchParams(location.search).get('token') || '';
    let liveLogs = true;

    function fetchStatus() {
      fetch('/api/v1/health')
        .then(res => res.json())
        .then(data => { document.getElementById('status').textContent = 'Status: ' + (data.status === 'ok' ? 'online' : 'degraded'); })
        .catch(() => { document.getElementById('status').textContent = 'Status: offline'; });
    }

    function fetchStats() {
      fetch('/monitor/stats?token=' + encodeURIComponent(token))
        .then(res => res.json())
        .then(data => {
          if (!data.runtime) return;
          const rows = Object.entries(Object.assign({}, data.runtime, data.records));
          document.getElementById('stats').innerHTML = rows.map(([k, v]) => '<tr><td>' + k + '</td><td>' + v + '</td></tr>').join('');
        });
    }

    function fetchLogs() {
      if (!liveLogs) return;
      fetch('/logs?token=' + encodeURIComponent(token))
        .then(res => res.text())
        .then(data => {
          const el = document.getElementById('logs');
          el.textContent = data;
          el.scrollTop = el.scrollHeight;
        });
    }

    function toggleLive() {
      liveLogs = !liveLogs;
      const btn = document.getElementById('toggleBtn');
      btn.textContent = liveLogs ? 'Pause live logs' : 'Resume live logs';
      btn.classList.toggle('paused', !liveLogs);
    }

    fetchStatus(); fetchStats(); fetchLogs();
    setInterval(fetchStatus, 5000);
    setInterval(fetchStats, 5000);
    setInterval(fetchLogs, 5000);
  </script>
</body>
</html>`
