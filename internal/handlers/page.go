package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// Page serves the dashboard HTML shell. The page polls the zone API and
// re-renders the cards client-side.
func (h *Handler) Page(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(dashboardPage)
}

const dashboardPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Temple Crowd Dashboard</title>
<style>
  body { font-family: sans-serif; background: #f5f5f5; margin: 0; padding: 2rem; }
  h1 { margin-top: 0; }
  .zones { display: flex; gap: 1rem; flex-wrap: wrap; }
  .zone { border-radius: 8px; padding: 1.5rem; min-width: 180px;
          box-shadow: 0 1px 3px rgba(0,0,0,0.2); }
  .zone h2 { margin: 0 0 0.5rem 0; }
  .count { font-size: 2.5rem; font-weight: bold; }
  .status { text-transform: uppercase; font-size: 0.8rem; letter-spacing: 0.1em; }
  .controls { margin: 1rem 0; }
  button { padding: 0.5rem 1rem; margin-right: 0.5rem; cursor: pointer; }
  .meta { color: #666; font-size: 0.85rem; margin-top: 1rem; }
  .warning { color: #b00; }
</style>
</head>
<body>
<h1>Temple Crowd Dashboard</h1>
<div class="controls">
  <button onclick="manualRefresh()">Refresh now</button>
  <button id="toggle" onclick="toggleAuto()">Auto-refresh: on</button>
</div>
<div class="zones" id="zones"></div>
<div class="meta" id="meta"></div>
<script>
let autoRefresh = true;

function render(data) {
  autoRefresh = data.auto_refresh;
  document.getElementById('toggle').textContent =
    'Auto-refresh: ' + (autoRefresh ? 'on' : 'off');
  document.getElementById('zones').innerHTML = data.zones.map(z =>
    '<div class="zone" style="background:' + z.color + '">' +
    '<h2>' + z.name + '</h2>' +
    '<div class="count">' + z.current_count + '</div>' +
    '<div class="status">' + z.status + '</div>' +
    '</div>').join('');
  let meta = 'Last refresh: ' + data.last_refresh;
  if (data.failure_count > 0) {
    meta += ' <span class="warning">(' + data.failure_count + ' consecutive failures)</span>';
  }
  if (!autoRefresh) {
    meta += ' <span class="warning">auto-refresh disabled</span>';
  }
  document.getElementById('meta').innerHTML = meta;
}

function poll() {
  fetch('/api/zones').then(r => r.json()).then(render).catch(() => {});
}

function manualRefresh() {
  fetch('/api/refresh', {method: 'POST'})
    .then(r => r.json()).then(d => render(d.zones)).catch(() => {});
}

function toggleAuto() {
  fetch('/api/autorefresh', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({enabled: !autoRefresh})
  }).then(poll).catch(() => {});
}

poll();
setInterval(poll, 2000);
</script>
</body>
</html>
`
