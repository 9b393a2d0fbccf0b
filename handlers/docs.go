package handlers

import "net/http"

const docsPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>EPG API</title>
<style>
body { font-family: sans-serif; max-width: 720px; margin: 2em auto; padding: 0 1em; }
code { background: #f0f0f0; padding: 2px 4px; border-radius: 3px; }
pre { background: #f0f0f0; padding: 1em; overflow-x: auto; }
</style>
</head>
<body>
<h1>EPG API</h1>
<p>Returns the program airing now and next on a channel.</p>
<h2>Usage</h2>
<pre>GET /api/epg?id=&lt;channel-id&gt;</pre>
<p>Example response:</p>
<pre>{
  "Channel": { "id": "ts114", "name": "Example TV", "icon": "https://..." },
  "Current": { "title": "...", "desc": "...", "start": "2024-01-08 10:00:00", "stop": "2024-01-08 11:00:00", "icon": null },
  "Upcoming": { "title": "...", "desc": "...", "start": "2024-01-08 11:00:00", "stop": "2024-01-08 12:00:00", "icon": null }
}</pre>
<p><code>Current</code> and <code>Upcoming</code> are <code>null</code> when nothing is airing or scheduled.
Unknown channels return HTTP 404 with an error body.</p>
</body>
</html>
`

// DocsHandler serves the API documentation page at the root path.
type DocsHandler struct{}

// NewDocsHandler creates a new documentation page handler.
func NewDocsHandler() *DocsHandler {
	return &DocsHandler{}
}

func (h *DocsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(docsPage))
}
