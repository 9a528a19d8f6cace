package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PageHandler serves the single-page generator UI.
type PageHandler struct{}

// NewPageHandler creates a new page handler.
func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// Index serves GET /.
func (h *PageHandler) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexPage))
}

const indexPage = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Portrait</title>
    <style>
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: linear-gradient(135deg, #2c3e50 0%, #5d7290 100%);
            min-height: 100vh;
            padding: 2rem;
        }
        .container { max-width: 760px; margin: 0 auto; }
        .card {
            background: white;
            border-radius: 16px;
            padding: 2rem;
            box-shadow: 0 10px 40px rgba(0,0,0,0.2);
            margin-bottom: 1.5rem;
        }
        h1 { color: #333; margin-bottom: 0.5rem; font-size: 1.8rem; }
        .subtitle { color: #666; margin-bottom: 1.5rem; }
        .form-group { margin-bottom: 1rem; }
        label { display: block; margin-bottom: 0.5rem; color: #444; font-weight: 500; }
        textarea, select, input[type="text"] {
            width: 100%;
            padding: 0.75rem;
            border: 2px solid #e0e0e0;
            border-radius: 8px;
            font-size: 1rem;
        }
        textarea:focus, select:focus, input:focus { outline: none; border-color: #5d7290; }
        button {
            width: 100%;
            padding: 1rem;
            background: linear-gradient(135deg, #2c3e50 0%, #5d7290 100%);
            color: white;
            border: none;
            border-radius: 8px;
            font-size: 1.1rem;
            cursor: pointer;
        }
        button:disabled { opacity: 0.6; cursor: not-allowed; }
        .status { margin-top: 1rem; color: #555; }
        .error { color: #c0392b; }
        iframe { width: 100%; height: 640px; border: none; border-radius: 8px; background: #111; }
        .links a { margin-right: 1rem; color: #2c3e50; }
        pre { white-space: pre-wrap; font-size: 0.85rem; color: #333; margin-top: 1rem; }
    </style>
</head>
<body>
<div class="container">
    <div class="card">
        <h1>Portrait</h1>
        <p class="subtitle">Generations so far: <span id="total">-</span></p>
        <form id="form">
            <div class="form-group">
                <label for="prompt">Prompt</label>
                <textarea id="prompt" rows="3" maxlength="500" required></textarea>
            </div>
            <div class="form-group">
                <label for="mood">Mood</label>
                <select id="mood">
                    <option value="">From prompt</option>
                    <option value="melancholic">Melancholic</option>
                    <option value="hopeful">Hopeful</option>
                    <option value="dramatic">Dramatic</option>
                    <option value="serene">Serene</option>
                    <option value="joyful">Joyful</option>
                </select>
            </div>
            <div class="form-group">
                <label for="creator">Creator (optional)</label>
                <input type="text" id="creator" maxlength="100">
            </div>
            <button type="submit" id="submit">Generate</button>
        </form>
        <div class="status" id="status"></div>
    </div>
    <div class="card" id="result" hidden>
        <iframe id="preview" sandbox></iframe>
        <p class="links" style="margin-top:1rem">
            <a id="download" href="#">Download HTML</a>
            <a id="cert-text" href="#">Certificate</a>
            <a id="cert-json" href="#">Certificate (JSON)</a>
        </p>
        <pre id="certificate"></pre>
    </div>
</div>
<script>
    const $ = (id) => document.getElementById(id);

    async function refreshCounter() {
        try {
            const res = await fetch('/api/v1/counter');
            const data = await res.json();
            $('total').textContent = data.total;
        } catch (e) {}
    }

    $('form').addEventListener('submit', async (ev) => {
        ev.preventDefault();
        $('submit').disabled = true;
        $('status').className = 'status';
        $('status').textContent = 'Generating...';
        try {
            const res = await fetch('/api/v1/generate', {
                method: 'POST',
                headers: { 'Content-Type': 'application/json' },
                body: JSON.stringify({
                    prompt: $('prompt').value,
                    presetMood: $('mood').value,
                    creator: $('creator').value,
                }),
            });
            const data = await res.json();
            if (!res.ok) {
                $('status').className = 'status error';
                $('status').textContent = data.retry_after
                    ? data.error + ' (retry in ' + data.retry_after + 's)'
                    : data.error;
                return;
            }
            const n = data.generation_number;
            $('status').textContent = 'Generation #' + n + ' (' + data.mood + ')';
            $('preview').srcdoc = data.document;
            $('download').href = '/api/v1/generations/' + n + '/download';
            $('cert-text').href = '/api/v1/generations/' + n + '/certificate?format=text';
            $('cert-json').href = '/api/v1/generations/' + n + '/certificate?format=json';
            $('certificate').textContent = data.certificate;
            $('result').hidden = false;
            refreshCounter();
        } catch (e) {
            $('status').className = 'status error';
            $('status').textContent = 'Request failed: ' + e.message;
        } finally {
            $('submit').disabled = false;
        }
    });

    refreshCounter();
</script>
</body>
</html>`
