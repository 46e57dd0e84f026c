package server

const keepaliveSVG = `<svg xmlns='http://www.w3.org/2000/svg' width='400' height='120'><rect width='100%%' height='100%%' fill='#0b1220'/><text x='20' y='40' font-family='Segoe UI,Arial' font-size='20' fill='#fff'>Service Active</text><text x='20' y='74' font-family='Segoe UI,Arial' font-size='12' fill='#9aa8c3'>Uptime: %d</text></svg>`

const indexHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width,initial-scale=1">
  <title>%s</title>
  <meta name="description" content="A reliable transcription bot that converts voice, audio and video into text.">
  <meta property="og:title" content="%s">
  <meta property="og:description" content="Send voice messages, audio files or videos to get accurate transcriptions.">
  <style>
    body{font-family:Inter,Segoe UI,Arial,sans-serif;margin:0;background:#f6f8fb;color:#0f1724}
    header{background:#0b1220;color:#fff;padding:28px 24px}
    .container{max-width:900px;margin:28px auto;padding:0 16px}
    .hero{display:flex;gap:20px;align-items:center}
    .card{background:#fff;border-radius:8px;padding:18px;box-shadow:0 6px 18px rgba(15,23,36,0.06)}
    .commands{display:grid;grid-template-columns:repeat(auto-fit,minmax(220px,1fr));gap:12px;margin-top:12px}
    footer{margin:40px 0;text-align:center;color:#6b7280}
    .meta{font-size:13px;color:#7c879a}
    .badge{display:inline-block;padding:6px 10px;border-radius:999px;background:#e6f0ff;color:#0b4bff;font-weight:600}
    @media (max-width:600px){.hero{flex-direction:column;align-items:flex-start}}
  </style>
  <script>
    async function fetchStatus(){
      try{
        let res = await fetch('/status');
        let j = await res.json();
        document.getElementById('uptime').innerText = j.uptime_h;
        document.getElementById('status-badge').innerText = j.status;
      }catch(e){}
    }
    window.addEventListener('load', fetchStatus);
  </script>
</head>
<body>
  <header>
    <div class="container">
      <div style="display:flex;justify-content:space-between;align-items:center">
        <div>
          <h1 style="margin:0">%s</h1>
          <div class="meta">Fast, private, and accurate transcriptions</div>
        </div>
        <div style="text-align:right">
          <div class="badge" id="status-badge">Starting</div>
          <div class="meta" style="margin-top:6px">Uptime: <span id="uptime">--</span></div>
        </div>
      </div>
    </div>
  </header>
  <main class="container">
    <section class="hero">
      <div style="flex:1">
        <div class="card">
          <h2>About this bot</h2>
          <p>Send voice messages, audio files, or videos directly in Telegram to this bot. The bot transcribes speech to text using large models and returns results in-chat or as a downloadable text file.</p>
          <div class="commands">
            <div class="card">
              <strong>Start</strong>
              <div class="meta">/start</div>
              <div style="margin-top:8px">Open bot and choose language for transcription</div>
            </div>
            <div class="card">
              <strong>Mode</strong>
              <div class="meta">/mode</div>
              <div style="margin-top:8px">Choose how long transcriptions are returned (split messages or text file)</div>
            </div>
            <div class="card">
              <strong>Language</strong>
              <div class="meta">/lang</div>
              <div style="margin-top:8px">Change audio language detection or selection</div>
            </div>
          </div>
        </div>
        <div class="card" style="margin-top:12px">
          <h3>How to use</h3>
          <ol>
            <li>Open Telegram and message <strong>@%s</strong> or click the bot link.</li>
            <li>Send a voice message, audio file, or video (max %d MB)</li>
            <li>Choose language if needed. Wait for transcription.</li>
            <li>Use summarize buttons to get short or detailed summaries.</li>
          </ol>
        </div>
        <div class="card" style="margin-top:12px">
          <h3>Privacy</h3>
          <p>Audio files are processed temporarily for transcription. The bot does not publish user content. Files are removed after processing.</p>
        </div>
      </div>
      <aside style="width:280px">
        <div class="card">
          <h4>Contact &amp; Status</h4>
          <p class="meta">Owner chat id: %d</p>
          <p class="meta">Request timeout: %ds</p>
          <a href="https://t.me/%s" style="display:inline-block;margin-top:8px;text-decoration:none;padding:10px 12px;border-radius:8px;background:#0b1220;color:#fff">Open in Telegram</a>
        </div>
      </aside>
    </section>
    <section style="margin-top:18px">
      <div class="card">
        <h3>FAQ</h3>
        <p><strong>What file types?</strong> Voice notes, mp3, m4a, wav, ogg, and common video formats.</p>
        <p><strong>Max file size?</strong> %d MB. If larger, split the file before sending.</p>
      </div>
    </section>
  </main>
  <footer>
    <div class="container">
      <div class="meta">&copy; %d %s</div>
    </div>
  </footer>
</body>
</html>`
