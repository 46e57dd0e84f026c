package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// BotNameFunc returns the public username of the running bot. It is a
// function so the page can pick up the name after the bot has connected.
type BotNameFunc func() string

// Info carries the static values shown on the landing page.
type Info struct {
	BotName     BotNameFunc
	TokenSet    bool
	MaxUploadMB int
	TimeoutSecs int
	AdminChatID int64
}

type statusResponse struct {
	Status      string `json:"status"`
	UptimeS     int64  `json:"uptime_s"`
	UptimeH     string `json:"uptime_h"`
	BotTokenSet bool   `json:"bot_token_set"`
}

type Server struct {
	echo      *echo.Echo
	addr      string
	startedAt time.Time
	info      Info
}

func NewServer(addr string, info Info) *Server {
	if addr == "" {
		addr = ":8080"
	}
	if info.BotName == nil {
		info.BotName = func() string { return "" }
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:      e,
		addr:      addr,
		startedAt: time.Now(),
		info:      info,
	}

	e.GET("/", s.handleIndex)
	e.GET("/status", s.handleStatus)
	e.GET("/static/keepalive.svg", s.handleKeepalive)

	return s
}

func (s *Server) Start() error {
	return s.echo.Start(s.addr)
}

func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) uptime() time.Duration {
	return time.Since(s.startedAt)
}

func (s *Server) handleStatus(c echo.Context) error {
	up := s.uptime()
	return c.JSON(http.StatusOK, statusResponse{
		Status:      "ok",
		UptimeS:     int64(up.Seconds()),
		UptimeH:     formatUptime(up),
		BotTokenSet: s.info.TokenSet,
	})
}

func (s *Server) handleKeepalive(c echo.Context) error {
	svg := fmt.Sprintf(keepaliveSVG, int64(s.uptime().Seconds()))
	return c.Blob(http.StatusOK, "image/svg+xml", []byte(svg))
}

func (s *Server) handleIndex(c echo.Context) error {
	name := s.info.BotName()
	if name == "" {
		name = "MyBot"
	}
	title := name + " — Transcription Bot"
	html := fmt.Sprintf(indexHTML,
		title, title, name,
		name, s.info.MaxUploadMB,
		s.info.AdminChatID, s.info.TimeoutSecs, name,
		s.info.MaxUploadMB,
		time.Now().Year(), name,
	)
	return c.HTML(http.StatusOK, html)
}

// formatUptime renders a duration as "1d 2h 3m 4s".
func formatUptime(d time.Duration) string {
	secs := int64(d.Seconds())
	days := secs / 86400
	secs %= 86400
	hours := secs / 3600
	secs %= 3600
	mins := secs / 60
	secs %= 60
	return fmt.Sprintf("%dd %dh %dm %ds", days, hours, mins, secs)
}
