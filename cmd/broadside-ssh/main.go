// Command broadside-ssh serves one shared campaign to any number of SSH
// spectators, each drawn at the size of their own terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Garsondee/Broadside/internal/app"
	"github.com/Garsondee/Broadside/internal/game"
	"github.com/Garsondee/Broadside/internal/minimap"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const frameInterval = 100 * time.Millisecond

// hub owns the campaign. The simulation goroutine takes the write lock for
// each tick; sessions render under the read lock.
type hub struct {
	mu  sync.RWMutex
	c   *game.Campaign
	log zerolog.Logger

	viewers int
}

func newHub(c *game.Campaign, log zerolog.Logger) *hub {
	return &hub{c: c, log: log}
}

// run steps the campaign at the game's tick rate until ctx is done. A lost
// squadron stops the clock but keeps the chart up.
func (h *hub) run(ctx context.Context) {
	ticker := time.NewTicker(time.Second / game.TicksPerSecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.mu.Lock()
			if !h.c.Over() {
				h.c.Step()
			}
			h.mu.Unlock()
		}
	}
}

// frame renders the sea for a terminal of the given size.
func (h *hub) frame(size minimap.TermSizeFunc) *minimap.Frame {
	cols, rows := minimap.FitSize(size)
	h.mu.RLock()
	defer h.mu.RUnlock()
	return minimap.Render(h.c.Ctx, h.c.Env, cols, rows)
}

func (h *hub) join() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.viewers++
	return h.viewers
}

func (h *hub) leave() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.viewers--
}

// spectate streams frames to w until the viewer presses q or Ctrl-C, input
// closes, or ctx is done.
func (h *hub) spectate(ctx context.Context, in io.Reader, w io.Writer, size minimap.TermSizeFunc) error {
	quit := make(chan struct{})
	go func() {
		defer close(quit)
		buf := make([]byte, 1)
		for {
			if _, err := in.Read(buf); err != nil {
				return
			}
			if buf[0] == 'q' || buf[0] == 3 {
				return
			}
		}
	}()

	minimap.ClearScreen(w)
	defer minimap.ShowCursor(w)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-quit:
			return nil
		case <-ticker.C:
			if err := h.frame(size).WriteANSI(w); err != nil {
				return err
			}
		}
	}
}

func (h *hub) middleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}
		n := h.join()
		defer h.leave()
		h.log.Info().Str("user", sess.User()).Str("term", pty.Term).Int("viewers", n).
			Int("width", pty.Window.Width).Int("height", pty.Window.Height).Msg("spectator joined")

		sizes := newSizeTracker(pty.Window.Width, pty.Window.Height)
		go func() {
			for win := range winCh {
				sizes.update(win.Width, win.Height)
			}
		}()

		if err := h.spectate(sess.Context(), sess, sess, sizes.getSize); err != nil {
			h.log.Warn().Err(err).Str("user", sess.User()).Msg("session write failed")
		}
		h.log.Info().Str("user", sess.User()).Msg("spectator left")
		next(sess)
	}
}

// sizeTracker follows the window size reported by the client.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

var _ minimap.TermSizeFunc = (*sizeTracker)(nil).getSize

func main() {
	configDir := flag.String("config", ".", "directory holding broadside.cfg.json")
	flag.Parse()

	rt, err := app.Bootstrap(app.Options{ConfigDir: *configDir, Name: "ssh"})
	if err != nil {
		log.Fatal(err)
	}
	logger := rt.Log.Logger
	c := game.NewCampaign(rt.CampaignOptions())
	rt.Start(c)

	h := newHub(c, logger.With().Str("component", "ssh").Logger())
	simCtx, stopSim := context.WithCancel(context.Background())
	go h.run(simCtx)

	host := viper.GetString("ssh.host")
	port := viper.GetString("ssh.port")
	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			h.middleware,
			activeterm.Middleware(),
			logging.Middleware(),
		),
	}
	if keyPath := viper.GetString("ssh.hostKeyPath"); keyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(keyPath))
	}
	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create server")
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info().Str("host", host).Str("port", port).Msg("starting SSH server")
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Error().Err(err).Msg("server error")
			done <- syscall.SIGTERM
		}
	}()

	<-done
	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
	stopSim()

	h.mu.Lock()
	err = rt.Finish(c)
	h.mu.Unlock()
	if err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}
