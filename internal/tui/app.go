package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"gamehub/internal/catalog"
	"gamehub/internal/router"
	"gamehub/internal/session"
	"gamehub/pkg/logging"
)

const frameBuffer = 256

// App runs one session in the terminal, with an in-memory history standing
// in for the browser's.
type App struct {
	program *tea.Program
	session *session.Session
	history *router.MemoryHistory
	outbox  *outbox
	frames  chan session.Frame
	stopped chan struct{}
	logger  *zap.Logger
}

func New(store *catalog.Store, fetcher session.DetailFetcher, cfg session.Config, logger *zap.Logger) *App {
	logger = logging.OrNop(logger)
	a := &App{
		history: router.NewMemoryHistory(cfg.InitialPath),
		outbox:  newOutbox(),
		frames:  make(chan session.Frame, frameBuffer),
		stopped: make(chan struct{}),
		logger:  logger,
	}
	a.session = session.New(store, a.history, fetcher, session.RendererFunc(a.render), cfg, logger)
	a.program = tea.NewProgram(NewModel(a.outbox, a.history), tea.WithAltScreen())
	return a
}

// render queues frames for the pump so the session loop does not wait on
// the bubbletea loop.
func (a *App) render(f session.Frame) {
	select {
	case a.frames <- f:
	case <-a.stopped:
	}
}

func (a *App) pump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case f := <-a.frames:
			a.program.Send(frameMsg(f))
		}
	}
}

// Run blocks until the user quits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() { _ = a.session.Run(ctx) }()
	go a.pump(ctx)
	go a.outbox.forward(ctx, a.session)
	go func() {
		<-ctx.Done()
		a.program.Quit()
	}()

	a.logger.Info("terminal session started", zap.String("session_id", a.session.ID))
	_, err := a.program.Run()
	close(a.stopped)
	cancel()
	<-a.session.Done()
	return err
}
