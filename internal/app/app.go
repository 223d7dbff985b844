package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ykvlv/freecron-bot/internal/calendar"
	"github.com/ykvlv/freecron-bot/internal/config"
	"github.com/ykvlv/freecron-bot/internal/directory"
	"github.com/ykvlv/freecron-bot/internal/fanout"
	"github.com/ykvlv/freecron-bot/internal/scheduler"
	"github.com/ykvlv/freecron-bot/internal/service"
	"github.com/ykvlv/freecron-bot/internal/state"
	"github.com/ykvlv/freecron-bot/internal/store"
	"github.com/ykvlv/freecron-bot/internal/telegram"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
	persist store.Persistence
	router  *telegram.Router
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, bot: bot, httpSrv: srv}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting freecron-bot",
		zap.String("bot", a.bot.Self.UserName),
		zap.String("store", a.cfg.StoreDriver),
		zap.String("calendar", a.cfg.CalendarDriver),
		zap.String("http", a.cfg.HTTPAddr),
	)

	persist, err := store.Open(ctx, a.cfg.StoreDriver, a.cfg.DBPath, a.cfg.DataPath)
	if err != nil {
		a.log.Error("open store failed", zap.Error(err))
		return err
	}
	a.persist = persist
	defer func() { _ = a.persist.Close() }()

	st, err := state.Open(ctx, persist, a.log.Named("state"))
	if err != nil {
		a.log.Error("load state failed", zap.Error(err))
		return err
	}
	a.log.Info("store ready", zap.Int("profiles", len(st.Profiles())))

	dir, err := directory.Open(a.cfg.DirectoryPath, a.log.Named("directory"))
	if err != nil {
		a.log.Error("open identity directory failed", zap.Error(err))
		return err
	}

	cal, err := calendar.Open(ctx, calendar.Options{
		Driver:          a.cfg.CalendarDriver,
		ICSDir:          a.cfg.CalendarICSDir,
		CredentialsFile: a.cfg.GoogleCredentialsFile,
		CalendarID:      a.cfg.GoogleCalendarID,
		Breaker: calendar.BreakerConfig{
			ConsecutiveFailures: a.cfg.CalendarBreakerFailures,
			CallTimeout:         a.cfg.CalendarTimeout,
		},
	}, a.log.Named("calendar"))
	if err != nil {
		a.log.Error("open calendar failed", zap.Error(err))
		return err
	}

	var broadcast fanout.Broadcaster
	if a.cfg.AnnounceChatID != 0 {
		broadcast = telegram.NewChatBroadcaster(a.bot, a.cfg.AnnounceChatID)
	}
	engine := fanout.New(fanout.Config{
		NotifyTimeout: a.cfg.NotifyTimeout,
		RatePerSec:    a.cfg.NotifyRatePerSec,
		Mention:       telegram.Mention,
		Escape:        telegram.EscapeHTML,
	}, telegram.NewNotifier(a.bot), broadcast, cal, dir, a.log.Named("fanout"))

	svc := service.New(st, engine, a.log)
	sched, err := scheduler.New(svc, a.log.Named("scheduler"), a.cfg.ReconcileSchedule)
	if err != nil {
		return err
	}
	a.router = telegram.NewRouter(a.bot, a.log.Named("telegram"), svc, telegram.Options{
		IsAdmin:        a.cfg.IsAdmin,
		AnnounceChatID: a.cfg.AnnounceChatID,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sched.Run(gctx) })
	g.Go(func() error {
		if err := dir.Watch(gctx); err != nil {
			a.log.Warn("identity directory watch stopped", zap.Error(err))
		}
		return nil
	})

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	for {
		select {
		case <-gctx.Done():
			a.log.Info("shutdown signal received")
			a.bot.StopReceivingUpdates()

			// Create a short-lived shutdown context and cancel it immediately after use.
			shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := a.httpSrv.Shutdown(shCtx)
			cancel()

			if err != nil {
				a.log.Warn("http server shutdown error", zap.Error(err))
			}
			stop()
			return g.Wait()

		case upd := <-updCh:
			a.router.HandleUpdate(ctx, upd)
		}
	}
}
