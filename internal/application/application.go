package application

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"gorm.io/gorm"

	"kernelgate/internal/appserver"
	"kernelgate/internal/config"
	"kernelgate/internal/db"
	"kernelgate/internal/gateway"
	"kernelgate/internal/journal"
	"kernelgate/internal/lifecycle"
	"kernelgate/internal/logging"
	"kernelgate/internal/settings"
	"kernelgate/internal/supervisor"
)

const shutdownGrace = 3 * time.Second

// Application wires settings, journal, supervisor, gateway and front server
// together and runs them under the lifecycle manager.
type Application struct {
	addr string
	mgr  *lifecycle.Manager
	sup  *supervisor.Supervisor
	gdb  *gorm.DB
}

func Start(_ context.Context, cfg config.Config) (*Application, error) {
	log := logging.New(cfg.LogLevel, nil).With("component", "kernelgate")

	sets, err := settings.NewStore(cfg.ConfigDir).LoadOrInit()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	gdb, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}
	events, err := journal.NewStore(gdb)
	if err != nil {
		_ = db.Close(gdb)
		return nil, err
	}

	output := logging.NewKernelOutput(log)
	sup := supervisor.New(supervisor.Options{
		Settings: sets,
		Logger:   log.With("module", "supervisor"),
		Events:   events,
		Output:   output.Line,
	})
	gw := gateway.New(sup, sets.Proxy, log.With("module", "gateway"))
	front := appserver.NewServer(appserver.Deps{
		Kernel: sup,
		Proxy:  gw,
		Events: events,
		Logger: log.With("module", "appserver"),
	})

	addr := net.JoinHostPort(cfg.ListenHost, strconv.Itoa(cfg.ListenPort))
	httpServer := &http.Server{
		Addr:    addr,
		Handler: front.Handler(),
	}

	mgr := lifecycle.NewManager()
	mgr.AddRun("http-server", func(runCtx context.Context) error {
		go func() {
			<-runCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			_ = httpServer.Shutdown(shutdownCtx)
		}()
		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	mgr.AddShutdown("close-kernel", func(context.Context) error {
		sup.Close()
		return nil
	})
	mgr.AddShutdown("close-db", func(context.Context) error {
		return db.Close(gdb)
	})

	// Warm start: bring the kernel up ahead of the first request. Failures
	// only log; the next start request retries.
	sup.RequestStart(func(err error) {
		if err != nil {
			log.Warn("initial kernel start failed", "err", err)
			return
		}
		log.Info("kernel available", "port", sup.Port())
	})
	log.Info("gateway listening", "addr", addr)

	return &Application{addr: addr, mgr: mgr, sup: sup, gdb: gdb}, nil
}

func (a *Application) Addr() string {
	if a == nil {
		return ""
	}
	return a.addr
}

func (a *Application) Run(ctx context.Context) error {
	if a == nil || a.mgr == nil {
		return nil
	}
	return a.mgr.StartAndWait(ctx)
}
