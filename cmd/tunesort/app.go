package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/lwmacct/251220-go-pkg-tunesort/pkg/actor"
	"github.com/lwmacct/251220-go-pkg-tunesort/pkg/config"
	"github.com/lwmacct/251220-go-pkg-tunesort/pkg/library"
	tsprom "github.com/lwmacct/251220-go-pkg-tunesort/pkg/prometheus"
)

const shutdownTimeout = 5 * time.Second

// app 一次命令执行的运行时
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	sys       *actor.System
	tags      *actor.Ref
	files     *actor.Ref
	organizer *actor.Ref
	registry  *prometheus.Registry
}

// flagOverrides 把命令行参数映射到配置键
var flagOverrides = map[string]string{
	"log-level":    "log.level",
	"log-format":   "log.format",
	"metrics-addr": "metrics.addr",
	"root":         "library.root",
	"pattern":      "library.pattern",
	"copy":         "library.copy",
	"debounce":     "watch.debounce",
	"extensions":   "library.extensions",
}

// loadConfig 读取配置文件并应用命令行覆盖
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	overrides := make(map[string]any)
	for flag, key := range flagOverrides {
		if !cmd.IsSet(flag) {
			continue
		}
		overrides[key] = cmd.Value(flag)
	}
	if cmd.IsSet("metrics-addr") {
		overrides["metrics.enabled"] = true
	}
	return config.Load(cmd.String("config"), overrides)
}

func newLogger(cfg *config.Config) *slog.Logger {
	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if strings.EqualFold(cfg.Log.Format, "json") {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(h)
}

// newApp 创建 Actor 系统和整理流程需要的 Actor
func newApp(cmd *cli.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: newLogger(cfg)}
	slog.SetDefault(a.logger)

	sysCfg := actor.DefaultSystemConfig()
	sysCfg.PoisonPolicy = cfg.PoisonPolicy()
	sysCfg.Logger = a.logger
	if cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		a.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		sysCfg.Metrics = tsprom.NewActorMetrics(a.registry)
	}
	a.sys = actor.NewSystemWithConfig(cfg.System.Name, sysCfg)

	if root := cfg.Library.Root; root != "" {
		if err := os.MkdirAll(root, 0o755); err != nil {
			a.close()
			return nil, fmt.Errorf("failed to create library root: %w", err)
		}
	}

	if a.tags, err = a.sys.Spawn(library.NewTagActor(), "tags"); err != nil {
		a.close()
		return nil, err
	}
	a.files, err = a.sys.Spawn(&library.FileManagerActor{
		Root:    cfg.Library.Root,
		Pattern: cfg.Library.Pattern,
	}, "files")
	if err != nil {
		a.close()
		return nil, err
	}

	organizer := library.NewOrganizerActor(a.tags, a.files)
	organizer.Copy = cfg.Library.Copy
	if a.organizer, err = a.sys.Spawn(organizer, "organizer"); err != nil {
		a.close()
		return nil, err
	}

	return a, nil
}

// close 协作式关闭 Actor 系统
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.sys.Shutdown(ctx); err != nil {
		a.logger.Warn("shutdown incomplete", "error", err)
	}
}

// run 执行 fn，启用指标时同时运行 /metrics 服务
// fn 返回后服务随之关闭
func (a *app) run(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	if a.registry != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", tsprom.Handler(a.registry))
		srv := &http.Server{Addr: a.cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		g.Go(func() error {
			a.logger.Info("metrics server listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer scancel()
			return srv.Shutdown(sctx)
		})
	}

	g.Go(func() error {
		defer cancel()
		return fn(ctx)
	})

	return g.Wait()
}
