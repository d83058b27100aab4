package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/choicefsm"
	httpAdapter "github.com/aretw0/choicefsm/pkg/adapters/http"
	"github.com/aretw0/choicefsm/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/choicefsm/pkg/adapters/redis"
	"github.com/aretw0/choicefsm/pkg/domain"
	"github.com/aretw0/choicefsm/pkg/observability"
	"github.com/aretw0/choicefsm/pkg/persistence/middleware"
	"github.com/aretw0/choicefsm/pkg/ports"
	"github.com/aretw0/choicefsm/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve <file>",
	Short: "Serve machine sessions over HTTP",
	Long: `Starts an HTTP server where every session is an independent cursor over the
machine. Sessions live in memory unless --redis is given, in which case they
are stored in Redis and guarded by a distributed lock.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		redisAddr, _ := cmd.Flags().GetString("redis")
		ttl, _ := cmd.Flags().GetDuration("session-ttl")

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics := observability.NewMetrics(reg)
		hooks := domain.ChainHooks(metrics.Hooks(), observability.LogHooks(logger.With("component", "machine")))

		def, m, _, err := loadMachine(args[0], choicefsm.WithLifecycleHooks(hooks))
		if err != nil {
			return err
		}

		var (
			store ports.StateStore[string] = memory.NewStore[string]()
			opts  = []session.Option{session.WithLogger(logger)}
		)
		if redisAddr != "" {
			client := backend.NewClient(&backend.Options{Addr: redisAddr})
			defer client.Close()
			if err := client.Ping(cmd.Context()).Err(); err != nil {
				return err
			}
			store = redisAdapter.NewFromClient[string](client,
				redisAdapter.WithTTL(ttl),
				redisAdapter.WithPrefix(redisAdapter.DefaultPrefix+def.Name+":"),
			)
			opts = append(opts, session.WithLocker(redisAdapter.NewLocker(client, redisAdapter.DefaultPrefix+def.Name+":")))
		}

		historyLimit, _ := cmd.Flags().GetInt("history-limit")
		store = middleware.Chain(store,
			middleware.NewInstrumented[string](middleware.NewStoreMetrics(reg), logger),
			middleware.NewHistoryLimit[string](historyLimit),
		)

		mgr := session.NewManager(m, store, opts...)
		srv := &http.Server{
			Addr:              addr,
			Handler:           httpAdapter.NewHandler(mgr, httpAdapter.WithLogger(logger), httpAdapter.WithMetrics(reg)),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("serving machine", "name", def.Name, "addr", addr, "redis", redisAddr != "")
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				return srv.Close()
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	serveCmd.Flags().String("redis", "", "Redis address for session storage (memory when empty)")
	serveCmd.Flags().Duration("session-ttl", 0, "Expire idle Redis sessions after this long (0 keeps them)")
	serveCmd.Flags().Int("history-limit", 100, "Keep at most this many states in each session's history (0 keeps all)")
}
