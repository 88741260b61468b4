package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-event-portal/apiclient"
	"github.com/jrsteele09/go-event-portal/auth"
	"github.com/jrsteele09/go-event-portal/events"
	"github.com/jrsteele09/go-event-portal/internal/config"
	"github.com/jrsteele09/go-event-portal/server"
	"github.com/jrsteele09/go-event-portal/token"
	"github.com/jrsteele09/go-event-portal/token/filerepo"
	"github.com/jrsteele09/go-event-portal/token/redisrepo"
	tokenrepofake "github.com/jrsteele09/go-event-portal/token/repofake"
	"github.com/jrsteele09/go-event-portal/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(c.GetEnv())
	displayAppname(c.GetAppName())

	ctx := context.Background()
	tokens, closeTokens, err := openTokenRepo(ctx, c)
	if err != nil {
		return err
	}
	defer closeTokens()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := apiclient.NewMetrics(registry)

	// The server is the final redirect target but needs the controller first
	var portal *server.Server
	api, err := apiclient.New(c.GetAPIBaseURL(), tokens,
		apiclient.WithHTTPClient(&http.Client{Timeout: c.GetAPITimeout()}),
		apiclient.WithLogger(log.Logger.With().Str("component", "apiclient").Logger()),
		apiclient.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}
	controller, err := auth.NewController(api,
		auth.WithLogger(log.Logger.With().Str("component", "session").Logger()),
		auth.WithNavigator(apiclient.NavigatorFunc(func(path string) {
			if portal != nil {
				portal.Redirect(path)
			}
		})),
	)
	if err != nil {
		return err
	}
	eventClient, err := events.NewClient(api)
	if err != nil {
		return err
	}
	adminClient, err := users.NewAdminClient(api)
	if err != nil {
		return err
	}

	portal, err = server.New(c, server.Deps{
		Controller: controller,
		Events:     eventClient,
		Admin:      adminClient,
		Metrics:    promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})
	if err != nil {
		return err
	}

	// Pages answer "Loading..." until the stored session has been checked
	go func() {
		if err := controller.Initialize(ctx); err != nil {
			log.Info().Err(err).Msg("Starting without a session")
		}
	}()

	httpServer := &http.Server{Addr: c.GetPort(), Handler: portal}
	go func() {
		if err := listenAndServe(httpServer); err != nil {
			log.Err(err).Msg("Listener stopped")
		}
	}()
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func openTokenRepo(ctx context.Context, c config.Config) (token.Repo, func(), error) {
	switch c.GetTokenStore() {
	case config.StoreBackendRedis:
		repo, err := redisrepo.Dial(ctx, c.GetRedisAddr(), c.GetRedisPrefix())
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { _ = repo.Close() }, nil
	case config.StoreBackendMemory:
		return tokenrepofake.NewFakeTokenRepo(), func() {}, nil
	default:
		repo, err := filerepo.New(c.GetDataFolder())
		if err != nil {
			return nil, nil, err
		}
		log.Debug().Str("path", repo.Path()).Msg("Token file")
		return repo, func() {}, nil
	}
}

func setupLogging(env string) {
	zerolog.TimeFieldFormat = time.RFC3339
	if env == "DEV" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
