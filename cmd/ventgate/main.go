// cmd/ventgate/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"ventgate/internal/command"
	"ventgate/internal/config"
	"ventgate/internal/poll"
	"ventgate/internal/profile"
	"ventgate/internal/publish"
	"ventgate/internal/registry"
	"ventgate/internal/scheduler"
	"ventgate/internal/state"
	"ventgate/internal/transport"
)

func main() {
	boot := zerolog.New(os.Stderr)
	if len(os.Args) < 2 {
		boot.Fatal().Msg("usage: ventgate <config.yaml>")
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(os.Args[1])
	if err != nil {
		boot.Fatal().Err(err).Msg("config load failed")
	}
	if err := config.Validate(cfg); err != nil {
		boot.Fatal().Err(err).Msg("config validation failed")
	}
	config.Normalize(cfg)

	log := newLogger(cfg.Log)

	prof, err := cfg.ResolveProfile()
	if err != nil {
		log.Fatal().Err(err).Msg("profile resolution failed")
	}

	cat, err := registry.Save()
	if err != nil {
		log.Fatal().Err(err).Msg("register catalogue build failed")
	}

	log.Info().Str("endpoint", cfg.Device.Endpoint).Str("profile", prof.Name).
		Int("registers", cat.Len()).Msg("starting ventgate")

	// --------------------
	// Transport + startup probe
	// --------------------

	conn, err := transport.New(transport.Config{
		Endpoint:     cfg.Device.Endpoint,
		UnitID:       cfg.Device.UnitID,
		Timeout:      time.Duration(cfg.Device.TimeoutMs) * time.Millisecond,
		ProbeTimeout: time.Duration(cfg.Device.ProbeTimeoutMs) * time.Millisecond,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("transport build failed")
	}

	// Fail fast: reachability probe plus one register read before the
	// daemon spins up. Separates "host unreachable" from "wrong unit".
	if err := validateDevice(conn, prof, cat); err != nil {
		log.Fatal().Err(err).Msg("device validation failed")
	}

	// --------------------
	// Pipeline
	// --------------------

	sched := scheduler.New(conn, prof, log)
	store := state.NewStore(registry.NominalFlow[cfg.Device.Model])

	var pub publish.Publisher = publish.Nop{}
	var mq *publish.MQTTPublisher
	if cfg.MQTT.Broker != "" {
		mq, err = publish.NewMQTT(publish.MQTTConfig{
			Broker:    cfg.MQTT.Broker,
			ClientID:  cfg.MQTT.ClientID,
			Username:  cfg.MQTT.Username,
			Password:  cfg.MQTT.Password,
			RootTopic: cfg.MQTT.RootTopic,
			QoS:       cfg.MQTT.QoS,
			Retained:  cfg.MQTT.Retained,
		}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("mqtt connect failed")
		}
		pub = mq
	}
	defer pub.Close()

	interval := time.Duration(cfg.Poll.IntervalMs) * time.Millisecond
	coord := poll.New(cat, sched, store, pub, prof, interval, log)
	exec := command.New(cat, sched, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Command-priority writes arrive over the broker's set/ subtree.
	if mq != nil {
		err := mq.SubscribeCommands(func(name, payload string) {
			if err := command.Dispatch(ctx, exec, name, payload); err != nil {
				log.Warn().Err(err).Str("command", name).Msg("command rejected")
			}
		})
		if err != nil {
			log.Fatal().Err(err).Msg("command subscription failed")
		}
	}

	// --------------------
	// Metrics endpoint (opt-in)
	// --------------------

	if cfg.Metrics.Listen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Info().Str("listen", cfg.Metrics.Listen).Msg("metrics endpoint up")
			if err := http.ListenAndServe(cfg.Metrics.Listen, mux); err != nil {
				log.Error().Err(err).Msg("metrics endpoint failed")
			}
		}()
	}

	// --------------------
	// Run until signaled
	// --------------------

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		sched.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		coord.Run(ctx)
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	wg.Wait()
}

// validateDevice opens one session and reads the operating mode register,
// then closes; the scheduler reopens its own session afterwards. Connect
// performs the TCP probe first, so an unreachable host surfaces as a
// ConnectivityError here.
func validateDevice(conn *transport.Transport, prof profile.Profile, cat *registry.Catalogue) error {
	if err := conn.Connect(prof.PostConnectDelay); err != nil {
		return err
	}
	defer conn.Close()

	d, ok := cat.Lookup(registry.RegModeStatus)
	if !ok {
		return fmt.Errorf("catalogue is missing the mode status register")
	}

	read := conn.ReadInput
	if d.Kind == registry.HoldingRegister || prof.InputStrategy == profile.ForceHolding {
		read = conn.ReadHolding
	}
	_, err := read(d.Address, d.Span())
	return err
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out = os.Stderr
	log := zerolog.New(out).Level(level).With().Timestamp().Logger()
	if cfg.Pretty {
		log = log.Output(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	}
	return log
}
