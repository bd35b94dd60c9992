// Command float-alarm watches a float switch, cuts power to the protected
// device when the level overflows and sends Pushover notifications.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/sweeney/float-alarm/internal/alarm"
	"github.com/sweeney/float-alarm/internal/config"
	"github.com/sweeney/float-alarm/internal/connectivity"
	"github.com/sweeney/float-alarm/internal/float"
	"github.com/sweeney/float-alarm/internal/gpio"
	"github.com/sweeney/float-alarm/internal/logger"
	"github.com/sweeney/float-alarm/internal/logic"
	"github.com/sweeney/float-alarm/internal/metrics"
	"github.com/sweeney/float-alarm/internal/monitor"
	"github.com/sweeney/float-alarm/internal/mqtt"
	"github.com/sweeney/float-alarm/internal/notify"
	"github.com/sweeney/float-alarm/internal/status"
	"github.com/sweeney/float-alarm/internal/web"
)

// options are the command-line flags.
type options struct {
	configPath string
	logLevel   string
	printState bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Errorf("fatal: %v", err)
		logger.Sync()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "float-alarm",
		Short: "Watch a float switch and cut power on overflow.",
		Long: `Polls the float switch once per tick. When the level overflows the power
relay is opened, the buzzer sounds on the alert cadence and a high-priority
Pushover notification is sent. Notifications that fail are retried every tick.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", config.DefaultFilename, "path to configuration file")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config file")
	cmd.Flags().BoolVar(&opts.printState, "print-state", false, "print the current float level and exit")

	return cmd
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	lvl, err := resolveLogLevel(opts.logLevel, cfg.LogLevel)
	if err != nil {
		return err
	}
	logger.SetLevel(lvl)
	defer logger.Sync()

	reader, err := gpio.NewRealReader(cfg.Pins.Chip, cfg.Pins.Float)
	if err != nil {
		return fmt.Errorf("init float input: %w", err)
	}
	defer reader.Close()

	if opts.printState {
		raw, err := reader.Read()
		if err != nil {
			return fmt.Errorf("read float input: %w", err)
		}
		fmt.Printf("float: %s\n", logic.LevelFromPin(raw))
		return nil
	}

	buzzer, err := gpio.NewRealOutput(cfg.Pins.Chip, cfg.Pins.Buzzer, 0)
	if err != nil {
		return fmt.Errorf("init buzzer: %w", err)
	}
	defer buzzer.Close()

	power, err := gpio.NewRealOutput(cfg.Pins.Chip, cfg.Pins.Power, 1)
	if err != nil {
		return fmt.Errorf("init power relay: %w", err)
	}
	defer power.Close()

	controller := alarm.New(buzzer, power, cfg.BeepDurationD())
	defer controller.Close()

	link := connectivity.NewManager(connectivity.NewNMRadio(cfg.WiFi.Interface),
		cfg.WiFi.SSID, cfg.WiFi.Passphrase, cfg.ReconnectInterval)
	if err := link.Activate(); err != nil {
		logger.Warnf("wifi activate failed: %v", err)
	}

	dispatcher := notify.New(notifyConfig(cfg), link)

	var (
		publisher  mqtt.Publisher = mqtt.NopPublisher{}
		mqttStatus mqtt.ConnectionStatus
	)
	if cfg.MQTT.Broker != "" {
		p := mqtt.NewRealPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID)
		publisher = p
		mqttStatus = p
	}
	defer publisher.Close()

	tracker := status.NewTracker(time.Now(), statusConfig(cfg))
	m := metrics.New()

	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker, m.Handler())
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorf("http server error: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
		logger.Infof("http status server listening on %s", cfg.HTTPAddr)
	}

	loop := monitor.New(monitor.Config{
		AlarmFrequency: cfg.AlarmFrequencyD(),
		NetFrequency:   cfg.NetFrequencyD(),
		RestartDelay:   cfg.RestartDelayD(),
		Heartbeat:      cfg.HeartbeatD(),
	}, monitor.Deps{
		Float:     float.NewMonitor(reader),
		Alarm:     controller,
		Link:      link,
		Sender:    dispatcher,
		Publisher: publisher,
		MQTT:      mqttStatus,
		Tracker:   tracker,
		Metrics:   m,
	}, time.Now)

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case s := <-sigCh:
			logger.Infof("received %v, shutting down", s)
			cancel(errors.New(signalName(s)))
		case <-ctx.Done():
		}
	}()

	ticker := time.NewTicker(cfg.TickD())
	defer ticker.Stop()

	logger.InfoKV("started",
		"device", cfg.Pushover.DeviceName,
		"tick", cfg.TickD(),
		"restart_delay", cfg.RestartDelayD(),
		"reconnect_interval", cfg.ReconnectInterval,
		"broker", cfg.MQTT.Broker)

	return loop.Run(ctx, ticker.C)
}

func resolveLogLevel(flag, configured string) (zapcore.Level, error) {
	name := configured
	if flag != "" {
		name = flag
	}
	lvl, ok := logger.ParseLevel(name)
	if !ok {
		return lvl, fmt.Errorf("unknown log level %q", name)
	}
	return lvl, nil
}

func notifyConfig(cfg *config.Config) notify.Config {
	return notify.Config{
		Host:       cfg.Pushover.Host,
		Port:       cfg.Pushover.Port,
		Path:       cfg.Pushover.Path,
		User:       cfg.Pushover.User,
		Token:      cfg.Pushover.Token,
		DeviceName: cfg.Pushover.DeviceName,
		Timeout:    notify.DefaultTimeout,
	}
}

func statusConfig(cfg *config.Config) status.Config {
	return status.Config{
		DeviceName:        cfg.Pushover.DeviceName,
		SSID:              cfg.WiFi.SSID,
		TickMs:            cfg.TickD().Milliseconds(),
		BeepMs:            cfg.BeepDurationD().Milliseconds(),
		AlarmFrequencyMs:  cfg.AlarmFrequencyD().Milliseconds(),
		NetFrequencyMs:    cfg.NetFrequencyD().Milliseconds(),
		RestartDelayMs:    cfg.RestartDelayD().Milliseconds(),
		ReconnectInterval: cfg.ReconnectInterval,
		HeartbeatMs:       cfg.HeartbeatD().Milliseconds(),
		Broker:            cfg.MQTT.Broker,
		HTTPAddr:          cfg.HTTPAddr,
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}
