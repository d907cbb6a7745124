package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/kronos/internal/profile"
	"github.com/hrygo/kronos/plugin/kronos"
	"github.com/hrygo/kronos/server"
	"github.com/hrygo/kronos/store"
	"github.com/hrygo/kronos/store/db"
)

const version = "0.1.0"

var (
	rootCmd = &cobra.Command{
		Use:   "kronos",
		Short: `Find and resolve dates, times and intervals in free text.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			setupLogger()
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the date API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}

	parseCmd = &cobra.Command{
		Use:   "parse [text...]",
		Short: "Print the date phrases found in text as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd.Context(), strings.Join(args, " "))
		},
	}
)

func newProfile() (*profile.Profile, error) {
	p := &profile.Profile{
		Mode:             viper.GetString("mode"),
		Addr:             viper.GetString("addr"),
		Port:             viper.GetInt("port"),
		Data:             viper.GetString("data"),
		Driver:           viper.GetString("driver"),
		DSN:              viper.GetString("dsn"),
		Version:          version,
		DefaultTimezone:  viper.GetString("timezone"),
		PreferFuture:     viper.GetBool("prefer-future"),
		IntervalToDate:   viper.GetBool("interval-to-date"),
		CacheSize:        viper.GetInt("cache-size"),
		CacheTTL:         viper.GetDuration("cache-ttl"),
		MatchTimeout:     viper.GetDuration("match-timeout"),
		RateLimit:        viper.GetFloat64("rate-limit"),
		RateBurst:        viper.GetInt("rate-burst"),
		BatchConcurrency: viper.GetInt("batch-concurrency"),
		PendingTTL:       viper.GetDuration("pending-ttl"),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func runServe(ctx context.Context) error {
	instanceProfile, err := newProfile()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dbDriver, err := db.NewDBDriver(instanceProfile)
	if err != nil {
		return errors.Wrap(err, "failed to create db driver")
	}
	storeInstance := store.New(dbDriver, instanceProfile)
	if err := storeInstance.Migrate(ctx); err != nil {
		_ = storeInstance.Close()
		return errors.Wrap(err, "failed to migrate")
	}

	s, err := server.NewServer(ctx, instanceProfile, storeInstance)
	if err != nil {
		_ = storeInstance.Close()
		return errors.Wrap(err, "failed to create server")
	}
	if err := s.Start(ctx); err != nil {
		_ = storeInstance.Close()
		return errors.Wrap(err, "failed to start server")
	}
	printGreetings(instanceProfile)

	<-ctx.Done()
	s.Shutdown(context.Background())
	return nil
}

func runParse(ctx context.Context, text string) error {
	svc, err := kronos.NewService(kronos.Config{
		DefaultTimezone: viper.GetString("timezone"),
		MatchTimeout:    viper.GetDuration("match-timeout"),
		CacheSize:       1,
	})
	if err != nil {
		return err
	}
	matches, err := svc.Parse(ctx, text, kronos.Options{
		PreferFuture:   viper.GetBool("prefer-future"),
		IntervalToDate: viper.GetBool("interval-to-date"),
	})
	if err != nil {
		return err
	}
	if matches == nil {
		matches = []kronos.Match{}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(matches)
}

func setupLogger() {
	level := slog.LevelInfo
	if viper.GetString("mode") == "dev" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func init() {
	viper.SetDefault("mode", "demo")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("port", 8081)
	viper.SetDefault("timezone", "UTC")

	rootCmd.PersistentFlags().String("mode", "demo", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("timezone", "UTC", "default timezone (IANA name or offset such as -07:00)")
	rootCmd.PersistentFlags().Bool("prefer-future", false, "resolve bare weekdays to the next occurrence")
	rootCmd.PersistentFlags().Bool("interval-to-date", false, "render intervals as their start date")
	rootCmd.PersistentFlags().Duration("match-timeout", 0, "per-rule match timeout")

	serveCmd.Flags().String("addr", "", "address of server")
	serveCmd.Flags().Int("port", 8081, "port of server")
	serveCmd.Flags().String("data", "", "data directory")
	serveCmd.Flags().String("driver", "sqlite", "database driver (sqlite or postgres)")
	serveCmd.Flags().String("dsn", "", "database source name")
	serveCmd.Flags().Int("cache-size", 0, "scan cache capacity")
	serveCmd.Flags().Duration("cache-ttl", 0, "scan cache entry lifetime")
	serveCmd.Flags().Float64("rate-limit", 0, "requests per second per client")
	serveCmd.Flags().Int("rate-burst", 0, "rate limit burst")
	serveCmd.Flags().Int("batch-concurrency", 0, "texts parsed concurrently per batch request")
	serveCmd.Flags().Duration("pending-ttl", 0, "lifetime of stored pending resolutions")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		panic(err)
	}

	viper.SetEnvPrefix("kronos")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(serveCmd, parseCmd)
}

func printGreetings(profile *profile.Profile) {
	fmt.Printf("kronos %s started successfully!\n", profile.Version)
	if profile.IsDev() {
		fmt.Fprintf(os.Stderr, "Development mode is enabled\n")
		if profile.DSN != "" {
			fmt.Fprintf(os.Stderr, "Database: %s\n", profile.DSN)
		}
	}
	if profile.Addr == "" {
		fmt.Printf("Listening on port %d\n", profile.Port)
	} else {
		fmt.Printf("Listening on %s:%d\n", profile.Addr, profile.Port)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
