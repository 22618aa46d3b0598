package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tiendify/tiendify/internal/auth"
	"github.com/tiendify/tiendify/internal/idp"
	"github.com/tiendify/tiendify/internal/server"
	"github.com/tiendify/tiendify/internal/service"
	"github.com/tiendify/tiendify/internal/telemetry"
)

const banner = `
 _____ _             _ _  __
|_   _(_)___ _ _  __| (_)/ _|_  _
  | | | / -_) ' \/ _' | |  _| || |
  |_| |_\___|_||_\__,_|_|_|  \_, |
                             |__/
`

func newServeCmd() *cobra.Command {
	var (
		port int
		host string
		dev  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Tiendify admin API server",
		Long:  "Start the HTTP server that exposes the storefront back-office API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(host, port, dev)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8000, "HTTP listen port")
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "HTTP listen host")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable development mode (verbose logging, CORS *)")

	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))

	return cmd
}

func runServe(host string, port int, dev bool) error {
	fmt.Print(banner)
	fmt.Println()

	// Set up logger
	logLevel := slog.LevelInfo
	if dev {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	ctx := context.Background()

	// 1. Open the shop database (SQLite by default, Postgres via config)
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	logger.Info("store opened", "driver", st.Driver())

	// 2. Session validation against the OpenID Connect provider
	issuer := viper.GetString("keycloak.url")
	realm := viper.GetString("keycloak.realm")
	if issuer == "" || realm == "" {
		return fmt.Errorf("keycloak.url and keycloak.realm must be configured (TIENDIFY_KEYCLOAK_URL, TIENDIFY_KEYCLOAK_REALM)")
	}
	sessions, err := auth.NewSessionValidator(ctx, issuer, realm)
	if err != nil {
		return fmt.Errorf("init session validator: %w", err)
	}
	logger.Info("session validator initialized", "issuer", issuer, "realm", realm)

	// 3. Access gate: sessions plus bcrypt-verified service secrets
	hasher := newHasher()
	adminSecret := viper.GetString("auth.admin_secret")
	if adminSecret == "" && dev {
		adminSecret = "tiendify-dev-secret-change-me"
		logger.Warn("auth.admin_secret not set, using development default")
	}
	gate, err := auth.NewGate(sessions, st, hasher, adminSecret)
	if err != nil {
		return fmt.Errorf("init access gate: %w", err)
	}

	// 4. Provider client for the login redirect and code exchange
	idpClient := idp.New(idp.Config{
		Issuer:       issuer,
		Realm:        realm,
		ClientID:     viper.GetString("keycloak.client_id"),
		ClientSecret: viper.GetString("keycloak.client_secret"),
	})

	// 5. Secret key issuance service
	keys := service.NewSecretKeys(st, hasher)

	// 6. Anonymous usage telemetry (opt-out via TIENDIFY_TELEMETRY=0)
	tracker := telemetry.New(ctx, st, func() telemetry.Properties {
		return gatherTelemetry(st)
	})
	tracker.Start()
	defer tracker.Shutdown()

	// 7. Build and start HTTP server
	srvCfg := server.DefaultConfig()
	srvCfg.Host = host
	srvCfg.Port = port
	srvCfg.Version = versionString()
	if origins := viper.GetStringSlice("server.cors_origins"); len(origins) > 0 {
		srvCfg.CORSOrigins = origins
	}
	if dev {
		srvCfg.CORSOrigins = []string{"*"}
	}
	if rate := viper.GetInt("server.auth_rate_per_min"); rate > 0 {
		srvCfg.AuthRatePerMin = rate
	}

	srv := server.New(srvCfg, st, gate, idpClient, keys, logger)

	fmt.Printf("→ Tiendify %s\n", versionString())
	fmt.Printf("→ Listening on http://%s:%d\n", host, port)
	fmt.Printf("→ OpenAPI:  http://%s:%d/openapi.json\n", host, port)
	fmt.Printf("→ Health:   http://%s:%d/health\n", host, port)
	fmt.Println()

	return srv.ListenAndServe()
}

// gatherTelemetry snapshots the aggregate counts reported each flush.
func gatherTelemetry(st countingStore) telemetry.Properties {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	products, _ := st.CountProducts(ctx)
	orders, _ := st.CountOrders(ctx)
	secretKeys, _ := st.CountSecretKeys(ctx)

	return telemetry.Properties{
		Version:    appVersion,
		GoVersion:  runtime.Version(),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		Products:   products,
		Orders:     orders,
		SecretKeys: secretKeys,
	}
}

// countingStore is the slice of the store the telemetry snapshot needs.
type countingStore interface {
	CountProducts(ctx context.Context) (int64, error)
	CountOrders(ctx context.Context) (int64, error)
	CountSecretKeys(ctx context.Context) (int64, error)
}
