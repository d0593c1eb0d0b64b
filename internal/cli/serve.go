package cli

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/soyeahso/mcp-openwebui/internal/config"
	"github.com/soyeahso/mcp-openwebui/internal/directory"
	"github.com/soyeahso/mcp-openwebui/internal/logging"
	"github.com/soyeahso/mcp-openwebui/internal/openwebui"
	"github.com/soyeahso/mcp-openwebui/internal/tools"
	"github.com/soyeahso/mcp-openwebui/internal/version"
)

func newServeCmd() *cobra.Command {
	var (
		transport string
		host      string
		port      int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}

			if transport != "" {
				cfg.Server.Transport = transport
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}

			// Rebuild the logger now that style and file are known.
			log = logging.New(logging.Options{
				Level: cfg.Logging.Level,
				Style: cfg.Logging.Style,
				File:  cfg.Logging.File,
			})

			log.Info().
				Str("url", cfg.OpenWebUI.URL).
				Str("apiKey", config.MaskKey(cfg.OpenWebUI.APIKey)).
				Strs("whitelist", cfg.Agents.Whitelist).
				Strs("blacklist", cfg.Agents.Blacklist).
				Int("cacheSeconds", cfg.Agents.CacheDurationSeconds).
				Msg("configuration loaded")
			if cfg.OpenWebUI.APIKey == "" {
				log.Warn().Msg("OPENWEBUI_API_KEY is not set, API calls will likely fail")
			}

			client := openwebui.NewClient(cfg.OpenWebUI.URL, cfg.OpenWebUI.APIKey)
			rules := directory.NewRules(cfg.Agents.Whitelist, cfg.Agents.Blacklist)
			cache := directory.New(client, cfg.Agents.CacheDuration(), rules, log)
			handlers := tools.NewHandlers(cache, client, log)

			s := server.NewMCPServer(
				"openwebui_agents",
				version.Version,
				server.WithToolCapabilities(true),
				server.WithRecovery(),
			)
			handlers.Register(s)

			return serve(cmd.Context(), s, cfg.Server)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "", "transport mode (stdio, sse, or httpstream)")
	cmd.Flags().StringVar(&host, "host", "", "bind host for network transports")
	cmd.Flags().IntVar(&port, "port", 0, "port for network transports")

	return cmd
}

// serve runs the MCP server on the selected transport until it exits or a
// shutdown signal arrives.
func serve(ctx context.Context, s *server.MCPServer, cfg config.ServerConfig) error {
	switch cfg.Transport {
	case "sse":
		addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
		sse := server.NewSSEServer(s)
		log.Info().Str("addr", addr).Msg("starting MCP server with SSE transport")
		return serveNetwork(ctx, addr, sse.Start, sse.Shutdown)

	case "httpstream":
		addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
		httpSrv := server.NewStreamableHTTPServer(s)
		log.Info().Str("addr", addr).Msg("starting MCP server with streamable HTTP transport")
		return serveNetwork(ctx, addr, httpSrv.Start, httpSrv.Shutdown)

	default:
		log.Info().Msg("starting MCP server with stdio transport")
		if err := server.ServeStdio(s); err != nil && !strings.Contains(err.Error(), "context canceled") {
			return err
		}
		return nil
	}
}

// serveNetwork starts a network transport and shuts it down gracefully on
// SIGINT/SIGTERM.
func serveNetwork(ctx context.Context, addr string, start func(string) error, shutdown func(context.Context) error) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- start(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		return shutdown(context.Background())
	}
}
