package main

import (
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"ytscribe/internal/logging"
	"ytscribe/internal/proxy"
)

const (
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

func newProxiesCommand(ctx *commandContext) *cobra.Command {
	proxiesCmd := &cobra.Command{
		Use:   "proxies",
		Short: "Inspect and manage proxy configuration",
	}

	proxiesCmd.AddCommand(newProxiesListCommand(ctx))
	proxiesCmd.AddCommand(newProxiesTestCommand(ctx))
	proxiesCmd.AddCommand(newProxiesUseCommand(ctx))
	proxiesCmd.AddCommand(newProxiesClearCommand(ctx))

	return proxiesCmd
}

func newProxiesListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rotating pool endpoints and the pinned proxy",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			pool := proxy.LoadPool(cfg.Proxy.PoolPaths, logging.NewNop())
			if pool.Empty() {
				fmt.Fprintln(out, "No proxy pool configured.")
			} else {
				titler := cases.Title(language.English)
				rows := make([][]string, 0, len(pool.Endpoints))
				for i, ep := range pool.Endpoints {
					rows = append(rows, []string{
						strconv.Itoa(i + 1),
						ep.Host,
						strconv.Itoa(ep.Port),
						titler.String(ep.Country),
						titler.String(ep.City),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Host", "Port", "Country", "City"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignLeft},
				))
			}

			saved, err := proxy.LoadSaved(cfg.Proxy.SavedConfigPath)
			if err != nil {
				return fmt.Errorf("read pinned proxy: %w", err)
			}
			if saved.ActiveProxy != nil {
				fmt.Fprintf(out, "Pinned proxy: %s\n", saved.ActiveProxy.URL())
			} else {
				fmt.Fprintln(out, "Pinned proxy: none")
			}
			return nil
		},
	}
}

func newProxiesTestCommand(ctx *commandContext) *cobra.Command {
	var targetURL string

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Probe every pool endpoint and report reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(targetURL) == "" {
				targetURL = cfg.Proxy.HealthCheckURL
			}

			pool := proxy.LoadPool(cfg.Proxy.PoolPaths, logging.NewNop())
			if pool.Empty() {
				return fmt.Errorf("no proxy pool configured; place credentials at one of: %s", strings.Join(cfg.Proxy.PoolPaths, ", "))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Probing %d endpoints against %s\n", len(pool.Endpoints), targetURL)

			results, err := proxy.CheckPool(cmd.Context(), pool, targetURL)
			if err != nil {
				return fmt.Errorf("probe pool: %w", err)
			}

			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(results))
			healthy := 0
			for i, result := range results {
				status := "FAIL"
				latency := "-"
				detail := ""
				if result.OK() {
					healthy++
					status = "OK"
					latency = result.Latency.Round(time.Millisecond).String()
					if colorize {
						status = ansiGreen + status + ansiReset
					}
				} else {
					detail = result.Err.Error()
					if colorize {
						status = ansiRed + status + ansiReset
					}
				}
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					fmt.Sprintf("%s:%d", result.Endpoint.Host, result.Endpoint.Port),
					status,
					latency,
					detail,
				})
			}

			fmt.Fprintln(out, renderTable(
				[]string{"#", "Endpoint", "Status", "Latency", "Detail"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "%d/%d endpoints healthy\n", healthy, len(results))
			return nil
		},
	}

	cmd.Flags().StringVar(&targetURL, "target", "", "URL to probe through each proxy (default from config)")
	return cmd
}

func newProxiesUseCommand(ctx *commandContext) *cobra.Command {
	var proxyType string

	cmd := &cobra.Command{
		Use:   "use <host:port>",
		Short: "Pin a proxy for the saved-proxy strategy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			host, portText, err := net.SplitHostPort(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("parse proxy address: %w", err)
			}
			port, err := strconv.Atoi(portText)
			if err != nil || port <= 0 || port > 65535 {
				return fmt.Errorf("parse proxy port: %q is not a valid port", portText)
			}

			saved, err := proxy.LoadSaved(cfg.Proxy.SavedConfigPath)
			if err != nil {
				return fmt.Errorf("read pinned proxy: %w", err)
			}
			// Demote the previously pinned proxy instead of discarding it.
			if previous := saved.ActiveProxy; previous != nil {
				saved.BackupProxies = append([]proxy.Pinned{*previous}, saved.BackupProxies...)
			}
			saved.ActiveProxy = &proxy.Pinned{
				Host:      host,
				Port:      port,
				ProxyType: strings.ToLower(strings.TrimSpace(proxyType)),
			}

			if err := proxy.SaveSaved(cfg.Proxy.SavedConfigPath, saved); err != nil {
				return fmt.Errorf("save pinned proxy: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pinned proxy %s\n", saved.ActiveProxy.URL())
			return nil
		},
	}

	cmd.Flags().StringVar(&proxyType, "type", "http", "Proxy scheme (http, https, socks5)")
	return cmd
}

func newProxiesClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Unpin the saved proxy",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			saved, err := proxy.LoadSaved(cfg.Proxy.SavedConfigPath)
			if err != nil {
				return fmt.Errorf("read pinned proxy: %w", err)
			}
			if saved.ActiveProxy == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No proxy pinned.")
				return nil
			}

			saved.ActiveProxy = nil
			if err := proxy.SaveSaved(cfg.Proxy.SavedConfigPath, saved); err != nil {
				return fmt.Errorf("save pinned proxy: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Pinned proxy cleared.")
			return nil
		},
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
