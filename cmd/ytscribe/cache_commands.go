package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"ytscribe/internal/language"
	"ytscribe/internal/transcriptcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the transcript cache",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheRemoveCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func (c *commandContext) withCacheStore(fn func(*transcriptcache.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := transcriptcache.Open(cfg.CachePath())
	if err != nil {
		return fmt.Errorf("open transcript cache: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached transcripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCacheStore(func(store *transcriptcache.Store) error {
				entries, err := store.List(cmd.Context())
				if err != nil {
					return fmt.Errorf("list cache: %w", err)
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "Cache is empty.")
					return nil
				}

				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					rows = append(rows, []string{
						entry.VideoID,
						language.DisplayName(entry.Lang),
						yesNo(entry.WithTimestamps),
						strconv.Itoa(entry.Chars),
						entry.CreatedAt.Local().Format(time.DateTime),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Video ID", "Language", "Timestamps", "Chars", "Cached"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
				fmt.Fprintf(out, "%d cached transcripts at %s\n", len(entries), store.Path())
				return nil
			})
		},
	}
}

func newCacheRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <video-id>",
		Short: "Remove all cached variants of one video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCacheStore(func(store *transcriptcache.Store) error {
				if err := store.Remove(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("remove cache entry: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed cached transcripts for %s\n", args[0])
				return nil
			})
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCacheStore(func(store *transcriptcache.Store) error {
				count, err := store.Count(cmd.Context())
				if err != nil {
					return fmt.Errorf("count cache: %w", err)
				}
				if err := store.Clear(cmd.Context()); err != nil {
					return fmt.Errorf("clear cache: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached transcripts\n", count)
				return nil
			})
		},
	}
}
