// prompterd is a clipboard-driven prompt launcher daemon: prompt presets are
// executed in the background against an Ollama backend, with the result
// copied back to the clipboard and logged to history. The daemon is
// controlled over MCP (serve) or one-shot from the command line (run).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"prompterd/internal/clipboard"
	"prompterd/internal/completion"
	"prompterd/internal/executor"
	"prompterd/internal/message"
	"prompterd/internal/mcptools"
	"prompterd/internal/notify"
	"prompterd/internal/settings"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var verbose bool

	root := &cobra.Command{
		Use:           "prompterd",
		Short:         "Background prompt launcher for clipboard content",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "settings file (default: user config dir)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	newLogger := func() *slog.Logger {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}))
	}

	root.AddCommand(newServeCmd(&configPath, newLogger))
	root.AddCommand(newRunCmd(&configPath, newLogger))
	root.AddCommand(newModelsCmd(&configPath, newLogger))
	root.AddCommand(newPromptsCmd(&configPath))
	return root
}

// bootstrap loads settings and wires the registry with its collaborators.
func bootstrap(configPath string, log *slog.Logger) (settings.Settings, *executor.Registry, *completion.Ollama, error) {
	cfg, err := settings.Load(configPath)
	if err != nil {
		return cfg, nil, nil, err
	}
	client, err := completion.NewOllama(cfg.Models, log)
	if err != nil {
		return cfg, nil, nil, err
	}
	reg := executor.NewRegistry(executor.Config{
		Settings: cfg,
		Client:   client,
		Builder:  message.NewBuilder(cfg),
		Board:    clipboard.System{},
		Notifier: notify.LogNotifier{Log: log},
		Logger:   log,
	})
	return cfg, reg, client, nil
}

func newServeCmd(configPath *string, newLogger func() *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP control interface on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, reg, client, err := bootstrap(*configPath, log)
			if err != nil {
				return err
			}
			srv := mcptools.NewServer(reg, cfg, client, log)
			if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

func newRunCmd(configPath *string, newLogger func() *slog.Logger) *cobra.Command {
	var model, label string
	var input string
	var noCopy, stream bool
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "run <prompt-id>",
		Short: "Run one prompt preset and wait for its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, reg, _, err := bootstrap(*configPath, log)
			if err != nil {
				return err
			}

			if label == "" {
				if p, ok := cfg.PromptByID(args[0]); ok {
					label = p.Name
				}
			}
			item := &executor.Item{
				ID:            args[0],
				Label:         label,
				PromptID:      args[0],
				Model:         model,
				Stream:        stream,
				SkipClipboard: noCopy,
			}

			w := &waiter{done: make(chan executor.Result, 1), stream: stream}
			reg.SetListener(w)

			var inputPtr *string
			if cmd.Flags().Changed("input") {
				inputPtr = &input
			}
			id := reg.Submit(item, inputPtr)

			var timeoutC <-chan time.Time
			if timeout > 0 {
				timeoutC = time.After(timeout)
			}
			select {
			case res := <-w.done:
				if res.Cancelled {
					return errors.New("execution cancelled")
				}
				if !res.Success {
					return errors.New(res.Err)
				}
				if stream {
					fmt.Println()
				} else {
					fmt.Println(res.Content)
				}
				if res.Err != "" {
					log.Warn("degraded success", "detail", notify.Truncate(res.Err, 200))
				}
				return nil
			case <-timeoutC:
				reg.Stop(id, false)
				return fmt.Errorf("execution timed out after %s", timeout)
			case <-ctx.Done():
				reg.Stop(id, true)
				return ctx.Err()
			}
		},
	}
	cmd.Flags().StringVar(&model, "model", "", "model key override")
	cmd.Flags().StringVar(&label, "label", "", "display label")
	cmd.Flags().StringVar(&input, "input", "", "input text (default: clipboard)")
	cmd.Flags().BoolVar(&noCopy, "no-copy", false, "do not copy the output to the clipboard")
	cmd.Flags().BoolVar(&stream, "stream", false, "print output incrementally")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "abort after this duration (0 = no limit)")
	return cmd
}

// waiter bridges registry events to the one-shot command.
type waiter struct {
	executor.NopListener
	done   chan executor.Result
	stream bool
}

func (w *waiter) OnChunk(chunk, accumulated string, final bool, executionID string) {
	if w.stream && !final {
		fmt.Print(chunk)
	}
}

func (w *waiter) OnFinished(res executor.Result, label string, d time.Duration, id string) {
	w.done <- res
}

func (w *waiter) OnError(message, label string, d time.Duration, id string) {
	w.done <- executor.Result{ExecutionID: id, Err: message, Duration: d}
}

func (w *waiter) OnCancelled(label, id string) {
	w.done <- executor.Result{ExecutionID: id, Success: true, Cancelled: true}
}

func newModelsCmd(configPath *string, newLogger func() *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List configured model keys and backend availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			cfg, err := settings.Load(*configPath)
			if err != nil {
				return err
			}
			client, err := completion.NewOllama(cfg.Models, log)
			if err != nil {
				return err
			}
			for key, m := range cfg.Models {
				marker := " "
				if key == cfg.DefaultModel {
					marker = "*"
				}
				fmt.Printf("%s %-20s %s\n", marker, key, m.Model)
			}
			available, err := client.ListModels(cmd.Context())
			if err != nil {
				log.Warn("backend not reachable", "error", err)
				return nil
			}
			fmt.Println("\navailable on backend:")
			for _, m := range available {
				fmt.Printf("  %-30s %s %s\n", m.Name, m.ParameterSize, m.QuantizationLevel)
			}
			return nil
		},
	}
}

func newPromptsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "prompts",
		Short: "List configured prompt presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := settings.Load(*configPath)
			if err != nil {
				return err
			}
			for _, p := range cfg.Prompts {
				model := p.Model
				if model == "" {
					model = cfg.DefaultModel
				}
				fmt.Printf("%-24s %-20s %s\n", p.ID, model, p.Name)
			}
			return nil
		},
	}
}
