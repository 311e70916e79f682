package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/minhyannv/magnusliber-go/pkg/chat"
	"github.com/minhyannv/magnusliber-go/pkg/config"
	loggerpkg "github.com/minhyannv/magnusliber-go/pkg/logger"
	"github.com/minhyannv/magnusliber-go/pkg/prompt"
	"github.com/minhyannv/magnusliber-go/pkg/render"
	"github.com/minhyannv/magnusliber-go/pkg/session"
)

// Version is set at build time.
var Version = "0.1.0"

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	opts := &cliOptions{}
	cmd := &cobra.Command{
		Use:   "magnusliber",
		Short: "Chat with Magnus Liber Imperatorum about Roman and Byzantine rulers",
		Long: `magnusliber sends each question to an Azure OpenAI chat deployment and
prints the answer, keeping a short rolling history for context.

Configuration is read from MagnusLiber.dev.json or MagnusLiber.json in the
search directories, then overridden by OPENAI_URL, OPENAI_KEY,
OPENAI_DEPLOYMENT, MAGNUS_HISTORY_LENGTH and MAGNUS_MAX_TOKENS.

Type "exit" or "quit" to leave.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.version {
				_, _ = fmt.Fprintf(out, "magnusliber %s\n", Version)
				return nil
			}
			return run(cmd.Context(), opts, in, out, errOut)
		},
	}
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	flags := cmd.Flags()
	flags.Var(&opts.configDirs, "config-dir", "Directory searched for configuration and text files. Repeat for multiple directories (default: . and ..)")
	flags.StringVar(&opts.messagesFile, "messages", prompt.DefaultMessagesFile, "UI strings file")
	flags.StringVar(&opts.systemMessageFile, "system-message", prompt.DefaultSystemMessageFile, "System message text file")
	flags.BoolVar(&opts.verbose, "verbose", false, "Verbose debug logging on stderr")
	flags.BoolVar(&opts.markdown, "markdown", false, "Render replies as markdown when writing to a terminal")
	flags.BoolVarP(&opts.version, "version", "v", false, "Show version and exit")
	return cmd
}

// run loads every startup input, then hands control to the session loop.
func run(ctx context.Context, opts *cliOptions, in io.Reader, out, errOut io.Writer) error {
	var logger loggerpkg.Logger = loggerpkg.NopLogger{}
	if opts.verbose {
		logger = loggerpkg.NewWriterLogger(errOut)
	}

	dirs := opts.searchDirs()
	cfg, err := config.Load(config.ChainLoader{
		File: config.FileLoader{Dirs: dirs},
		Env:  config.EnvLoader{DotEnvFiles: dotEnvFiles(dirs)},
	})
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	loggerpkg.Debug(opts.verbose, logger, "configuration loaded", cfg.Redacted())

	messagesPath, err := prompt.Locate(opts.messagesFile, dirs)
	if err != nil {
		return err
	}
	ui, err := prompt.LoadUIStrings(messagesPath)
	if err != nil {
		return err
	}

	systemPath, err := prompt.Locate(opts.systemMessageFile, dirs)
	if err != nil {
		return err
	}
	systemMessage, err := prompt.LoadSystemMessage(systemPath)
	if err != nil {
		return err
	}
	loggerpkg.Debug(opts.verbose, logger, "static texts loaded", map[string]any{
		"messages":       messagesPath,
		"system_message": systemPath,
		"system_bytes":   len(systemMessage),
	})

	renderer, err := render.For(opts.markdown, out)
	if err != nil {
		return err
	}

	client, err := chat.NewClient(chat.ClientConfig{
		Endpoint:   cfg.Endpoint,
		APIKey:     cfg.APIKey,
		Deployment: cfg.Deployment,
		APIVersion: cfg.APIVersion,
		Sampling:   chat.DefaultSampling(cfg.MaxTokens),
		Verbose:    opts.verbose,
	}, chat.WithLogger(logger))
	if err != nil {
		return err
	}

	sess, err := session.New(client, chat.NewHistory(cfg.HistoryLength), session.Options{
		SystemMessage: systemMessage,
		UI:            ui,
		Renderer:      renderer,
		Logger:        logger,
		Verbose:       opts.verbose,
	})
	if err != nil {
		return err
	}
	return sess.Run(ctx, in, out)
}
