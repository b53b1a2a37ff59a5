// rarbg-cli searches a RARBG mirror from the command line: it walks the
// paginated result table, resolves the site's threat-defence challenge
// when one is served, caches results per search on disk, and prints the
// aggregate as JSON or magnet links.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/litescript/ls-rarbg-cli/internal/captcha"
	"github.com/litescript/ls-rarbg-cli/internal/config"
	"github.com/litescript/ls-rarbg-cli/internal/cookies"
	"github.com/litescript/ls-rarbg-cli/internal/fetch"
	"github.com/litescript/ls-rarbg-cli/internal/history"
	"github.com/litescript/ls-rarbg-cli/internal/menu"
	"github.com/litescript/ls-rarbg-cli/internal/output"
	"github.com/litescript/ls-rarbg-cli/internal/qbit"
	"github.com/litescript/ls-rarbg-cli/internal/scrape"
	"github.com/litescript/ls-rarbg-cli/internal/search"
	"github.com/litescript/ls-rarbg-cli/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	var (
		category     string
		limit        int
		domain       string
		order        string
		descending   bool
		interactive  bool
		openTorrents bool
		magnetOnly   bool
		sortKey      string
		blockSize    string
		noCache      bool
		noCookie     bool
		useQbit      bool
		timeout      time.Duration
		verbosity    string
		configPath   string
		dataDir      string
	)

	cmd := &cobra.Command{
		Use:     "rarbg-cli <search terms>",
		Short:   "Search a RARBG mirror and print magnet links",
		Args:    cobra.MinimumNArgs(1),
		Version: version.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if dataDir != "" {
				cfg.Data.Dir = dataDir
			}
			if domain == "" {
				domain = cfg.Search.Domain
			}
			if blockSize == "" {
				blockSize = cfg.Search.Unit
			}
			if verbosity == "" {
				verbosity = cfg.Logging.Level
			}

			setupLogging(verbosity)

			// The zero value doubles as the flag default, so "no
			// limit" is only valid when the flag was never given.
			if cmd.Flags().Changed("limit") && limit < 1 {
				return fmt.Errorf("--limit must be at least 1")
			}

			opts := search.Options{
				Search:      strings.Join(args, " "),
				Category:    category,
				Domain:      domain,
				Order:       order,
				Descending:  descending,
				Limit:       limit,
				Sort:        sortKey,
				Unit:        blockSize,
				Interactive: interactive,
				NoCache:     noCache,
				NoCookie:    noCookie,
			}
			if err := opts.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			if err := config.EnsureDataDir(cfg); err != nil {
				return fmt.Errorf("creating data dir: %w", err)
			}

			return run(ctx, cfg, opts, runFlags{
				openTorrents: openTorrents,
				magnetOnly:   magnetOnly,
				useQbit:      useQbit,
			})
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Category to search in (movies|xxx|music|tvshows|software|games)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Stop fetching once this many records were scraped (0 = no limit)")
	cmd.Flags().StringVar(&domain, "domain", "", "Mirror domain to scrape")
	cmd.Flags().StringVarP(&order, "order", "r", "", "Server-side ordering (data|filename|leechers|seeders|size)")
	cmd.Flags().BoolVar(&descending, "descending", false, "Flip the server-side ordering (requires --order)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Pick records from a menu per result page")
	cmd.Flags().BoolVarP(&openTorrents, "open-torrents", "d", false, "Open the torrent file and magnet URLs in the browser")
	cmd.Flags().BoolVarP(&magnetOnly, "magnet", "m", false, "Print one magnet link per line instead of JSON")
	cmd.Flags().StringVarP(&sortKey, "sort", "s", "", "Sort the aggregate before printing (title|date|size|seeders|leechers)")
	cmd.Flags().StringVarP(&blockSize, "block-size", "B", "", "Fixed display unit for sizes (B..YB)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Ignore previously cached results for this search")
	cmd.Flags().BoolVar(&noCookie, "no-cookie", false, "Do not load or send stored cookies")
	cmd.Flags().BoolVar(&useQbit, "qbit", false, "Hand magnet links to the configured qBittorrent instance")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Abort the whole run after this duration (0 = no timeout)")
	cmd.Flags().StringVar(&verbosity, "verbosity", "", "Log level (trace|debug|info|warn|error)")
	cmd.Flags().StringVar(&configPath, "config", "", "Config file path")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Directory for cookies and cached results")

	cmd.AddCommand(versionCommand())

	return cmd
}

type runFlags struct {
	openTorrents bool
	magnetOnly   bool
	useQbit      bool
}

func run(ctx context.Context, cfg config.Config, opts search.Options, flags runFlags) error {
	cookieStore := cookies.NewStore(cfg.Data.Dir)
	histStore := history.NewStore(cfg.Data.Dir)

	fetcher := fetch.New(cookieStore, resolverChain(cfg), opts.NoCookie)

	// Pick up jar rewrites from a browser session running alongside.
	if watcher, err := cookies.NewWatcher(cookieStore, fetcher.SetJar); err != nil {
		log.Debug().Err(err).Msg("cookie watcher unavailable")
	} else {
		defer watcher.Stop()
	}

	var qb *qbit.Client
	if flags.useQbit {
		qb = qbit.NewClient(cfg.QBittorrent)
		if !qb.IsConnected(ctx) {
			log.Warn().Str("host", cfg.QBittorrent.Host).Msg("qBittorrent is not reachable")
		}
	}

	presenter := &output.Presenter{
		Out:        os.Stdout,
		Unit:       opts.Unit,
		MagnetOnly: flags.magnetOnly,
	}
	opener := output.NewOpener()

	var selector search.Selector
	if opts.Interactive {
		selector = menu.New(opts.Unit)
	}

	var sess *search.Session
	onSelect := func(ctx context.Context, record scrape.Record) error {
		resolved := sess.ResolveMagnets(ctx, []scrape.Record{record})
		sess.PersistResolved(resolved)
		if err := presenter.Render(resolved); err != nil {
			return err
		}
		return deliver(ctx, resolved, flags, qb, opener)
	}
	sess = search.New(opts, fetcher, histStore, selector, onSelect)

	records, runErr := sess.Run(ctx)
	if runErr != nil {
		if errors.Is(runErr, search.ErrQuit) {
			return nil
		}
		return runErr
	}

	if opts.Interactive {
		if shouldBulkOpen(flags.openTorrents, len(records), confirmBulkOpen) {
			opener.OpenAll(openURLs(records))
		}
		return nil
	}

	projected := output.Project(records, opts.Sort, opts.Limit)
	resolved := sess.ResolveMagnets(ctx, projected)
	sess.PersistResolved(resolved)

	if err := presenter.Render(resolved); err != nil {
		return err
	}
	return deliver(ctx, resolved, flags, qb, opener)
}

// deliver hands the presented records to their optional sinks: the
// qBittorrent daemon and the platform browser.
func deliver(ctx context.Context, records []scrape.Record, flags runFlags, qb *qbit.Client, opener *output.Opener) error {
	if qb != nil {
		for _, r := range records {
			if r.Magnet == "" {
				continue
			}
			if err := qb.AddMagnet(ctx, r.Magnet); err != nil {
				log.Error().Err(err).Str("title", r.Title).Msg("adding magnet to qBittorrent")
			}
		}
	}

	if flags.openTorrents {
		opener.OpenAll(openURLs(records))
	}
	return nil
}

// openURLs collects everything the bulk open hands to the browser:
// every record's torrent-file URL, then every resolved magnet.
func openURLs(records []scrape.Record) []string {
	urls := make([]string, 0, 2*len(records))
	for _, r := range records {
		urls = append(urls, r.TorrentURL)
	}
	for _, r := range records {
		if r.Magnet != "" {
			urls = append(urls, r.Magnet)
		}
	}
	return urls
}

// resolverChain builds the challenge resolvers: the configured solver
// script first, then the interactive paste prompt when stdin is a
// terminal.
func resolverChain(cfg config.Config) *captcha.Chain {
	var resolvers []captcha.Resolver
	if cfg.Solver.Script != "" {
		resolvers = append(resolvers, captcha.NewScriptResolver(cfg.Solver.Script))
	}
	if stdinIsTerminal() {
		resolvers = append(resolvers, captcha.NewManualResolver(os.Stdin, os.Stderr))
	}
	return captcha.NewChain(resolvers...)
}

func stdinIsTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// shouldBulkOpen decides whether an interactive session ends by opening
// everything it gathered: --open-torrents asked for that up front, any
// other session gets the prompt while its records are still at hand.
func shouldBulkOpen(openTorrents bool, n int, confirm func(int) bool) bool {
	if n == 0 {
		return false
	}
	if openTorrents {
		return true
	}
	return confirm(n)
}

func confirmBulkOpen(n int) bool {
	fmt.Fprintf(os.Stderr, "Open %d torrent files from this search in the browser? (Y/n) ", n)

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "" || answer == "y" || answer == "yes"
}

func setupLogging(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(parsed).
		With().
		Timestamp().
		Logger()
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version and check for updates",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("rarbg-cli v%s\n", version.Version)

			info := version.CheckForUpdate()
			switch {
			case info.Error != nil:
				log.Debug().Err(info.Error).Msg("update check failed")
			case info.UpdateAvailable:
				cmd.Printf("Update available: v%s\n", info.LatestVersion)
				cmd.Printf("Run: %s\n", version.InstallCommand())
			}
		},
	}
}
