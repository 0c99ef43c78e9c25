package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"reasoning/config"
	"reasoning/llm"
	"reasoning/metrics"
	"reasoning/policy"
	"reasoning/report"
	"reasoning/searcher"
	"reasoning/verifier"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Steps drawn by the offline policy of a dry run.
var cannedSteps = []string{
	"### Step: Restate the question in simpler terms",
	"### Step: Break the problem into smaller parts",
	"### Step: Check the intermediate result",
	"### Final Answer\nThe answer follows from the steps above.",
}

type searchFlags struct {
	iterations  int
	maxDepth    int
	maxChildren int
	exploration float64
	dryRun      bool
	seed        uint64
	watch       bool
}

func searchCmd() *cobra.Command {
	flags := &searchFlags{}
	cmd := &cobra.Command{
		Use:   "search [question]",
		Short: "Search for the best reasoning trace answering a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyFlags(cmd, flags, &cfg.Search)
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runSearch(ctx, cmd.OutOrStdout(), strings.Join(args, " "), cfg, flags)
		},
	}

	cmd.Flags().IntVarP(&flags.iterations, "iterations", "n", 0, "search iterations (config when 0)")
	cmd.Flags().IntVar(&flags.maxDepth, "max-depth", 0, "depth cap (iterations/8 when 0)")
	cmd.Flags().IntVar(&flags.maxChildren, "max-children", 0, "children per node (3 when 0)")
	cmd.Flags().Float64Var(&flags.exploration, "exploration", 0, "UCB1 exploration constant (sqrt 2 when 0)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "use canned steps and a constant score instead of models")
	cmd.Flags().Uint64Var(&flags.seed, "seed", 1, "seed of the dry run policy")
	cmd.Flags().BoolVar(&flags.watch, "watch", false, "print the tree after every scored trace")

	return cmd
}

// applyFlags overrides the search section with the flags set on the command line.
func applyFlags(cmd *cobra.Command, flags *searchFlags, c *config.SearchConfig) {
	if cmd.Flags().Changed("iterations") {
		c.Iterations = flags.iterations
	}
	if cmd.Flags().Changed("max-depth") {
		c.MaxDepth = flags.maxDepth
	}
	if cmd.Flags().Changed("max-children") {
		c.MaxChildren = flags.maxChildren
	}
	if cmd.Flags().Changed("exploration") {
		c.Exploration = flags.exploration
	}
}

func runSearch(ctx context.Context, out io.Writer, question string, c *config.Config, flags *searchFlags) error {
	p, v := newModels(c, flags)

	collector := metrics.NewCollector()
	if c.Output.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		collector = metrics.NewPrometheusCollector(reg)
		shutdown := serveMetrics(c.Output.MetricsAddr, reg)
		defer shutdown()
	}

	options := searchOptions(c.Search)
	options = append(options, searcher.WithMetrics(collector))
	if flags.watch {
		options = append(options, searcher.WithObserver(watchTree(out)))
	}

	m := searcher.NewMCTS(p, v, c.Search.Iterations, options...)
	start := time.Now()
	tree, searchErr := m.Search(ctx, question)

	fmt.Fprintln(out, "Search Tree:")
	if err := report.Render(out, tree); err != nil {
		return err
	}
	fmt.Fprintln(out, "\nBest Trace:")
	if err := report.BestTrace(out, tree); err != nil {
		return err
	}

	if c.Output.Dir != "" {
		if err := writeRecords(c.Output.Dir, tree, m.Metric(), start); err != nil {
			return errors.Join(searchErr, err)
		}
	}
	return searchErr
}

// watchTree prints the upper levels of the tree after every scored trace.
func watchTree(out io.Writer) func(tree *searcher.Tree, event searcher.IterationEvent) {
	return func(tree *searcher.Tree, event searcher.IterationEvent) {
		if !event.Evaluated {
			return
		}
		fmt.Fprintf(out, "\nIteration %d, score %.2f\n", event.Iteration, event.Score)
		if err := report.Render(out, tree, report.WithMaxDepth(2)); err != nil {
			log.Warn().Err(err).Int("iteration", event.Iteration).Msg("failed to print search tree")
		}
	}
}

func newModels(c *config.Config, flags *searchFlags) (searcher.Policy, searcher.Verifier) {
	if flags.dryRun {
		log.Info().Msg("dry run, using canned steps and a constant score")
		return policy.NewCanned(flags.seed, cannedSteps...), verifier.Constant(5)
	}

	policyCfg := c.Policy.ProviderConfig()
	p := policy.NewLLM(llm.NewOpenAIProvider(policyCfg),
		policy.WithModel(policyCfg.Model),
		policy.WithTemperature(policyCfg.Temperature),
		policy.WithMaxTokens(policyCfg.MaxTokens))

	verifierCfg := c.Verifier.ProviderConfig()
	v := verifier.NewJudge(llm.NewOpenAIProvider(verifierCfg),
		verifier.WithModel(verifierCfg.Model),
		verifier.WithMaxTokens(verifierCfg.MaxTokens))

	return p, v
}

// searchOptions leaves zero values to the search defaults.
func searchOptions(c config.SearchConfig) []searcher.Option {
	options := []searcher.Option{searcher.WithContinueOnError(c.ContinueOnError)}
	if c.MaxDepth > 0 {
		options = append(options, searcher.WithMaxDepth(c.MaxDepth))
	}
	if c.MaxChildren > 0 {
		options = append(options, searcher.WithMaxChildren(c.MaxChildren))
	}
	if c.Exploration > 0 {
		options = append(options, searcher.WithExploration(c.Exploration))
	}
	return options
}

func serveMetrics(addr string, reg *prometheus.Registry) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		log.Info().Msgf("serving metrics on %s/metrics", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to stop metrics server")
		}
	}
}

func writeRecords(dir string, tree *searcher.Tree, metric metrics.SearchMetric, start time.Time) error {
	writer, err := metrics.NewWriter(dir, tree.RunID().String())
	if err != nil {
		return err
	}
	if err := writer.WriteNodeRecords(tree.NodeRecords()); err != nil {
		return err
	}
	err = writer.WriteSearchRecord(metrics.SearchRecord{
		RunID:        tree.RunID().String(),
		Question:     tree.Question(),
		StartTime:    start,
		TreeSize:     tree.Size(),
		SearchMetric: metric,
	})
	if err != nil {
		return err
	}

	log.Info().Msgf("wrote search records to %s", writer.Dir())
	return nil
}
