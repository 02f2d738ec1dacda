package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"security-assistant/feed"
	"security-assistant/logging"
	"security-assistant/monitor"
	"security-assistant/vetting"
)

func newCheckCmd() *cobra.Command {
	var (
		signals vetting.SecuritySignals
		random  bool
		refresh bool
	)
	cmd := &cobra.Command{
		Use:   "check <url>",
		Short: "Score a page URL and print the verdict",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())

			u, err := vetting.ParseURL(args[0])
			if err != nil {
				return err
			}

			blocklist := feed.NewStore(cfg.Blocklist.Domains...)
			if refresh {
				if err := feed.NewSyncer(blocklist, cfg.Blocklist, logger).SyncOnce(cmd.Context()); err != nil {
					logger.Warn("blocklist sync incomplete", "error", err)
				}
			}

			var provider vetting.SignalProvider
			if random {
				provider = vetting.NewRandomProvider(nil)
			}
			ev := monitor.NewEvaluator(provider, blocklist, logger, monitor.WithScorer(newScorer(cfg)))

			var v vetting.DomainVerdict
			if random {
				v, err = ev.Evaluate(cmd.Context(), u)
			} else {
				v, err = ev.EvaluateSignals(cmd.Context(), vetting.NormalizeDomain(u.Hostname()), signals)
			}
			if err != nil {
				return fmt.Errorf("check %s: %w", u.Hostname(), err)
			}
			return printJSON(cmd.OutOrStdout(), v)
		},
	}

	cmd.Flags().BoolVar(&signals.HasHTTPS, "https", false, "Page is served over HTTPS")
	cmd.Flags().BoolVar(&signals.HasHSTS, "hsts", false, "Strict-Transport-Security header present")
	cmd.Flags().BoolVar(&signals.HasCSP, "csp", false, "Content-Security-Policy header present")
	cmd.Flags().BoolVar(&signals.HasXFrameOptions, "xfo", false, "X-Frame-Options header present")
	cmd.Flags().BoolVar(&signals.HasXXSSProtection, "xxss", false, "X-XSS-Protection header present")
	cmd.Flags().BoolVar(&random, "random", false, "Generate signals with the demo random provider")
	cmd.Flags().BoolVar(&refresh, "sync", false, "Refresh the blocklist from configured feeds first")
	cmd.MarkFlagsMutuallyExclusive("random", "https")
	cmd.MarkFlagsMutuallyExclusive("random", "hsts")
	cmd.MarkFlagsMutuallyExclusive("random", "csp")
	cmd.MarkFlagsMutuallyExclusive("random", "xfo")
	cmd.MarkFlagsMutuallyExclusive("random", "xxss")
	return cmd
}
