package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"security-assistant/mail"
)

type classifyOutput struct {
	Subject   string    `json:"subject"`
	IsSpam    bool      `json:"is_spam"`
	Matches   []string  `json:"matches"`
	Badge     string    `json:"badge"`
	Timestamp time.Time `json:"timestamp"`
}

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <subject...>",
		Short: "Classify a message subject as spam or safe",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			lexicon, err := newLexicon(cfg)
			if err != nil {
				return err
			}

			subject := strings.Join(args, " ")
			m := mail.Match(subject, lexicon)
			return printJSON(cmd.OutOrStdout(), classifyOutput{
				Subject:   subject,
				IsSpam:    m.IsSpam(),
				Matches:   m.Keywords,
				Badge:     mail.Badge(m.IsSpam()),
				Timestamp: time.Now().UTC(),
			})
		},
	}
}
