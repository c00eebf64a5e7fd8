package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/disclosure-cli/internal/audit"
)

var auditListLimit int

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect saved audit sessions",
}

var auditShowCmd = &cobra.Command{
	Use:   "show <log-file>",
	Short: "Print a saved audit log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := audit.LoadLog(args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	},
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed audit sessions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ix, err := audit.OpenIndex(cfg.Audit.IndexDSN)
		if err != nil {
			return err
		}
		defer ix.Close()

		if err := ix.Migrate(cmd.Context()); err != nil {
			return err
		}

		sessions, err := ix.ListSessions(cmd.Context(), auditListLimit)
		if err != nil {
			return err
		}

		if len(sessions) == 0 {
			fmt.Println("no sessions recorded")
			return nil
		}

		for _, s := range sessions {
			fmt.Printf("%s  %s  entries=%d generations=%d tickers=%s  %s\n",
				s.SavedAt.Format("2006-01-02 15:04:05"),
				s.SessionID,
				s.TotalEntries,
				s.Generations,
				strings.Join(s.Tickers, ","),
				s.LogFile,
			)
		}
		return nil
	},
}

func init() {
	auditListCmd.Flags().IntVar(&auditListLimit, "limit", 50, "max sessions to list")
	auditCmd.AddCommand(auditShowCmd, auditListCmd)
	rootCmd.AddCommand(auditCmd)
}
