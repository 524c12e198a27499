package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/aura-cli/internal/oracle"
)

var adviseCmd = &cobra.Command{
	Use:   "advise <farm-id>",
	Short: "Ask the crop advisor about a farm",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("advise"); err != nil {
			return err
		}

		env, err := initFarmEnv(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		m, err := env.Service.FetchFarmData(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		question, _ := cmd.Flags().GetString("question")
		advice, err := env.Advisor.Advise(cmd.Context(), m, question)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\nQ: %s\n\n%s\n", advice.FarmID, advice.Model, advice.Question, advice.Answer)
		return err
	},
}

func init() {
	adviseCmd.Flags().String("question", oracle.DefaultQuestion, "question for the advisor")
	rootCmd.AddCommand(adviseCmd)
}
