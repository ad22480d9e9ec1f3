package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/people-finder/internal/service"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions <id>",
	Short: "Inspect a stored lookup session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initApp(ctx, "lookup")
		if err != nil {
			return err
		}
		defer env.Close()

		sess, err := env.Service.GetSession(ctx, args[0])
		if eris.Is(err, service.ErrSessionNotFound) {
			return eris.Errorf("session %s not found", args[0])
		}
		if err != nil {
			return eris.Wrap(err, "get session")
		}

		out, err := json.MarshalIndent(sess, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal session")
		}
		fmt.Println(string(out))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}
