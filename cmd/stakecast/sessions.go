package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"stakecast/internal/config"
	"stakecast/internal/store/postgres"
)

func newSessionsCommand() *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage notification subscribers",
	}

	sessionsCmd.PersistentFlags().String("pg-dsn", "", "Postgres DSN for the session store")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all sessions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pg, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer pg.Close()

			sessions, err := pg.ListAll(cmd.Context())
			if err != nil {
				return err
			}

			if len(sessions) == 0 {
				fmt.Println("no sessions")
				return nil
			}
			for _, sess := range sessions {
				state := "paused"
				if sess.Subscribed {
					state = "active"
				}
				fmt.Printf("%-20s %-24s %-8s %s\n",
					sess.ChatID, sess.Name, state, sess.CreatedAt.Format(time.RFC3339))
			}
			return nil
		},
	}

	addCmd := &cobra.Command{
		Use:   "add <chat-id> <name>",
		Short: "Register a subscriber",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pg, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer pg.Close()

			if err := pg.Create(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("subscribed %s\n", args[0])
			return nil
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove <chat-id>",
		Short: "Remove a subscriber",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pg, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer pg.Close()

			if err := pg.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("removed %s\n", args[0])
			return nil
		},
	}

	sessionsCmd.AddCommand(listCmd, addCmd, removeCmd)
	return sessionsCmd
}

func openStore(cmd *cobra.Command) (*postgres.Store, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	return postgres.NewStore(cmd.Context(), cfg.PGDSN)
}
