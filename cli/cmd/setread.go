package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var setReadCmd = &cobra.Command{
	Use:   "set-read <session-id> <unix-ms>",
	Short: "Update the last-read timestamp of a one-to-one conversation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ts, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", args[1], err)
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		convos, err := loadConversations(store)
		if err != nil {
			return err
		}
		defer convos.Close()

		rec, err := convos.GetOrConstructOneToOne(args[0])
		if err != nil {
			return err
		}
		rec.LastRead = ts
		if err := convos.Set(rec); err != nil {
			return err
		}
		if err := saveConversations(store, convos); err != nil {
			return err
		}
		fmt.Printf("updated %s: last read %s\n", rec.SessionID, formatLastRead(rec.LastRead))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setReadCmd)
}
