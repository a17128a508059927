package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	session "github.com/Aerilym/libsession-util"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "List all conversations in the stored config",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		fmt.Printf("%d conversation(s): %d one-to-one, %d open group, %d legacy closed group\n",
			convos.Size(), convos.SizeOneToOne(), convos.SizeOpenGroups(), convos.SizeLegacyClosedGroups())

		for it := convos.Begin(); !it.Done(); it.Next() {
			switch rec := it.Value().(type) {
			case session.OneToOne:
				fmt.Printf("  1-to-1  %s  last read %s%s\n",
					rec.SessionID, formatLastRead(rec.LastRead), formatExpiration(rec))
			case session.OpenGroup:
				fmt.Printf("  open    %s/%s (%s)  last read %s\n",
					rec.BaseURL(), rec.Room(), rec.PubkeyHex()[:8], formatLastRead(rec.LastRead))
			case session.LegacyClosedGroup:
				fmt.Printf("  legacy  %s  last read %s\n", rec.ID, formatLastRead(rec.LastRead))
			}
		}
		return nil
	},
}

func formatLastRead(ms int64) string {
	if ms == 0 {
		return "never"
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

func formatExpiration(rec session.OneToOne) string {
	switch rec.Expiration {
	case session.ExpirationAfterSend:
		return fmt.Sprintf("  disappearing: %s after send", rec.ExpirationTimer)
	case session.ExpirationAfterRead:
		return fmt.Sprintf("  disappearing: %s after read", rec.ExpirationTimer)
	}
	return ""
}

func init() {
	rootCmd.AddCommand(showCmd)
}
