package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	session "github.com/Aerilym/libsession-util"
	"github.com/Aerilym/libsession-util/internal/mem"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create and persist a fresh, empty conversations config",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		exists, err := store.DumpExists(int16(session.NamespaceConversations))
		if err != nil {
			return err
		}
		if exists {
			return errors.New("a conversations dump already exists in this store")
		}

		seed, err := loadSeed()
		if err != nil {
			return err
		}
		defer mem.Wipe(seed).Release()
		auditor, err := newAuditor()
		if err != nil {
			return err
		}
		convos, err := session.NewConversationsWithOptions(seed, nil, session.Options{Auditor: auditor})
		if err != nil {
			return err
		}
		defer convos.Close()

		if err := saveConversations(store, convos); err != nil {
			return err
		}
		fmt.Printf("created empty conversations config in namespace %d\n", session.NamespaceConversations)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
}
