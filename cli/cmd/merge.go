package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <blob-file>...",
	Short: "Merge config blobs received from other devices into the stored config",
	Long: `Reads one or more encrypted config blobs (as pulled from the swarm by
the surrounding application) and merges them into the local state. Blobs
that fail authentication are skipped; merging the same blob twice, or a
set of blobs in any order, converges to the same state.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		blobs := make([][]byte, 0, len(args))
		for _, path := range args {
			blob, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read blob %s: %w", path, err)
			}
			blobs = append(blobs, blob)
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

		accepted, err := convos.Merge(blobs)
		if err != nil {
			return err
		}
		if err := saveConversations(store, convos); err != nil {
			return err
		}
		fmt.Printf("merged %d of %d blob(s); %d conversation(s) total\n",
			accepted, len(blobs), convos.Size())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}
