// Package cmd implements the sessionconf command line tool: a local
// inspection and maintenance utility for encrypted conversation config
// dumps. It is a debugging aid for the surrounding application; the swarm
// transport itself is out of scope here.
package cmd

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	session "github.com/Aerilym/libsession-util"
	"github.com/Aerilym/libsession-util/audit"
	"github.com/Aerilym/libsession-util/internal/mem"
	"github.com/Aerilym/libsession-util/persist"
)

var (
	cfgFile   string
	storePath string
	storeType string
	seedFile  string
	auditLog  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sessionconf",
	Short: "Inspect and maintain encrypted conversation config dumps",
	Long: `sessionconf operates on locally persisted, end-to-end-encrypted
conversation config dumps. It can create a fresh config, show the
conversation list, update last-read timestamps, and merge blobs received
from other devices. The secret seed never leaves the local machine.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.sessionconf.yaml)")
	rootCmd.PersistentFlags().StringVar(&storePath, "store-path", "", "dump store directory or database file")
	rootCmd.PersistentFlags().StringVar(&storeType, "store-type", string(persist.StoreTypeFileSystem), "dump store backend: filesystem or bolt")
	rootCmd.PersistentFlags().StringVar(&seedFile, "seed-file", "", "file holding the 32-byte secret seed (raw or hex)")
	rootCmd.PersistentFlags().StringVar(&auditLog, "audit-log", "", "append audit events to this file")

	viper.BindPFlag("store_path", rootCmd.PersistentFlags().Lookup("store-path"))
	viper.BindPFlag("store_type", rootCmd.PersistentFlags().Lookup("store-type"))
	viper.BindPFlag("seed_file", rootCmd.PersistentFlags().Lookup("seed-file"))
	viper.BindPFlag("audit_log", rootCmd.PersistentFlags().Lookup("audit-log"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigType("yaml")
			viper.SetConfigName(".sessionconf")
		}
	}

	viper.SetEnvPrefix("SESSIONCONF")
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}

// openStore builds the dump store from flags/config.
func openStore() (persist.Store, error) {
	path := viper.GetString("store_path")
	if path == "" {
		return nil, errors.New("store path is required (--store-path or SESSIONCONF_STORE_PATH)")
	}
	return persist.NewStore(persist.Config{
		Type: persist.StoreType(viper.GetString("store_type")),
		Path: path,
	})
}

// loadSeed reads the secret seed file, accepting raw 32/64-byte content or
// its hex encoding.
func loadSeed() ([]byte, error) {
	path := viper.GetString("seed_file")
	if path == "" {
		return nil, errors.New("seed file is required (--seed-file or SESSIONCONF_SEED_FILE)")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	switch len(raw) {
	case 32, 64:
		return raw, nil
	}
	decoded, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err == nil && (len(decoded) == 32 || len(decoded) == 64) {
		return decoded, nil
	}
	return nil, errors.New("seed file must contain 32 or 64 bytes, raw or hex")
}

// newAuditor builds the audit logger selected by flags/config.
func newAuditor() (audit.Logger, error) {
	path := viper.GetString("audit_log")
	if path == "" {
		return audit.NewNoOpLogger(), nil
	}
	return audit.NewLogger(&audit.Config{
		Enabled: true,
		Type:    audit.FileAuditType,
		Options: map[string]interface{}{"file_path": path},
	})
}

// loadConversations constructs the conversations config from the stored
// dump, or fresh if none exists yet.
func loadConversations(store persist.Store) (*session.Conversations, error) {
	seed, err := loadSeed()
	if err != nil {
		return nil, err
	}
	defer mem.Wipe(seed).Release()
	auditor, err := newAuditor()
	if err != nil {
		return nil, err
	}
	var dump []byte
	stored, err := store.LoadDump(int16(session.NamespaceConversations))
	if err == nil {
		dump = stored.Data
	} else if !errors.Is(err, persist.ErrNotFound) {
		return nil, err
	}
	return session.NewConversationsWithOptions(seed, dump, session.Options{Auditor: auditor})
}

// saveConversations dumps the config and writes it back to the store.
func saveConversations(store persist.Store, convos *session.Conversations) error {
	dump, err := convos.Dump()
	if err != nil {
		return err
	}
	return store.SaveDump(int16(session.NamespaceConversations), dump)
}
