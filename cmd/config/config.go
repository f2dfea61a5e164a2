package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mattsolo1/grove-links/pkg/service"
)

var (
	cfgFile string
	logFile *os.File
)

// InitConfig loads the config file and environment into viper.
func InitConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		configDir := filepath.Join(home, ".config", "lk")
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("LK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	home, _ := os.UserHomeDir()
	viper.SetDefault("data_dir", filepath.Join(home, ".local", "share", "lk"))
	viper.SetDefault("browser", os.Getenv("BROWSER"))
	viper.SetDefault("undo_delay", "5s")
	viper.SetDefault("commit_attempts", 3)
	viper.SetDefault("commit_backoff", "200ms")
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("log_file", "")

	// A missing config file is fine; defaults apply.
	_ = viper.ReadInConfig()
}

// Load builds the service configuration from viper.
func Load() *service.Config {
	return &service.Config{
		DataDir:        expandHome(viper.GetString("data_dir")),
		Browser:        viper.GetString("browser"),
		UndoDelay:      viper.GetDuration("undo_delay"),
		CommitAttempts: viper.GetInt("commit_attempts"),
		CommitBackoff:  viper.GetDuration("commit_backoff"),
	}
}

// NewLogger returns a logger writing to stderr at the configured level.
func NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(viper.GetString("log_level"))
	if err != nil {
		level = logrus.WarnLevel
		logger.Warnf("unknown log_level %q, using warn", viper.GetString("log_level"))
	}
	logger.SetLevel(level)
	return logger
}

// RedirectLogs points logger at the log file so a full screen TUI is not
// drawn over. The file defaults to lk.log in the data directory.
func RedirectLogs(logger *logrus.Logger) error {
	path := expandHome(viper.GetString("log_file"))
	if path == "" {
		path = filepath.Join(expandHome(viper.GetString("data_dir")), "lk.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(f)
	logFile = f
	return nil
}

// CloseLogs closes the file opened by RedirectLogs, if any.
func CloseLogs() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// AddGlobalFlags registers the flags every command accepts.
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/lk/config.yaml)")
	cmd.PersistentFlags().String("data-dir", "", "directory holding the link database")
	cmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().Duration("undo-delay", 0, "how long a deletion can be undone")
	_ = viper.BindPFlag("data_dir", cmd.PersistentFlags().Lookup("data-dir"))
	_ = viper.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("undo_delay", cmd.PersistentFlags().Lookup("undo-delay"))
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
