package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mlanham/csvsleuth/internal/classify"
	"github.com/mlanham/csvsleuth/internal/freq"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "csvsleuth",
	Short: "Delimited file profiler",
	Long: `Profiles delimited text files: detects the file dialect
(delimiter, quoting, record and field counts) and derives per-field
statistics such as value type, letter case, length bounds and min/max.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.csvsleuth.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"enable debug logging")
}

func initConfig() {
	if debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	viper.SetDefault("max_freq_size", freq.MaxFreqSizeDefault)
	viper.SetDefault("sentinels", classify.DefaultSentinels())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigName(".csvsleuth")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix("csvsleuth")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		logrus.WithField("config", viper.ConfigFileUsed()).Debug("loaded configuration")
	}
}

// classifierFromConfig builds the value classifier from the configured
// sentinel markers.
func classifierFromConfig() *classify.Classifier {
	return classify.New(viper.GetStringSlice("sentinels")...)
}

// parseDelimiter converts a flag or config string to a single rune,
// accepting "\t" and "tab" for tab-delimited files.
func parseDelimiter(s string) (rune, error) {
	if s == "\\t" || s == "tab" {
		return '\t', nil
	}
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	return runes[0], nil
}

// printableDelimiter renders a delimiter for report output.
func printableDelimiter(d rune) string {
	switch d {
	case 0:
		return "n/a"
	case '\t':
		return "\\t"
	default:
		return string(d)
	}
}
