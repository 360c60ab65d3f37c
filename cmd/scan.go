package cmd

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mlanham/csvsleuth/internal/connectors"
	"github.com/mlanham/csvsleuth/internal/dialect"
	"github.com/mlanham/csvsleuth/internal/profiler"
)

var (
	scanDir       string
	scanExts      []string
	scanRecursive bool
	scanVerbose   bool
	scanHeader    bool
	scanMinSize   int64
	scanMaxSize   int64
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a directory and profile every delimited file",
	Long: `Scan a directory for delimited text files and report the dialect
and field statistics of each one`,
	Run: func(cmd *cobra.Command, args []string) {
		options := connectors.DiscoveryOptions{
			Recursive: scanRecursive,
			MinSize:   scanMinSize,
			MaxSize:   scanMaxSize,
		}

		files, err := connectors.DiscoverFiles(scanDir, scanExts, options)
		if err != nil {
			logrus.Fatalf("Scan failed: %v", err)
		}
		if len(files) == 0 {
			fmt.Printf("No delimited files found in %s\n", scanDir)
			return
		}

		bar := progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetDescription("[cyan][reset] Profiling files..."),
			progressbar.OptionShowCount(),
			progressbar.OptionOnCompletion(func() {
				fmt.Println()
			}),
		)

		for _, file := range files {
			bar.Add(1)

			det := dialect.NewDetector(file.Path)
			if err := det.Analyze(); err != nil {
				logrus.Warnf("Skipping %s: %v", file.Path, err)
				continue
			}

			fmt.Printf("\nFile: %s (%s)\n", file.Path, humanize.Bytes(uint64(file.Size)))
			fmt.Printf("- Format: %s | Delimiter: %s | Quoting: %t\n",
				det.FormatType(), printableDelimiter(det.Delimiter()), det.Quoting())
			fmt.Printf("- Records: %s | Fields: %d\n",
				humanize.Comma(int64(det.RecordCount())), det.FieldCount())

			if !scanVerbose || det.RecordCount() == 0 {
				continue
			}

			prof := profiler.New(profiler.Options{
				HasHeader:   scanHeader,
				Delimiter:   det.Delimiter(),
				MaxFreqSize: viper.GetInt("max_freq_size"),
				Classifier:  classifierFromConfig(),
			})
			result, err := prof.Profile(file.Path)
			if err != nil {
				logrus.Warnf("Failed to profile %s: %v", file.Path, err)
				continue
			}
			metrics := result.CalculateQuality()
			fmt.Printf("- Unknown values: %.2f%% | Distinct ratio: %.2f\n",
				metrics.UnknownPercentage*100, metrics.DistinctRatio)
			printFieldProfiles(result.Fields)
		}

		bar.Finish()
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringVarP(&scanDir, "dir", "d", "",
		"Directory to scan (required)")
	scanCmd.Flags().StringSliceVarP(&scanExts, "ext", "e", nil,
		"File extensions to include (default: csv,tsv,psv,txt)")
	scanCmd.Flags().BoolVarP(&scanRecursive, "recursive", "r", false,
		"Search directories recursively")
	scanCmd.Flags().BoolVarP(&scanVerbose, "verbose", "v", false,
		"Display per-field statistics for every file")
	scanCmd.Flags().BoolVar(&scanHeader, "header", true,
		"treat the first record of each file as a header")
	scanCmd.Flags().Int64Var(&scanMinSize, "min-size", 0,
		"Minimum file size in bytes")
	scanCmd.Flags().Int64Var(&scanMaxSize, "max-size", 0,
		"Maximum file size in bytes")

	scanCmd.MarkFlagRequired("dir")
}
