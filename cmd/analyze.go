package cmd

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mlanham/csvsleuth/internal/dialect"
	"github.com/mlanham/csvsleuth/internal/profiler"
)

var (
	analyzeDelimiter string
	analyzeQuote     string
	analyzeHeader    bool
	analyzeField     int
	analyzeMaxFreq   int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze the dialect and field statistics of a delimited file",
	Long: `Analyze a delimited file: detect its dialect (delimiter, quoting,
record and field counts, format category) and derive statistics for each
field, or for a single field with --field.

Examples:
  csvsleuth analyze data.csv
  csvsleuth analyze data.psv --delimiter '|'
  csvsleuth analyze data.csv --field 1
  csvsleuth analyze headless.csv --header=false`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := args[0]

		info, err := os.Stat(path)
		if err != nil {
			logrus.Fatalf("Cannot access %s: %v", path, err)
		}

		var opts []dialect.Option
		if analyzeDelimiter != "" {
			d, err := parseDelimiter(analyzeDelimiter)
			if err != nil {
				logrus.Fatalf("Bad --delimiter: %v", err)
			}
			opts = append(opts, dialect.WithDelimiter(d))
		}
		if analyzeQuote != "" {
			q, err := parseDelimiter(analyzeQuote)
			if err != nil {
				logrus.Fatalf("Bad --quote: %v", err)
			}
			opts = append(opts, dialect.WithQuote(q))
		}

		det := dialect.NewDetector(path, opts...)
		if err := det.Analyze(); err != nil {
			logrus.Fatalf("Dialect analysis failed: %v", err)
		}

		fmt.Printf("File: %s (%s)\n", path, humanize.Bytes(uint64(info.Size())))
		fmt.Printf("- Format:    %s\n", det.FormatType())
		fmt.Printf("- Delimiter: %s\n", printableDelimiter(det.Delimiter()))
		fmt.Printf("- Quoting:   %t\n", det.Quoting())
		fmt.Printf("- Records:   %s\n", humanize.Comma(int64(det.RecordCount())))
		fmt.Printf("- Fields:    %d\n", det.FieldCount())

		if det.RecordCount() == 0 {
			return
		}

		maxFreq := analyzeMaxFreq
		if maxFreq <= 0 {
			maxFreq = viper.GetInt("max_freq_size")
		}
		prof := profiler.New(profiler.Options{
			HasHeader:   analyzeHeader,
			Delimiter:   det.Delimiter(),
			MaxFreqSize: maxFreq,
			Classifier:  classifierFromConfig(),
		})

		if analyzeField >= 0 {
			fp, err := prof.ProfileField(path, analyzeField)
			if err != nil {
				logrus.Fatalf("Field profile failed: %v", err)
			}
			printFieldProfiles([]profiler.FieldProfile{*fp})
			return
		}

		result, err := prof.Profile(path)
		if err != nil {
			logrus.Fatalf("Profile failed: %v", err)
		}
		fmt.Printf("- Data rows: %s\n", humanize.Comma(int64(result.RowCount)))
		printFieldProfiles(result.Fields)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&analyzeDelimiter, "delimiter", "d", "",
		"field delimiter (default: auto-detect)")
	analyzeCmd.Flags().StringVarP(&analyzeQuote, "quote", "q", "",
		"quote character (default: double quote)")
	analyzeCmd.Flags().BoolVar(&analyzeHeader, "header", true,
		"treat the first record as a header")
	analyzeCmd.Flags().IntVarP(&analyzeField, "field", "f", -1,
		"profile only this field number (0-based)")
	analyzeCmd.Flags().IntVar(&analyzeMaxFreq, "max-freq", 0,
		"max distinct values tracked per field (default: from config)")
}

func printFieldProfiles(fields []profiler.FieldProfile) {
	fmt.Printf("\n%-20s %-10s %-8s %-12s %-12s %7s %7s %9s %5s\n",
		"Field", "Type", "Case", "Min", "Max", "MinLen", "MaxLen", "Distinct", "Trunc")

	for _, f := range fields {
		min, max := "-", "-"
		if f.HasMin {
			min = f.Min
		}
		if f.HasMax {
			max = f.Max
		}
		minLen := "-"
		if f.HasMinLen {
			minLen = fmt.Sprintf("%d", f.MinLen)
		}
		trunc := ""
		if f.Truncated {
			trunc = "yes"
		}
		fmt.Printf("%-20s %-10s %-8s %-12s %-12s %7s %7d %9d %5s\n",
			f.Name, f.Type, f.Case, min, max, minLen, f.MaxLen, f.DistinctCount, trunc)
	}
}
