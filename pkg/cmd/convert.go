package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/shlex"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"sv2v/pkg/ast"
	"sv2v/pkg/driver"
	"sv2v/pkg/parse"
)

var convertCmd = &cobra.Command{
	Use:   "convert [flags] file...",
	Short: "convert SystemVerilog files to Verilog-2005.",
	Long: `Read one or more SystemVerilog files, apply the conversion
	passes, and write the resulting Verilog-2005 to stdout or the
	--output file. "+define+NAME[=VALUE]" and "+incdir+PATH" tokens may
	appear among the file arguments or bundled in a single --plusargs
	string.`,
	Run: runConvertCmd,
}

func runConvertCmd(cmd *cobra.Command, args []string) {
	if GetFlag(cmd, "verbose") {
		log.SetLevel(log.DebugLevel)
	}

	if bundled := GetString(cmd, "plusargs"); bundled != "" {
		tokens, err := shlex.Split(bundled)
		if err != nil {
			fatal(err)
		}

		args = append(args, tokens...)
	}

	opts, files, err := SplitPlusArgs(args)
	if err != nil {
		fatal(err)
	}

	if len(files) == 0 {
		fmt.Println(cmd.UsageString())
		os.Exit(1)
	}

	frontend := &parse.Frontend{Parse: Parser, Opts: opts}

	descs, err := frontend.ReadFiles(files)
	if err != nil {
		fatal(err)
	}

	converted, err := driver.Run(descs)
	if err != nil {
		fatal(err)
	}

	if err := writeOutput(GetString(cmd, "output"), converted); err != nil {
		fatal(err)
	}
}

// SplitPlusArgs separates "+define+"/"+incdir+" option tokens from file
// path arguments, in either order. A define token may carry a value after
// "=" ("+define+WIDTH=8") or stand alone ("+define+SYNTHESIS").
func SplitPlusArgs(args []string) (parse.Options, []string, error) {
	opts := parse.Options{Defines: map[string]string{}}

	var files []string

	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "+define+"):
			body := strings.TrimPrefix(arg, "+define+")
			if body == "" {
				return opts, nil, fmt.Errorf("empty +define+ option")
			}

			name, value, _ := strings.Cut(body, "=")
			opts.Defines[name] = value
		case strings.HasPrefix(arg, "+incdir+"):
			dir := strings.TrimPrefix(arg, "+incdir+")
			if dir == "" {
				return opts, nil, fmt.Errorf("empty +incdir+ option")
			}

			opts.IncDirs = append(opts.IncDirs, dir)
		case strings.HasPrefix(arg, "+"):
			return opts, nil, fmt.Errorf("unrecognized option %q", arg)
		default:
			files = append(files, arg)
		}
	}

	return opts, files, nil
}

func writeOutput(path string, descs []ast.Description) error {
	var b strings.Builder

	for _, d := range descs {
		b.WriteString(d.String())
		b.WriteString("\n")
	}

	if path == "" || path == "-" {
		_, err := fmt.Print(b.String())
		return err
	}

	return os.WriteFile(path, []byte(b.String()), 0644)
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringP("output", "o", "", "write output to a file instead of stdout")
	convertCmd.Flags().String("plusargs", "", "bundled +define+/+incdir+ tokens, shell-quoted")
}
