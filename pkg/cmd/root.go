// Package cmd implements the sv2v command line interface on
// github.com/spf13/cobra, one file per subcommand with flags registered in
// init().
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"sv2v/pkg/parse"
)

// Parser is the front-end parse function the convert subcommand hands to
// its Frontend. The lexer/parser is an external collaborator of this
// module; embedders install one here before calling Execute.
var Parser parse.Func

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sv2v",
	Short: "A SystemVerilog to Verilog-2005 converter.",
	Long: `Convert SystemVerilog design files into an equivalent
	Verilog-2005 design.`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main() and only needs to happen
// once.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
}
