// Package cmd holds the quill command line.
package cmd

import "github.com/spf13/cobra"

var BuildVersion = "dev"

var rootCmd = &cobra.Command{
	Use:          "quill",
	Short:        "Quill blogging API",
	Long:         "Serve the Quill blogging API and manage its document store.",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of Quill",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("%s\n", BuildVersion)
		},
	})
}

func Execute() error {
	return rootCmd.Execute()
}
