// toftracer renders time-resolved images of the built-in scenes and compares
// the dumps it writes.
package main

import (
	"flag"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

var cmdRoot = &cobra.Command{
	Use:           "toftracer",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// glog insists on flag.Parse; its flags were already parsed by cobra.
		return flag.CommandLine.Parse(nil)
	},
}

func init() {
	cmdRoot.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	cmdRoot.AddCommand(cmdRender, cmdCompare)
}

func main() {
	glog.CopyStandardLogTo("INFO")

	if err := cmdRoot.Execute(); err != nil {
		glog.Exitf("%s: %v", cmdRoot.Name(), err)
	}
	glog.Flush()
}
