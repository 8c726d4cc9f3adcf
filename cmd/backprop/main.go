// Package main provides the backprop command line tool.
//
// Usage:
//
//	backprop [klog flags] <command> [flags]
//
// Commands:
//
//	version   Show version
//	summary   Describe the network of a YAML descriptor
//	train     Train a network on a CSV file and save its parameters
//	predict   Run a trained network on a CSV file
package main

import (
	"flag"
	"fmt"
	"os"

	"k8s.io/klog/v2"
)

const version = "v0.1.0-dev"

type command struct {
	name    string
	summary string
	run     func(args []string) error
}

var commands = []command{
	{"version", "Show version", func([]string) error {
		fmt.Printf("backprop %s\n", version)
		return nil
	}},
	{"summary", "Describe the network of a YAML descriptor", runSummary},
	{"train", "Train a network on a CSV file and save its parameters", runTrain},
	{"predict", "Run a trained network on a CSV file", runPredict},
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "backprop %s: feed-forward networks trained with backpropagation\n\n", version)
	fmt.Fprintf(out, "Usage: backprop [flags] <command> [command flags]\n\nCommands:\n")
	for _, c := range commands {
		fmt.Fprintf(out, "  %-10s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(out, "\nFlags:\n")
	flag.PrintDefaults()
}

func main() {
	klog.InitFlags(nil)
	flag.Usage = usage
	flag.Parse()
	defer klog.Flush()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}
	for _, c := range commands {
		if c.name == args[0] {
			if err := c.run(args[1:]); err != nil {
				klog.Flush()
				klog.Exitf("%s: %+v", c.name, err)
			}
			return
		}
	}
	klog.Errorf("Unknown command %q. See 'backprop -help'.", args[0])
	klog.Flush()
	os.Exit(2)
}
