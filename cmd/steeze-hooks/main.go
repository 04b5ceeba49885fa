// Command steeze-hooks serves the handler chains declared in a manifest.
package main

import (
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/fx"

	_ "github.com/joeydtaylor/steeze-hooks/pkg/demo"
	"github.com/joeydtaylor/steeze-hooks/pkg/serverfx"
)

func main() {
	opts := serverfx.DefaultOptions()
	pflag.StringVarP(&opts.ManifestPath, "manifest", "m", "", "manifest path (default $"+opts.ManifestEnv+" or "+opts.DefaultManifest+")")
	pflag.StringVar(&opts.DefaultListen, "addr", opts.DefaultListen, "listen address when $"+opts.ListenAddrEnv+" is unset")
	_ = pflag.CommandLine.Parse(os.Args[1:])

	fx.New(serverfx.Module(opts)).Run()
}
