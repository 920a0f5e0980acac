package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/zan8in/goflags"

	"project/host-services/cidr"
	"project/host-services/config"
	"project/host-services/dns"
	"project/host-services/flow"
	"project/host-services/formatter"
	"project/host-services/index"
	"project/host-services/logger"
	"project/host-services/source"
)

type Options struct {
	ConfigFile   string              // YAML configuration file
	FlowsFile    string              // tab-separated flow records, "-" for stdin
	NetworksFile string              // networks file, overrides the config
	Networks     goflags.StringSlice // extra network patterns
	SPFDomains   goflags.StringSlice // extra SPF domains
	Dump         bool                // print the network index and exit
	Watch        bool                // rebuild the index when the networks file changes
	Debug        bool                // debug logging
}

func parseOptions() *Options {
	options := &Options{}

	flagSet := goflags.NewFlagSet()
	flagSet.SetDescription(`host-services counts the local hosts and services seen in flow logs`)

	flagSet.CreateGroup("input", "Input",
		flagSet.StringVarP(&options.FlowsFile, "flows", "f", "", "flow records to read (tab-separated, - for stdin)"),
		flagSet.StringVarP(&options.ConfigFile, "config", "c", "", "configuration file (yaml)"),
	)

	flagSet.CreateGroup("networks", "Networks",
		flagSet.StringVarP(&options.NetworksFile, "networks-file", "nf", "", "file of local networks, one per line"),
		flagSet.StringSliceVarP(&options.Networks, "network", "n", nil, "local networks (host, cidr or addr1..=addr2, comma-separated)", goflags.NormalizedStringSliceOptions),
		flagSet.StringSliceVarP(&options.SPFDomains, "spf", "s", nil, "domains whose SPF records are local networks (comma-separated)", goflags.NormalizedStringSliceOptions),
		flagSet.BoolVar(&options.Watch, "watch", false, "reload the networks file when it changes"),
	)

	flagSet.CreateGroup("debug", "Debug",
		flagSet.BoolVar(&options.Dump, "dump", false, "print the network index and exit"),
		flagSet.BoolVar(&options.Debug, "debug", false, "display debugging information"),
	)

	_ = flagSet.Parse()

	if err := options.validate(); err != nil {
		log.Fatal("Program exiting", "error", err)
	}
	return options
}

var errNoInput = errors.New("no flow records provided (-flows)")

func (options *Options) validate() error {
	if options.FlowsFile == "" && !options.Dump {
		return errNoInput
	}
	return nil
}

func main() {
	options := parseOptions()

	// 1. Load Configuration
	cfg := config.DefaultConfig()
	if options.ConfigFile != "" {
		var err error
		cfg, err = config.LoadConfig(options.ConfigFile)
		if err != nil {
			log.Fatal("Failed to load configuration", "path", options.ConfigFile, "error", err)
		}
	}
	if options.Debug {
		cfg.Log.Level = "debug"
	}
	if options.NetworksFile != "" {
		cfg.NetworksFile = options.NetworksFile
	}
	cfg.Networks = append(cfg.Networks, options.Networks...)
	cfg.SPFDomains = append(cfg.SPFDomains, options.SPFDomains...)
	if !cfg.HasNetworks() {
		cfg.Networks = append([]string(nil), config.LocalNetworks...)
	}

	closer, err := logger.Setup(cfg.Log)
	if err != nil {
		log.Fatal("Invalid log configuration", "error", err)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Build the network index
	static := append([]string(nil), cfg.Networks...)
	if len(cfg.SPFDomains) > 0 {
		resolver := dns.NewResolver(cfg.Resolver, cfg.ConcurrencyLimit, cfg.MaxLookups)
		spf, err := resolver.ResolveAll(ctx, cfg.SPFDomains)
		if err != nil {
			log.Warn("Some SPF domains could not be resolved", "error", err)
		}
		static = append(static, cidr.CanonicalPatterns(spf)...)
		log.Info("SPF records resolved", "domains", len(cfg.SPFDomains), "networks", len(spf))
	}

	holder := index.NewHolder(nil)
	loader := &source.Loader{
		Path:   cfg.NetworksFile,
		Static: static,
		Holder: holder,
		Delay:  cfg.ReloadDelay,
	}
	if err := loader.Reload(); err != nil {
		log.Warn("Every address will be treated as non-local", "error", err)
	}

	if options.Dump {
		printLines(formatter.FormatIndex(holder.Load()))
		return
	}

	if options.Watch {
		go func() {
			if err := loader.Watch(ctx); err != nil {
				log.Error("Networks file watch stopped", "error", err)
			}
		}()
	}

	// 3. Classify flows
	services, err := flow.LoadServices(cfg.ServicesFile)
	if err != nil {
		log.Warn("Service names unavailable", "error", err)
	}
	log.Info("Services loaded", "entries", len(services))

	hosts, err := classify(ctx, flow.NewClassifier(holder), options.FlowsFile)
	if err != nil {
		log.Fatal("Failed to read flow records", "path", options.FlowsFile, "error", err)
	}

	printLines(formatter.FormatReport(hosts, uint32(cfg.ServerThreshold), services))
}

func classify(ctx context.Context, c *flow.Classifier, path string) (*flow.Hosts, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return c.Classify(ctx, r)
}

func printLines(lines []string) {
	for _, line := range lines {
		fmt.Println(line)
	}
}
