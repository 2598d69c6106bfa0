// SPDX-FileCopyrightText: © 2025 Nfrastack <code@nfrastack.com>
//
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"zoneferry/pkg/config"
	"zoneferry/pkg/log"
	"zoneferry/pkg/migrate"
	"zoneferry/pkg/openprovider"
	"zoneferry/pkg/provision"
	"zoneferry/pkg/report"
	"zoneferry/pkg/source/csvfile"
	"zoneferry/pkg/util"
	"zoneferry/pkg/version"

	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

var (
	configFilePath  = flag.String("config", "", "Path to configuration file")
	configFilePathC = flag.String("c", "", "") // Hidden shorthand for config
	showVersion     = flag.Bool("version", false, "Show version and exit")
	logLevelFlag    = flag.String("log-level", "", "Set log level (overrides config/env)")
	csvFlag         = flag.String("csv", "", "Migrate from a ;-separated zone export instead of the source API")
	zonesFlag       = flag.String("zones", "", "Comma-separated list of zones to migrate (default: all)")
	providerFlag    = flag.String("provider", "", "Destination provider profile to use")
	rejectsFlag     = flag.String("rejects", "", "Path of the rejected-record report")
	dryRunFlag      = flag.Bool("dry-run", false, "Write zone files instead of calling the destination API")
	watchFlag       = flag.Bool("watch", false, "Re-run the migration when the CSV export changes")
)

func main() {
	// Hide the -c flag from help output
	flag.Lookup("c").Usage = ""
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	cfg := loadConfig()
	if *logLevelFlag != "" {
		cfg.General.LogLevel = *logLevelFlag
	}
	if *csvFlag != "" {
		cfg.Source.CSVFile = *csvFlag
	}
	if *watchFlag {
		cfg.Source.Watch = true
	}
	if *dryRunFlag {
		cfg.General.DryRun = true
	}
	if *rejectsFlag != "" {
		cfg.Report.RejectsFile = *rejectsFlag
	}

	logTimestamps := true
	if v := strings.ToLower(os.Getenv("LOG_TIMESTAMPS")); v == "false" || v == "0" || v == "no" {
		logTimestamps = false
	}
	log.Initialize(cfg.General.LogLevel, logTimestamps)
	log.Info("Starting zoneferry version: %s", version.Version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, cfg))
}

// loadConfig locates and loads the config file. Running purely from a CSV
// export needs no file, so a missing one is only fatal in API mode.
func loadConfig() *config.ConfigFile {
	path, err := config.FindConfigFile(pickConfigPath())
	if err != nil {
		if *csvFlag != "" {
			return config.Default()
		}
		fmt.Printf("[config] Failed to find configuration file: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadConfigFile(path)
	if err != nil {
		fmt.Printf("[config] Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func pickConfigPath() string {
	if *configFilePath != "" {
		return *configFilePath
	}
	return *configFilePathC
}

func run(ctx context.Context, cfg *config.ConfigFile) int {
	source, csvSource, err := buildSource(ctx, cfg)
	if err != nil {
		log.Error("%v", err)
		return 1
	}

	prov, err := buildProvisioner(cfg)
	if err != nil {
		log.Error("%v", err)
		return 1
	}
	if err := prov.Validate(); err != nil {
		log.Error("provider validation failed: %v", err)
		return 1
	}

	var zones []string
	if *zonesFlag != "" {
		for _, zone := range strings.Split(*zonesFlag, ",") {
			if zone = strings.TrimSpace(zone); zone != "" {
				zones = append(zones, zone)
			}
		}
	}

	driver := migrate.NewDriver(source, prov, migrate.Options{
		DefaultTTL:     cfg.Record.DefaultTTL,
		MaxValueLength: cfg.Record.MaxValueLength,
		DedupeTargets:  cfg.Record.DedupeTargets,
	})

	code := runOnce(ctx, driver, cfg, zones)

	if cfg.Source.Watch && csvSource != nil {
		log.Info("watching %s for changes", cfg.Source.CSVFile)
		err := csvSource.Watch(ctx, func() {
			runOnce(ctx, driver, cfg, zones)
		})
		if err != nil && ctx.Err() == nil {
			log.Error("watch failed: %v", err)
			return 1
		}
	}

	return code
}

// runOnce performs one migration pass and writes the reject report
func runOnce(ctx context.Context, driver *migrate.Driver, cfg *config.ConfigFile, zones []string) int {
	summary, err := driver.Run(ctx, zones)
	if err != nil {
		log.Error("migration failed: %v", err)
		return 1
	}

	fmt.Printf("\nMigration summary:\n")
	fmt.Printf("  zones created:   %d\n", summary.ZonesCreated)
	fmt.Printf("  records created: %d\n", summary.RecordsCreated)
	fmt.Printf("  record errors:   %d\n", summary.RecordErrors)
	fmt.Printf("  rejected:        %d\n", len(summary.Rejected))
	if len(summary.FailedZones) > 0 {
		fmt.Printf("  failed zones:    %s\n", strings.Join(summary.FailedZones, ", "))
	}

	rejectsPath := cfg.Report.RejectsFile
	if rejectsPath == "" {
		rejectsPath = "rejected-records.yml"
	}
	if err := report.WriteRejects(rejectsPath, summary.Rejected); err != nil {
		log.Error("failed to write reject report: %v", err)
		return 1
	}
	log.Info("reject report written to %s", rejectsPath)

	if len(summary.FailedZones) > 0 {
		return 1
	}
	return 0
}

// buildSource picks the CSV export or the source API, per config. The CSV
// provider is returned separately so watch mode can hook into it.
func buildSource(ctx context.Context, cfg *config.ConfigFile) (migrate.Source, *csvfile.Provider, error) {
	if cfg.Source.CSVFile != "" {
		csvSource, err := csvfile.New(cfg.Source.CSVFile, cfg.General.LogLevel)
		if err != nil {
			return nil, nil, err
		}
		return csvSource, csvSource, nil
	}

	username := util.ReadSecretValue(cfg.Source.Username)
	password := util.ReadSecretValue(cfg.Source.Password)
	if username == "" || password == "" {
		return nil, nil, fmt.Errorf("source API credentials missing (set source.username/password or OPENPROVIDER_USERNAME/OPENPROVIDER_PASSWORD)")
	}

	client := openprovider.New(openprovider.Config{
		URL:           cfg.Source.APIURL,
		Username:      username,
		Password:      password,
		PageLimit:     cfg.Source.PageLimit,
		SkipTLSVerify: cfg.Source.SkipTLSVerify,
	})
	if err := client.Login(ctx); err != nil {
		return nil, nil, err
	}
	return openprovider.NewSource(client), nil, nil
}

// buildProvisioner resolves the destination provider profile. Dry-run
// forces the zone file writer regardless of config.
func buildProvisioner(cfg *config.ConfigFile) (provision.Provisioner, error) {
	if cfg.General.DryRun {
		log.Info("dry-run: writing zone files instead of provisioning")
		return provision.Get("zonefile", "dry-run", map[string]string{})
	}

	profile := *providerFlag
	if profile == "" {
		profile = cfg.General.Provider
	}
	if profile == "" {
		return nil, fmt.Errorf("no destination provider configured (set general.provider or -provider)")
	}

	providerCfg, ok := cfg.Providers[profile]
	if !ok {
		return nil, fmt.Errorf("provider profile '%s' not found in config", profile)
	}
	if providerCfg.Type == "" {
		return nil, fmt.Errorf("provider profile '%s' has no type", profile)
	}
	return provision.Get(providerCfg.Type, profile, providerCfg.GetOptions())
}
