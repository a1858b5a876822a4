package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/rbowen/asf-highlights/pkg/cache"
	"github.com/rbowen/asf-highlights/pkg/clients"
	"github.com/rbowen/asf-highlights/pkg/database"
	"github.com/rbowen/asf-highlights/pkg/highlights"
	"github.com/rbowen/asf-highlights/pkg/insights"
	"github.com/rbowen/asf-highlights/pkg/providers"
	"github.com/rbowen/asf-highlights/pkg/publish"
	"github.com/rbowen/asf-highlights/pkg/report"
	"github.com/rbowen/asf-highlights/pkg/server"
)

// fileConfig is the optional yaml configuration: projects whose mirrors
// must never be evicted, and the publish destinations.
type fileConfig struct {
	PinnedProjects []string       `yaml:"pinned-projects"`
	Publish        publish.Config `yaml:"publish"`
}

func main() {
	var logger *zap.Logger
	var err error

	// Initialize & parse flags
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to .yaml file config")
	debugMode := flag.Bool("debug", false, "run in debug mode")
	days := flag.Int("days", 7, "number of days to look back for new contributors")
	project := flag.String("project", "", "analyze only a specific project (e.g. spark, flink)")
	baseDir := flag.String("base-dir", ".", "base directory containing the REPOSITORIES tree")
	workers := flag.Int("workers", highlights.DefaultWorkers, "number of repositories analyzed in parallel")
	noUpdate := flag.Bool("no-update", false, "skip repository updates")
	serveMode := flag.Bool("serve", false, "serve on-demand analysis over http instead of running a batch")
	seedOrg := flag.String("seed-org", "", "seed the mirror cache with this organization's repositories and exit")
	flag.Parse()

	if *debugMode {
		logger, err = zap.NewDevelopment()
		if err != nil {
			log.Fatalf("Could not initiate debug zap logger: %v", err)
		}
	} else {
		logger, err = zap.NewProduction()
		if err != nil {
			log.Fatalf("Could not initiate production zap logger: %v", err)
		}
	}

	sugarLogger := logger.Sugar()
	sugarLogger.Infof("initiated zap logger with level: %d", sugarLogger.Level())

	// Load the environment variables from the .env file
	err = godotenv.Load()
	if err != nil {
		sugarLogger.Warnf("Failed to load the dot env file. Continuing with existing environment: %v", err)
	}

	// Initializes configuration using a provided yaml file
	config := fileConfig{}
	if configPath != "" {
		configFile, err := os.ReadFile(configPath)
		if err != nil {
			sugarLogger.Fatalf("Could not read yaml configuration file: %s", err.Error())
		}
		if err := yaml.Unmarshal(configFile, &config); err != nil {
			sugarLogger.Fatalf("Could not unmarshal configuration file: %s", err.Error())
		}
		sugarLogger.Infof("Configuration was set using yaml file")
	}

	pinned := make(map[string]bool, len(config.PinnedProjects))
	for _, name := range config.PinnedProjects {
		pinned[name] = true
	}

	// Interrupts cancel the run between repositories, never mid-parse.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *serveMode {
		runServer(sugarLogger, pinned)
		return
	}

	if *seedOrg != "" {
		seedMirrors(ctx, sugarLogger, *seedOrg, pinned)
		return
	}

	runBatch(ctx, sugarLogger, highlights.Config{
		BaseDir: *baseDir,
		Project: *project,
		Window:  insights.NewWindow(*days),
		Workers: *workers,
		Update:  !*noUpdate,
	}, *days, config.Publish)
}

// runBatch executes one analysis run and renders, publishes and records
// the results.
func runBatch(ctx context.Context, sugarLogger *zap.SugaredLogger, cfg highlights.Config, days int, publishConfig publish.Config) {
	analyzer := highlights.NewAnalyzer(cfg, sugarLogger)
	projects, err := analyzer.Run(ctx)
	if err != nil {
		sugarLogger.Fatalf("Analysis failed: %s", err.Error())
	}

	rep := report.New(cfg.Window, days, cfg.Project, projects)
	mdPath, jsonPath, err := rep.WriteFiles(cfg.BaseDir)
	if err != nil {
		sugarLogger.Fatalf("Could not write reports: %s", err.Error())
	}
	sugarLogger.Infof("Reports generated: %s, %s", mdPath, jsonPath)

	htmlPath, err := report.ConvertToHTML(mdPath)
	if err != nil {
		sugarLogger.Errorf("Could not convert report to html: %s", err.Error())
	} else {
		publisher := publish.New(publishConfig, os.Getenv("MASTODON_TOKEN"), sugarLogger)
		publisher.Publish(ctx, htmlPath)
	}

	// Record findings when a database is configured
	if os.Getenv("DATABASE_HOST") != "" {
		handler := database.NewHighlightsDbHandler(
			os.Getenv("DATABASE_HOST"),
			os.Getenv("DATABASE_PORT"),
			os.Getenv("DATABASE_USER"),
			os.Getenv("DATABASE_PASSWORD"),
			os.Getenv("DATABASE_DBNAME"),
		)
		if err := handler.RecordReport(time.Now().UTC(), projects); err != nil {
			sugarLogger.Errorf("Could not record report in database: %s", err.Error())
		}
	}
}

// runServer starts the on-demand analysis server using the git provider
// selected by the GIT_PROVIDER env variable.
func runServer(sugarLogger *zap.SugaredLogger, pinned map[string]bool) {
	serverPort := os.Getenv("SERVER_PORT")

	var gitProvider providers.GitRepoProvider
	switch os.Getenv("GIT_PROVIDER") {
	case "mirror":
		sugarLogger.Infof("Initiating mirror git provider")
		minFreeDiskUint64, err := strconv.ParseUint(os.Getenv("MIN_FREE_DISK_GB"), 10, 64)
		if err != nil {
			sugarLogger.Fatalf("Could not parse the minimum free disk: %s", err.Error())
		}
		gitProvider, err = providers.NewMirrorGitRepoProvider(os.Getenv("CACHE_DIR"), minFreeDiskUint64, sugarLogger, pinned)
		if err != nil {
			sugarLogger.Fatalf("Could not create a mirror git provider: %s", err.Error())
		}
	case "tempdir":
		sugarLogger.Infof("Initiating temp dir git provider")
		gitProvider = providers.NewTempDirGitRepoProvider(sugarLogger)
	default:
		sugarLogger.Fatal("must specify the GIT_PROVIDER env variable (i.e. mirror, tempdir)")
	}

	highlightsServer := server.NewHighlightsServer(gitProvider, sugarLogger)
	highlightsServer.Run(serverPort)
}

// seedMirrors enumerates an organization's repositories and clones each
// one into the mirror cache.
func seedMirrors(ctx context.Context, sugarLogger *zap.SugaredLogger, org string, pinned map[string]bool) {
	minFreeDiskUint64, err := strconv.ParseUint(os.Getenv("MIN_FREE_DISK_GB"), 10, 64)
	if err != nil {
		sugarLogger.Fatalf("Could not parse the minimum free disk: %s", err.Error())
	}

	mirrorCache, err := cache.NewMirrorCache(os.Getenv("CACHE_DIR"), minFreeDiskUint64, pinned)
	if err != nil {
		sugarLogger.Fatalf("Could not create mirror cache: %s", err.Error())
	}

	client := clients.NewGithubTokenClient(ctx, os.Getenv("GITHUB_TOKEN"))
	repos, err := client.ListReposByOrg(ctx, org)
	if err != nil {
		sugarLogger.Fatalf("Could not list repositories for org %s: %s", org, err.Error())
	}

	urls := clients.GetGithubRepoCloneUrls(clients.FilterGithubArchivedRepos(repos))
	sugarLogger.Infof("Seeding mirror cache with %d repositories from %s", len(urls), org)

	for _, url := range urls {
		if ctx.Err() != nil {
			sugarLogger.Warnf("Seeding interrupted")
			return
		}
		mirror, err := mirrorCache.Put(url)
		if err != nil {
			sugarLogger.Warnf("Could not mirror %s: %s", url, err.Error())
			continue
		}
		mirror.Done()
		sugarLogger.Debugf("Mirrored %s", url)
	}
	sugarLogger.Infof("Mirror seeding complete")
}
