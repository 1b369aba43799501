package main

import (
	"flag"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"dynwg/cache"
	"dynwg/journal"
	"dynwg/status"
	"dynwg/util"
	"dynwg/watch"
)

type Config struct {
	NetworkDir   string         `yaml:"networkDir"`
	CacheFile    string         `yaml:"cacheFile"`
	JournalFile  string         `yaml:"journalFile"`
	CheckGateway bool           `yaml:"checkGateway"`
	Ping         PingConfig     `yaml:"ping"`
	Resolver     ResolverConfig `yaml:"resolver"`
	Interval     util.Duration  `yaml:"interval"`
}

type PingConfig struct {
	Count   int           `yaml:"count"`
	Timeout util.Duration `yaml:"timeout"`
}

type ResolverConfig struct {
	Config  string        `yaml:"config"`
	Timeout util.Duration `yaml:"timeout"`
}

func loadConfig(path string) (Config, error) {
	var c Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		err = yaml.Unmarshal(data, &c)
		if err != nil {
			return Config{}, err
		}
	}
	if c.NetworkDir == "" {
		c.NetworkDir = "/etc/systemd/network"
	}
	if c.CacheFile == "" {
		c.CacheFile = "/var/cache/dynwg.json"
	}
	if c.Ping.Count == 0 {
		c.Ping.Count = 3
	}
	if c.Ping.Timeout == 0 {
		c.Ping.Timeout = util.Duration(3 * time.Second)
	}
	if c.Resolver.Config == "" {
		c.Resolver.Config = "/etc/resolv.conf"
	}
	if c.Resolver.Timeout == 0 {
		c.Resolver.Timeout = util.Duration(5 * time.Second)
	}
	if c.Interval == 0 {
		c.Interval = util.Duration(5 * time.Minute)
	}
	return c, nil
}

func main() {
	var configPath, statusSocket string
	var debug, checkGateway, daemon bool
	var interval time.Duration
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.BoolVar(&debug, "d", false, "enable debug logging")
	flag.BoolVar(&debug, "debug", false, "enable debug logging")
	flag.BoolVar(&checkGateway, "c", false, "also check whether the gateway is reachable")
	flag.BoolVar(&checkGateway, "check-gateway", false, "also check whether the gateway is reachable")
	flag.BoolVar(&daemon, "daemon", false, "keep running, sweeping on an interval")
	flag.DurationVar(&interval, "interval", 0, "time between sweeps in daemon mode (overrides the config file)")
	flag.StringVar(&statusSocket, "status-socket", "", "unix socket serving sweep status (daemon mode only)")
	flag.Parse()
	util.SetupLog(debug)
	defer util.S.Sync()

	config, err := loadConfig(configPath)
	if err != nil {
		zap.S().Fatalf("loading config failed: %s", err)
	}
	if checkGateway {
		config.CheckGateway = true
	}
	if interval > 0 {
		config.Interval = util.Duration(interval)
	}

	resolver, err := watch.NewDNSResolver(config.Resolver.Config, time.Duration(config.Resolver.Timeout))
	if err != nil {
		zap.S().Fatalf("setting up resolver failed: %s", err)
	}
	resetter, err := watch.NewWGResetter()
	if err != nil {
		zap.S().Fatalf("%s", err)
	}
	defer resetter.Close()
	var j *journal.Journal
	if config.JournalFile != "" {
		j, err = journal.Open(config.JournalFile)
		if err != nil {
			zap.S().Warnf("opening journal %s failed: %s; continuing without one.", config.JournalFile, err)
		} else {
			defer j.Close()
		}
	}
	sweeper := &watch.Sweeper{
		NetworkDir:   config.NetworkDir,
		Cache:        cache.New(config.CacheFile),
		Journal:      j,
		Resolver:     resolver,
		Pinger:       watch.PingCommand{Count: config.Ping.Count, Timeout: time.Duration(config.Ping.Timeout)},
		Resetter:     resetter,
		CheckGateway: config.CheckGateway,
	}

	if !daemon {
		// One-shot mode for external schedulers. Per-client failures are
		// reported via logs only; a completed sweep exits 0.
		sum := sweeper.Sweep()
		zap.S().Infof("sweep finished: %d clients, %d resets, %d failures.", sum.Clients, sum.Resets, sum.Failures)
		return
	}

	if statusSocket != "" {
		lis, err := status.NewServer(j).Listen(statusSocket)
		if err != nil {
			zap.S().Fatalf("listening on %s failed: %s", statusSocket, err)
		}
		defer lis.Close()
		zap.S().Infof("serving status on %s.", statusSocket)
	}
	interval = time.Duration(config.Interval)
	err = util.Notify("READY=1\nSTATUS=sweeping every " + interval.String() + "…")
	if err != nil {
		zap.S().Infof("notify: %s", err)
	}
	t := time.NewTicker(interval)
	for {
		sum := sweeper.Sweep()
		zap.S().Infof("sweep finished: %d clients, %d resets, %d failures.", sum.Clients, sum.Resets, sum.Failures)
		<-t.C
	}
}
