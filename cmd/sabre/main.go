package main

import (
	"runtime"
	"strings"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sabre-chess/sabre/internal/logx"
	"github.com/sabre-chess/sabre/pkg/engine"
	"github.com/sabre-chess/sabre/pkg/eval"
	"github.com/sabre-chess/sabre/pkg/uci"
)

const (
	name   = "Sabre"
	author = "Sabre authors"
)

var versionName = "dev"

func main() {
	pflag.Int("hash", 16, "transposition table size in megabytes")
	pflag.Int("threads", 1, "search worker count")
	pflag.Int("sharp-margin", 30, "sharp line selection margin in centipawns, 0 disables")
	pflag.String("log-level", "info", "log level (debug, info, warn, error)")
	pflag.Parse()

	viper.SetEnvPrefix("SABRE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	viper.BindPFlags(pflag.CommandLine)

	var level, err = zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	var logger = logx.NewLogger(level)

	logger.Info().
		Str("version", versionName).
		Str("runtime", runtime.Version()).
		Str("goarch", runtime.GOARCH).
		Str("goos", runtime.GOOS).
		Int("num_cpu", runtime.NumCPU()).
		Msg(name)

	// never let the table displace more than half of physical RAM
	var maxHash = max(16, int(memory.TotalMemory()/(2*1024*1024)))

	var eng = engine.NewEngine(func() engine.Evaluator {
		return eval.NewEvaluationService()
	}, logger)
	eng.Options.Hash = min(viper.GetInt("hash"), maxHash)
	eng.Options.Threads = min(max(viper.GetInt("threads"), 1), runtime.NumCPU())
	eng.Options.SharpMargin = min(max(viper.GetInt("sharp-margin"), 0), 100)

	var protocol = uci.New(name, author, versionName, eng, logger,
		[]uci.Option{
			&uci.IntOption{Name: "Hash", Min: 4, Max: maxHash, Value: &eng.Options.Hash},
			&uci.IntOption{Name: "Threads", Min: 1, Max: runtime.NumCPU(), Value: &eng.Options.Threads},
			&uci.IntOption{Name: "SharpMargin", Min: 0, Max: 100, Value: &eng.Options.SharpMargin},
			&uci.ButtonOption{Name: "Clear Hash", Action: eng.Clear},
		},
	)
	protocol.Run()
}
