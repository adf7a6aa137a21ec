package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/oceanguard/govclient/internal/chain"
	"github.com/oceanguard/govclient/internal/config"
	"github.com/oceanguard/govclient/internal/logging"
	"github.com/oceanguard/govclient/internal/metrics"
	"github.com/oceanguard/govclient/internal/proxy"
	"github.com/oceanguard/govclient/internal/services/db/govdb"
	"github.com/oceanguard/govclient/internal/services/ethrequest"
	"github.com/oceanguard/govclient/pkg/router"
)

func main() {
	env := flag.String("env", "", "path to .env file")

	port := flag.Int("port", 3000, "port to listen on")

	jsonLogs := flag.Bool("json", false, "log as json")

	flag.Parse()

	ctx := context.Background()

	conf, err := config.New(ctx, *env)
	if err != nil {
		log.Fatal(err)
	}

	logger, closer, err := logging.New(os.Stderr, logging.Options{
		Level: conf.LogLevel,
		File:  conf.LogFile,
		JSON:  *jsonLogs,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer closer.Close()

	logger.Info("launching governance proxy...")

	if conf.SentryEnabled() {
		err = sentry.Init(sentry.ClientOptions{
			Dsn:              conf.SentryURL,
			TracesSampleRate: 1.0,
		})
		if err != nil {
			log.Fatalf("sentry.Init: %s", err)
		}
		// Flush buffered events before the program terminates.
		defer sentry.Flush(2 * time.Second)
	}

	logger.Info("connecting to rpc...", "url", conf.RPCURL)

	evm, err := ethrequest.NewEthService(ctx, conf.RPCURL)
	if err != nil {
		log.Fatal(err)
	}
	defer evm.Close()

	logger.Info("fetching chain id...")

	chid, err := evm.ChainID()
	if err != nil {
		log.Fatal(err)
	}

	logger.Info("node running", "chain", chid.String())

	contracts, err := ethrequest.NewContracts(evm.Backend(), conf.GovernanceAddress, conf.TokenAddress)
	if err != nil {
		log.Fatal(err)
	}

	m := metrics.New()

	opts := []proxy.Option{proxy.WithLogger(logger)}

	dbconf, err := config.NewDBConfig(ctx, "")
	if err != nil {
		log.Fatal(err)
	}

	if dbconf.Enabled() {
		logger.Info("starting snapshot db...", "host", dbconf.DBHost)

		gdb, err := govdb.NewDB(chid, dbconf.ConnString())
		if err != nil {
			log.Fatal(err)
		}
		defer gdb.Close()

		opts = append(opts, proxy.WithSnapshots(gdb.ProposalsDB, m.SnapshotWritten))
	}

	p := proxy.NewService(contracts, contracts.GovernanceAddress(), opts...)

	logger.Info("starting api service...")

	ch := chain.NewService(evm, chid, contracts.GovernanceAddress())

	api := router.NewServer(p, ch, m, conf.RateLimit)

	logger.Info("listening", "port", *port)

	err = api.Start(*port)
	if err != nil {
		sentry.CaptureException(err)
		sentry.Flush(2 * time.Second)
		log.Fatal(err)
	}
}
