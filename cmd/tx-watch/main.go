package main

import (
	// Go Internal Packages
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	// Local Packages
	config "tx-tracker/config"
	helpers "tx-tracker/helpers"
	models "tx-tracker/models"
	api "tx-tracker/repositories/api"
	trackersvc "tx-tracker/services/tracker"
	stream "tx-tracker/stream"

	// External Packages
	"github.com/alecthomas/kingpin/v2"
	_ "github.com/jsternberg/zap-logfmt"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"go.uber.org/zap"
)

var (
	configPath = kingpin.Flag("config", "Path to the application config file").Short('c').Default("config.yml").String()
	search     = kingpin.Flag("search", "Free-text search term").String()
	status     = kingpin.Flag("status", "Filter by transaction status").String()
	reference  = kingpin.Flag("reference", "Filter by reference number").String()
	startDate  = kingpin.Flag("start-date", "Filter from date (inclusive)").String()
	endDate    = kingpin.Flag("end-date", "Filter to date (inclusive)").String()
	page       = kingpin.Flag("page", "Page to fetch").Default("1").Int()
	limit      = kingpin.Flag("limit", "Rows per page").Default("10").Int()
	follow     = kingpin.Flag("follow", "Keep watching for live updates").Short('f').Default("true").Bool()
)

// LoadConfig loads the default configuration and overrides it with the config file
// specified by the path defined in the config flag
func LoadConfig() *koanf.Koanf {
	kingpin.Parse()
	k := koanf.New(".")
	_ = k.Load(rawbytes.Provider(config.DefaultConfig), yaml.Parser())
	if *configPath != "" {
		_ = k.Load(file.Provider(*configPath), yaml.Parser())
	}
	return k
}

func main() {
	k := LoadConfig()
	appKonf := config.Config{}

	// Unmarshalling config into struct
	err := k.Unmarshal("", &appKonf)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Validate the config loaded
	if err = appKonf.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "logfmt"
	_ = cfg.Level.UnmarshalText([]byte(k.String("logger.level")))
	cfg.InitialFields = make(map[string]any)
	cfg.InitialFields["host"], _ = os.Hostname()
	cfg.InitialFields["service"] = "tx-watch"
	cfg.OutputPaths = []string{"stderr"}
	logger, _ := cfg.Build()
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	apiClient := api.NewClient(
		appKonf.API.BaseURL,
		time.Duration(appKonf.API.TimeoutSeconds)*time.Second,
		logger,
	)

	manager := stream.NewManager(stream.ManagerConfig{
		Endpoint:    appKonf.Websocket.Endpoint,
		BaseDelay:   time.Duration(appKonf.Websocket.BaseDelayMs) * time.Millisecond,
		MaxDelay:    time.Duration(appKonf.Websocket.MaxDelayMs) * time.Millisecond,
		MaxAttempts: appKonf.Websocket.MaxAttempts,
		ChannelSize: appKonf.Websocket.ChannelSize,
	}, logger, nil)

	tracker := trackersvc.New(logger, manager, apiClient, nil)

	query := models.TransactionQuery{
		ReferenceNumber: *reference,
		Status:          *status,
		StartDate:       *startDate,
		EndDate:         *endDate,
		Search:          *search,
		Page:            *page,
		Limit:           *limit,
	}

	// A failed fetch degrades to an empty list with an error line; live
	// updates can still repopulate the set while watching.
	if err = tracker.Fetch(ctx, query); err != nil {
		logger.Warn("cannot fetch transactions", zap.Error(err))
	}

	printWorkingSet(tracker.Transactions(), tracker.Pagination(), tracker.Message())

	if !*follow {
		return
	}

	manager.Start(ctx)
	go tracker.Run(ctx)

	subID, changes := tracker.Bus().Subscribe()
	defer tracker.Bus().Unsubscribe(subID)

	fmt.Println("watching for live updates, ctrl-c to stop")
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			printChange(tracker, change.ReferenceNo)
		}
	}
}

func printWorkingSet(records []models.TransactionRecord, p models.Pagination, message string) {
	if message != "" {
		fmt.Println(message)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tREFERENCE\tMERCHANT\tSTATUS\tAMOUNT\tCURRENCY\tDATE")
	for _, rec := range records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.2f\t%s\t%s\n",
			rec.SequenceNo, rec.ReferenceNo, rec.MerchantID, rec.Status,
			rec.Amount, rec.Currency, rec.TransactionDate)
	}
	_ = w.Flush()
	fmt.Printf("page %d/%d, %d total\n", p.Page, p.TotalPage, p.Total)
}

func printChange(t *trackersvc.Tracker, referenceNo string) {
	for _, rec := range t.Transactions() {
		if rec.ReferenceNo != referenceNo {
			continue
		}
		fmt.Printf("* %s\n", referenceNo)
		helpers.PrintStruct(rec)
		return
	}
}
