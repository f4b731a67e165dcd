// Command dutchpay is a maintenance CLI for the bill store: it lists
// bills, prints settlement summaries, and can run a full redistribute
// pass. Configuration comes from DUTCHPAY_* env vars or an optional
// dutchpay.yaml in the working directory.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"

	"github.com/nbbang/dutchpay/internal/autosave"
	"github.com/nbbang/dutchpay/internal/calculator"
	"github.com/nbbang/dutchpay/internal/metrics"
	"github.com/nbbang/dutchpay/internal/models"
	"github.com/nbbang/dutchpay/internal/service"
	"github.com/nbbang/dutchpay/internal/storage/sqlite"
	"github.com/nbbang/dutchpay/pkg/logging"
)

func main() {
	billID := flag.String("bill", "", "bill id: print its settlement summary")
	distribute := flag.Bool("distribute", false, "recompute all NORMAL items before summarizing")
	flag.Parse()

	v := viper.New()
	v.SetEnvPrefix("DUTCHPAY")
	v.AutomaticEnv()
	v.SetDefault("db_path", "./data/bills.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("metrics_addr", "")
	v.SetDefault("autosave_ms", 750)
	v.SetConfigName("dutchpay")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
	}

	logging.SetupWithLevel(logging.Level(v.GetString("log_level")))

	store, err := sqlite.New(v.GetString("db_path"))
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("storage initialized", "database", v.GetString("db_path"))

	if addr := v.GetString("metrics_addr"); addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			slog.Info("metrics listening", "addr", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				slog.Error("metrics server failed", "error", err)
			}
		}()
	}

	save := func(ctx context.Context, bill *models.Bill) error {
		if err := store.SaveBill(ctx, bill); err != nil {
			metrics.SaveFailures.Inc()
			return err
		}
		return nil
	}
	saver := autosave.New(time.Duration(v.GetInt("autosave_ms"))*time.Millisecond, save, nil)
	defer saver.Close()

	svc := service.NewBillService(store, saver)
	ctx := context.Background()

	if *billID == "" {
		listBills(ctx, store)
		return
	}

	bill, err := svc.LoadBill(ctx, *billID)
	if err != nil {
		slog.Error("failed to load bill", "bill_id", *billID, "error", err)
		os.Exit(1)
	}

	if *distribute {
		if _, _, err := svc.DistributeAll(ctx, bill); err != nil {
			slog.Error("distribute failed", "bill_id", bill.ID, "error", err)
			os.Exit(1)
		}
		if err := svc.Flush(ctx); err != nil {
			slog.Error("save failed", "bill_id", bill.ID, "error", err)
			os.Exit(1)
		}
	}

	sum, warnings, err := svc.Summarize(ctx, bill)
	if err != nil {
		slog.Error("summary failed", "bill_id", bill.ID, "error", err)
		os.Exit(1)
	}
	printSummary(bill, sum)
	for _, w := range warnings {
		fmt.Printf("warning: %s\n", w)
	}
}

func listBills(ctx context.Context, store *sqlite.SQLiteStore) {
	infos, err := store.ListBills(ctx)
	if err != nil {
		slog.Error("failed to list bills", "error", err)
		os.Exit(1)
	}
	if len(infos) == 0 {
		fmt.Println("no bills")
		return
	}
	for _, info := range infos {
		fmt.Printf("%s  %-10s  %s\n", info.ID, info.Status, info.Title)
	}
}

func printSummary(bill *models.Bill, sum *calculator.Summary) {
	cur := bill.Settings.Currency
	fmt.Printf("%s [%s]\n", bill.Title, bill.Status)
	fmt.Printf("  subtotal    %s %s\n", sum.ItemSubtotal, cur)
	fmt.Printf("  adjustments %s %s\n", sum.AdjustmentTotal, cur)
	fmt.Printf("  grand total %s %s\n", sum.GrandTotal, cur)
	for _, p := range sum.Participants {
		payer := ""
		if p.IsPayer {
			payer = " (payer)"
		}
		fmt.Printf("  %-20s owes %s, paid %s, outstanding %s%s\n",
			p.Name, p.Total, p.Paid, p.Outstanding, payer)
	}
	fmt.Printf("  settled %d/%d participants, %.1f%% of total\n",
		sum.SettledCount, len(sum.Participants), sum.CompletionPercent)
}
