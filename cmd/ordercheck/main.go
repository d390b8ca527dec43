// ordercheck is a diagnostic tool for the text core: it resolves a message
// against a catalog file and optionally reconciles an OCR text file against
// the resolved total, printing the results as JSON.
//
//	ordercheck -catalog menu.json [-synonyms synonyms.json] -message "quiero 2 pizzas"
//	ordercheck -catalog menu.json -message "..." -ocr receipt.txt
//	ordercheck -ocr receipt.txt -expected 24.00
package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"

	"github.com/pedidobot/ordercore/internal/common"
	"github.com/pedidobot/ordercore/internal/receipt"
	"github.com/pedidobot/ordercore/internal/resolve"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	catalogPath := flag.String("catalog", "", "path to catalog/menu JSON")
	synonymsPath := flag.String("synonyms", "", "path to synonym table JSON (optional)")
	message := flag.String("message", "", "customer message to resolve")
	ocrPath := flag.String("ocr", "", "path to OCR text of a payment receipt (optional)")
	expected := flag.String("expected", "", "expected total override (optional)")
	flag.Parse()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	out := make(map[string]any)
	var expectedTotal *decimal.Decimal

	if *message != "" {
		if *catalogPath == "" {
			logger.Error("usage", "cmd", "ordercheck -catalog menu.json -message \"...\"")
			os.Exit(2)
		}
		catalogJSON, err := os.ReadFile(*catalogPath)
		if err != nil {
			logger.Error("read catalog", "path", *catalogPath, "error", err)
			os.Exit(1)
		}
		var synonymsJSON []byte
		if *synonymsPath != "" {
			synonymsJSON, err = os.ReadFile(*synonymsPath)
			if err != nil {
				logger.Error("read synonyms", "path", *synonymsPath, "error", err)
				os.Exit(1)
			}
		}

		resolver, err := resolve.NewResolver(resolve.OptionsFromConfig(cfg), logger)
		if err != nil {
			logger.Error("build resolver", "error", err)
			os.Exit(1)
		}
		order, err := resolver.Resolve(catalogJSON, synonymsJSON, *message)
		if err != nil {
			logger.Error("resolve failed", "error", err)
			os.Exit(1)
		}
		out["order"] = order
		expectedTotal = order.ExpectedTotal()
	}

	if *expected != "" {
		d, err := decimal.NewFromString(*expected)
		if err != nil {
			logger.Error("invalid -expected value", "value", *expected, "error", err)
			os.Exit(2)
		}
		expectedTotal = &d
	}

	if *ocrPath != "" {
		ocrText, err := os.ReadFile(*ocrPath)
		if err != nil {
			logger.Error("read ocr text", "path", *ocrPath, "error", err)
			os.Exit(1)
		}
		rec := receipt.NewReconciler(receipt.Options{
			ToleranceRatio: cfg.Receipt.ToleranceRatio,
			RequireExact:   cfg.Receipt.RequireExact,
		}, logger)
		out["reconciliation"] = rec.Reconcile(string(ocrText), expectedTotal)
	}

	if len(out) == 0 {
		logger.Error("usage", "cmd", "ordercheck -catalog menu.json -message \"...\" [-ocr receipt.txt] [-expected 24.00]")
		os.Exit(2)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error("encode output", "error", err)
		os.Exit(1)
	}
}
