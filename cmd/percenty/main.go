package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/onepick2019/percenty-workbench/driver"
	"github.com/onepick2019/percenty-workbench/internal/types"
	"github.com/onepick2019/percenty-workbench/orchestrator"
	"github.com/onepick2019/percenty-workbench/workbook"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	// Parse command line flags
	var (
		workbookFlag = flag.String("workbook", "percenty_id.xlsx", "Path to the account workbook")
		accountFlag  = flag.String("account", "", "Single login id to process (default: every account in the workbook)")
		workflowFlag = flag.String("workflow", "upload", "Workflow to run: upload, translate or images")
		cafe24Flag   = flag.Bool("cafe24", false, "Run the Cafe24 import after the upload rounds")
		headless     = flag.Bool("headless", true, "Run the browser headless")
		outputFlag   = flag.String("output", "", "Summary output file path (default: stdout)")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	var workflow orchestrator.Workflow
	switch *workflowFlag {
	case "upload":
		workflow = orchestrator.WorkflowUpload
	case "translate":
		workflow = orchestrator.WorkflowTranslate
	case "images":
		workflow = orchestrator.WorkflowImages
	default:
		log.Fatalf("Unknown workflow %q (expected upload, translate or images)", *workflowFlag)
	}

	password := os.Getenv("PERCENTY_PASSWORD")
	if password == "" {
		log.Fatal("PERCENTY_PASSWORD environment variable is required")
	}

	// Setup logging
	logger := logrus.New()

	// Set timestamp format with milliseconds
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	// Set log level from LOG_LEVEL env if present
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := logrus.ParseLevel(levelStr); err == nil {
			logger.SetLevel(level)
		}
	} else if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	config := types.DefaultConfig()
	config.Headless = *headless
	config.WorkbookPath = *workbookFlag
	if url := os.Getenv("PERCENTY_APP_URL"); url != "" {
		config.AppURL = url
	}
	if url := os.Getenv("PERCENTY_LOGIN_URL"); url != "" {
		config.LoginURL = url
	}

	// Mirror the log stream into a per-run file alongside stdout.
	if config.LogDir != "" {
		if err := os.MkdirAll(config.LogDir, 0755); err == nil {
			name := fmt.Sprintf("run-%s.log", time.Now().Format("20060102-150405"))
			if f, err := os.Create(filepath.Join(config.LogDir, name)); err == nil {
				defer f.Close()
				logger.SetOutput(io.MultiWriter(os.Stdout, f))
			}
		}
	}

	rows, err := workbook.Load(config.WorkbookPath, logger)
	if err != nil {
		logger.Fatalf("Failed to load workbook: %v", err)
	}

	accounts := workbook.AccountIDs(rows)
	if *accountFlag != "" {
		accounts = []string{strings.TrimSpace(*accountFlag)}
	}
	if len(accounts) == 0 {
		logger.Fatal("Workbook contains no accounts")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 6*time.Hour)
	defer cancel()

	startTime := time.Now()
	logger.Infof("Starting %s workflow for %d account(s)", *workflowFlag, len(accounts))

	summary := types.RunSummary{Started: startTime}
	for _, account := range accounts {
		accountRows := workbook.RowsForAccount(rows, account)
		if len(accountRows) == 0 {
			logger.Warnf("Account %s has no workbook rows, skipping", account)
			continue
		}
		logger.Infof("Processing account %s (%d row(s))", account, len(accountRows))

		session, err := driver.NewSession(ctx, config, logger)
		if err != nil {
			logger.Errorf("Browser start failed for %s: %v", account, err)
			summary.Rows = append(summary.Rows, types.RowResult{LoginID: account, Fatal: err.Error()})
			continue
		}

		o := orchestrator.New(session, workflow, *cafe24Flag)
		results := o.RunAccount(ctx, account, password, accountRows)
		summary.Rows = append(summary.Rows, results...)
		summary.Accounts++

		session.Close()
	}
	summary.Finished = time.Now()
	logger.Infof("Run completed in %v", summary.Finished.Sub(startTime))

	// Marshal the summary to JSON
	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		logger.Fatalf("Failed to marshal summary: %v", err)
	}

	// Output the summary
	if *outputFlag != "" {
		if err := os.WriteFile(*outputFlag, jsonData, 0644); err != nil {
			logger.Fatalf("Failed to write output file: %v", err)
		}
		logger.Infof("Summary written to: %s", *outputFlag)
	} else {
		fmt.Println(string(jsonData))
	}

	failed := 0
	for _, r := range summary.Rows {
		if r.Fatal != "" {
			failed++
		}
	}
	logger.Infof("Accounts processed: %d", summary.Accounts)
	logger.Infof("Rows processed: %d", len(summary.Rows))
	logger.Infof("Rows with fatal errors: %d", failed)
}
