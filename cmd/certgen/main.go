package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"certgen/certificate-backend/internal/app"
	"certgen/certificate-backend/internal/batch"
	"certgen/certificate-backend/internal/certificate"
	"certgen/certificate-backend/internal/config"
	"certgen/certificate-backend/internal/roster"
)

const sampleBody = "has successfully completed WorkTRADE, an online training module on the Prevention of Insider Trading in India covering the Securities and Exchange Board of India (SEBI) Regulations. By completing this training module, you have demonstrated your dedication to upholding ethical standards in the financial markets and preventing the misuse of confidential information. Your commitment to compliance and integrity is commendable."

const sampleSignature = "https://s3rain.s3.ap-south-1.amazonaws.com/1749188910271_Antony_Alex_RM_Signatory.jpg.png"

const usage = `Usage: certgen [flags] [command]

Commands:
  single            prompt for a recipient name and date and render one certificate
  batch             render the sample certificates, or every row of -roster
  positions         render one certificate per logo placement
  roster-template   write an empty roster workbook to -out

Without a command an interactive menu is shown.

Flags:
`

type options struct {
	configPath string
	template   string
	out        string
	roster     string
	memStats   bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "config.json", "path to the JSON config file")
	flag.StringVar(&opts.template, "template", "", "template variant (bordered-inset, compact-inset, full-bleed)")
	flag.StringVar(&opts.out, "out", "", "output directory, or file for roster-template")
	flag.StringVar(&opts.roster, "roster", "", "csv, xlsx or json roster for the batch command")
	flag.BoolVar(&opts.memStats, "memstats", false, "report heap allocated while rendering")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	if opts.out != "" && flag.Arg(0) != "roster-template" {
		cfg.Render.OutputDir = opts.out
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialise", zap.Error(err))
	}

	stdin := bufio.NewReader(os.Stdin)
	command := flag.Arg(0)
	if command == "" {
		command = menu(stdin, os.Stdout)
	}

	var before runtime.MemStats
	if opts.memStats {
		runtime.ReadMemStats(&before)
	}

	if err := run(ctx, a, opts, command, stdin, os.Stdout); err != nil {
		logger.Fatal("Command failed", zap.String("command", command), zap.Error(err))
	}

	if opts.memStats {
		var after runtime.MemStats
		runtime.ReadMemStats(&after)
		alloc := after.TotalAlloc - before.TotalAlloc
		fmt.Printf("Total memory allocated during certificate generation: %d bytes (%.2f KB)\n", alloc, float64(alloc)/1024)
	}
}

func menu(in *bufio.Reader, out io.Writer) string {
	fmt.Fprintln(out, "Certificate Generator")
	fmt.Fprintln(out, "1. Create single certificate (interactive)")
	fmt.Fprintln(out, "2. Create multiple sample certificates")
	fmt.Fprint(out, "Choose option (1 or 2): ")

	choice, _ := in.ReadString('\n')
	switch strings.TrimSpace(choice) {
	case "1":
		return "single"
	case "2":
		return "batch"
	default:
		fmt.Fprintln(out, "Invalid choice. Creating sample certificates...")
		return "batch"
	}
}

func run(ctx context.Context, a *app.App, opts options, command string, in *bufio.Reader, out io.Writer) error {
	switch command {
	case "single":
		return runSingle(ctx, a, opts, in, out)
	case "batch":
		reqs := sampleRequests()
		if opts.roster != "" {
			var err error
			if reqs, err = roster.Read(opts.roster); err != nil {
				return err
			}
		}
		return runBatch(ctx, a, opts, reqs, out)
	case "positions":
		return runBatch(ctx, a, opts, positionRequests(), out)
	case "roster-template":
		path := opts.out
		if path == "" {
			path = "roster.xlsx"
		}
		if err := roster.WriteTemplate(path); err != nil {
			return err
		}
		fmt.Fprintf(out, "Roster template written: %s\n", path)
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func runSingle(ctx context.Context, a *app.App, opts options, in *bufio.Reader, out io.Writer) error {
	name := prompt(in, out, "Enter recipient name: ", "John Doe")
	date := prompt(in, out, "Enter date (DD-MM-YYYY): ", "09-09-2023")

	req := baseRequest(name, date)
	req.Template = opts.template

	if err := os.MkdirAll(a.Config.Render.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	dest := filepath.Join(a.Config.Render.OutputDir, batch.FileName(name))

	result, err := a.Engine.Render(ctx, dest, req)
	if err != nil {
		return err
	}
	printWarnings(out, result)
	fmt.Fprintf(out, "Certificate created: %s\n", result.Path)
	return nil
}

func runBatch(ctx context.Context, a *app.App, opts options, reqs []certificate.Request, out io.Writer) error {
	if opts.template != "" {
		for i := range reqs {
			if reqs[i].Template == "" {
				reqs[i].Template = opts.template
			}
		}
	}

	report, err := a.Runner.Run(ctx, reqs)
	if err != nil {
		return err
	}
	for _, o := range report.Outcomes {
		if o.Err != nil {
			fmt.Fprintf(out, "FAILED %s: %v\n", o.Name, o.Err)
			continue
		}
		printWarnings(out, o.Result)
		fmt.Fprintf(out, "Certificate created: %s\n", o.Path)
	}
	fmt.Fprintf(out, "%d of %d certificates generated (run %s)\n", report.Succeeded(), len(report.Outcomes), report.RunID)
	return report.Err()
}

func prompt(r *bufio.Reader, out io.Writer, label, fallback string) string {
	fmt.Fprint(out, label)
	line, _ := r.ReadString('\n')
	if v := strings.TrimSpace(line); v != "" {
		return v
	}
	return fallback
}

func printWarnings(out io.Writer, result *certificate.Result) {
	for _, msg := range result.WarningMessages() {
		fmt.Fprintf(out, "  warning: %s\n", msg)
	}
}

func baseRequest(name, date string) certificate.Request {
	return certificate.Request{
		CourseTitle:    "Certificate of Completion",
		CourseSubtitle: "Welcome!",
		RecipientName:  name,
		BodyText:       sampleBody,
		Date:           date,
		SignatureImage: sampleSignature,
		IssuerName:     "Antony Alex",
		IssuerTitle:    "CEO - Rainmaker",
	}
}

func sampleRequests() []certificate.Request {
	return []certificate.Request{
		baseRequest("Sachin Sagar", "09-09-2023"),
		baseRequest("Alice Johnson", "15-08-2024"),
	}
}

func positionRequests() []certificate.Request {
	var reqs []certificate.Request
	for _, p := range []certificate.LogoPlacement{certificate.LogoLeft, certificate.LogoRight, certificate.LogoCenter} {
		req := baseRequest("Sachin Kumar", "09-09-2023")
		req.LogoPlacement = p
		req.Template = certificate.TemplateFullBleed
		reqs = append(reqs, req)
	}
	return reqs
}
