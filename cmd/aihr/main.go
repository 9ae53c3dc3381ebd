// Command aihr is the command-line front end of the AI HR Platform.
//
// Usage:
//
//	aihr analyze <resume.pdf | --text T> [--output F]
//	aihr optimize <resume.pdf | --text T> [--output F]
//	aihr web [--port P] [--host H] [--share]
//	aihr telegram [--token T]
//	aihr config <set KEY VALUE | get KEY | show>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DovudAsadov/ai-hr-platform/api/handlers"
	"github.com/DovudAsadov/ai-hr-platform/api/routes"
	"github.com/DovudAsadov/ai-hr-platform/internal/bot"
	"github.com/DovudAsadov/ai-hr-platform/internal/config"
	"github.com/DovudAsadov/ai-hr-platform/internal/llm"
	"github.com/DovudAsadov/ai-hr-platform/internal/processor"
	"github.com/DovudAsadov/ai-hr-platform/pkg/extract"
	"github.com/DovudAsadov/ai-hr-platform/pkg/logger"
)

const usage = `AI HR Platform - resume analysis and optimization

Usage:
  aihr analyze <file> [--text T] [--output F]   Analyze a resume
  aihr optimize <file> [--text T] [--output F]  Optimize a resume
  aihr web [--port P] [--host H] [--share]      Launch the web API
  aihr telegram [--token T]                     Launch the Telegram bot
  aihr config set <key> <value>                 Persist a configuration value
  aihr config get <key>                         Print a configuration value
  aihr config show                              Print the configuration (redacted)

Credentials are read from ~/.aihr/config.json and from the environment
(OPENAI_API_KEY, ANTHROPIC_API_KEY, GROQ_API_KEY, TELEGRAM_BOT_TOKEN).`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}

	switch args[0] {
	case "analyze", "optimize":
		return runProcess(args[0], args[1:])
	case "web":
		return runWeb(args[1:])
	case "telegram":
		return runTelegram(args[1:])
	case "config":
		return runConfig(args[1:])
	case "help", "-h", "--help":
		fmt.Println(usage)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", args[0], usage)
		return 2
	}
}

// processArgs is a parsed analyze/optimize invocation.
type processArgs struct {
	file   string
	text   string
	output string
}

// parseProcessArgs accepts the resume path before or after the flags,
// so "aihr analyze resume.pdf --output out.txt" parses the same as
// "aihr analyze --output out.txt resume.pdf". Parse stops at the first
// non-flag argument, so the leftovers are re-parsed after pulling the
// path out.
func parseProcessArgs(command string, args []string) (processArgs, error) {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	text := fs.String("text", "", "resume text to process instead of a file")
	output := fs.String("output", "", "write the result to this file instead of stdout")

	var pa processArgs
	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			return processArgs{}, err
		}
		if fs.NArg() == 0 {
			break
		}
		if pa.file != "" {
			return processArgs{}, fmt.Errorf("unexpected argument %q", fs.Arg(0))
		}
		pa.file = fs.Arg(0)
		rest = fs.Args()[1:]
	}
	pa.text = *text
	pa.output = *output
	return pa, nil
}

// runProcess handles the analyze and optimize subcommands.
func runProcess(command string, args []string) int {
	pa, err := parseProcessArgs(command, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 2
	}

	// CLI runs keep logs off stdout so results stay pipeable.
	log, err := logger.New(
		logger.WithLevel("warn"),
		logger.WithEncoding("console"),
		logger.WithOutputPaths([]string{"stderr"}),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	defer log.Sync()

	store, err := config.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	backend, err := llm.NewFromConfig(store)
	if err != nil {
		var cfgErr *config.ConfigurationError
		if errors.As(err, &cfgErr) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			fmt.Fprintln(os.Stderr, "Set an API key in the environment (e.g. OPENAI_API_KEY) or run:")
			fmt.Fprintln(os.Stderr, "  aihr config set openai_api_key <key>")
			return 1
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	var doc processor.Document
	switch {
	case pa.text != "":
		doc = processor.TextDocument(pa.text)
	case pa.file != "":
		doc = processor.FileDocument(pa.file)
	default:
		fmt.Fprintln(os.Stderr, "error: provide a resume file or --text")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	extractor := extract.NewPDFExtractor(log)

	var result processor.Result
	if command == "analyze" {
		result = processor.NewResumeAnalyzer(backend, extractor, log).Process(ctx, doc)
	} else {
		result = processor.NewResumeOptimizer(backend, extractor, log).Process(ctx, doc)
	}

	payload, ok := result.Payload()
	if !ok {
		fmt.Fprintln(os.Stderr, "error:", result.ErrMessage())
		return 1
	}

	if pa.output != "" {
		if err := os.WriteFile(pa.output, []byte(payload+"\n"), 0o644); err != nil {
			fmt.Fprintln(os.Stderr, "error: can't write output:", err)
			return 1
		}
		fmt.Fprintln(os.Stderr, "result written to", pa.output)
		return 0
	}
	fmt.Println(payload)
	return 0
}

func runWeb(args []string) int {
	fs := flag.NewFlagSet("web", flag.ExitOnError)
	port := fs.Int("port", 0, "port for the web API (default 7860)")
	host := fs.String("host", "", "host for the web API (default 127.0.0.1)")
	share := fs.Bool("share", false, "listen on all interfaces")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	log, err := logger.New(
		logger.WithLevel("info"),
		logger.WithEncoding("json"),
		logger.WithOutputPaths([]string{"stdout", "logs/web.log"}),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	defer log.Sync()

	store, err := config.New()
	if err != nil {
		log.Error("can't load configuration", logger.Error(err))
		return 1
	}
	// Flags take the explicit layer, above file and environment values.
	if *host != "" {
		store.Set(config.KeyWebHost, *host)
	}
	if *port != 0 {
		store.Set(config.KeyWebPort, fmt.Sprintf("%d", *port))
	}

	backend, err := llm.NewFromConfig(store)
	if err != nil {
		log.Error("no usable AI backend", logger.Error(err))
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	extractor := extract.NewPDFExtractor(log)
	analyzer := processor.NewResumeAnalyzer(backend, extractor, log)
	optimizer := processor.NewResumeOptimizer(backend, extractor, log)

	h := handlers.NewHandlers(analyzer, optimizer, log)
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	routes.SetupRoutes(r, h)

	bindHost := store.Get(config.KeyWebHost, "127.0.0.1")
	if *share {
		bindHost = "0.0.0.0"
	}
	addr := fmt.Sprintf("%s:%d", bindHost, store.GetInt(config.KeyWebPort, 7860))

	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		log.Info("web server starting",
			logger.String("addr", addr),
			logger.String("backend", backend.Provider()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", logger.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", logger.Error(err))
		return 1
	}
	return 0
}

func runTelegram(args []string) int {
	fs := flag.NewFlagSet("telegram", flag.ExitOnError)
	token := fs.String("token", "", "telegram bot token (overrides configuration)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	log, err := logger.New(
		logger.WithLevel("info"),
		logger.WithEncoding("json"),
		logger.WithOutputPaths([]string{"stdout", "logs/telegram.log"}),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	defer log.Sync()

	store, err := config.New()
	if err != nil {
		log.Error("can't load configuration", logger.Error(err))
		return 1
	}
	if *token != "" {
		store.Set(config.KeyTelegramBotToken, *token)
	}

	if err := store.Require(config.KeyTelegramBotToken); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Pass --token, set TELEGRAM_BOT_TOKEN, or run:")
		fmt.Fprintln(os.Stderr, "  aihr config set telegram_bot_token <token>")
		return 1
	}

	backend, err := llm.NewFromConfig(store)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	extractor := extract.NewPDFExtractor(log)
	analyzer := processor.NewResumeAnalyzer(backend, extractor, log)
	optimizer := processor.NewResumeOptimizer(backend, extractor, log)

	b, err := bot.New(store.Get(config.KeyTelegramBotToken, ""), analyzer, optimizer, log)
	if err != nil {
		log.Error("can't start telegram bot", logger.Error(err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("telegram bot stopped with error", logger.Error(err))
		return 1
	}
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: aihr config <set KEY VALUE | get KEY | show>")
		return 2
	}

	store, err := config.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	switch args[0] {
	case "set":
		if len(args) != 3 {
			fmt.Fprintln(os.Stderr, "usage: aihr config set KEY VALUE")
			return 2
		}
		key := config.Key(args[1])
		if !config.IsKnownKey(key) {
			fmt.Fprintf(os.Stderr, "error: unknown configuration key %q\n", args[1])
			return 2
		}
		store.Set(key, args[2])
		if err := store.Save(); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return 1
		}
		fmt.Fprintf(os.Stderr, "saved %s\n", key)
		return 0
	case "get":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "usage: aihr config get KEY")
			return 2
		}
		key := config.Key(args[1])
		if !config.IsKnownKey(key) {
			fmt.Fprintf(os.Stderr, "error: unknown configuration key %q\n", args[1])
			return 2
		}
		fmt.Println(store.Get(key, ""))
		return 0
	case "show":
		fmt.Println(store.String())
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown config action %q\n", args[0])
		return 2
	}
}
