package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/evangelosroutis/hypothesis-generation/internal/agent"
	"github.com/evangelosroutis/hypothesis-generation/internal/config"
	"github.com/evangelosroutis/hypothesis-generation/internal/graph"
	"github.com/evangelosroutis/hypothesis-generation/internal/platform/envutil"
	"github.com/evangelosroutis/hypothesis-generation/internal/platform/logger"
	"github.com/evangelosroutis/hypothesis-generation/internal/platform/neo4jdb"
	"github.com/evangelosroutis/hypothesis-generation/internal/platform/openai"
)

func main() {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if len(os.Args) < 2 {
		fmt.Println("usage: hypothesis-generation <import|ask> [args]")
		os.Exit(2)
	}

	cfg, err := config.Load(envutil.String("CONFIG_PATH", "config/config.yaml"))
	if err != nil {
		log.Fatal("Could not load config", "error", err)
	}

	store, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		log.Fatal("Could not init Neo4j client", "error", err)
	}
	ctx := context.Background()
	defer store.Close(ctx)

	llm, err := openai.NewClient(log)
	if err != nil {
		log.Fatal("Could not init OpenAI client", "error", err)
	}

	switch os.Args[1] {
	case "import":
		runImport(ctx, log, cfg, store, llm)
	case "ask":
		runAsk(ctx, log, cfg, store, llm, strings.Join(os.Args[2:], " "))
	default:
		fmt.Printf("unknown command %q\n", os.Args[1])
		os.Exit(2)
	}
}

func runImport(ctx context.Context, log *logger.Logger, cfg *config.Config, store *neo4jdb.Client, llm openai.Client) {
	builder := graph.NewBuilder(store, llm, log, cfg.Import.Evidence)
	report, err := builder.Build(ctx, cfg.Import.PathwayFiles, cfg.Import.GAFPath, cfg.AspectMap)
	if err != nil {
		log.Fatal("Import failed", "error", err)
	}
	fmt.Printf("imported %d pathways: %d nodes, %d relationships created, %d records skipped, %d annotations embedded (%s)\n",
		report.Pathways, report.NodesCreated, report.RelationshipsCreated,
		report.Skipped, report.AnnotationsEmbedded, report.Duration)
}

func runAsk(ctx context.Context, log *logger.Logger, cfg *config.Config, store *neo4jdb.Client, llm openai.Client, question string) {
	if strings.TrimSpace(question) == "" {
		fmt.Println("usage: hypothesis-generation ask <question>")
		os.Exit(2)
	}

	reader := graph.NewReader(store, log)
	synth := agent.NewQuerySynthesizer(llm, graph.SchemaDescription, log)
	executor := agent.NewExecutor(store, synth,
		envutil.Int("QUERY_RETRY_BUDGET", 1),
		envutil.Seconds("QUERY_TIMEOUT_SECONDS", 30),
		log)
	executor.SetRecoverable(neo4jdb.IsRecoverableQueryError)
	a := agent.New(
		agent.NewClassifier(llm, log),
		synth,
		executor,
		agent.NewEnricher(reader, llm, cfg.InteractionTypes,
			envutil.Int("ENRICH_CONCURRENCY", 4),
			envutil.Seconds("ENRICH_TIMEOUT_SECONDS", 30),
			log),
		agent.NewAnswerSynthesizer(llm, log),
		log,
	)

	answer, err := a.Ask(ctx, question)
	if err != nil {
		log.Error("Ask failed", "error", err)
		if answer == "" {
			os.Exit(1)
		}
	}
	fmt.Println(answer)
}
