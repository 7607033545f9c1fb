package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/gaffoor434/knowledge-base/internal/config"
	"github.com/gaffoor434/knowledge-base/internal/core/ports"
	"github.com/gaffoor434/knowledge-base/internal/core/usecase"
	"github.com/gaffoor434/knowledge-base/internal/infrastructure/cache"
	"github.com/gaffoor434/knowledge-base/internal/infrastructure/chunking"
	"github.com/gaffoor434/knowledge-base/internal/infrastructure/extractor"
	"github.com/gaffoor434/knowledge-base/internal/infrastructure/extractor/pdfdoc"
	"github.com/gaffoor434/knowledge-base/internal/infrastructure/extractor/plaintext"
	"github.com/gaffoor434/knowledge-base/internal/infrastructure/extractor/xlsxdoc"
	"github.com/gaffoor434/knowledge-base/internal/infrastructure/lexical"
	"github.com/gaffoor434/knowledge-base/internal/infrastructure/llm/ollama"
	"github.com/gaffoor434/knowledge-base/internal/infrastructure/queue/nats"
	"github.com/gaffoor434/knowledge-base/internal/infrastructure/rerank"
	"github.com/gaffoor434/knowledge-base/internal/infrastructure/repository/postgres"
	"github.com/gaffoor434/knowledge-base/internal/infrastructure/resilience"
	"github.com/gaffoor434/knowledge-base/internal/infrastructure/storage/localfs"
	"github.com/gaffoor434/knowledge-base/internal/infrastructure/vector/qdrant"
)

// App wires infrastructure into the inbound use cases. Both binaries share
// this assembly; each uses the slice of it it needs.
type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue      *nats.Queue
	Lexical    ports.LexicalIndex
	Repo       ports.DocumentRepository
	Documents  ports.DocumentReader
	IngestUC   ports.DocumentIngestor
	ProcessUC  ports.DocumentProcessor
	RetrieveUC ports.ChunkRetriever
	AnswerUC   ports.KnowledgeQuerier
	RebuildUC  ports.IndexRebuilder

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		IndexSubject:       cfg.NATSIndexSubject,
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, executor)
	generator := ollama.NewGenerator(ollamaClient)

	var embedder ports.Embedder = ollama.NewEmbedder(ollamaClient)
	if cfg.EmbedCacheSize > 0 {
		cached, err := cache.NewCachedEmbedder(embedder, cfg.EmbedCacheSize)
		if err != nil {
			return nil, fmt.Errorf("init embed cache: %w", err)
		}
		embedder = cached
	}

	var expander ports.QueryExpander
	if cfg.Retrieval.ExpansionEnabled {
		expander = ollama.NewExpander(ollamaClient, cfg.Retrieval.MaxSubqueries, logger)
	}

	vectorDB := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)
	reranker := rerank.New(cfg.RerankerURL, logger)

	lexicalIndex := lexical.New(cfg.LexicalIndexPath)
	if err := lexicalIndex.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		// A broken snapshot is recoverable: the worker rebuilds from the
		// vector store on the next corpus change.
		logger.Warn("lexical index load failed, starting empty", "error", err)
	}

	weightsFile, err := config.LoadSourceWeights(cfg.SourceWeightsPath)
	if err != nil {
		return nil, fmt.Errorf("load source weights: %w", err)
	}

	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	dispatch := extractor.NewDispatcher(plaintext.NewExtractor(storage))
	dispatch.Register(".pdf", pdfdoc.NewExtractor(storage, logger))
	dispatch.Register(".xlsx", xlsxdoc.NewExtractor(storage))

	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue, weightsFile.WeightFor)
	processUC := usecase.NewProcessDocumentUseCase(repo, dispatch, chunker, embedder, vectorDB)
	retrieveUC := usecase.NewRetrieveUseCase(
		lexicalIndex, embedder, vectorDB, expander, reranker, repo,
		usecase.RetrievalParams{
			LexicalWeight:    cfg.Retrieval.LexicalWeight,
			VectorWeight:     cfg.Retrieval.VectorWeight,
			CandidateTopK:    cfg.Retrieval.CandidateTopK,
			SubqueryMinScore: cfg.Retrieval.SubqueryMinScore,
			MinCombinedScore: cfg.Retrieval.MinCombinedScore,
			RequireBoth:      cfg.Retrieval.RequireBoth,
			ComponentFloor:   cfg.Retrieval.ComponentFloor,
			FinalTopN:        cfg.Retrieval.FinalTopN,
			ExpansionEnabled: cfg.Retrieval.ExpansionEnabled,
		},
		logger,
	)
	answerUC := usecase.NewAnswerUseCase(retrieveUC, generator)
	rebuildUC := usecase.NewRebuildIndexUseCase(vectorDB, lexicalIndex, logger)

	return &App{
		Config: cfg,
		Logger: logger,

		Queue:      queue,
		Lexical:    lexicalIndex,
		Repo:       repo,
		Documents:  repo,
		IngestUC:   ingestUC,
		ProcessUC:  processUC,
		RetrieveUC: retrieveUC,
		AnswerUC:   answerUC,
		RebuildUC:  rebuildUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// RunLexicalRefresh blocks until ctx is cancelled, reloading the persisted
// lexical snapshot whenever the worker reports a rebuild. Without this, a
// serving process would keep its startup snapshot forever and newly indexed
// documents would only be reachable through vector search, where the fused
// score cannot clear the confidence gate on its own.
func (a *App) RunLexicalRefresh(ctx context.Context) error {
	return a.Queue.SubscribeIndexRebuilt(ctx, func(context.Context) error {
		if err := a.Lexical.Load(); err != nil {
			return fmt.Errorf("reload lexical index: %w", err)
		}
		a.Logger.Info("lexical index reloaded", "chunks", a.Lexical.Size())
		return nil
	})
}
