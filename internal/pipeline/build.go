package pipeline

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ppiankov/newslens/internal/cache"
	"github.com/ppiankov/newslens/internal/classifier"
	"github.com/ppiankov/newslens/internal/llm"
	"github.com/ppiankov/newslens/internal/model"
	"github.com/ppiankov/newslens/internal/transcript"
	"github.com/ppiankov/newslens/internal/util"
	"github.com/ppiankov/newslens/internal/worker"
)

// transcriptRPS bounds requests per host made by the transcript fetcher
const transcriptRPS = 2

// Build creates the production Service from configuration: the LLM
// provider, the classifier registry and the cached transcript fetcher.
func Build(cfg model.Config) (*Service, error) {
	llmCfg := llm.ResolveEnv(llm.ConfigFromModel(cfg.LLM))
	provider, err := llm.NewProvider(llmCfg)
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	completer := llm.NewClient(provider, llmCfg)

	transport := util.NewTransport(cfg.LLM.HTTPProxy, cfg.LLM.HTTPSProxy, cfg.LLM.NoProxy)

	registry, err := classifier.Load(cfg.Classifiers, transport)
	if err != nil {
		return nil, fmt.Errorf("load classifiers: %w", err)
	}

	store, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}

	timeout := time.Duration(cfg.Transcript.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	fetcher := transcript.NewFetcher(cfg.Transcript,
		transcript.WithHTTPClient(&http.Client{Timeout: timeout, Transport: transport}),
		transcript.WithCache(store, 0),
		transcript.WithLimiter(worker.NewLimiter(transcriptRPS, 1)),
	)

	return New(cfg, completer, registry, fetcher)
}
