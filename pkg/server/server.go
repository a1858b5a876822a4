// package server serves on-demand repository analysis over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/rbowen/asf-highlights/pkg/bots"
	"github.com/rbowen/asf-highlights/pkg/common"
	"github.com/rbowen/asf-highlights/pkg/gitlog"
	"github.com/rbowen/asf-highlights/pkg/identity"
	"github.com/rbowen/asf-highlights/pkg/insights"
	"github.com/rbowen/asf-highlights/pkg/providers"
	"github.com/rbowen/asf-highlights/pkg/validator"
)

// defaultWindowDays is the analysis window used when a request does not
// ask for one.
const defaultWindowDays = 7

// HighlightsServer provides a leveled logger for use during serving
// requests and a GitRepoProvider for acquiring analyzable repositories.
type HighlightsServer struct {
	Logger     *zap.SugaredLogger
	Provider   providers.GitRepoProvider
	extractor  *gitlog.Extractor
	classifier *bots.Classifier
}

// NewHighlightsServer returns a HighlightsServer which uses the provided
// GitRepoProvider to acquire repositories for analysis.
func NewHighlightsServer(provider providers.GitRepoProvider, logger *zap.SugaredLogger) *HighlightsServer {
	return &HighlightsServer{
		Logger:     logger,
		Provider:   provider,
		extractor:  gitlog.NewExtractor(logger),
		classifier: bots.New(),
	}
}

// Run starts the http server on the provided port
func (s HighlightsServer) Run(serverPort string) {
	//nolint:errcheck
	defer s.Logger.Sync()
	s.Logger.Infof("Starting server on port %s", serverPort)
	http.HandleFunc("/analyze", s.handleAnalyze)
	http.HandleFunc("/ping", s.pingHandler)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%s", serverPort), nil))
}

type analyzeRequest struct {
	URL  string `json:"url"`
	Days int    `json:"days"`
}

type analyzeResponse struct {
	URL             string                            `json:"url"`
	Cutoff          time.Time                         `json:"cutoff"`
	NewContributors []insights.NewContributor         `json:"new_contributors"`
	Milestones      map[int][]insights.MilestoneEvent `json:"milestones"`
}

func (s HighlightsServer) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.Logger.Errorf("Received request with invalid method: %v", r.Body)
		http.Error(w, "Invalid request method, expected post", http.StatusMethodNotAllowed)
		return
	}

	var data analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		s.Logger.Errorf("Could not decode request json body: %v with error: %v", r.Body, err)
		http.Error(w, "Could not decode request body", http.StatusBadRequest)
		return
	}
	if data.Days == 0 {
		data.Days = defaultWindowDays
	}

	normalizedURL, err := common.NormalizeGitURL(data.URL)
	if err != nil {
		s.Logger.Errorf("Could not normalize repository url %q: %v", data.URL, err)
		http.Error(w, "Could not normalize repository url", http.StatusBadRequest)
		return
	}

	v := validator.New()
	validator.ValidateAnalyzeRequest(v, normalizedURL, data.Days)
	if !v.Valid() {
		s.Logger.Errorf("Invalid analyze request %q: %v", normalizedURL, v.Errors)
		http.Error(w, "Invalid analyze request", http.StatusBadRequest)
		return
	}

	if valid, err := common.IsValidGitRepo(normalizedURL); !valid {
		s.Logger.Errorf("Repository url is not a valid git repository %q: %v", normalizedURL, err)
		http.Error(w, "Unreachable or invalid git repository", http.StatusBadRequest)
		return
	}

	response, err := s.analyzeRepository(r.Context(), normalizedURL, insights.NewWindow(data.Days))
	if err != nil {
		s.Logger.Errorf("Could not analyze repository: %v with error: %v", normalizedURL, err)
		http.Error(w, "Could not process input", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.Logger.Errorf("Could not encode analyze response: %v", err)
	}
}

func (s HighlightsServer) pingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		s.Logger.Errorf("Could not connect to /ping endpoint: %v", err.Error())
		http.Error(w, "Could not connect, server is down", http.StatusInternalServerError)
	}
}

// analyzeRepository fetches the repository through the provider and runs
// the analysis pipeline against its working directory.
func (s HighlightsServer) analyzeRepository(ctx context.Context, url string, window insights.Window) (*analyzeResponse, error) {
	s.Logger.Debugf("Fetching repository for analysis: %s", url)
	repo, err := s.Provider.FetchRepo(url)
	if err != nil {
		return nil, err
	}
	defer repo.Done()

	records, err := s.extractor.Extract(ctx, repo.Dir())
	if err != nil {
		return nil, err
	}

	parse := func(raw string) time.Time {
		return gitlog.ParseDate(s.Logger, raw)
	}
	aggregates := insights.BuildContributors(records, s.classifier.IsAutomated, parse)
	resolved := identity.Resolve(aggregates, s.Logger)

	return &analyzeResponse{
		URL:             url,
		Cutoff:          window.Cutoff,
		NewContributors: insights.NewContributors(resolved, window, identity.GitHubLogin),
		Milestones:      insights.Milestones(resolved, window, identity.GitHubLogin),
	}, nil
}
