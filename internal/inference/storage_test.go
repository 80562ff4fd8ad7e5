package inference

import (
	"context"
	"sync"

	"github.com/claimstack/claimgraph/internal/classifier"
	"github.com/claimstack/claimgraph/internal/model"
)

// fakeStorage is the in-memory Storage used across the package tests.
type fakeStorage struct {
	mu sync.Mutex

	pipeline *model.Pipeline
	claims   []model.Claim
	deps     []model.Dependency

	metricsWritten []model.ClaimMetrics
	depTotal       int
	depTotalSet    bool

	getPipelineErr error
	claimsErr      error
	insertErr      error
	existsErr      error
	metricsErr     error
}

func (f *fakeStorage) GetPipeline(ctx context.Context, pipelineID string) (*model.Pipeline, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getPipelineErr != nil {
		return nil, f.getPipelineErr
	}
	if f.pipeline == nil || f.pipeline.ID != pipelineID {
		return nil, nil
	}
	p := *f.pipeline
	return &p, nil
}

func (f *fakeStorage) ClaimsByPipeline(ctx context.Context, pipelineID string) ([]model.Claim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.claimsErr != nil {
		return nil, f.claimsErr
	}
	out := make([]model.Claim, len(f.claims))
	copy(out, f.claims)
	return out, nil
}

func (f *fakeStorage) InsertDependency(ctx context.Context, dep *model.Dependency) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.deps = append(f.deps, *dep)
	return nil
}

func (f *fakeStorage) DependencyExists(ctx context.Context, pipelineID, sourceClaimID, targetClaimID string, relType model.DependencyType) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsErr != nil {
		return false, f.existsErr
	}
	for _, dep := range f.deps {
		if dep.PipelineID == pipelineID &&
			dep.SourceClaimID == sourceClaimID &&
			dep.TargetClaimID == targetClaimID &&
			dep.RelationshipType == relType {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStorage) DependenciesByPipeline(ctx context.Context, pipelineID string) ([]model.Dependency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Dependency, len(f.deps))
	copy(out, f.deps)
	return out, nil
}

func (f *fakeStorage) CountDependencies(ctx context.Context, pipelineID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deps), nil
}

func (f *fakeStorage) UpdateClaimMetrics(ctx context.Context, metrics []model.ClaimMetrics) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.metricsErr != nil {
		return f.metricsErr
	}
	f.metricsWritten = append(f.metricsWritten, metrics...)
	return nil
}

func (f *fakeStorage) SetPipelineDependencyTotal(ctx context.Context, pipelineID string, total int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.depTotal = total
	f.depTotalSet = true
	return nil
}

// stubClassifier replays canned judgments keyed by the unordered claim
// id pair, with a catch-all default.
type stubClassifier struct {
	mu        sync.Mutex
	byPair    map[[2]string]*classifier.Judgment
	defaultJ  *classifier.Judgment
	err       error
	callCount int
}

func (s *stubClassifier) Classify(ctx context.Context, a, b classifier.ClaimInput) (*classifier.Judgment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callCount++
	if s.err != nil {
		return nil, s.err
	}
	if j, ok := s.byPair[pairKey(a.ID, b.ID)]; ok {
		return j, nil
	}
	return s.defaultJ, nil
}

func noneJudgment() *classifier.Judgment {
	return &classifier.Judgment{
		RelationshipType: "NONE",
		Direction:        classifier.DirectionAToB,
		Confidence:       0.9,
	}
}
