package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"neurogen-backend/internal/adapters/ai"
	"neurogen-backend/internal/adapters/persistence/models"
	"neurogen-backend/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeModel is an ai.Client that replays a canned response and
// records what it was asked.
type fakeModel struct {
	response string
	err      error

	mu        sync.Mutex
	turns     [][]ai.Turn
	jsonModes []bool
}

func (m *fakeModel) Generate(ctx context.Context, turns []ai.Turn, jsonMode bool) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, turns)
	m.jsonModes = append(m.jsonModes, jsonMode)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *fakeModel) lastTurns(t *testing.T) []ai.Turn {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.turns)
	return m.turns[len(m.turns)-1]
}

// fakeAnalysisRepo is an in-memory AnalysisRepository
type fakeAnalysisRepo struct {
	mu      sync.Mutex
	results []*models.AnalysisResult
}

func (r *fakeAnalysisRepo) Create(ctx context.Context, result *models.AnalysisResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	result.ID = uint(len(r.results) + 1)
	r.results = append(r.results, result)
	return nil
}

func (r *fakeAnalysisRepo) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*models.AnalysisResult, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var owned []*models.AnalysisResult
	for i := len(r.results) - 1; i >= 0; i-- {
		if r.results[i].UserID == userID {
			owned = append(owned, r.results[i])
		}
	}

	total := int64(len(owned))
	if offset >= len(owned) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(owned) {
		end = len(owned)
	}
	return owned[offset:end], total, nil
}

const validModelReport = "```json\n" + `{
  "summary": "多模态融合分析提示黑质区域异常，建议结合临床进一步评估。",
  "detailedFindings": "【影像学层面】黑质信号减低。【基因组学层面】未提供。【多模态关联】证据有限。",
  "regions": [{"name": "黑质", "description": "神经黑色素信号减低", "score": 0.82, "level": "High Risk"}],
  "recommendation": "1. DAT-SPECT 确诊检查。2. 神经内科随访。",
  "diseaseRisks": [{"name": "帕金森病", "probability": 68, "color": "#e74c3c"}],
  "gwasAnalysis": [{"name": "Dopaminergic Neurons", "score": 74}],
  "modelConfidence": [{"name": "PD", "probability": 71}],
  "lifecycleProjection": [{"year": 2026, "riskLevel": 40}]
}` + "\n```"

func newAnalysisFixture(model *fakeModel) (*AnalysisService, *fakeAnalysisRepo) {
	repo := &fakeAnalysisRepo{}
	return NewAnalysisService(repo, model), repo
}

func TestAnalyze_ParsesModelReport(t *testing.T) {
	model := &fakeModel{response: validModelReport}
	svc, repo := newAnalysisFixture(model)

	report, err := svc.Analyze(context.Background(), "patient_demo", &AnalyzeInput{
		ImageData:     []byte("d"),
		ImageFilename: "scan.png",
	})
	require.NoError(t, err)

	assert.Contains(t, report.Summary, "黑质")
	require.Len(t, report.Regions, 1)
	assert.Equal(t, "High Risk", report.Regions[0].Level)
	assert.InDelta(t, 0.82, report.Regions[0].Score, 1e-9)

	// Model was called once in strict JSON mode
	require.Len(t, model.jsonModes, 1)
	assert.True(t, model.jsonModes[0])

	// Report archived for the caller
	archived, total, err := repo.ListByUser(context.Background(), "patient_demo", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Contains(t, archived[0].ResultJSON, "黑质")
}

func TestAnalyze_FallbackOnUnparseableOutput(t *testing.T) {
	model := &fakeModel{response: "抱歉，我无法生成 JSON。"}
	svc, _ := newAnalysisFixture(model)

	// md5("d") selects the Parkinson's entry (黑质 / 纹状体)
	report, err := svc.Analyze(context.Background(), "patient_demo", &AnalyzeInput{
		ImageData:     []byte("d"),
		ImageFilename: "scan.png",
	})
	require.NoError(t, err)

	assert.Equal(t, "AI 融合分析：影像显示黑质异常。", report.Summary)
	assert.Equal(t, "建议进一步检查。", report.Recommendation)

	require.Len(t, report.Regions, 2)
	for i, name := range []string{"黑质", "纹状体"} {
		assert.Equal(t, name, report.Regions[i].Name)
		assert.InDelta(t, 0.8, report.Regions[i].Score, 1e-9)
		assert.Equal(t, "High Risk", report.Regions[i].Level)
	}

	// Aux sections are present and empty, never null
	assert.NotNil(t, report.DiseaseRisks)
	assert.Empty(t, report.DiseaseRisks)
	assert.NotNil(t, report.GwasAnalysis)
	assert.NotNil(t, report.ModelConfidence)
	assert.NotNil(t, report.LifecycleProjection)
}

func TestAnalyze_SameImageSameFallback(t *testing.T) {
	model := &fakeModel{response: "not json"}
	svc, _ := newAnalysisFixture(model)

	input := &AnalyzeInput{ImageData: []byte("the same scan"), ImageFilename: "scan.png"}

	first, err := svc.Analyze(context.Background(), "u1", input)
	require.NoError(t, err)
	second, err := svc.Analyze(context.Background(), "u1", input)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAnalyze_FallbackWhenModelUnreachable(t *testing.T) {
	model := &fakeModel{err: fmt.Errorf("%w: connection refused", domain.ErrModelUnavailable)}
	svc, repo := newAnalysisFixture(model)

	input := &AnalyzeInput{
		ImageData:     []byte("d"),
		ImageFilename: "scan.png",
	}

	// An unreachable model is recoverable: the caller still gets the
	// deterministic fallback report for the image
	first, err := svc.Analyze(context.Background(), "u1", input)
	require.NoError(t, err)

	require.Len(t, first.Regions, 2)
	assert.Equal(t, "黑质", first.Regions[0].Name)
	assert.Equal(t, "纹状体", first.Regions[1].Name)
	assert.Equal(t, "AI 融合分析：影像显示黑质异常。", first.Summary)

	// Same image, same report, call after call
	second, err := svc.Analyze(context.Background(), "u1", input)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Fallback reports are archived like any other
	_, total, err := repo.ListByUser(context.Background(), "u1", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestAnalyze_ValidJSONReturnedVerbatim(t *testing.T) {
	// Syntactically valid JSON passes through untouched, even with an
	// empty summary; no schema coercion, no fallback
	model := &fakeModel{response: `{"summary": "", "regions": []}`}
	svc, _ := newAnalysisFixture(model)

	report, err := svc.Analyze(context.Background(), "u1", &AnalyzeInput{
		ImageData:     []byte("d"),
		ImageFilename: "scan.png",
	})
	require.NoError(t, err)

	assert.Empty(t, report.Summary)
	assert.Empty(t, report.Regions)
	assert.NotEqual(t, "建议进一步检查。", report.Recommendation)
}

func TestAnalyze_MissingImage(t *testing.T) {
	svc, _ := newAnalysisFixture(&fakeModel{response: validModelReport})

	_, err := svc.Analyze(context.Background(), "u1", &AnalyzeInput{})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestAnalyze_PromptCarriesImagingFeatures(t *testing.T) {
	model := &fakeModel{response: validModelReport}
	svc, _ := newAnalysisFixture(model)

	_, err := svc.Analyze(context.Background(), "u1", &AnalyzeInput{
		ImageData:     []byte("d"),
		ImageFilename: "brain_mri.png",
	})
	require.NoError(t, err)

	turns := model.lastTurns(t)
	require.Len(t, turns, 2)
	assert.Equal(t, "system", turns[0].Role)
	assert.Contains(t, turns[0].Content, "NeuroGen Core")

	userPrompt := turns[1].Content
	assert.Contains(t, userPrompt, "brain_mri.png")
	assert.Contains(t, userPrompt, imagingCatalog[3].Description)
	assert.Contains(t, userPrompt, "高风险")
	assert.Contains(t, userPrompt, "黑质, 纹状体")
	assert.Contains(t, userPrompt, noGeneDataText)
}

func TestAnalyze_PromptCarriesGeneFeatures(t *testing.T) {
	model := &fakeModel{response: validModelReport}
	svc, _ := newAnalysisFixture(model)

	// 2-character filename selects gene catalog entry 2
	_, err := svc.Analyze(context.Background(), "u1", &AnalyzeInput{
		ImageData:     []byte("a"),
		ImageFilename: "scan.png",
		GeneData:      []byte("gene-matrix"),
		GeneFilename:  "ab",
	})
	require.NoError(t, err)

	userPrompt := model.lastTurns(t)[1].Content
	assert.Contains(t, userPrompt, geneCatalog[2].Summary)
	assert.Contains(t, userPrompt, "SNCA, PINK1, LRRK2")
	assert.Contains(t, userPrompt, "Dopaminergic Neurons")
	assert.NotContains(t, userPrompt, noGeneDataText)
}

func TestHealthReport_Deterministic(t *testing.T) {
	svc, _ := newAnalysisFixture(&fakeModel{})

	first := svc.HealthReport("patient_demo")
	second := svc.HealthReport("patient_demo")
	assert.Equal(t, first, second)

	// Precomputed expectations for the demo patient ID
	assert.Equal(t, 65, first.RiskScore)
	assert.Equal(t, "丘脑网状核", first.DominantRegion)
	assert.Equal(t, "神经回路连接正常，处于健康范围。", first.DiagnosisSuggestion)
	assert.Equal(t, 325, first.GeneCount)
}

func TestHealthReport_Ranges(t *testing.T) {
	svc, _ := newAnalysisFixture(&fakeModel{})

	for _, userID := range []string{"u1", "110101199501011234", "张三", ""} {
		report := svc.HealthReport(userID)
		assert.GreaterOrEqual(t, report.RiskScore, 20, "user %q", userID)
		assert.LessOrEqual(t, report.RiskScore, 79, "user %q", userID)
		assert.GreaterOrEqual(t, report.GeneCount, 100, "user %q", userID)
		assert.LessOrEqual(t, report.GeneCount, 599, "user %q", userID)
		assert.NotEmpty(t, report.DominantRegion)
		assert.NotEmpty(t, report.DiagnosisSuggestion)
	}
}
