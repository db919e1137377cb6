package domain

// RegionRisk is a per-brain-region finding inside an analysis report.
// Score is normalized to [0,1]; Level is one of "Low", "Moderate",
// "High Risk" as demanded from the model.
type RegionRisk struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
	Level       string  `json:"level"`
}

// DiseaseRisk is a scored disease probability entry (0-100) with a display
// color chosen by the model.
type DiseaseRisk struct {
	Name        string  `json:"name"`
	Probability float64 `json:"probability"`
	Color       string  `json:"color,omitempty"`
}

// ScoredEntry is a generic name/score pair used for GWAS pathway and
// cell-type scores.
type ScoredEntry struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// ConfidenceEntry is a per-diagnosis-class model confidence (0-100).
type ConfidenceEntry struct {
	Name        string  `json:"name"`
	Probability float64 `json:"probability"`
}

// YearRisk is one point of the 10-year risk projection.
type YearRisk struct {
	Year      int     `json:"year"`
	RiskLevel float64 `json:"riskLevel"`
}

// AnalysisReport is the structured multimodal diagnostic report attached to
// an analysis request. It is a pure value object; the field set and JSON
// names are the wire contract given to the model and must stay stable.
type AnalysisReport struct {
	Summary             string            `json:"summary"`
	DetailedFindings    string            `json:"detailedFindings"`
	Regions             []RegionRisk      `json:"regions"`
	Recommendation      string            `json:"recommendation"`
	DiseaseRisks        []DiseaseRisk     `json:"diseaseRisks"`
	GwasAnalysis        []ScoredEntry     `json:"gwasAnalysis"`
	ModelConfidence     []ConfidenceEntry `json:"modelConfidence"`
	LifecycleProjection []YearRisk        `json:"lifecycleProjection"`
}

// HealthReport is the deterministic per-user risk snapshot shown on the
// patient dashboard.
type HealthReport struct {
	RiskScore           int    `json:"riskScore"`
	DominantRegion      string `json:"dominantRegion"`
	DiagnosisSuggestion string `json:"diagnosisSuggestion"`
	GeneCount           int    `json:"geneCount"`
}
