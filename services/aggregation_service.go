// services/aggregation_service.go
package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/AI-Template-SDK/senso-metrics/internal/models"
	"github.com/google/uuid"
)

const (
	visibilityPrior       = 50.0 // neutral prior for small samples
	waldZ                 = 1.96
	mentionScorePoints    = 40.0
	brandCiteScorePoints  = 20.0
	earnedCiteScorePoints = 10.0
	laterRankPoints       = 5.0
	maxBonusRank          = 5
)

var positionRankPoints = []float64{30, 20, 10}

type aggregationService struct {
	promptThreshold    int
	citationThreshold  int
	weightByConfidence bool
}

// NewAggregationService creates the cross-response aggregator. The thresholds
// control small-sample smoothing: below promptThreshold prompts, visibility
// is pulled toward a 50% prior; below citationThreshold attributed citations,
// citation share is pulled toward an even split. With weightByConfidence set,
// raw visibility is discounted by the mean detection confidence before
// smoothing.
func NewAggregationService(promptThreshold, citationThreshold int, weightByConfidence bool) AggregationService {
	if promptThreshold <= 0 {
		promptThreshold = 20
	}
	if citationThreshold <= 0 {
		citationThreshold = 10
	}
	return &aggregationService{
		promptThreshold:    promptThreshold,
		citationThreshold:  citationThreshold,
		weightByConfidence: weightByConfidence,
	}
}

func (s *aggregationService) Aggregate(input *models.AggregationInput) (*models.AggregationResult, error) {
	if input == nil {
		return nil, fmt.Errorf("aggregation input is nil")
	}
	if len(input.TrackedBrands) == 0 {
		return nil, fmt.Errorf("aggregation requires at least one tracked brand")
	}

	valid := make([]models.ResponseRecord, 0, len(input.Responses))
	skipped := 0
	for _, record := range input.Responses {
		if record.Extraction == nil {
			fmt.Printf("[Aggregate] Skipping response %s: no extraction\n", record.ResponseID)
			skipped++
			continue
		}
		valid = append(valid, record)
	}

	totals := models.AggregationTotals{
		TotalPrompts:   countUniquePrompts(input),
		TotalResponses: len(valid),
		SkippedRecords: skipped,
	}
	for _, record := range valid {
		totals.TotalCitations += len(record.Extraction.Citations)
		totals.TotalWords += record.Extraction.TotalWords
	}

	totalAttributed := 0
	attributedByBrand := make(map[string]int, len(input.TrackedBrands))
	for _, record := range valid {
		for _, citation := range record.Extraction.Citations {
			if citation.Type == models.CitationTypeBrand && citation.Brand != "" {
				attributedByBrand[citation.Brand]++
				totalAttributed++
			}
		}
	}

	// Metrics follow the tracked brand input order so repeated runs over the
	// same input produce identical output.
	metrics := make([]models.AggregatedBrandMetric, 0, len(input.TrackedBrands))
	for _, brand := range input.TrackedBrands {
		sample := buildBrandSample(brand, valid, input.Prompts)
		metrics = append(metrics, s.aggregateBrand(brand, sample, attributedByBrand[brand], totalAttributed, len(input.TrackedBrands)))
	}
	assignRanks(metrics)

	return &models.AggregationResult{
		BrandMetrics: metrics,
		Totals:       totals,
		Insights:     generateInsights(metrics, totals),
	}, nil
}

func (s *aggregationService) aggregateBrand(brand string, sample brandSample, brandCitations, totalAttributed, brandCount int) models.AggregatedBrandMetric {
	metric := models.AggregatedBrandMetric{BrandName: brand}

	responses := sample.responses
	n := sample.promptCount
	metric.SampleSize = n

	appearances := 0
	positionSum := 0
	mentionCount := 0
	var sentimentSum float64
	var depthWeighted float64
	var wordSum float64
	var confidenceSum float64

	for _, record := range responses {
		detection := findDetection(record.Extraction, brand)
		wordSum += float64(record.Extraction.TotalWords)
		if detection == nil || !detection.Mentioned {
			continue
		}
		appearances++
		mentionCount += detection.MentionCount
		confidenceSum += meanConfidence(detection)
		if detection.FirstPosition != nil {
			positionSum += *detection.FirstPosition
		}
		if detection.Sentiment != nil {
			sentimentSum += detection.Sentiment.Score
		}
		depthWeighted += detection.DepthOfMention * float64(record.Extraction.TotalWords) / 100
	}

	metric.TotalAppearances = appearances
	metric.TotalMentions = mentionCount

	if n > 0 {
		rawProportion := float64(sample.mentionedPrompts) / float64(n)
		raw := 100 * rawProportion
		if s.weightByConfidence && appearances > 0 {
			raw *= confidenceSum / float64(appearances)
		}
		metric.VisibilityScore = s.smoothVisibility(raw, n)
		// The interval derives from the raw proportion, not the smoothed score.
		interval := waldInterval(rawProportion, n)
		metric.VisibilityInterval = &interval
		metric.VisibilityMin = interval.Lower
		metric.VisibilityMax = interval.Upper
	} else {
		metric.VisibilityInterval = &models.ConfidenceInterval{}
	}

	if wordSum > 0 {
		metric.DepthOfMention = 100 * depthWeighted / wordSum
	}
	if appearances > 0 {
		metric.AvgPosition = float64(positionSum) / float64(appearances)
		metric.SentimentScore = 100 * sentimentSum / float64(appearances)
	}

	metric.CitationShare = s.smoothCitationShare(brandCitations, totalAttributed, brandCount)
	if totalAttributed > 0 {
		interval := waldInterval(metric.CitationShare/100, totalAttributed)
		metric.CitationShareInterval = &interval
	} else {
		metric.CitationShareInterval = &models.ConfidenceInterval{
			Lower: metric.CitationShare,
			Upper: metric.CitationShare,
		}
	}

	return metric
}

// smoothVisibility pulls small-sample rates toward a 50% prior. The prior's
// weight decays linearly and vanishes once the sample reaches the threshold.
func (s *aggregationService) smoothVisibility(raw float64, n int) float64 {
	if n >= s.promptThreshold {
		return raw
	}
	w := float64(s.promptThreshold-n) / float64(s.promptThreshold)
	return w*visibilityPrior + (1-w)*raw
}

// smoothCitationShare blends toward an even split across brands when few
// citations were attributed. With zero attributed citations every brand gets
// exactly the even share, so shares always sum to 100.
func (s *aggregationService) smoothCitationShare(brandCitations, totalAttributed, brandCount int) float64 {
	even := 100 / float64(brandCount)
	if totalAttributed == 0 {
		return even
	}
	raw := 100 * float64(brandCitations) / float64(totalAttributed)
	if totalAttributed >= s.citationThreshold {
		return raw
	}
	w := float64(s.citationThreshold-totalAttributed) / float64(s.citationThreshold)
	return w*even + (1-w)*raw
}

func waldInterval(p float64, n int) models.ConfidenceInterval {
	if n <= 0 {
		return models.ConfidenceInterval{}
	}
	margin := 100 * waldZ * math.Sqrt(p*(1-p)/float64(n))
	lower := 100*p - margin
	upper := 100*p + margin
	if lower < 0 {
		lower = 0
	}
	if upper > 100 {
		upper = 100
	}
	return models.ConfidenceInterval{Lower: lower, Upper: upper}
}

// assignRanks computes per-metric competition ranks: tied values share a
// rank and the next distinct value takes its 1-indexed position, so
// 90, 90, 80 ranks as 1, 1, 3.
func assignRanks(metrics []models.AggregatedBrandMetric) {
	rank := func(name string, value func(models.AggregatedBrandMetric) float64, ascending bool) {
		order := make([]int, len(metrics))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			va, vb := value(metrics[order[a]]), value(metrics[order[b]])
			if ascending {
				return va < vb
			}
			return va > vb
		})
		for pos, idx := range order {
			r := pos + 1
			if pos > 0 && value(metrics[idx]) == value(metrics[order[pos-1]]) {
				r = metrics[order[pos-1]].Ranks[name]
			}
			if metrics[idx].Ranks == nil {
				metrics[idx].Ranks = make(map[string]int)
			}
			metrics[idx].Ranks[name] = r
		}
	}

	rank("visibility", func(m models.AggregatedBrandMetric) float64 { return m.VisibilityScore }, false)
	rank("depth_of_mention", func(m models.AggregatedBrandMetric) float64 { return m.DepthOfMention }, false)
	rank("citation_share", func(m models.AggregatedBrandMetric) float64 { return m.CitationShare }, false)
	rank("sentiment", func(m models.AggregatedBrandMetric) float64 { return m.SentimentScore }, false)
	rank("avg_position", func(m models.AggregatedBrandMetric) float64 {
		if m.AvgPosition == 0 {
			return math.MaxFloat64 // never mentioned sorts last
		}
		return m.AvgPosition
	}, true)
}

func (s *aggregationService) ScoreResponse(extraction *models.ResponseExtraction, brandName string) models.ResponseScore {
	score := models.ResponseScore{BrandName: brandName}
	if extraction == nil {
		return score
	}

	detection := findDetection(extraction, brandName)
	for _, citation := range extraction.Citations {
		if citation.Type == models.CitationTypeBrand && citation.Brand == brandName {
			score.HasBrandCite = true
		}
		if citation.Type == models.CitationTypeEarned {
			score.HasEarnedCite = true
		}
	}

	if detection == nil || !detection.Mentioned {
		return score
	}
	score.Mentioned = true
	score.Score = mentionScorePoints

	// The position bonus only reaches down to the fifth mention.
	score.PositionRank = firstMentionRank(extraction, brandName)
	switch {
	case score.PositionRank == 0:
	case score.PositionRank <= len(positionRankPoints):
		score.Score += positionRankPoints[score.PositionRank-1]
	case score.PositionRank <= maxBonusRank:
		score.Score += laterRankPoints
	}

	if score.HasBrandCite {
		score.Score += brandCiteScorePoints
	}
	if score.HasEarnedCite {
		score.Score += earnedCiteScorePoints
	}

	if detection.Sentiment != nil {
		score.SentimentLabel = detection.Sentiment.Label
		switch detection.Sentiment.Label {
		case "positive":
			score.Score += 10
		case "neutral":
			score.Score += 5
		}
	}

	return score
}

// firstMentionRank orders the mentioned brands of one response by first
// sentence position and returns brandName's 1-indexed rank, 0 if absent.
func firstMentionRank(extraction *models.ResponseExtraction, brandName string) int {
	type entry struct {
		brand    string
		position int
	}
	var mentioned []entry
	for _, detection := range extraction.BrandDetections {
		if !detection.Mentioned || detection.FirstPosition == nil {
			continue
		}
		mentioned = append(mentioned, entry{brand: detection.BrandName, position: *detection.FirstPosition})
	}
	sort.SliceStable(mentioned, func(a, b int) bool {
		return mentioned[a].position < mentioned[b].position
	})
	for i, e := range mentioned {
		if e.brand == brandName {
			return i + 1
		}
	}
	return 0
}

// brandSample is one brand's aggregation scope: the unique prompts whose
// literal text name the brand form the visibility denominator, the subset
// answered with a mention forms the numerator, and the responses under those
// prompts feed the remaining metrics.
type brandSample struct {
	promptCount      int
	mentionedPrompts int
	responses        []models.ResponseRecord
}

// buildBrandSample scopes a brand to the prompts that explicitly name it, so
// a prompt with several responses still counts once. Without prompt texts
// every response stands in for its own prompt; with prompt texts and no
// prompt naming the brand the sample is empty, so the brand's visibility
// reads 0 instead of being diluted across unrelated prompts.
func buildBrandSample(brand string, responses []models.ResponseRecord, prompts []models.Prompt) brandSample {
	if len(prompts) == 0 {
		sample := brandSample{promptCount: len(responses), responses: responses}
		for _, record := range responses {
			if detection := findDetection(record.Extraction, brand); detection != nil && detection.Mentioned {
				sample.mentionedPrompts++
			}
		}
		return sample
	}

	lowerBrand := strings.ToLower(brand)
	named := make(map[uuid.UUID]bool, len(prompts))
	for _, prompt := range prompts {
		if strings.Contains(strings.ToLower(prompt.Text), lowerBrand) {
			named[prompt.PromptID] = true
		}
	}

	sample := brandSample{promptCount: len(named)}
	mentioned := make(map[uuid.UUID]bool)
	for _, record := range responses {
		if !named[record.PromptID] {
			continue
		}
		sample.responses = append(sample.responses, record)
		if detection := findDetection(record.Extraction, brand); detection != nil && detection.Mentioned {
			mentioned[record.PromptID] = true
		}
	}
	sample.mentionedPrompts = len(mentioned)
	return sample
}

// meanConfidence averages a detection's sentence-level confidences. A record
// without them, such as a backfilled legacy row, counts as fully confident.
func meanConfidence(detection *models.BrandDetection) float64 {
	if len(detection.DetectionConfidences) == 0 {
		return 1
	}
	var sum float64
	for _, c := range detection.DetectionConfidences {
		sum += c
	}
	return sum / float64(len(detection.DetectionConfidences))
}

func findDetection(extraction *models.ResponseExtraction, brandName string) *models.BrandDetection {
	for i := range extraction.BrandDetections {
		if extraction.BrandDetections[i].BrandName == brandName {
			return &extraction.BrandDetections[i]
		}
	}
	return nil
}

func countUniquePrompts(input *models.AggregationInput) int {
	seen := make(map[string]bool)
	for _, prompt := range input.Prompts {
		seen[prompt.PromptID.String()] = true
	}
	for _, record := range input.Responses {
		seen[record.PromptID.String()] = true
	}
	delete(seen, "00000000-0000-0000-0000-000000000000")
	return len(seen)
}

// generateInsights renders a short human-readable summary of the run.
func generateInsights(metrics []models.AggregatedBrandMetric, totals models.AggregationTotals) []string {
	var insights []string
	if len(metrics) == 0 || totals.TotalResponses == 0 {
		return []string{"No responses were available for aggregation."}
	}

	leader := metrics[0]
	for _, metric := range metrics[1:] {
		if metric.VisibilityScore > leader.VisibilityScore {
			leader = metric
		}
	}
	insights = append(insights, fmt.Sprintf("%s leads visibility at %.1f%% across %d responses", leader.BrandName, leader.VisibilityScore, totals.TotalResponses))

	citationLeader := metrics[0]
	for _, metric := range metrics[1:] {
		if metric.CitationShare > citationLeader.CitationShare {
			citationLeader = metric
		}
	}
	if totals.TotalCitations > 0 {
		insights = append(insights, fmt.Sprintf("%s holds the largest citation share at %.1f%%", citationLeader.BrandName, citationLeader.CitationShare))
	}

	for _, metric := range metrics {
		if metric.TotalAppearances == 0 {
			insights = append(insights, fmt.Sprintf("%s was not mentioned in any response", metric.BrandName))
		} else if metric.SentimentScore < -10 {
			insights = append(insights, fmt.Sprintf("%s shows negative sentiment (%.1f) and may need messaging attention", metric.BrandName, metric.SentimentScore))
		}
	}

	if totals.TotalResponses < 20 {
		insights = append(insights, fmt.Sprintf("Sample size is small (%d responses); scores are smoothed toward the prior", totals.TotalResponses))
	}
	return insights
}
