// services/extraction_service.go
package services

import (
	"fmt"
	"sync"

	"github.com/AI-Template-SDK/senso-metrics/internal/models"
)

type extractionService struct {
	text       TextService
	patterns   PatternService
	detection  DetectionService
	sentiment  SentimentService
	citations  CitationService
	classifier ClassificationService
	maxWorkers int
}

// NewExtractionService wires the per-response pipeline together.
func NewExtractionService(
	text TextService,
	patterns PatternService,
	detection DetectionService,
	sentiment SentimentService,
	citations CitationService,
	classifier ClassificationService,
	maxWorkers int,
) ExtractionService {
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	return &extractionService{
		text:       text,
		patterns:   patterns,
		detection:  detection,
		sentiment:  sentiment,
		citations:  citations,
		classifier: classifier,
		maxWorkers: maxWorkers,
	}
}

func (s *extractionService) ProcessResponse(req *models.ResponseRequest) *models.ResponseExtraction {
	if req == nil {
		return &models.ResponseExtraction{}
	}

	extraction := &models.ResponseExtraction{
		ResponseText: req.ResponseText,
	}

	sentences := s.text.SplitSentences(req.ResponseText)
	extraction.TotalSentences = len(sentences)
	extraction.TotalWords = s.text.CountWords(req.ResponseText)

	// Detections are emitted for every tracked brand, mentioned or not, in
	// the input brand order.
	for _, brand := range req.TrackedBrands {
		set := s.patterns.GeneratePatterns(brand)

		// A misspelled mention carries no substring hit, so the quick gate
		// only skips brands too long for the fuzzy strategy.
		if extraction.TotalSentences == 0 ||
			(len(brand) > maxFuzzyBrandLength && !s.patterns.QuickMention(req.ResponseText, set)) {
			extraction.BrandDetections = append(extraction.BrandDetections, models.BrandDetection{BrandName: brand})
			continue
		}

		detection := s.detection.DetectBrand(sentences, set)
		detection.DepthOfMention = s.detection.DepthOfMention(&detection, extraction.TotalSentences, extraction.TotalWords)
		if detection.Mentioned {
			result := s.sentiment.ScoreBrand(detection.Sentences, set)
			detection.Sentiment = &result
		}
		extraction.BrandDetections = append(extraction.BrandDetections, detection)
	}

	citations, markers := s.citations.ExtractCitations(req.ResponseText, req.CitationCandidates, req.Provider)
	extraction.Citations = s.classifier.ClassifyCitations(citations, req.TrackedBrands, req.TargetBrand)
	extraction.Markers = markers

	return extraction
}

// ProcessResponses fans requests out over a bounded worker pool. Each result
// lands at its request's index, so the output order matches the input order
// no matter how the workers are scheduled.
func (s *extractionService) ProcessResponses(reqs []*models.ResponseRequest) []*models.ResponseExtraction {
	if len(reqs) == 0 {
		return nil
	}

	fmt.Printf("[ProcessResponses] Processing %d responses with %d workers\n", len(reqs), s.maxWorkers)

	results := make([]*models.ResponseExtraction, len(reqs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	workers := s.maxWorkers
	if workers > len(reqs) {
		workers = len(reqs)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = s.ProcessResponse(reqs[idx])
			}
		}()
	}
	for idx := range reqs {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	return results
}
