package secrets

import (
	"fmt"

	"github.com/zricethezav/gitleaks/v8/detect"
)

const (
	gitleaksDescriptionTemplate = "gitleaks: %s (%s)"
	gitleaksInitErrorTemplate   = "unable to load gitleaks rules: %w"
)

// GitleaksDetector checks values against the gitleaks default rule pack.
type GitleaksDetector struct {
	detector *detect.Detector
}

// NewGitleaksDetector loads the default gitleaks configuration. Loading compiles
// several hundred expressions, so one detector should serve a whole run.
func NewGitleaksDetector() (*GitleaksDetector, error) {
	detector, detectorError := detect.NewDetectorDefaultConfig()
	if detectorError != nil {
		return nil, fmt.Errorf(gitleaksInitErrorTemplate, detectorError)
	}
	return &GitleaksDetector{detector: detector}, nil
}

// Detect reports one Detection per gitleaks finding in value.
func (gitleaksDetector *GitleaksDetector) Detect(value string) []Detection {
	reported := gitleaksDetector.detector.DetectString(value)
	detections := make([]Detection, 0, len(reported))
	for _, finding := range reported {
		detections = append(detections, Detection{
			Description: fmt.Sprintf(gitleaksDescriptionTemplate, finding.Description, finding.RuleID),
		})
	}
	return detections
}
