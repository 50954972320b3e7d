package benford

import (
	"math"
	"testing"
)

func TestCalculateMAD_ReferencePointIsZero(t *testing.T) {
	frequencies := CalculateDigitFrequencies(benfordAmounts())

	if mad := CalculateMAD(frequencies); mad != 0 {
		t.Errorf("MAD of a perfect Benford sample = %v, want 0", mad)
	}
}

func TestCalculateMAD_SingleDigitPopulation(t *testing.T) {
	amounts := make([]float64, 100)
	for i := range amounts {
		amounts[i] = 1000
	}
	frequencies := CalculateDigitFrequencies(amounts)

	// All mass on digit 1: deviations are 69.9 for digit 1 and the expected
	// percentage for every other digit, so the mean is 139.8/9 points.
	want := 139.8 / 9 / 100
	if mad := CalculateMAD(frequencies); math.Abs(mad-want) > 1e-9 {
		t.Errorf("MAD = %v, want %v", mad, want)
	}
}

func TestCalculateChiSquare(t *testing.T) {
	t.Run("perfect sample is near zero", func(t *testing.T) {
		frequencies := CalculateDigitFrequencies(benfordAmounts())
		if chi := CalculateChiSquare(frequencies, 1000); chi > 1e-6 {
			t.Errorf("chi-square of a perfect Benford sample = %v, want ~0", chi)
		}
	})

	t.Run("single digit population", func(t *testing.T) {
		amounts := make([]float64, 100)
		for i := range amounts {
			amounts[i] = 1500
		}
		frequencies := CalculateDigitFrequencies(amounts)

		// (100-30.1)^2/30.1 for digit 1, plus the expected count for each
		// digit that never occurred.
		want := 69.9*69.9/30.1 + (17.6 + 12.5 + 9.7 + 7.9 + 6.7 + 5.8 + 5.1 + 4.6)
		if chi := CalculateChiSquare(frequencies, 100); math.Abs(chi-want) > 1e-9 {
			t.Errorf("chi-square = %v, want %v", chi, want)
		}
	})

	t.Run("zero total count", func(t *testing.T) {
		frequencies := CalculateDigitFrequencies(nil)
		if chi := CalculateChiSquare(frequencies, 0); chi != 0 {
			t.Errorf("chi-square with no data = %v, want 0", chi)
		}
	})
}

func TestAssessCompliance(t *testing.T) {
	tests := []struct {
		mad            string
		value          float64
		wantAssessment string
		wantRisk       RiskLevel
	}{
		{mad: "well under first boundary", value: 0.005, wantAssessment: "compliant", wantRisk: RiskLow},
		{mad: "zero", value: 0, wantAssessment: "compliant", wantRisk: RiskLow},
		{mad: "exactly first boundary", value: 0.006, wantAssessment: "acceptable", wantRisk: RiskLow},
		{mad: "inside acceptable low band", value: 0.0119, wantAssessment: "acceptable", wantRisk: RiskLow},
		{mad: "exactly second boundary", value: 0.012, wantAssessment: "acceptable", wantRisk: RiskMedium},
		{mad: "exactly third boundary", value: 0.015, wantAssessment: "suspicious", wantRisk: RiskHigh},
		{mad: "inside suspicious band", value: 0.0219, wantAssessment: "suspicious", wantRisk: RiskHigh},
		{mad: "exactly top boundary", value: 0.022, wantAssessment: "highly_suspicious", wantRisk: RiskCritical},
		{mad: "far beyond top boundary", value: 0.025, wantAssessment: "highly_suspicious", wantRisk: RiskCritical},
	}

	for _, tt := range tests {
		t.Run(tt.mad, func(t *testing.T) {
			assessment, risk := AssessCompliance(tt.value)
			if assessment != tt.wantAssessment || risk != tt.wantRisk {
				t.Errorf("AssessCompliance(%v) = (%q, %q), want (%q, %q)",
					tt.value, assessment, risk, tt.wantAssessment, tt.wantRisk)
			}
		})
	}
}
