package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/benford"
	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/ledger"
)

// Document bundles an analysis result with the dataset diagnostics it was
// produced from. This is the lossless export contract: every field of the
// result appears in the serialized output.
type Document struct {
	Dataset struct {
		TotalRows   int      `json:"total_rows"`
		ValidRows   int      `json:"valid_rows"`
		RemovedRows int      `json:"removed_rows"`
		Errors      []string `json:"errors,omitempty"`
		Warnings    []string `json:"warnings,omitempty"`
	} `json:"dataset"`
	Result *benford.AnalysisResult `json:"result"`
}

// NewDocument pairs a result with the upstream validation counts it echoes.
func NewDocument(dataset *ledger.CleanedDataset, result *benford.AnalysisResult) *Document {
	doc := &Document{Result: result}
	if dataset != nil {
		doc.Dataset.TotalRows = dataset.TotalRows
		doc.Dataset.ValidRows = dataset.ValidRows
		doc.Dataset.RemovedRows = dataset.RemovedRows
		doc.Dataset.Errors = dataset.Errors
		doc.Dataset.Warnings = dataset.Warnings
	}
	return doc
}

// RenderJSON serializes the document with indentation for audit artifacts.
func RenderJSON(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("RenderJSON: %w", err)
	}
	return data, nil
}

// RenderMarkdown renders the document as a human-readable audit report.
func RenderMarkdown(doc *Document) string {
	r := doc.Result
	var b strings.Builder

	b.WriteString("# Benford Ledger Audit\n\n")
	fmt.Fprintf(&b, "- Assessment: **%s** (risk: %s)\n", r.OverallAssessment, r.RiskLevel)
	fmt.Fprintf(&b, "- Transactions analyzed: %d (%d with a valid leading digit)\n",
		r.TotalTransactions, r.ValidTransactions)
	fmt.Fprintf(&b, "- MAD: %.4f | Chi-square: %.2f\n\n", r.MAD, r.ChiSquare)

	if len(r.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Leading-digit distribution\n\n")
	b.WriteString("| Digit | Count | Observed % | Expected % | Deviation |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, f := range r.DigitFrequencies {
		fmt.Fprintf(&b, "| %d | %d | %.2f | %.2f | %.2f |\n",
			f.Digit, f.Count, f.Observed, f.Expected, f.Deviation)
	}
	b.WriteString("\n")

	if len(r.SuspiciousVendors) > 0 {
		b.WriteString("## Vendor risk ranking\n\n")
		b.WriteString("| Vendor | Transactions | MAD | Chi-square | Risk |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, v := range r.SuspiciousVendors {
			fmt.Fprintf(&b, "| %s | %d | %.4f | %.2f | %s |\n",
				v.Vendor, v.TransactionCount, v.MAD, v.ChiSquare, v.RiskLevel)
		}
		b.WriteString("\n")
		for _, v := range r.SuspiciousVendors {
			if len(v.SuspiciousPatterns) == 0 {
				continue
			}
			fmt.Fprintf(&b, "### %s\n\n", v.Vendor)
			for _, p := range v.SuspiciousPatterns {
				fmt.Fprintf(&b, "- %s\n", p)
			}
			b.WriteString("\n")
		}
	}

	if len(r.FlaggedTransactions) > 0 {
		b.WriteString("## Flagged transactions\n\n")
		b.WriteString("| # | Amount | Vendor | First digit | Risk | Reason |\n")
		b.WriteString("|---|---|---|---|---|---|\n")
		for _, f := range r.FlaggedTransactions {
			fmt.Fprintf(&b, "| %d | %.2f | %s | %d | %s | %s |\n",
				f.Index, f.Amount, f.Vendor, f.FirstDigit, f.RiskLevel, f.Reason)
		}
		b.WriteString("\n")
	}

	if doc.Dataset.TotalRows > 0 {
		b.WriteString("## Dataset diagnostics\n\n")
		fmt.Fprintf(&b, "- Rows: %d total, %d valid, %d removed upstream\n",
			doc.Dataset.TotalRows, doc.Dataset.ValidRows, doc.Dataset.RemovedRows)
		for _, e := range doc.Dataset.Errors {
			fmt.Fprintf(&b, "- Error: %s\n", e)
		}
		for _, w := range doc.Dataset.Warnings {
			fmt.Fprintf(&b, "- Warning: %s\n", w)
		}
	}

	return b.String()
}
