package handlers

import (
	"sync"

	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/ledger"
	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/report"
)

// ResultStore holds analysis outcomes in memory, keyed by job ID. The
// engine itself never persists results; the service layer caches them so
// GET /api/analyses/{id} can return them once the job completes.
// Data is lost on restart, like the in-memory job store.
type ResultStore struct {
	mu       sync.RWMutex
	payloads map[string]*ledger.CleanedDataset
	results  map[string]*report.Document
	errs     map[string]error
}

// NewResultStore creates an empty result store.
func NewResultStore() *ResultStore {
	return &ResultStore{
		payloads: make(map[string]*ledger.CleanedDataset),
		results:  make(map[string]*report.Document),
		errs:     make(map[string]error),
	}
}

// SavePayload parks an inline dataset until its job is picked up.
func (s *ResultStore) SavePayload(jobID string, dataset *ledger.CleanedDataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads[jobID] = dataset
}

// TakePayload removes and returns the parked dataset for a job, if any.
func (s *ResultStore) TakePayload(jobID string) (*ledger.CleanedDataset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dataset, ok := s.payloads[jobID]
	if ok {
		delete(s.payloads, jobID)
	}
	return dataset, ok
}

// SaveResult records a finished report for a job.
func (s *ResultStore) SaveResult(jobID string, doc *report.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[jobID] = doc
	delete(s.errs, jobID)
}

// SaveError records a terminal failure for a job.
func (s *ResultStore) SaveError(jobID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[jobID] = err
}

// Result returns the stored outcome for a job: the report on success, the
// error on failure, or (nil, nil) while the job is still in flight.
func (s *ResultStore) Result(jobID string) (*report.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if doc, ok := s.results[jobID]; ok {
		return doc, nil
	}
	return nil, s.errs[jobID]
}
