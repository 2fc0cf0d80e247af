// Package memory provides an in-memory transactional store implementing the
// repository ports. Each transaction works on a private copy of the state that
// replaces the committed state only when the unit of work succeeds.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shukrishariff-oms/pms-istmo/internal/apperrors"
	"github.com/shukrishariff-oms/pms-istmo/internal/core/domain"
	"github.com/shukrishariff-oms/pms-istmo/internal/core/ports/repositories"
)

type memoryState struct {
	departments map[string]domain.Department
	requests    map[string]domain.BudgetRequest
	balances    map[domain.BalanceKey]domain.CategoryBalance
	documents   map[string]domain.DocumentTracker
	entries     map[string][]domain.CustodyLogEntry
	lastEntryID int64
}

func newMemoryState() memoryState {
	return memoryState{
		departments: map[string]domain.Department{},
		requests:    map[string]domain.BudgetRequest{},
		balances:    map[domain.BalanceKey]domain.CategoryBalance{},
		documents:   map[string]domain.DocumentTracker{},
		entries:     map[string][]domain.CustodyLogEntry{},
	}
}

func (s memoryState) clone() memoryState {
	cp := memoryState{
		departments: make(map[string]domain.Department, len(s.departments)),
		requests:    make(map[string]domain.BudgetRequest, len(s.requests)),
		balances:    make(map[domain.BalanceKey]domain.CategoryBalance, len(s.balances)),
		documents:   make(map[string]domain.DocumentTracker, len(s.documents)),
		entries:     make(map[string][]domain.CustodyLogEntry, len(s.entries)),
		lastEntryID: s.lastEntryID,
	}
	for k, v := range s.departments {
		cp.departments[k] = v
	}
	for k, v := range s.requests {
		cp.requests[k] = cloneRequest(v)
	}
	for k, v := range s.balances {
		cp.balances[k] = v
	}
	for k, v := range s.documents {
		cp.documents[k] = cloneDocument(v)
	}
	for k, v := range s.entries {
		list := make([]domain.CustodyLogEntry, len(v))
		for i, e := range v {
			list[i] = cloneEntry(e)
		}
		cp.entries[k] = list
	}
	return cp
}

// Store is a process-local implementation of the department, budget and custody repositories.
type Store struct {
	mu    sync.RWMutex
	state memoryState
	nowFn func() time.Time
}

var (
	_ repositories.DepartmentRepositoryFacade = (*Store)(nil)
	_ repositories.BudgetRepositoryFacade     = (*Store)(nil)
	_ repositories.CustodyRepositoryFacade    = (*Store)(nil)
)

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{state: newMemoryState(), nowFn: func() time.Time { return time.Now().UTC() }}
}

// AddDepartment registers a department. Departments are managed elsewhere; this is the seeding hook.
func (s *Store) AddDepartment(d domain.Department) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.departments[d.DepartmentID] = d
}

// SetBalance overwrites a balance row outside of any journal operation.
// It exists to simulate drift in the materialized view.
func (s *Store) SetBalance(b domain.CategoryBalance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.balances[b.Key()] = b
}

// run executes fn against a private copy of the state and publishes the copy when fn succeeds.
func (s *Store) run(fn func(state *memoryState, now time.Time) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	working := s.state.clone()
	if err := fn(&working, s.nowFn()); err != nil {
		return err
	}
	s.state = working
	return nil
}

func (s *Store) view(fn func(state *memoryState)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.state)
}

// FindDepartmentByID implements repositories.DepartmentReader.
func (s *Store) FindDepartmentByID(_ context.Context, departmentID string) (*domain.Department, error) {
	var (
		d  domain.Department
		ok bool
	)
	s.view(func(st *memoryState) { d, ok = st.departments[departmentID] })
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &d, nil
}

// ListDepartments implements repositories.DepartmentReader.
func (s *Store) ListDepartments(_ context.Context) ([]domain.Department, error) {
	var out []domain.Department
	s.view(func(st *memoryState) {
		out = make([]domain.Department, 0, len(st.departments))
		for _, d := range st.departments {
			out = append(out, d)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneRequest(r domain.BudgetRequest) domain.BudgetRequest {
	r.ApprovedBy = cloneString(r.ApprovedBy)
	r.ApprovedAt = cloneTime(r.ApprovedAt)
	return r
}

func cloneDocument(d domain.DocumentTracker) domain.DocumentTracker {
	d.RefNumber = cloneString(d.RefNumber)
	d.ProjectID = cloneString(d.ProjectID)
	d.Logs = nil
	return d
}

func cloneEntry(e domain.CustodyLogEntry) domain.CustodyLogEntry {
	e.FromHolder = cloneString(e.FromHolder)
	e.Note = cloneString(e.Note)
	e.SignedAt = cloneTime(e.SignedAt)
	e.SignerName = cloneString(e.SignerName)
	e.SignatureImage = cloneString(e.SignatureImage)
	return e
}

func sameRef(a, b *string) bool {
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
