package service

import (
	"context"
	"errors"
	"sync"

	"github.com/jjenkins/clinicmap/internal/config"
	"github.com/jjenkins/clinicmap/internal/model"
)

// fakeStore is an in-memory RecordStore
type fakeStore struct {
	mu       sync.Mutex
	tables   map[string][]*Record
	listErr  error
	failIDs  map[string]error
	deleteAs map[string]DeleteResult

	updates []fakeUpdate
	deletes []string
}

type fakeUpdate struct {
	Table  string
	ID     string
	Fields map[string]any
}

var errNotFound = errors.New("record not found")

func newFakeStore() *fakeStore {
	return &fakeStore{
		tables:   make(map[string][]*Record),
		failIDs:  make(map[string]error),
		deleteAs: make(map[string]DeleteResult),
	}
}

func (s *fakeStore) add(table, id string, fields model.Fields) {
	s.tables[table] = append(s.tables[table], &Record{ID: id, Fields: fields})
}

func (s *fakeStore) find(table, id string) (*Record, int) {
	for i, r := range s.tables[table] {
		if r.ID == id {
			return r, i
		}
	}
	return nil, -1
}

func (s *fakeStore) ListRecords(ctx context.Context, table string) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]Record, 0, len(s.tables[table]))
	for _, r := range s.tables[table] {
		out = append(out, *r)
	}
	return out, nil
}

func (s *fakeStore) GetRecord(ctx context.Context, table, id string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, _ := s.find(table, id)
	if rec == nil {
		return nil, errNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *fakeStore) UpdateRecord(ctx context.Context, table, id string, fields map[string]any) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failIDs[id]; err != nil {
		return nil, err
	}
	rec, _ := s.find(table, id)
	if rec == nil {
		return nil, errNotFound
	}
	s.updates = append(s.updates, fakeUpdate{Table: table, ID: id, Fields: fields})
	for k, v := range fields {
		rec.Fields[k] = v
	}
	cp := *rec
	return &cp, nil
}

func (s *fakeStore) DeleteRecord(ctx context.Context, table, id string) (*DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failIDs[id]; err != nil {
		return nil, err
	}
	if res, ok := s.deleteAs[id]; ok {
		return &res, nil
	}
	_, idx := s.find(table, id)
	if idx < 0 {
		return nil, errNotFound
	}
	s.tables[table] = append(s.tables[table][:idx], s.tables[table][idx+1:]...)
	s.deletes = append(s.deletes, id)
	return &DeleteResult{ID: id, Deleted: true}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		AirtableToken:      "test-token",
		BaseID:             "appTest",
		ClinicsTable:       "clinics",
		HoursTable:         "hours",
		DatasetPath:        "clinics.geojson",
		VirtualDatasetPath: "virtual_clinics.json",
	}
}

func ptr[T any](v T) *T {
	return &v
}
