// Package storage persists derivation sessions: the full quantity set of a
// material after graph evaluation, as metadata.json plus quantities.csv per
// session directory.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matsolve/propgraph/internal/material"
	"github.com/matsolve/propgraph/internal/quantity"
	"github.com/matsolve/propgraph/internal/registry"
	"github.com/matsolve/propgraph/internal/units"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type SessionMetadata struct {
	ID         string    `json:"id"`
	Material   string    `json:"material"`
	Timestamp  time.Time `json:"timestamp"`
	Note       string    `json:"note,omitempty"`
	Quantities int       `json:"quantities"`
	Derived    int       `json:"derived"`
}

var csvHeader = []string{"symbol", "value", "imag", "unit", "id", "model", "inputs"}

func (s *Store) Save(mat *material.Material, note string) (string, error) {
	id := fmt.Sprintf("%s_%d", sanitize(mat.Name), time.Now().Unix())
	dir := filepath.Join(s.baseDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	derived := 0
	for _, q := range mat.Quantities() {
		if q.Provenance != nil {
			derived++
		}
	}

	meta := SessionMetadata{
		ID:         id,
		Material:   mat.Name,
		Timestamp:  time.Now(),
		Note:       note,
		Quantities: mat.Len(),
		Derived:    derived,
	}

	metaFile, err := os.Create(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(dir, "quantities.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return "", err
	}
	for _, q := range mat.Quantities() {
		model := ""
		inputs := ""
		if q.Provenance != nil {
			model = q.Provenance.Model
			ids := make([]string, 0, len(q.Provenance.Inputs))
			for _, in := range q.Provenance.Inputs {
				ids = append(ids, in.String())
			}
			inputs = strings.Join(ids, ";")
		}
		row := []string{
			q.Symbol.Name,
			strconv.FormatFloat(real(q.Magnitude), 'g', -1, 64),
			strconv.FormatFloat(imag(q.Magnitude), 'g', -1, 64),
			q.Units.String(),
			q.ID.String(),
			model,
			inputs,
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return id, nil
}

func (s *Store) List() ([]SessionMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SessionMetadata{}, nil
		}
		return nil, err
	}

	sessions := make([]SessionMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta SessionMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		sessions = append(sessions, meta)
	}

	return sessions, nil
}

func (s *Store) Load(id string) (*SessionMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta SessionMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadMaterial rebuilds the stored material, resolving symbols and units
// against the registry. Quantity identity and provenance survive the round
// trip.
func (s *Store) LoadMaterial(id string, reg *registry.Registry) (*material.Material, error) {
	meta, err := s.Load(id)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, id, "quantities.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	mat := material.New(meta.Material)
	for i := 1; i < len(records); i++ {
		rec := records[i]
		if len(rec) < len(csvHeader) {
			continue
		}
		sym, ok := reg.Symbols.Get(rec[0])
		if !ok {
			return nil, fmt.Errorf("storage: session %s references unknown symbol %q", id, rec[0])
		}
		re, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, err
		}
		im, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, err
		}
		u, err := units.Parse(rec[3])
		if err != nil {
			return nil, err
		}
		q, err := quantity.CreateIn(sym, complex(re, im), u)
		if err != nil {
			return nil, err
		}
		if qid, err := uuid.Parse(rec[4]); err == nil {
			q.ID = qid
		}
		if rec[5] != "" {
			prov := &quantity.Provenance{Model: rec[5]}
			for _, part := range strings.Split(rec[6], ";") {
				if in, err := uuid.Parse(part); err == nil {
					prov.Inputs = append(prov.Inputs, in)
				}
			}
			q.Provenance = prov
		}
		mat.Add(q)
	}

	return mat, nil
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
