package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/matsolve/propgraph/internal/material"
)

type exportQuantity struct {
	Symbol string   `json:"symbol"`
	Value  float64  `json:"value"`
	Imag   float64  `json:"imag,omitempty"`
	Units  string   `json:"units"`
	ID     string   `json:"id"`
	Model  string   `json:"model,omitempty"`
	Inputs []string `json:"inputs,omitempty"`
}

type exportData struct {
	Material   string           `json:"material"`
	Session    *SessionMetadata `json:"session,omitempty"`
	Quantities []exportQuantity `json:"quantities"`
}

// ExportJSON writes the material, with optional session metadata, as
// indented JSON.
func ExportJSON(w io.Writer, mat *material.Material, meta *SessionMetadata) error {
	data := exportData{
		Material:   mat.Name,
		Session:    meta,
		Quantities: make([]exportQuantity, 0, mat.Len()),
	}

	for _, q := range mat.Quantities() {
		eq := exportQuantity{
			Symbol: q.Symbol.Name,
			Value:  real(q.Magnitude),
			Imag:   imag(q.Magnitude),
			Units:  q.Units.String(),
			ID:     q.ID.String(),
		}
		if q.Provenance != nil {
			eq.Model = q.Provenance.Model
			for _, in := range q.Provenance.Inputs {
				eq.Inputs = append(eq.Inputs, in.String())
			}
		}
		data.Quantities = append(data.Quantities, eq)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportJSONStdout is ExportJSON to standard output.
func ExportJSONStdout(mat *material.Material, meta *SessionMetadata) error {
	return ExportJSON(os.Stdout, mat, meta)
}
