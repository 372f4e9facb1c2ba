package knngraph

import (
	"bytes"
	"encoding/gob"

	"github.com/hupe1980/knngraph/distance"
	"github.com/hupe1980/knngraph/model"
)

// Compile time checks to ensure Graph satisfies the gob interfaces.
var (
	_ gob.GobEncoder = (*Graph)(nil)
	_ gob.GobDecoder = (*Graph)(nil)
)

// GobEncode method for Graph.
func (g *Graph) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	encoder := gob.NewEncoder(&buf)

	if err := encoder.Encode(int(g.metric)); err != nil {
		return nil, err
	}

	if err := encoder.Encode(g.nbrs.Rows()); err != nil {
		return nil, err
	}

	if err := encoder.Encode(g.nbrs.Cols()); err != nil {
		return nil, err
	}

	if err := encoder.Encode(g.nbrs.Data()); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// GobDecode method for Graph.
func (g *Graph) GobDecode(data []byte) error {
	decoder := gob.NewDecoder(bytes.NewBuffer(data))

	var metric int
	if err := decoder.Decode(&metric); err != nil {
		return err
	}

	var rows, cols int
	if err := decoder.Decode(&rows); err != nil {
		return err
	}
	if err := decoder.Decode(&cols); err != nil {
		return err
	}

	var raw []int32
	if err := decoder.Decode(&raw); err != nil {
		return err
	}
	if raw == nil {
		raw = []int32{}
	}

	nbrs, err := model.NeighborMatrixFromSlice(rows, cols, raw)
	if err != nil {
		return err
	}

	g.metric = distance.Metric(metric)
	g.nbrs = nbrs

	return nil
}
