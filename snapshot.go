package knngraph

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/hupe1980/knngraph/blobstore"
)

// snapshotMagic identifies a knngraph snapshot stream.
var snapshotMagic = []byte("KNNG\x01")

// Save writes the graph to w as a compressed snapshot: a magic header
// followed by a zstd-framed gob payload.
func (g *Graph) Save(w io.Writer) error {
	if _, err := w.Write(snapshotMagic); err != nil {
		return fmt.Errorf("write snapshot header: %w", err)
	}

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("create compressor: %w", err)
	}

	if err := gob.NewEncoder(enc).Encode(g); err != nil {
		_ = enc.Close()
		return fmt.Errorf("encode graph: %w", err)
	}

	return enc.Close()
}

// Load reads a snapshot written by Save.
func Load(r io.Reader) (*Graph, error) {
	header := make([]byte, len(snapshotMagic))
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("read snapshot header: %w", err)
	}
	if !bytes.Equal(header, snapshotMagic) {
		return nil, fmt.Errorf("not a knngraph snapshot")
	}

	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("create decompressor: %w", err)
	}
	defer dec.Close()

	g := &Graph{}
	if err := gob.NewDecoder(dec).Decode(g); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}

	return g, nil
}

// SaveToBlob writes the graph snapshot into store under name.
func (g *Graph) SaveToBlob(ctx context.Context, store blobstore.Store, name string) error {
	var buf bytes.Buffer
	if err := g.Save(&buf); err != nil {
		return err
	}
	return store.Put(ctx, name, buf.Bytes())
}

// LoadFromBlob reads a graph snapshot from store.
func LoadFromBlob(ctx context.Context, store blobstore.Store, name string) (*Graph, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	return Load(io.NewSectionReader(blob, 0, blob.Size()))
}
