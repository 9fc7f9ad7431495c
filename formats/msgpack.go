package formats

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/configura/configura/pipeline"
)

func decodeMsgpack(r io.Reader) (pipeline.Batch, error) {
	dec := msgpack.NewDecoder(r)
	dec.UseLooseInterfaceDecoding(true)

	var docs []map[string]any
	if err := dec.Decode(&docs); err != nil {
		return nil, fmt.Errorf("parsing msgpack: %w", err)
	}
	out := make(pipeline.Batch, 0, len(docs))
	for _, d := range docs {
		out = append(out, d)
	}
	return out, nil
}

func encodeMsgpack(w io.Writer, data pipeline.Batch) error {
	if data == nil {
		data = pipeline.Batch{}
	}
	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)
	docs := make([]map[string]any, len(data))
	for i, rec := range data {
		docs[i] = rec
	}
	return enc.Encode(docs)
}
