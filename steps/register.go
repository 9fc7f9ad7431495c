// Package steps provides the built-in pipeline steps.
//
// Transform steps live under the "configura.steps" namespace, file readers
// and writers under "configura.io":
//
//	pipeline:
//	  - type: "configura.io:ReadCsv"
//	    params: {path: data/input/users.csv}
//	  - type: "configura.steps:RenameFields"
//	    params: {mapping: {firstName: first_name}}
//	  - type: "configura.io:WriteJsonl"
//	    params: {dir: data/output, suffix: _clean, extension: .jsonl}
package steps

import (
	"github.com/configura/configura/formats"
	"github.com/configura/configura/pipeline"
)

const (
	NamespaceSteps = "configura.steps"
	NamespaceIO    = "configura.io"
)

// All returns the registration table of built-in steps keyed by reference.
func All() map[string]pipeline.Factory {
	return map[string]pipeline.Factory{
		NamespaceSteps + ":FilterByField": newFilterByField,
		NamespaceSteps + ":RenameFields":  newRenameFields,
		NamespaceSteps + ":DropFields":    newDropFields,
		NamespaceSteps + ":Limit":         newLimit,
		NamespaceSteps + ":SetRuntime":    newSetRuntime,
		NamespaceSteps + ":Validate":      newValidate,

		NamespaceIO + ":ReadCsv":      readerFactory(formats.CSV),
		NamespaceIO + ":ReadJson":     readerFactory(formats.JSON),
		NamespaceIO + ":ReadJsonl":    readerFactory(formats.JSONL),
		NamespaceIO + ":ReadMsgpack":  readerFactory(formats.Msgpack),
		NamespaceIO + ":ReadSqlite":   newReadSqlite,
		NamespaceIO + ":WriteCsv":     writerFactory(formats.CSV),
		NamespaceIO + ":WriteJson":    writerFactory(formats.JSON),
		NamespaceIO + ":WriteJsonl":   writerFactory(formats.JSONL),
		NamespaceIO + ":WriteMsgpack": writerFactory(formats.Msgpack),
		NamespaceIO + ":WriteSqlite":  newWriteSqlite,
	}
}

// RegisterAll registers all built-in steps with reg.
func RegisterAll(reg *pipeline.Registry) error {
	for ref, f := range All() {
		if err := reg.Register(ref, f); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding the built-in steps.
func NewRegistry() *pipeline.Registry {
	reg := pipeline.NewRegistry()
	if err := RegisterAll(reg); err != nil {
		panic(err)
	}
	return reg
}
