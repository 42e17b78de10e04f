package storage

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/WOOWTECH/ha-finance/internal/ledger"
)

// Version is the snapshot document layout version.
const Version = 1

// Document is the persisted envelope around a snapshot.
type Document struct {
	Version int             `json:"version"`
	Key     string          `json:"key"`
	Data    ledger.Snapshot `json:"data"`
}

// Codec turns a Document into bytes and back.
type Codec interface {
	Name() string
	Marshal(doc Document) ([]byte, error)
	Unmarshal(data []byte, doc *Document) error
}

// CodecByName returns the codec registered under name ("json" or "cbor").
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSON{}, nil
	case "cbor":
		return CBOR{}, nil
	}

	return nil, fmt.Errorf("unknown storage codec %q", name)
}

// JSON is the default, human-readable codec.
type JSON struct{}

func (JSON) Name() string { return "json" }

func (JSON) Marshal(doc Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

func (JSON) Unmarshal(data []byte, doc *Document) error {
	return json.Unmarshal(data, doc)
}

// CBOR uses core deterministic encoding: equal snapshots produce equal bytes.
// Field names follow the json tags.
type CBOR struct{}

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error

	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("storage: CBOR encoder initialization failed: " + err.Error())
	}

	cborDec, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("storage: CBOR decoder initialization failed: " + err.Error())
	}
}

func (CBOR) Name() string { return "cbor" }

func (CBOR) Marshal(doc Document) ([]byte, error) {
	return cborEnc.Marshal(doc)
}

func (CBOR) Unmarshal(data []byte, doc *Document) error {
	return cborDec.Unmarshal(data, doc)
}
