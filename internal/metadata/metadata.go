// Package metadata builds and decodes the on-ledger metadata of NFTs.
package metadata

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// MaxSize is the ledger's limit on the metadata of a single NFT, in bytes.
const MaxSize = 100

const TypeGameAsset = "game_asset"

type Metadata struct {
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// TooLargeError is returned when serialized metadata exceeds MaxSize.
type TooLargeError struct {
	Size int
}

func (e TooLargeError) Error() string {
	return fmt.Sprintf("metadata is %d bytes, limit is %d", e.Size, MaxSize)
}

func New(name string, attributes map[string]any) Metadata {
	return Metadata{Name: name, Type: TypeGameAsset, Attributes: attributes}
}

// Marshal serializes m, and fails with TooLargeError if the result
// doesn't fit on the ledger.
func (m Metadata) Marshal() ([]byte, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding metadata: %w", err)
	}
	if err := CheckSize(b); err != nil {
		return nil, err
	}
	return b, nil
}

func CheckSize(b []byte) error {
	if len(b) > MaxSize {
		return TooLargeError{Size: len(b)}
	}
	return nil
}

type Encoding string

const (
	EncodingJSON Encoding = "json"
	EncodingRaw  Encoding = "raw"
	// No metadata at all.
	EncodingNone Encoding = "none"
)

// Decoded is metadata as read back from the mirror node: either parsed
// JSON, or the raw value when it isn't base64-encoded JSON.
type Decoded struct {
	Encoding Encoding
	JSON     any
	Raw      string
}

// Value returns the parsed JSON, the raw string, or nil if there is no
// metadata.
func (d Decoded) Value() any {
	switch d.Encoding {
	case EncodingJSON:
		return d.JSON
	case EncodingNone:
		return nil
	}
	return d.Raw
}

// Decode decodes the base64 metadata reported by the mirror node. It
// never fails; undecodable input is returned as raw.
func Decode(encoded string) Decoded {
	if encoded == "" {
		return Decoded{Encoding: EncodingNone}
	}
	raw := Decoded{Encoding: EncodingRaw, Raw: encoded}
	b, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return raw
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return raw
	}
	return Decoded{Encoding: EncodingJSON, JSON: v}
}
