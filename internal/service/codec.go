package service

import "encoding/json"

// JSONCodec lets Connect carry plain Go structs as application/json.
// It replaces Connect's default protobuf JSON codec, which only accepts
// generated messages.
type JSONCodec struct{}

// Name implements connect.Codec.
func (JSONCodec) Name() string { return "json" }

// Marshal implements connect.Codec.
func (JSONCodec) Marshal(msg any) ([]byte, error) { return json.Marshal(msg) }

// Unmarshal implements connect.Codec.
func (JSONCodec) Unmarshal(data []byte, msg any) error { return json.Unmarshal(data, msg) }
