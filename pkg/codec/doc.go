// Package codec serializes stored values and metadata records.
//
// MessagePack (hashicorp/go-msgpack) is the default: it is compact and
// schema-less, so any Go value with exported fields round-trips without
// registration. JSON and gob are available for callers that need a
// human-readable or Go-native encoding. Struct fields may be renamed with
// `codec:"..."` tags for MessagePack and `json:"..."` tags for JSON.
package codec
