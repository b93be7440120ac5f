package cache

import (
	jsoniter "github.com/json-iterator/go"
)

// Codec converts values to and from the text stored in value records.
type Codec[V any] interface {
	Encode(v V) (string, error)
	Decode(s string) (V, error)
}

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONCodec is the default codec. It behaves like encoding/json.
type JSONCodec[V any] struct{}

func (JSONCodec[V]) Encode(v V) (string, error) {
	return jsonAPI.MarshalToString(v)
}

func (JSONCodec[V]) Decode(s string) (V, error) {
	var v V
	err := jsonAPI.UnmarshalFromString(s, &v)
	return v, err
}
