package common

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"

	cerrors "nftfi/core/errors"
)

// DecodeMsg strictly decodes a tagged message. out must point to a struct
// whose fields are all pointers; exactly one of them may be set after
// decoding.
func DecodeMsg(raw []byte, out interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return cerrors.ErrInvalidMessage.Wrapf("%v", err)
	}
	if _, err := Variant(out); err != nil {
		return err
	}
	return nil
}

// Variant returns the JSON tag of the single populated field of a tagged
// message.
func Variant(msg interface{}) (string, error) {
	v := reflect.ValueOf(msg)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return "", cerrors.ErrInvalidMessage.Wrapf("nil message")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return "", cerrors.ErrInvalidMessage.Wrapf("message must be an object")
	}
	name := ""
	count := 0
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if f.Kind() != reflect.Ptr || f.IsNil() {
			continue
		}
		count++
		tag := strings.Split(t.Field(i).Tag.Get("json"), ",")[0]
		if tag == "" {
			tag = t.Field(i).Name
		}
		name = tag
	}
	if count != 1 {
		return "", cerrors.ErrInvalidMessage.Wrapf("expected exactly one variant, got %d", count)
	}
	return name, nil
}

// EncodeResponse marshals a query result.
func EncodeResponse(v interface{}, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}
