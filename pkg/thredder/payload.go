package thredder

import "github.com/turtl/core/pkg/terror"

type payloadKind int

const (
	kindBytes payloadKind = iota
	kindString
	kindJSON
	kindUnit
	kindBytesString
)

// Payload is the closed set of values a worker closure may return. Construct
// one with the matching constructor (BytesPayload, StringPayload, ...) and
// read it back with the matching accessor; reading with the wrong accessor
// returns terror.BadValue.
type Payload struct {
	bytes  []byte
	str    string
	json   any
	kind   payloadKind
}

func BytesPayload(b []byte) Payload { return Payload{bytes: b, kind: kindBytes} }
func StringPayload(s string) Payload { return Payload{str: s, kind: kindString} }
func JSONPayload(v any) Payload { return Payload{json: v, kind: kindJSON} }
func UnitPayload() Payload { return Payload{kind: kindUnit} }
func BytesStringPayload(b []byte, s string) Payload {
	return Payload{bytes: b, str: s, kind: kindBytesString}
}

func (p Payload) AsBytes() ([]byte, error) {
	if p.kind != kindBytes {
		return nil, terror.BadValue("payload is not Bytes")
	}
	return p.bytes, nil
}

func (p Payload) AsString() (string, error) {
	if p.kind != kindString {
		return "", terror.BadValue("payload is not String")
	}
	return p.str, nil
}

func (p Payload) AsJSON() (any, error) {
	if p.kind != kindJSON {
		return nil, terror.BadValue("payload is not JSON")
	}
	return p.json, nil
}

func (p Payload) AsBytesString() ([]byte, string, error) {
	if p.kind != kindBytesString {
		return nil, "", terror.BadValue("payload is not BytesString")
	}
	return p.bytes, p.str, nil
}
