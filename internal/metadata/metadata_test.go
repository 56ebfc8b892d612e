package metadata

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func TestCheckSize(t *testing.T) {
	if err := CheckSize(bytes.Repeat([]byte{'a'}, 100)); err != nil {
		t.Errorf("100 bytes rejected: %v", err)
	}
	err := CheckSize(bytes.Repeat([]byte{'a'}, 101))
	var tooLarge TooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("101 bytes: got %v, wanted TooLargeError", err)
	}
	if got, want := tooLarge.Size, 101; got != want {
		t.Errorf("got size %d, wanted %d", got, want)
	}
}

func TestMarshalBound(t *testing.T) {
	empty, err := New("", nil).Marshal()
	if err != nil {
		t.Fatal(err)
	}
	overhead := len(empty)

	name := strings.Repeat("x", MaxSize-overhead)
	b, err := New(name, nil).Marshal()
	if err != nil {
		t.Fatalf("metadata of exactly %d bytes rejected: %v", MaxSize, err)
	}
	if got, want := len(b), MaxSize; got != want {
		t.Fatalf("got %d bytes, wanted %d", got, want)
	}

	_, err = New(name+"x", nil).Marshal()
	if !errors.As(err, &TooLargeError{}) {
		t.Errorf("metadata of %d bytes: got %v, wanted TooLargeError", MaxSize+1, err)
	}
}

func TestMarshal(t *testing.T) {
	b, err := New("Sword", map[string]any{"rarity": "epic", "level": 3}).Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(b), `{"name":"Sword","type":"game_asset","attributes":{"level":3,"rarity":"epic"}}`; got != want {
		t.Errorf("got %s, wanted %s", got, want)
	}
}

func TestDecode(t *testing.T) {
	encode := func(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }
	for _, table := range []struct {
		description string
		input       string
		encoding    Encoding
	}{
		{"json object", encode(`{"name":"Sword","type":"game_asset"}`), EncodingJSON},
		{"json string", encode(`"ipfs://cid"`), EncodingJSON},
		{"base64 non-json", encode("ipfs://bafy"), EncodingRaw},
		{"not base64", "%%%", EncodingRaw},
		{"empty", "", EncodingNone},
	} {
		d := Decode(table.input)
		if got, want := d.Encoding, table.encoding; got != want {
			t.Errorf("%s: got encoding %q, wanted %q", table.description, got, want)
			continue
		}
		if d.Encoding == EncodingRaw && d.Value() != table.input {
			t.Errorf("%s: raw value %v, wanted input unchanged", table.description, d.Value())
		}
	}

	if v := Decode("").Value(); v != nil {
		t.Errorf("empty metadata: got value %#v, wanted nil", v)
	}

	d := Decode(encode(`{"name":"Sword"}`))
	m, ok := d.Value().(map[string]any)
	if !ok || m["name"] != "Sword" {
		t.Errorf("unexpected decoded value %#v", d.Value())
	}
}
