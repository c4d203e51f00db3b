package keymat

import (
	"bytes"
	"errors"
	"testing"

	chaoskey "github.com/BackendStack21/chaos-key-go"
)

func TestSerializeRoundTrip(t *testing.T) {
	km, err := GenerateWithParams(fastParams())
	if err != nil {
		t.Fatalf("GenerateWithParams failed: %v", err)
	}
	defer km.Destroy()

	blob := Serialize(km)
	back, err := DeserializeWithParams(blob, fastParams())
	if err != nil {
		t.Fatalf("DeserializeWithParams failed: %v", err)
	}
	defer back.Destroy()

	if !bytes.Equal(back.Seed, km.Seed) {
		t.Error("seed did not survive the round trip")
	}
	if len(back.LatticePoints) != len(km.LatticePoints) {
		t.Fatalf("got %d points back, want %d", len(back.LatticePoints), len(km.LatticePoints))
	}
	for i := range km.LatticePoints {
		if back.LatticePoints[i].Cmp(km.LatticePoints[i]) != 0 {
			t.Errorf("lattice point %d changed", i)
		}
	}
	if !bytes.Equal(back.Tag, km.Tag) {
		t.Error("tag did not survive the round trip")
	}
	if !Verify(back) {
		t.Error("deserialized material fails verification")
	}
	if !bytes.Equal(Fingerprint(back), Fingerprint(km)) {
		t.Error("fingerprint changed across serialization")
	}
}

func TestDeserializeDefaultParams(t *testing.T) {
	km, err := Generate(256)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	defer km.Destroy()

	back, err := Deserialize(Serialize(km))
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	defer back.Destroy()

	if back.Params != km.Params {
		t.Errorf("parameters changed: got %+v, want %+v", back.Params, km.Params)
	}
	if !Verify(back) {
		t.Error("deserialized material fails verification")
	}
}

func TestDeserializeRejectsCorruptBlobs(t *testing.T) {
	km, err := GenerateWithParams(fastParams())
	if err != nil {
		t.Fatalf("GenerateWithParams failed: %v", err)
	}
	defer km.Destroy()
	blob := Serialize(km)

	cases := map[string][]byte{
		"empty":         {},
		"truncated":     blob[:len(blob)-1],
		"extended":      append(append([]byte{}, blob...), 0),
		"short header":  blob[:2],
		"missing tag":   blob[:len(blob)-32],
		"only bit size": blob[:4],
	}
	for name, corrupt := range cases {
		if _, err := DeserializeWithParams(corrupt, fastParams()); err == nil {
			t.Errorf("%s blob accepted", name)
		} else if !errors.Is(err, chaoskey.ErrInvalidParameter) {
			t.Errorf("%s blob: error is not ErrInvalidParameter: %v", name, err)
		}
	}
}

func TestDeserializeRejectsBitSizeMismatch(t *testing.T) {
	km, err := GenerateWithParams(fastParams())
	if err != nil {
		t.Fatalf("GenerateWithParams failed: %v", err)
	}
	defer km.Destroy()

	params := fastParams()
	params.BitSize = 128
	params.LatticeDimension = 4
	_, err = DeserializeWithParams(Serialize(km), params)
	if err == nil {
		t.Fatal("blob accepted against mismatched parameters")
	}
	if !errors.Is(err, chaoskey.ErrInvalidParameter) {
		t.Errorf("error is not ErrInvalidParameter: %v", err)
	}
}

func TestDeserializeDoesNotVerify(t *testing.T) {
	km, err := GenerateWithParams(fastParams())
	if err != nil {
		t.Fatalf("GenerateWithParams failed: %v", err)
	}
	defer km.Destroy()

	blob := Serialize(km)
	blob[len(blob)-1] ^= 1 // corrupt the tag, body stays parseable
	back, err := DeserializeWithParams(blob, fastParams())
	if err != nil {
		t.Fatalf("structurally valid blob rejected: %v", err)
	}
	defer back.Destroy()
	if Verify(back) {
		t.Error("material with a corrupt tag verified")
	}
}
