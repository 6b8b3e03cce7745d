package common

import (
	"encoding/base64"
	"encoding/hex"
	"testing"
)

func TestMakeRandHexString_LengthAndHex(t *testing.T) {
	const n = 16
	s, err := MakeRandHexString(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != n*2 {
		t.Fatalf("expected hex length %d, got %d", n*2, len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		t.Fatalf("string is not valid hex: %v", err)
	}
}

func TestMakeRandURLSafeString_Decodes(t *testing.T) {
	s, err := MakeRandURLSafeString(32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		t.Fatalf("not raw url-safe base64: %v", err)
	}
	if len(b) != 32 {
		t.Fatalf("expected 32 decoded bytes, got %d", len(b))
	}
}

func TestMakeRandURLSafeString_EntropyHint(t *testing.T) {
	a, _ := MakeRandURLSafeString(32)
	b, _ := MakeRandURLSafeString(32)
	if a == b {
		t.Logf("warning: two MakeRandURLSafeString(32) results are identical; extremely unlikely")
	}
}

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte{'1', '2', '3', '4'}
	WipeByteArray(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected buf[%d]==0, got %d", i, v)
		}
	}
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}
