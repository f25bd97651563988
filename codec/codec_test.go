package codec

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"
)

// ---------------------------------------------------------------------------
// Registry
// ---------------------------------------------------------------------------

func TestNoneAlwaysAvailable(t *testing.T) {
	c, err := Lookup(None)
	if err != nil {
		t.Fatalf("Lookup(None) failed: %v", err)
	}
	if c.Name() != "NONE" {
		t.Errorf("None name = %q, want NONE", c.Name())
	}
}

func TestNoneIsIdentity(t *testing.T) {
	in := []byte("identity transform")
	out, err := Compress(None, in)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	if !bytes.Equal(out, in) {
		t.Error("None compression changed the bytes")
	}
	out, err = Decompress(None, out)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if !bytes.Equal(out, in) {
		t.Error("None decompression changed the bytes")
	}
}

func TestLookupUnknownID(t *testing.T) {
	_, err := Lookup(ID(9999))
	if !errors.Is(err, ErrUnknownCodec) {
		t.Errorf("Lookup(9999) error = %v, want ErrUnknownCodec", err)
	}
}

func TestAvailableSortedAndComplete(t *testing.T) {
	infos := Available()
	if len(infos) == 0 {
		t.Fatal("no codecs available")
	}
	if infos[0].ID != None {
		t.Errorf("first codec id = %d, want None (0)", infos[0].ID)
	}
	for i := 1; i < len(infos); i++ {
		if infos[i-1].ID >= infos[i].ID {
			t.Errorf("Available() not sorted: %d before %d", infos[i-1].ID, infos[i].ID)
		}
	}
}

func TestExpectedCodecsRegistered(t *testing.T) {
	// All codecs in this build link pure-Go libraries, so the probe
	// should admit every one of them.
	for _, id := range []ID{None, LZ4, Snappy, Zlib, LZMA2, Zstd, Gzip} {
		if _, err := Lookup(id); err != nil {
			t.Errorf("codec %d not registered: %v", id, err)
		}
	}
}

// ---------------------------------------------------------------------------
// Compression symmetry
// ---------------------------------------------------------------------------

func TestRoundTripAllCodecs(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	large := make([]byte, 1<<20)
	rng.Read(large)

	inputs := map[string][]byte{
		"empty":      {},
		"one byte":   {0x42},
		"text":       []byte("the quick brown fox jumps over the lazy dog"),
		"1MB random": large,
	}

	for _, info := range Available() {
		for name, in := range inputs {
			compressed, err := Compress(info.ID, in)
			if err != nil {
				t.Errorf("%s/%s: Compress failed: %v", info.Name, name, err)
				continue
			}
			out, err := Decompress(info.ID, compressed)
			if err != nil {
				t.Errorf("%s/%s: Decompress failed: %v", info.Name, name, err)
				continue
			}
			if !bytes.Equal(out, in) {
				t.Errorf("%s/%s: round trip mismatch: %d bytes in, %d bytes out",
					info.Name, name, len(in), len(out))
			}
		}
	}
}

func TestDecompressCorruptInput(t *testing.T) {
	garbage := []byte("this is definitely not a valid compressed stream!!")
	for _, info := range Available() {
		if info.ID == None {
			continue // identity transform accepts anything
		}
		if _, err := Decompress(info.ID, garbage); err == nil {
			t.Errorf("%s: Decompress accepted garbage", info.Name)
		}
	}
}
